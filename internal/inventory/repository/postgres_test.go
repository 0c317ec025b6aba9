package repository

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/internal/testutil"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func seed(t *testing.T, db *sqlx.DB, stockCode string, quantity int, min *int) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO products (id, stock_code, name, unit, quantity_on_hand, min_stock_level, created_at, updated_at)
		VALUES (?, ?, ?, 'pcs', ?, ?, ?, ?)`, "id-"+stockCode, stockCode, "Product "+stockCode, quantity, min, epoch, epoch)
	require.NoError(t, err)
}

func intPtr(v int) *int { return &v }

func movement(id, code string, mt model.MovementType, change, after int, at time.Time) *model.InventoryMovement {
	return &model.InventoryMovement{
		ID:               id,
		ProductStockCode: code,
		MovementType:     mt,
		QuantityChange:   change,
		QuantityAfter:    after,
		CreatedBy:        "u-1",
		CreatedByEmail:   "clerk@example.com",
		CreatedAt:        at,
	}
}

func TestGetProduct(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	seed(t, db, "BOLT-M6", 4, intPtr(10))
	repo := NewPGRepository(db)

	p, err := repo.GetProduct(ctx, "BOLT-M6")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 4, p.QuantityOnHand)
	assert.Equal(t, 10, p.AlertThreshold())
	assert.True(t, p.BelowMinimum())

	_, err = db.Exec(`UPDATE products SET deleted_at = ? WHERE stock_code = 'BOLT-M6'`, epoch)
	require.NoError(t, err)
	p, err = repo.GetProduct(ctx, "BOLT-M6")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestApplyDelta(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	seed(t, db, "BOLT-M6", 4, nil)
	repo := NewPGRepository(db)

	q, ok, err := repo.ApplyDelta(ctx, "BOLT-M6", 6, epoch)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 10, q)

	q, ok, err = repo.ApplyDelta(ctx, "BOLT-M6", -10, epoch)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, q)

	_, ok, err = repo.ApplyDelta(ctx, "BOLT-M6", -1, epoch)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = repo.ApplyDelta(ctx, "MISSING", 1, epoch)
	require.NoError(t, err)
	assert.False(t, ok)

	p, err := repo.GetProduct(ctx, "BOLT-M6")
	require.NoError(t, err)
	assert.Equal(t, 0, p.QuantityOnHand)
}

func TestListMovements(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	seed(t, db, "A", 0, nil)
	seed(t, db, "B", 0, nil)
	repo := NewPGRepository(db)

	ref := "order-1"
	sale := movement("m-3", "A", model.MovementSale, -2, 8, epoch.Add(2*time.Hour))
	sale.ReferenceID = &ref

	require.NoError(t, repo.LogMovement(ctx, movement("m-1", "A", model.MovementInitialStock, 10, 10, epoch)))
	require.NoError(t, repo.LogMovement(ctx, movement("m-2", "B", model.MovementInitialStock, 5, 5, epoch.Add(time.Hour))))
	require.NoError(t, repo.LogMovement(ctx, sale))

	all, total, err := repo.ListMovements(ctx, &dto.MovementFilters{StockCode: "A"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, all, 2)
	assert.Equal(t, "m-3", all[0].ID)
	assert.Equal(t, "m-1", all[1].ID)
	require.NotNil(t, all[0].ReferenceID)
	assert.Equal(t, "order-1", *all[0].ReferenceID)

	sales, total, err := repo.ListMovements(ctx, &dto.MovementFilters{MovementType: model.MovementSale})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "m-3", sales[0].ID)

	page, total, err := repo.ListMovements(ctx, &dto.MovementFilters{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, "m-1", page[0].ID)
}

func TestSummaryAndDiscrepancies(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	seed(t, db, "A", 10, intPtr(5))
	seed(t, db, "B", 2, intPtr(5))
	seed(t, db, "C", 7, nil)
	seed(t, db, "D", 100, intPtr(1))
	_, err := db.Exec(`UPDATE products SET deleted_at = ? WHERE stock_code = 'D'`, epoch)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO low_stock_alerts (id, product_stock_code, current_stock_at_alert, min_stock_level_at_alert, status, triggered_at, notes)
		VALUES ('al-1', 'B', 2, 5, 'active', ?, '')`, epoch)
	require.NoError(t, err)
	// Alerts of deleted products are not counted.
	_, err = db.Exec(`INSERT INTO low_stock_alerts (id, product_stock_code, current_stock_at_alert, min_stock_level_at_alert, status, triggered_at, notes)
		VALUES ('al-2', 'D', 0, 1, 'active', ?, '')`, epoch)
	require.NoError(t, err)

	repo := NewPGRepository(db)
	require.NoError(t, repo.LogMovement(ctx, movement("m-1", "A", model.MovementInitialStock, 10, 10, epoch)))
	require.NoError(t, repo.LogMovement(ctx, movement("m-2", "B", model.MovementInitialStock, 3, 3, epoch)))

	s, err := repo.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.InventorySummary{ProductCount: 3, TotalUnits: 19, BelowMinimum: 1, ActiveAlerts: 1}, *s)

	gaps, err := repo.FindDiscrepancies(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.LedgerDiscrepancy{
		{StockCode: "B", QuantityOnHand: 2, LastRecordedQuantity: 3},
		{StockCode: "C", QuantityOnHand: 7, LastRecordedQuantity: 0},
	}, gaps)
}
