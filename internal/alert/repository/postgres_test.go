package repository

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/alert/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/internal/testutil"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func seedProduct(t *testing.T, db *sqlx.DB, stockCode, name string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO products (id, stock_code, name, unit, quantity_on_hand, created_at, updated_at)
		VALUES (?, ?, ?, 'pcs', 0, ?, ?)`, "id-"+stockCode, stockCode, name, epoch, epoch)
	require.NoError(t, err)
}

func newAlert(id, stockCode string, at time.Time) *model.LowStockAlert {
	return &model.LowStockAlert{
		ID:                   id,
		ProductStockCode:     stockCode,
		CurrentStockAtAlert:  9,
		MinStockLevelAtAlert: 10,
		Status:               model.AlertStatusActive,
		TriggeredAt:          at,
	}
}

func TestAlertLifecycle(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	seedProduct(t, db, "BOLT-M6", "Hex bolt M6")
	repo := NewPGRepository(db)

	none, err := repo.FindActiveByProduct(ctx, "BOLT-M6")
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, repo.Create(ctx, newAlert("a-1", "BOLT-M6", epoch)))

	active, err := repo.FindActiveByProduct(ctx, "BOLT-M6")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "a-1", active.ID)
	assert.Equal(t, 9, active.CurrentStockAtAlert)
	assert.Equal(t, 10, active.MinStockLevelAtAlert)

	views, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Hex bolt M6", views[0].ProductName)

	resolvedAt := epoch.Add(time.Hour)
	require.NoError(t, repo.Resolve(ctx, "a-1", resolvedAt, model.AlertNoteStockRestored))

	none, err = repo.FindActiveByProduct(ctx, "BOLT-M6")
	require.NoError(t, err)
	assert.Nil(t, none)

	all, total, err := repo.FindAll(ctx, &dto.AlertFilters{StockCode: "BOLT-M6"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, all, 1)
	assert.Equal(t, model.AlertStatusResolved, all[0].Status)
	assert.Equal(t, model.AlertNoteStockRestored, all[0].Notes)
	require.NotNil(t, all[0].ResolvedAt)
	assert.True(t, all[0].ResolvedAt.Equal(resolvedAt))
}

func TestResolveLeavesResolvedRowsAlone(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	seedProduct(t, db, "BOLT-M6", "Hex bolt M6")
	repo := NewPGRepository(db)

	require.NoError(t, repo.Create(ctx, newAlert("a-1", "BOLT-M6", epoch)))
	require.NoError(t, repo.Resolve(ctx, "a-1", epoch.Add(time.Hour), model.AlertNoteStockRestored))
	require.NoError(t, repo.Resolve(ctx, "a-1", epoch.Add(2*time.Hour), model.AlertNoteMinimumRemoved))

	all, _, err := repo.FindAll(ctx, &dto.AlertFilters{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, model.AlertNoteStockRestored, all[0].Notes)
}

func TestSecondActiveAlertIsRejected(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	seedProduct(t, db, "BOLT-M6", "Hex bolt M6")
	repo := NewPGRepository(db)

	require.NoError(t, repo.Create(ctx, newAlert("a-1", "BOLT-M6", epoch)))
	assert.Error(t, repo.Create(ctx, newAlert("a-2", "BOLT-M6", epoch.Add(time.Minute))))

	// A new breach after resolution opens a fresh row.
	require.NoError(t, repo.Resolve(ctx, "a-1", epoch.Add(time.Hour), model.AlertNoteStockRestored))
	require.NoError(t, repo.Create(ctx, newAlert("a-3", "BOLT-M6", epoch.Add(2*time.Hour))))

	_, total, err := repo.FindAll(ctx, &dto.AlertFilters{Status: model.AlertStatusActive})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestFindAllPaginates(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := NewPGRepository(db)

	for i, code := range []string{"A", "B", "C"} {
		seedProduct(t, db, code, "Product "+code)
		require.NoError(t, repo.Create(ctx, newAlert("a-"+code, code, epoch.Add(time.Duration(i)*time.Minute))))
	}

	page, total, err := repo.FindAll(ctx, &dto.AlertFilters{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 1)
	// Newest first, so the oldest alert lands on the second page.
	assert.Equal(t, "a-A", page[0].ID)
}
