package repository

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/internal/product/dto"
	"github.com/fekuna/omnipos-stock-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newProduct(code, name string, qty int) *model.Product {
	return &model.Product{
		BaseModel:      model.BaseModel{ID: "id-" + code, CreatedAt: epoch, UpdatedAt: epoch},
		StockCode:      code,
		Name:           name,
		Unit:           "pcs",
		QuantityOnHand: qty,
	}
}

func TestCreateFindUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewPGRepository(testutil.NewDB(t))

	desc := "Zinc plated"
	p := newProduct("HB-M6", "Hex bolt M6", 4)
	p.Description = &desc
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.FindByStockCode(ctx, "HB-M6")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Hex bolt M6", got.Name)
	assert.Equal(t, "Zinc plated", *got.Description)
	assert.Nil(t, got.MinStockLevel)
	assert.True(t, got.CreatedAt.Equal(epoch))

	level := 10
	got.Name = "Hex bolt M6 zinc"
	got.MinStockLevel = &level
	got.QuantityOnHand = 999
	got.UpdatedAt = epoch.Add(time.Hour)
	require.NoError(t, repo.Update(ctx, got))

	again, err := repo.FindByStockCode(ctx, "HB-M6")
	require.NoError(t, err)
	assert.Equal(t, "Hex bolt M6 zinc", again.Name)
	require.NotNil(t, again.MinStockLevel)
	assert.Equal(t, 10, *again.MinStockLevel)
	assert.Equal(t, 4, again.QuantityOnHand, "quantity is owned by the ledger")

	missing, err := repo.FindByStockCode(ctx, "NOPE")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSoftDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewPGRepository(testutil.NewDB(t))
	require.NoError(t, repo.Create(ctx, newProduct("HB-M6", "Hex bolt M6", 0)))

	ok, err := repo.SoftDelete(ctx, "HB-M6", epoch)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.SoftDelete(ctx, "HB-M6", epoch)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.FindByStockCode(ctx, "HB-M6")
	require.NoError(t, err)
	assert.Nil(t, got)

	taken, err := repo.IsStockCodeTaken(ctx, "HB-M6")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.IsStockCodeTaken(ctx, "OTHER")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	repo := NewPGRepository(testutil.NewDB(t))
	for _, p := range []*model.Product{
		newProduct("HB-M6", "Hex bolt M6", 1),
		newProduct("BC-01", "Bolt cutter", 1),
		newProduct("P_100", "Pin", 1),
		newProduct("PX100", "Pin extra", 1),
	} {
		require.NoError(t, repo.Create(ctx, p))
	}

	got, err := repo.Search(ctx, "BoLt", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Bolt cutter", got[0].Name)
	assert.Equal(t, "Hex bolt M6", got[1].Name)

	got, err = repo.Search(ctx, "bolt", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// Underscore is literal, not a single-character wildcard.
	got, err = repo.Search(ctx, "p_1", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "P_100", got[0].StockCode)
}

func TestFindByStockCodesAndFindAll(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := NewPGRepository(db)

	low := newProduct("A", "Alpha", 1)
	level := 5
	low.MinStockLevel = &level
	require.NoError(t, repo.Create(ctx, low))
	require.NoError(t, repo.Create(ctx, newProduct("B", "Beta", 8)))
	require.NoError(t, repo.Create(ctx, newProduct("C", "Charlie", 3)))
	_, err := repo.SoftDelete(ctx, "C", epoch)
	require.NoError(t, err)

	got, err := repo.FindByStockCodes(ctx, []string{"B", "C", "A", "Z"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].StockCode)
	assert.Equal(t, "B", got[1].StockCode)

	empty, err := repo.FindByStockCodes(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	all, total, err := repo.FindAll(ctx, &dto.ProductFilters{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, all, 2)
}
