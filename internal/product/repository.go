package product

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/internal/product/dto"
)

type Repository interface {
	Create(ctx context.Context, product *model.Product) error
	// FindByStockCode returns nil, nil for missing or soft-deleted products.
	FindByStockCode(ctx context.Context, stockCode string) (*model.Product, error)
	// FindByStockCodes returns the live products among stockCodes, ordered by name.
	FindByStockCodes(ctx context.Context, stockCodes []string) ([]model.Product, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	Update(ctx context.Context, product *model.Product) error
	// SoftDelete reports false when there was no live product to delete.
	SoftDelete(ctx context.Context, stockCode string, at time.Time) (bool, error)

	// IsStockCodeTaken includes soft-deleted rows, which keep their code.
	IsStockCodeTaken(ctx context.Context, stockCode string) (bool, error)

	// Search matches name or stock code case-insensitively.
	Search(ctx context.Context, term string, limit int) ([]model.Product, error)
}
