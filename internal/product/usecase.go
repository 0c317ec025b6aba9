package product

import (
	"context"

	"github.com/fekuna/omnipos-stock-service/internal/auth"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/internal/product/dto"
)

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.CreateProductInput, actor *auth.Actor) (*dto.ProductResult, error)
	GetProduct(ctx context.Context, stockCode string) (*model.Product, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*dto.ProductResult, error)
	DeleteProduct(ctx context.Context, stockCode string) error

	// SearchProducts returns at most ten live products whose name or stock
	// code contains term. Terms shorter than two characters match nothing.
	SearchProducts(ctx context.Context, term string) ([]model.Product, error)
}
