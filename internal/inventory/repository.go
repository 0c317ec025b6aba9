package inventory

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
)

type Repository interface {
	// GetProduct returns nil, nil when the product is missing or soft-deleted.
	GetProduct(ctx context.Context, stockCode string) (*model.Product, error)

	// ApplyDelta adds delta to the quantity on hand in a single conditional
	// statement. ok is false, and nothing is written, when the product is gone
	// or the result would be negative.
	ApplyDelta(ctx context.Context, stockCode string, delta int, at time.Time) (newQuantity int, ok bool, err error)

	// Movements are append-only.
	LogMovement(ctx context.Context, movement *model.InventoryMovement) error
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)

	Summary(ctx context.Context) (*model.InventorySummary, error)
	FindDiscrepancies(ctx context.Context) ([]model.LedgerDiscrepancy, error)
}
