package inventory

import (
	"context"

	"github.com/fekuna/omnipos-stock-service/internal/auth"
	"github.com/fekuna/omnipos-stock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
)

type UseCase interface {
	// AdjustStock records a manual adjustment_positive/adjustment_negative movement.
	AdjustStock(ctx context.Context, input *dto.AdjustStockInput, actor *auth.Actor) (*dto.AdjustStockResult, error)
	RecordMovement(ctx context.Context, input *dto.RecordMovementInput, actor *auth.Actor) (*dto.AdjustStockResult, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)
	GetSummary(ctx context.Context) (*model.InventorySummary, error)
	AuditLedger(ctx context.Context) ([]model.LedgerDiscrepancy, error)
}

// Locker serializes writes to a single product across service instances.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

// LockKey is the lock guarding a product's quantity, minimum and alerts.
func LockKey(stockCode string) string {
	return "lock:product:" + stockCode
}
