package alert

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/alert/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
)

type Repository interface {
	// FindActiveByProduct returns nil, nil when the product has no active alert.
	FindActiveByProduct(ctx context.Context, stockCode string) (*model.LowStockAlert, error)
	Create(ctx context.Context, alert *model.LowStockAlert) error
	// Resolve moves an active alert to resolved. Resolved rows are left alone.
	Resolve(ctx context.Context, id string, resolvedAt time.Time, notes string) error

	ListActive(ctx context.Context) ([]model.ActiveAlertView, error)
	FindAll(ctx context.Context, filters *dto.AlertFilters) ([]model.LowStockAlert, int, error)
}
