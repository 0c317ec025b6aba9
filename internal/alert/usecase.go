package alert

import (
	"context"

	"github.com/fekuna/omnipos-stock-service/internal/alert/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
)

type UseCase interface {
	// ReconcileProduct brings the product's alert rows in line with its stock.
	// Callers hold the product lock.
	ReconcileProduct(ctx context.Context, stockCode string, quantity int, minStockLevel *int) (*dto.Outcome, error)
	// ResolveProduct closes the product's active alert, if any, with note.
	// Callers hold the product lock.
	ResolveProduct(ctx context.Context, stockCode, note string) (*dto.Outcome, error)
	ListActiveAlerts(ctx context.Context) ([]model.ActiveAlertView, error)
	ListAlerts(ctx context.Context, filters *dto.AlertFilters) ([]model.LowStockAlert, int, error)
}
