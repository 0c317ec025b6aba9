package dto

import "github.com/fekuna/omnipos-stock-service/internal/model"

type AlertFilters struct {
	StockCode string
	Status    model.AlertStatus
	Page      int
	PageSize  int
}

// Outcome reports what ReconcileProduct did. Alert is the created or resolved
// row, nil when nothing changed.
type Outcome struct {
	Action string               `json:"action"`
	Alert  *model.LowStockAlert `json:"alert,omitempty"`
}

// AlertEvent is published on every alert transition.
type AlertEvent struct {
	EventID   string              `json:"event_id"`
	EventType string              `json:"event_type"`
	Payload   model.LowStockAlert `json:"payload"`
	Timestamp string              `json:"timestamp"`
}

const (
	EventAlertRaised   = "LowStockAlertRaised"
	EventAlertResolved = "LowStockAlertResolved"
)
