package model

import "time"

type AlertStatus string

const (
	AlertStatusActive       AlertStatus = "active"
	AlertStatusAcknowledged AlertStatus = "acknowledged" // Reserved
	AlertStatusResolved     AlertStatus = "resolved"
)

const (
	AlertNoteMinimumRemoved = "minimum removed/zeroed"
	AlertNoteStockRestored  = "stock restored above minimum"
	AlertNoteProductDeleted = "product deleted"
)

// LowStockAlert rows are never deleted. A resolved row stays resolved; a later
// breach opens a new row.
type LowStockAlert struct {
	ID                   string      `db:"id" json:"id"`
	ProductStockCode     string      `db:"product_stock_code" json:"product_stock_code"`
	CurrentStockAtAlert  int         `db:"current_stock_at_alert" json:"current_stock_at_alert"`
	MinStockLevelAtAlert int         `db:"min_stock_level_at_alert" json:"min_stock_level_at_alert"`
	Status               AlertStatus `db:"status" json:"status"`
	TriggeredAt          time.Time   `db:"triggered_at" json:"triggered_at"`
	ResolvedAt           *time.Time  `db:"resolved_at" json:"resolved_at"`
	Notes                string      `db:"notes" json:"notes"`
}

// ActiveAlertView is an active alert enriched with the product name.
type ActiveAlertView struct {
	LowStockAlert
	ProductName string `db:"product_name" json:"product_name"`
}
