package model

import "time"

type MovementType string

const (
	MovementInitialStock       MovementType = "initial_stock"
	MovementPurchaseReceived   MovementType = "purchase_received"
	MovementSale               MovementType = "sale"
	MovementCustomerReturn     MovementType = "customer_return"
	MovementSupplierReturn     MovementType = "supplier_return"
	MovementAdjustmentPositive MovementType = "adjustment_positive"
	MovementAdjustmentNegative MovementType = "adjustment_negative"
	MovementCountDiscrepancy   MovementType = "count_discrepancy"
	MovementOther              MovementType = "other"
)

var movementTypes = map[MovementType]int{
	MovementInitialStock:       1,
	MovementPurchaseReceived:   1,
	MovementSale:               -1,
	MovementCustomerReturn:     1,
	MovementSupplierReturn:     -1,
	MovementAdjustmentPositive: 1,
	MovementAdjustmentNegative: -1,
	MovementCountDiscrepancy:   0,
	MovementOther:              0,
}

func (t MovementType) Valid() bool {
	_, ok := movementTypes[t]
	return ok
}

// AllowsChange reports whether a signed change is compatible with the type.
// Types without a fixed direction accept either sign.
func (t MovementType) AllowsChange(change int) bool {
	switch movementTypes[t] {
	case 1:
		return change > 0
	case -1:
		return change < 0
	}
	return change != 0
}

// AdjustmentType picks the manual adjustment type for a signed change.
func AdjustmentType(change int) MovementType {
	if change > 0 {
		return MovementAdjustmentPositive
	}
	return MovementAdjustmentNegative
}

// InventoryMovement is an append-only ledger row: after this movement the
// product held QuantityAfter units.
type InventoryMovement struct {
	Seq              int64        `db:"seq" json:"-"` // Insertion order, assigned by the database
	ID               string       `db:"id" json:"id"`
	ProductStockCode string       `db:"product_stock_code" json:"product_stock_code"`
	MovementType     MovementType `db:"movement_type" json:"movement_type"`
	QuantityChange   int          `db:"quantity_change" json:"quantity_change"`
	QuantityAfter    int          `db:"quantity_after_movement" json:"quantity_after_movement"`
	Notes            string       `db:"notes" json:"notes"`
	ReferenceID      *string      `db:"reference_id" json:"reference_id"`
	CreatedBy        string       `db:"created_by" json:"created_by"`
	CreatedByEmail   string       `db:"created_by_email" json:"created_by_email"`
	CreatedAt        time.Time    `db:"created_at" json:"created_at"`
}

// InventorySummary holds the dashboard aggregates.
type InventorySummary struct {
	ProductCount int `db:"product_count" json:"product_count"`
	TotalUnits   int `db:"total_units" json:"total_units"`
	BelowMinimum int `db:"below_minimum" json:"below_minimum"`
	ActiveAlerts int `db:"active_alerts" json:"active_alerts"`
}

// LedgerDiscrepancy is a product whose quantity does not match its last
// movement snapshot, which happens when a movement insert failed after the
// quantity was written.
type LedgerDiscrepancy struct {
	StockCode            string `db:"stock_code" json:"stock_code"`
	QuantityOnHand       int    `db:"quantity_on_hand" json:"quantity_on_hand"`
	LastRecordedQuantity int    `db:"last_recorded_quantity" json:"last_recorded_quantity"`
}
