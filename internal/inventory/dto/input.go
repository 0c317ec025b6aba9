package dto

import "github.com/fekuna/omnipos-stock-service/internal/model"

// AdjustStockInput is a manual correction. The movement type follows the sign
// of QuantityChange.
type AdjustStockInput struct {
	StockCode      string
	QuantityChange int
	Notes          string
}

type RecordMovementInput struct {
	StockCode      string
	MovementType   model.MovementType
	QuantityChange int
	Notes          string
	ReferenceID    string // Order or purchase id, optional
}

const (
	WarningMovementNotRecorded       = "movement_not_recorded"
	WarningAlertReconciliationFailed = "alert_reconciliation_failed"
	// The product row exists but its opening stock was never written.
	WarningInitialStockNotApplied = "initial_stock_not_applied"
)

// Warning reports a secondary step that failed after the primary write.
type Warning struct {
	Code string `json:"code"`
}

func WarningCodes(ws []Warning) []string {
	codes := make([]string, len(ws))
	for i, w := range ws {
		codes[i] = w.Code
	}
	return codes
}

type AdjustStockResult struct {
	NewQuantity int                      `json:"new_quantity"`
	Warnings    []Warning                `json:"warnings"`
	Movement    *model.InventoryMovement `json:"movement,omitempty"`
}

// HasWarning reports whether code is among the result's warnings.
func (r *AdjustStockResult) HasWarning(code string) bool {
	for _, w := range r.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}
