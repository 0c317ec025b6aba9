package model

import "time"

type Product struct {
	BaseModel
	StockCode      string     `db:"stock_code" json:"stock_code"`
	Name           string     `db:"name" json:"name"`
	Description    *string    `db:"description" json:"description"`
	Unit           string     `db:"unit" json:"unit"`
	QuantityOnHand int        `db:"quantity_on_hand" json:"quantity_on_hand"`
	MinStockLevel  *int       `db:"min_stock_level" json:"min_stock_level"` // Nil or 0 disables alerting
	DeletedAt      *time.Time `db:"deleted_at" json:"-"`
}

// AlertThreshold returns the minimum level that triggers alerts, or 0 when
// alerting is off for the product.
func (p *Product) AlertThreshold() int {
	if p.MinStockLevel == nil || *p.MinStockLevel < 0 {
		return 0
	}
	return *p.MinStockLevel
}

// BelowMinimum reports whether the product currently needs restocking.
func (p *Product) BelowMinimum() bool {
	threshold := p.AlertThreshold()
	return threshold > 0 && p.QuantityOnHand < threshold
}
