package dto

import (
	invdto "github.com/fekuna/omnipos-stock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
)

type CreateProductInput struct {
	StockCode       string
	Name            string
	Description     string
	Unit            string
	InitialQuantity int
	MinStockLevel   *int
}

// UpdateProductInput replaces the editable fields. Quantity is not editable
// here; it only moves through the ledger.
type UpdateProductInput struct {
	StockCode     string
	Name          string
	Description   string
	Unit          string
	MinStockLevel *int
}

// ProductResult carries warnings from follow-up steps that failed after the
// product row was written.
type ProductResult struct {
	Product  *model.Product   `json:"product"`
	Warnings []invdto.Warning `json:"warnings"`
}
