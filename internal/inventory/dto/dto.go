package dto

import (
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/model"
)

type MovementFilters struct {
	StockCode    string
	MovementType model.MovementType
	StartDate    *time.Time
	EndDate      *time.Time
	Page         int
	PageSize     int
}
