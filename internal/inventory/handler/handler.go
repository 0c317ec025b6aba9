package handler

import (
	"math"
	"net/http"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/auth"
	"github.com/fekuna/omnipos-stock-service/internal/inventory"
	"github.com/fekuna/omnipos-stock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/pkg/apperror"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/fekuna/omnipos-stock-service/pkg/response"
	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *InventoryHandler) Register(rg *gin.RouterGroup) {
	inv := rg.Group("/inventory")
	inv.POST("/adjustments", h.AdjustStock)
	inv.POST("/movements", h.RecordMovement)
	inv.GET("/movements", h.ListMovements)
	inv.GET("/summary", h.GetSummary)
	inv.GET("/audit", auth.RequireRole(auth.RoleAdmin), h.AuditLedger)
}

// Quantities arrive as JSON numbers so fractional values can be rejected
// with a field error instead of a bind failure.
type adjustStockRequest struct {
	StockCode      string  `json:"stock_code"`
	QuantityChange float64 `json:"quantity_change"`
	Notes          string  `json:"notes"`
}

type recordMovementRequest struct {
	StockCode      string  `json:"stock_code"`
	MovementType   string  `json:"movement_type"`
	QuantityChange float64 `json:"quantity_change"`
	Notes          string  `json:"notes"`
	ReferenceID    string  `json:"reference_id"`
}

func wholeQuantity(v float64) (int, error) {
	if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, apperror.InvalidInput("quantity_change", "quantity_not_integer")
	}
	return int(v), nil
}

func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, h.logger, apperror.InvalidInput("body", "invalid_input"))
		return
	}
	change, err := wholeQuantity(req.QuantityChange)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	result, err := h.uc.AdjustStock(c.Request.Context(), &dto.AdjustStockInput{
		StockCode:      req.StockCode,
		QuantityChange: change,
		Notes:          req.Notes,
	}, auth.ActorFromContext(c.Request.Context()))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	h.writeResult(c, result)
}

func (h *InventoryHandler) RecordMovement(c *gin.Context) {
	var req recordMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, h.logger, apperror.InvalidInput("body", "invalid_input"))
		return
	}
	change, err := wholeQuantity(req.QuantityChange)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	result, err := h.uc.RecordMovement(c.Request.Context(), &dto.RecordMovementInput{
		StockCode:      req.StockCode,
		MovementType:   model.MovementType(req.MovementType),
		QuantityChange: change,
		Notes:          req.Notes,
		ReferenceID:    req.ReferenceID,
	}, auth.ActorFromContext(c.Request.Context()))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	h.writeResult(c, result)
}

func (h *InventoryHandler) writeResult(c *gin.Context, result *dto.AdjustStockResult) {
	response.OK(c, http.StatusOK, gin.H{
		"new_quantity": result.NewQuantity,
		"warnings":     response.Warnings(c, dto.WarningCodes(result.Warnings)...),
	})
}

func (h *InventoryHandler) ListMovements(c *gin.Context) {
	page, pageSize := response.Page(c)
	filters := &dto.MovementFilters{
		StockCode:    c.Query("stock_code"),
		MovementType: model.MovementType(c.Query("movement_type")),
		Page:         page,
		PageSize:     pageSize,
	}
	for param, dst := range map[string]**time.Time{"from": &filters.StartDate, "to": &filters.EndDate} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, h.logger, apperror.InvalidInput(param, "invalid_input"))
			return
		}
		*dst = &t
	}

	movements, total, err := h.uc.ListMovements(c.Request.Context(), filters)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{
		"results":   movements,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func (h *InventoryHandler) GetSummary(c *gin.Context) {
	summary, err := h.uc.GetSummary(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"summary": summary})
}

func (h *InventoryHandler) AuditLedger(c *gin.Context) {
	items, err := h.uc.AuditLedger(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"results": items})
}
