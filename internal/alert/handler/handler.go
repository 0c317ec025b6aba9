package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-stock-service/internal/alert"
	"github.com/fekuna/omnipos-stock-service/internal/alert/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/fekuna/omnipos-stock-service/pkg/response"
	"github.com/gin-gonic/gin"
)

type AlertHandler struct {
	uc     alert.UseCase
	logger logger.ZapLogger
}

func NewAlertHandler(uc alert.UseCase, log logger.ZapLogger) *AlertHandler {
	return &AlertHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *AlertHandler) Register(rg *gin.RouterGroup) {
	alerts := rg.Group("/alerts")
	alerts.GET("/active", h.ListActiveAlerts)
	alerts.GET("", h.ListAlerts)
}

func (h *AlertHandler) ListActiveAlerts(c *gin.Context) {
	alerts, err := h.uc.ListActiveAlerts(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"results": alerts})
}

func (h *AlertHandler) ListAlerts(c *gin.Context) {
	page, pageSize := response.Page(c)
	filters := &dto.AlertFilters{
		StockCode: c.Query("stock_code"),
		Status:    model.AlertStatus(c.Query("status")),
		Page:      page,
		PageSize:  pageSize,
	}

	alerts, total, err := h.uc.ListAlerts(c.Request.Context(), filters)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{
		"results":   alerts,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
