package handler

import (
	"math"
	"net/http"

	"github.com/fekuna/omnipos-stock-service/internal/auth"
	invdto "github.com/fekuna/omnipos-stock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-stock-service/internal/product"
	"github.com/fekuna/omnipos-stock-service/internal/product/dto"
	"github.com/fekuna/omnipos-stock-service/pkg/apperror"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/fekuna/omnipos-stock-service/pkg/response"
	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	uc     product.UseCase
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ProductHandler) Register(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	products.POST("", h.CreateProduct)
	products.GET("", h.ListProducts)
	products.GET("/search", h.SearchProducts)
	products.GET("/:stock_code", h.GetProduct)
	products.PUT("/:stock_code", h.UpdateProduct)
	products.DELETE("/:stock_code", auth.RequireRole(auth.RoleAdmin), h.DeleteProduct)
}

type createProductRequest struct {
	StockCode       string   `json:"stock_code"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Unit            string   `json:"unit"`
	InitialQuantity float64  `json:"initial_quantity"`
	MinStockLevel   *float64 `json:"min_stock_level"`
}

type updateProductRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Unit          string   `json:"unit"`
	MinStockLevel *float64 `json:"min_stock_level"`
}

func whole(field string, v float64) (int, *apperror.ValidationError) {
	if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, apperror.InvalidInput(field, "quantity_not_integer")
	}
	return int(v), nil
}

func wholePtr(field string, v *float64) (*int, *apperror.ValidationError) {
	if v == nil {
		return nil, nil
	}
	n, ve := whole(field, *v)
	if ve != nil {
		return nil, ve
	}
	return &n, nil
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, h.logger, apperror.InvalidInput("body", "invalid_input"))
		return
	}
	initial, ve := whole("initial_quantity", req.InitialQuantity)
	if ve != nil {
		response.Error(c, h.logger, ve)
		return
	}
	minLevel, ve := wholePtr("min_stock_level", req.MinStockLevel)
	if ve != nil {
		response.Error(c, h.logger, ve)
		return
	}

	result, err := h.uc.CreateProduct(c.Request.Context(), &dto.CreateProductInput{
		StockCode:       req.StockCode,
		Name:            req.Name,
		Description:     req.Description,
		Unit:            req.Unit,
		InitialQuantity: initial,
		MinStockLevel:   minLevel,
	}, auth.ActorFromContext(c.Request.Context()))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusCreated, gin.H{
		"product":  result.Product,
		"warnings": response.Warnings(c, invdto.WarningCodes(result.Warnings)...),
	})
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	p, err := h.uc.GetProduct(c.Request.Context(), c.Param("stock_code"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"product": p})
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	page, pageSize := response.Page(c)
	filters := &dto.ProductFilters{
		LowStock:  c.Query("low_stock") == "true",
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Page:      page,
		PageSize:  pageSize,
	}

	products, total, err := h.uc.ListProducts(c.Request.Context(), filters)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{
		"results":   products,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, h.logger, apperror.InvalidInput("body", "invalid_input"))
		return
	}
	minLevel, ve := wholePtr("min_stock_level", req.MinStockLevel)
	if ve != nil {
		response.Error(c, h.logger, ve)
		return
	}

	result, err := h.uc.UpdateProduct(c.Request.Context(), &dto.UpdateProductInput{
		StockCode:     c.Param("stock_code"),
		Name:          req.Name,
		Description:   req.Description,
		Unit:          req.Unit,
		MinStockLevel: minLevel,
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{
		"product":  result.Product,
		"warnings": response.Warnings(c, invdto.WarningCodes(result.Warnings)...),
	})
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.uc.DeleteProduct(c.Request.Context(), c.Param("stock_code")); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, nil)
}

func (h *ProductHandler) SearchProducts(c *gin.Context) {
	results, err := h.uc.SearchProducts(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"results": results})
}
