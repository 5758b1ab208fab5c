package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/bookkeeping_app/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_app/internal/dto"
	"github.com/SscSPs/bookkeeping_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

type productHandler struct {
	stockService portssvc.StockSvcFacade
}

// registerProductRoutes registers routes related to products and stock.
func registerProductRoutes(rg *gin.RouterGroup, ss portssvc.StockSvcFacade) {
	h := &productHandler{stockService: ss}

	products := rg.Group("/products")
	{
		products.POST("", h.createProduct)
		products.GET("", h.listProducts)
		products.GET("/:id", h.getProduct)
		products.PUT("/:id", h.updateProduct)
		products.DELETE("/:id", h.deleteProduct)
		products.POST("/:id/restore", h.restoreProduct)
		products.GET("/:id/history", h.getProductHistory)
		products.POST("/:id/adjustments", h.adjustStock)
		products.GET("/:id/stock", h.getStockPosition)
	}
}

// createProduct godoc
// @Summary Create a product
// @Description A positive openingStock is recorded as the initial stock adjustment.
// @Tags products
// @Accept json
// @Produce json
// @Param product body dto.CreateProductRequest true "Product details"
// @Success 201 {object} dto.ProductResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Security BearerAuth
// @Router /products [post]
func (h *productHandler) createProduct(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	p, err := h.stockService.CreateProduct(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create product")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Product created", slog.String("product_id", p.ID))
	c.JSON(http.StatusCreated, dto.ToProductResponse(p))
}

// listProducts godoc
// @Summary List products
// @Tags products
// @Produce json
// @Param includeDeleted query bool false "Include soft-deleted products"
// @Success 200 {array} dto.ProductResponse
// @Security BearerAuth
// @Router /products [get]
func (h *productHandler) listProducts(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindFailed(c, err)
		return
	}

	ps, err := h.stockService.ListProducts(c.Request.Context(), userID, params.IncludeDeleted)
	if err != nil {
		respondError(c, err, "Failed to list products")
		return
	}
	c.JSON(http.StatusOK, dto.ToListProductResponse(ps))
}

// getProduct godoc
// @Summary Get a product with its adjustment log
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} dto.ProductResponse
// @Failure 404 {object} map[string]string "Product not found"
// @Security BearerAuth
// @Router /products/{id} [get]
func (h *productHandler) getProduct(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	p, err := h.stockService.GetProduct(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve product")
		return
	}
	c.JSON(http.StatusOK, dto.ToProductResponse(p))
}

// updateProduct godoc
// @Summary Update the descriptive fields of a product
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param product body dto.UpdateProductRequest true "Product fields"
// @Success 200 {object} dto.ProductResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Product not found"
// @Security BearerAuth
// @Router /products/{id} [put]
func (h *productHandler) updateProduct(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	p, err := h.stockService.UpdateProduct(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to update product")
		return
	}
	c.JSON(http.StatusOK, dto.ToProductResponse(p))
}

// deleteProduct godoc
// @Summary Soft-delete a product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} dto.ProductResponse
// @Failure 404 {object} map[string]string "Product not found"
// @Security BearerAuth
// @Router /products/{id} [delete]
func (h *productHandler) deleteProduct(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	p, err := h.stockService.DeleteProduct(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to delete product")
		return
	}
	c.JSON(http.StatusOK, dto.ToProductResponse(p))
}

// restoreProduct godoc
// @Summary Restore a soft-deleted product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} dto.ProductResponse
// @Failure 404 {object} map[string]string "Product not found"
// @Security BearerAuth
// @Router /products/{id}/restore [post]
func (h *productHandler) restoreProduct(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	p, err := h.stockService.RestoreProduct(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to restore product")
		return
	}
	c.JSON(http.StatusOK, dto.ToProductResponse(p))
}

// getProductHistory godoc
// @Summary Get the edit history of a product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} dto.HistoryResponse
// @Failure 404 {object} map[string]string "Product not found"
// @Security BearerAuth
// @Router /products/{id}/history [get]
func (h *productHandler) getProductHistory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	records, err := h.stockService.GetProductHistory(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve product history")
		return
	}
	c.JSON(http.StatusOK, dto.ToHistoryResponse(id, records))
}

// adjustStock godoc
// @Summary Record a stock adjustment
// @Description Backdated adjustments are inserted at their date and later levels recomputed.
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param adjustment body dto.StockAdjustmentRequest true "Adjustment"
// @Success 200 {object} dto.ProductResponse
// @Failure 400 {object} map[string]string "Invalid quantity for the adjustment type"
// @Failure 404 {object} map[string]string "Product not found"
// @Security BearerAuth
// @Router /products/{id}/adjustments [post]
func (h *productHandler) adjustStock(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.StockAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	p, err := h.stockService.AdjustStock(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to adjust stock")
		return
	}
	c.JSON(http.StatusOK, dto.ToProductResponse(p))
}

// getStockPosition godoc
// @Summary Get current, committed and available stock
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Param asOf query string false "Position date (YYYY-MM-DD), default today"
// @Success 200 {object} dto.StockPositionResponse
// @Failure 404 {object} map[string]string "Product not found"
// @Security BearerAuth
// @Router /products/{id}/stock [get]
func (h *productHandler) getStockPosition(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var at dto.AsOfParams
	if err := c.ShouldBindQuery(&at); err != nil {
		bindFailed(c, err)
		return
	}
	asOf := asOfOrNow(at.AsOf)

	pos, err := h.stockService.GetStockPosition(c.Request.Context(), c.Param("id"), asOf, userID)
	if err != nil {
		respondError(c, err, "Failed to compute stock position")
		return
	}
	c.JSON(http.StatusOK, dto.StockPositionResponse{StockPosition: *pos, AsOf: asOf})
}
