package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/bookkeeping_app/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_app/internal/dto"
	"github.com/SscSPs/bookkeeping_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

type invoiceHandler struct {
	invoiceService portssvc.InvoiceSvcFacade
}

func newInvoiceHandler(is portssvc.InvoiceSvcFacade) *invoiceHandler {
	return &invoiceHandler{invoiceService: is}
}

// registerInvoiceRoutes registers routes related to invoices.
func registerInvoiceRoutes(rg *gin.RouterGroup, is portssvc.InvoiceSvcFacade) {
	h := newInvoiceHandler(is)

	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.createInvoice)
		invoices.GET("", h.listInvoices)
		invoices.POST("/totals", h.computeTotals)
		invoices.GET("/:id", h.getInvoice)
		invoices.PUT("/:id", h.updateInvoice)
		invoices.DELETE("/:id", h.deleteInvoice)
		invoices.POST("/:id/restore", h.restoreInvoice)
		invoices.GET("/:id/history", h.getInvoiceHistory)
		invoices.POST("/:id/payments", h.recordPayment)
		invoices.POST("/:id/cancel", h.cancelInvoice)
		invoices.GET("/:id/status", h.getInvoiceStatus)
	}
}

// createInvoice godoc
// @Summary Create an invoice
// @Description Prices the lines and stores the invoice. initialStatus PAID settles it in full.
// @Tags invoices
// @Accept json
// @Produce json
// @Param invoice body dto.CreateInvoiceRequest true "Invoice details"
// @Success 201 {object} dto.InvoiceResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 422 {object} map[string]string "Opening payment exceeds the total"
// @Security BearerAuth
// @Router /invoices [post]
func (h *invoiceHandler) createInvoice(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	inv, err := h.invoiceService.CreateInvoice(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create invoice")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Invoice created",
		slog.String("invoice_id", inv.ID), slog.String("total", inv.State.TotalAmount.String()))
	c.JSON(http.StatusCreated, dto.ToInvoiceResponse(inv, now()))
}

// listInvoices godoc
// @Summary List invoices
// @Tags invoices
// @Produce json
// @Param kind query string false "SALES or PURCHASE"
// @Param status query string false "Derived status filter"
// @Param counterpartyRef query string false "Counterparty ID"
// @Param includeDeleted query bool false "Include soft-deleted invoices"
// @Param asOf query string false "Status date (YYYY-MM-DD), default today"
// @Success 200 {array} dto.InvoiceResponse
// @Failure 400 {object} map[string]string "Invalid filter"
// @Security BearerAuth
// @Router /invoices [get]
func (h *invoiceHandler) listInvoices(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var params dto.ListInvoicesParams
	var at dto.AsOfParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindFailed(c, err)
		return
	}
	if err := c.ShouldBindQuery(&at); err != nil {
		bindFailed(c, err)
		return
	}
	asOf := asOfOrNow(at.AsOf)

	invs, err := h.invoiceService.ListInvoices(c.Request.Context(), params, asOf, userID)
	if err != nil {
		respondError(c, err, "Failed to list invoices")
		return
	}
	c.JSON(http.StatusOK, dto.ToListInvoiceResponse(invs, asOf))
}

// computeTotals godoc
// @Summary Price invoice lines without storing them
// @Tags invoices
// @Accept json
// @Produce json
// @Param lines body dto.ComputeTotalsRequest true "Lines and adjustments"
// @Success 200 {object} domain.InvoiceTotals
// @Failure 400 {object} map[string]string "Invalid input"
// @Security BearerAuth
// @Router /invoices/totals [post]
func (h *invoiceHandler) computeTotals(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}
	var req dto.ComputeTotalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	totals, err := h.invoiceService.ComputeTotals(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to compute totals")
		return
	}
	c.JSON(http.StatusOK, totals)
}

// getInvoice godoc
// @Summary Get an invoice
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} map[string]string "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id} [get]
func (h *invoiceHandler) getInvoice(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	inv, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve invoice")
		return
	}
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(inv, now()))
}

// updateInvoice godoc
// @Summary Update an invoice
// @Description Replaces lines, adjustments, due date and notes. Payments are kept and totals recomputed.
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param If-Match header int false "Expected version"
// @Param invoice body dto.UpdateInvoiceRequest true "Invoice fields"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 409 {object} map[string]string "Version conflict"
// @Security BearerAuth
// @Router /invoices/{id} [put]
func (h *invoiceHandler) updateInvoice(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	version, ok := expectedVersion(c)
	if !ok {
		return
	}
	var req dto.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	inv, err := h.invoiceService.UpdateInvoice(c.Request.Context(), c.Param("id"), req, version, userID)
	if err != nil {
		respondError(c, err, "Failed to update invoice")
		return
	}
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(inv, now()))
}

// deleteInvoice godoc
// @Summary Soft-delete an invoice
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} map[string]string "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id} [delete]
func (h *invoiceHandler) deleteInvoice(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	inv, err := h.invoiceService.DeleteInvoice(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to delete invoice")
		return
	}
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(inv, now()))
}

// restoreInvoice godoc
// @Summary Restore a soft-deleted invoice
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} map[string]string "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id}/restore [post]
func (h *invoiceHandler) restoreInvoice(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	inv, err := h.invoiceService.RestoreInvoice(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to restore invoice")
		return
	}
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(inv, now()))
}

// getInvoiceHistory godoc
// @Summary Get the edit history of an invoice
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.HistoryResponse
// @Failure 404 {object} map[string]string "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id}/history [get]
func (h *invoiceHandler) getInvoiceHistory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	records, err := h.invoiceService.GetInvoiceHistory(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve invoice history")
		return
	}
	c.JSON(http.StatusOK, dto.ToHistoryResponse(id, records))
}

// recordPayment godoc
// @Summary Record a payment against an invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param payment body dto.PaymentRequest true "Payment details"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} map[string]string "Invalid payment or cancelled invoice"
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 422 {object} map[string]string "Payment exceeds the remaining balance"
// @Security BearerAuth
// @Router /invoices/{id}/payments [post]
func (h *invoiceHandler) recordPayment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	inv, err := h.invoiceService.RecordPayment(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to record payment")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Payment recorded",
		slog.String("invoice_id", inv.ID), slog.String("amount", req.Amount.String()))
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(inv, now()))
}

// cancelInvoice godoc
// @Summary Cancel an invoice
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} map[string]string "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id}/cancel [post]
func (h *invoiceHandler) cancelInvoice(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	inv, err := h.invoiceService.CancelInvoice(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to cancel invoice")
		return
	}
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(inv, now()))
}

// getInvoiceStatus godoc
// @Summary Derive the payment status of an invoice at a date
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Param asOf query string false "Status date (YYYY-MM-DD), default today"
// @Success 200 {object} dto.InvoiceStatusResponse
// @Failure 404 {object} map[string]string "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id}/status [get]
func (h *invoiceHandler) getInvoiceStatus(c *gin.Context) {
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
	id := c.Param("id")

	status, err := h.invoiceService.GetInvoiceStatus(c.Request.Context(), id, asOf, userID)
	if err != nil {
		respondError(c, err, "Failed to derive invoice status")
		return
	}
	c.JSON(http.StatusOK, dto.InvoiceStatusResponse{InvoiceID: id, AsOf: asOf, Status: status})
}
