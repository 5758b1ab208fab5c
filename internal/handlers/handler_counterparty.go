package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/bookkeeping_app/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_app/internal/dto"
	"github.com/SscSPs/bookkeeping_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// counterpartyHandler handles HTTP requests for counterparties and their ledgers.
type counterpartyHandler struct {
	counterpartyService portssvc.CounterpartySvcFacade
}

func newCounterpartyHandler(cs portssvc.CounterpartySvcFacade) *counterpartyHandler {
	return &counterpartyHandler{counterpartyService: cs}
}

// registerCounterpartyRoutes registers routes related to counterparties.
func registerCounterpartyRoutes(rg *gin.RouterGroup, cs portssvc.CounterpartySvcFacade) {
	h := newCounterpartyHandler(cs)

	counterparties := rg.Group("/counterparties")
	{
		counterparties.POST("", h.createCounterparty)
		counterparties.GET("", h.listCounterparties)
		counterparties.GET("/:id", h.getCounterparty)
		counterparties.PUT("/:id", h.updateCounterparty)
		counterparties.DELETE("/:id", h.deleteCounterparty)
		counterparties.POST("/:id/restore", h.restoreCounterparty)
		counterparties.GET("/:id/history", h.getCounterpartyHistory)

		counterparties.GET("/:id/ledger", h.listLedgerEntries)
		counterparties.POST("/:id/ledger", h.addLedgerEntry)
		counterparties.DELETE("/:id/ledger/:entryID", h.deleteLedgerEntry)
		counterparties.GET("/:id/balance", h.getBalance)
	}
}

// createCounterparty godoc
// @Summary Create a counterparty
// @Tags counterparties
// @Accept json
// @Produce json
// @Param counterparty body dto.CreateCounterpartyRequest true "Counterparty details"
// @Success 201 {object} dto.CounterpartyResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create counterparty"
// @Security BearerAuth
// @Router /counterparties [post]
func (h *counterpartyHandler) createCounterparty(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CreateCounterpartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	cp, err := h.counterpartyService.CreateCounterparty(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create counterparty")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Counterparty created", slog.String("counterparty_id", cp.ID))
	c.JSON(http.StatusCreated, dto.ToCounterpartyResponse(cp))
}

// listCounterparties godoc
// @Summary List counterparties
// @Tags counterparties
// @Produce json
// @Param includeDeleted query bool false "Include soft-deleted counterparties"
// @Success 200 {array} dto.CounterpartyResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /counterparties [get]
func (h *counterpartyHandler) listCounterparties(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindFailed(c, err)
		return
	}

	cps, err := h.counterpartyService.ListCounterparties(c.Request.Context(), userID, params.IncludeDeleted)
	if err != nil {
		respondError(c, err, "Failed to list counterparties")
		return
	}
	c.JSON(http.StatusOK, dto.ToListCounterpartyResponse(cps))
}

// getCounterparty godoc
// @Summary Get a counterparty
// @Tags counterparties
// @Produce json
// @Param id path string true "Counterparty ID"
// @Success 200 {object} dto.CounterpartyResponse
// @Failure 404 {object} map[string]string "Counterparty not found"
// @Security BearerAuth
// @Router /counterparties/{id} [get]
func (h *counterpartyHandler) getCounterparty(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	cp, err := h.counterpartyService.GetCounterparty(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve counterparty")
		return
	}
	c.JSON(http.StatusOK, dto.ToCounterpartyResponse(cp))
}

// updateCounterparty godoc
// @Summary Update a counterparty
// @Description Send the version from a previous read in If-Match to reject stale writes.
// @Tags counterparties
// @Accept json
// @Produce json
// @Param id path string true "Counterparty ID"
// @Param If-Match header int false "Expected version"
// @Param counterparty body dto.UpdateCounterpartyRequest true "Fields to change"
// @Success 200 {object} dto.CounterpartyResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Counterparty not found"
// @Failure 409 {object} map[string]string "Version conflict"
// @Security BearerAuth
// @Router /counterparties/{id} [put]
func (h *counterpartyHandler) updateCounterparty(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	version, ok := expectedVersion(c)
	if !ok {
		return
	}
	var req dto.UpdateCounterpartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	cp, err := h.counterpartyService.UpdateCounterparty(c.Request.Context(), c.Param("id"), req, version, userID)
	if err != nil {
		respondError(c, err, "Failed to update counterparty")
		return
	}
	c.JSON(http.StatusOK, dto.ToCounterpartyResponse(cp))
}

// deleteCounterparty godoc
// @Summary Soft-delete a counterparty
// @Tags counterparties
// @Produce json
// @Param id path string true "Counterparty ID"
// @Success 200 {object} dto.CounterpartyResponse
// @Failure 400 {object} map[string]string "Already deleted"
// @Failure 404 {object} map[string]string "Counterparty not found"
// @Security BearerAuth
// @Router /counterparties/{id} [delete]
func (h *counterpartyHandler) deleteCounterparty(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	cp, err := h.counterpartyService.DeleteCounterparty(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to delete counterparty")
		return
	}
	c.JSON(http.StatusOK, dto.ToCounterpartyResponse(cp))
}

// restoreCounterparty godoc
// @Summary Restore a soft-deleted counterparty
// @Tags counterparties
// @Produce json
// @Param id path string true "Counterparty ID"
// @Success 200 {object} dto.CounterpartyResponse
// @Failure 400 {object} map[string]string "Not deleted"
// @Failure 404 {object} map[string]string "Counterparty not found"
// @Security BearerAuth
// @Router /counterparties/{id}/restore [post]
func (h *counterpartyHandler) restoreCounterparty(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	cp, err := h.counterpartyService.RestoreCounterparty(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to restore counterparty")
		return
	}
	c.JSON(http.StatusOK, dto.ToCounterpartyResponse(cp))
}

// getCounterpartyHistory godoc
// @Summary Get the edit history of a counterparty
// @Tags counterparties
// @Produce json
// @Param id path string true "Counterparty ID"
// @Success 200 {object} dto.HistoryResponse
// @Failure 404 {object} map[string]string "Counterparty not found"
// @Security BearerAuth
// @Router /counterparties/{id}/history [get]
func (h *counterpartyHandler) getCounterpartyHistory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	records, err := h.counterpartyService.GetCounterpartyHistory(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve counterparty history")
		return
	}
	c.JSON(http.StatusOK, dto.ToHistoryResponse(id, records))
}

// listLedgerEntries godoc
// @Summary List ledger entries of a counterparty
// @Description Entries are returned in ledger order (date, then insertion) with their running balance.
// @Tags counterparties
// @Produce json
// @Param id path string true "Counterparty ID"
// @Param limit query int false "Page size" default(50)
// @Param nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListLedgerEntriesResponse
// @Failure 400 {object} map[string]string "Invalid paging parameters"
// @Failure 404 {object} map[string]string "Counterparty not found"
// @Security BearerAuth
// @Router /counterparties/{id}/ledger [get]
func (h *counterpartyHandler) listLedgerEntries(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var params dto.ListLedgerEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindFailed(c, err)
		return
	}

	entries, next, err := h.counterpartyService.ListLedgerEntries(c.Request.Context(), c.Param("id"), params, userID)
	if err != nil {
		respondError(c, err, "Failed to list ledger entries")
		return
	}
	c.JSON(http.StatusOK, dto.ListLedgerEntriesResponse{Entries: entries, NextToken: next})
}

// addLedgerEntry godoc
// @Summary Add a ledger entry
// @Description DEBIT means the counterparty owes more, CREDIT less. Later entries are rebalanced.
// @Tags counterparties
// @Accept json
// @Produce json
// @Param id path string true "Counterparty ID"
// @Param entry body dto.CreateLedgerEntryRequest true "Entry details"
// @Success 201 {object} domain.LedgerEntry
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Counterparty not found"
// @Security BearerAuth
// @Router /counterparties/{id}/ledger [post]
func (h *counterpartyHandler) addLedgerEntry(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CreateLedgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	entry, err := h.counterpartyService.AddLedgerEntry(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to add ledger entry")
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// deleteLedgerEntry godoc
// @Summary Remove a ledger entry
// @Tags counterparties
// @Param id path string true "Counterparty ID"
// @Param entryID path string true "Entry ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Entry belongs to a settlement transaction"
// @Failure 404 {object} map[string]string "Entry not found"
// @Security BearerAuth
// @Router /counterparties/{id}/ledger/{entryID} [delete]
func (h *counterpartyHandler) deleteLedgerEntry(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.counterpartyService.DeleteLedgerEntry(c.Request.Context(), c.Param("id"), c.Param("entryID"), userID); err != nil {
		respondError(c, err, "Failed to delete ledger entry")
		return
	}
	c.Status(http.StatusNoContent)
}

// getBalance godoc
// @Summary Get the net balance of a counterparty
// @Tags counterparties
// @Produce json
// @Param id path string true "Counterparty ID"
// @Success 200 {object} dto.CounterpartyBalanceResponse
// @Failure 404 {object} map[string]string "Counterparty not found"
// @Security BearerAuth
// @Router /counterparties/{id}/balance [get]
func (h *counterpartyHandler) getBalance(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	balance, err := h.counterpartyService.GetBalance(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to compute balance")
		return
	}
	c.JSON(http.StatusOK, dto.ToCounterpartyBalanceResponse(*balance))
}
