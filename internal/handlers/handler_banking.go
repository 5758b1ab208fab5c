package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/bookkeeping_app/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_app/internal/dto"
	"github.com/SscSPs/bookkeeping_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

type bankingHandler struct {
	bankingService portssvc.BankingSvcFacade
}

// registerBankingRoutes registers bank account, transaction and statement routes.
func registerBankingRoutes(rg *gin.RouterGroup, bs portssvc.BankingSvcFacade) {
	h := &bankingHandler{bankingService: bs}

	accounts := rg.Group("/bank-accounts")
	{
		accounts.POST("", h.createBankAccount)
		accounts.GET("", h.listBankAccounts)
		accounts.GET("/:id", h.getBankAccount)
		accounts.PUT("/:id", h.updateBankAccount)
		accounts.DELETE("/:id", h.deleteBankAccount)
		accounts.POST("/:id/restore", h.restoreBankAccount)
	}

	transactions := rg.Group("/transactions")
	{
		transactions.POST("", h.createTransaction)
		transactions.GET("", h.listTransactions)
		transactions.GET("/:id", h.getTransaction)
		transactions.GET("/:id/history", h.getTransactionHistory)
		transactions.DELETE("/:id", h.deleteTransaction)
		transactions.POST("/:id/restore", h.restoreTransaction)
	}

	statements := rg.Group("/bank-statements")
	{
		statements.GET("", h.buildStatement)
		statements.GET("/opening-balance", h.openingBalance)
	}
}

// createBankAccount godoc
// @Summary Create a bank or cash account
// @Tags banking
// @Accept json
// @Produce json
// @Param account body dto.CreateBankAccountRequest true "Account details"
// @Success 201 {object} dto.BankAccountResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Security BearerAuth
// @Router /bank-accounts [post]
func (h *bankingHandler) createBankAccount(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CreateBankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	acct, err := h.bankingService.CreateBankAccount(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create bank account")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Bank account created", slog.String("bank_account_id", acct.ID))
	c.JSON(http.StatusCreated, dto.ToBankAccountResponse(acct))
}

// listBankAccounts godoc
// @Summary List bank accounts
// @Tags banking
// @Produce json
// @Param includeDeleted query bool false "Include soft-deleted accounts"
// @Success 200 {array} dto.BankAccountResponse
// @Security BearerAuth
// @Router /bank-accounts [get]
func (h *bankingHandler) listBankAccounts(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindFailed(c, err)
		return
	}

	accts, err := h.bankingService.ListBankAccounts(c.Request.Context(), userID, params.IncludeDeleted)
	if err != nil {
		respondError(c, err, "Failed to list bank accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ToListBankAccountResponse(accts))
}

// getBankAccount godoc
// @Summary Get a bank account
// @Tags banking
// @Produce json
// @Param id path string true "Bank account ID"
// @Success 200 {object} dto.BankAccountResponse
// @Failure 404 {object} map[string]string "Bank account not found"
// @Security BearerAuth
// @Router /bank-accounts/{id} [get]
func (h *bankingHandler) getBankAccount(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	acct, err := h.bankingService.GetBankAccount(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve bank account")
		return
	}
	c.JSON(http.StatusOK, dto.ToBankAccountResponse(acct))
}

// updateBankAccount godoc
// @Summary Update a bank account
// @Tags banking
// @Accept json
// @Produce json
// @Param id path string true "Bank account ID"
// @Param account body dto.UpdateBankAccountRequest true "Fields to change"
// @Success 200 {object} dto.BankAccountResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Bank account not found"
// @Security BearerAuth
// @Router /bank-accounts/{id} [put]
func (h *bankingHandler) updateBankAccount(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.UpdateBankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	acct, err := h.bankingService.UpdateBankAccount(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to update bank account")
		return
	}
	c.JSON(http.StatusOK, dto.ToBankAccountResponse(acct))
}

// deleteBankAccount godoc
// @Summary Soft-delete a bank account
// @Tags banking
// @Produce json
// @Param id path string true "Bank account ID"
// @Success 200 {object} dto.BankAccountResponse
// @Failure 404 {object} map[string]string "Bank account not found"
// @Security BearerAuth
// @Router /bank-accounts/{id} [delete]
func (h *bankingHandler) deleteBankAccount(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	acct, err := h.bankingService.DeleteBankAccount(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to delete bank account")
		return
	}
	c.JSON(http.StatusOK, dto.ToBankAccountResponse(acct))
}

// restoreBankAccount godoc
// @Summary Restore a soft-deleted bank account
// @Tags banking
// @Produce json
// @Param id path string true "Bank account ID"
// @Success 200 {object} dto.BankAccountResponse
// @Failure 404 {object} map[string]string "Bank account not found"
// @Security BearerAuth
// @Router /bank-accounts/{id}/restore [post]
func (h *bankingHandler) restoreBankAccount(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	acct, err := h.bankingService.RestoreBankAccount(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to restore bank account")
		return
	}
	c.JSON(http.StatusOK, dto.ToBankAccountResponse(acct))
}

// createTransaction godoc
// @Summary Record an income or expense
// @Description A DEBT_SETTLEMENT with a counterpartyRef also posts to that counterparty's ledger.
// @Tags banking
// @Accept json
// @Produce json
// @Param transaction body dto.CreateTransactionRequest true "Transaction details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Security BearerAuth
// @Router /transactions [post]
func (h *bankingHandler) createTransaction(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	txn, err := h.bankingService.CreateTransaction(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create transaction")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Transaction created",
		slog.String("transaction_id", txn.ID), slog.String("category", string(txn.State.Category)))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// listTransactions godoc
// @Summary List transactions
// @Tags banking
// @Produce json
// @Param bankAccountRef query string false "Bank account ID"
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Param includeDeleted query bool false "Include soft-deleted transactions"
// @Success 200 {array} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid filter"
// @Security BearerAuth
// @Router /transactions [get]
func (h *bankingHandler) listTransactions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindFailed(c, err)
		return
	}

	txns, err := h.bankingService.ListTransactions(c.Request.Context(), params, userID)
	if err != nil {
		respondError(c, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionResponse(txns))
}

// getTransaction godoc
// @Summary Get a transaction
// @Tags banking
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Security BearerAuth
// @Router /transactions/{id} [get]
func (h *bankingHandler) getTransaction(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	txn, err := h.bankingService.GetTransaction(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// getTransactionHistory godoc
// @Summary Get the edit history of a transaction
// @Tags banking
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} dto.HistoryResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Security BearerAuth
// @Router /transactions/{id}/history [get]
func (h *bankingHandler) getTransactionHistory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	records, err := h.bankingService.GetTransactionHistory(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve transaction history")
		return
	}
	c.JSON(http.StatusOK, dto.ToHistoryResponse(id, records))
}

// deleteTransaction godoc
// @Summary Soft-delete a transaction
// @Description Deleting a debt settlement also removes its counterparty ledger entry.
// @Tags banking
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Security BearerAuth
// @Router /transactions/{id} [delete]
func (h *bankingHandler) deleteTransaction(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	txn, err := h.bankingService.DeleteTransaction(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to delete transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// restoreTransaction godoc
// @Summary Restore a soft-deleted transaction
// @Tags banking
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Security BearerAuth
// @Router /transactions/{id}/restore [post]
func (h *bankingHandler) restoreTransaction(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	txn, err := h.bankingService.RestoreTransaction(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to restore transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// buildStatement godoc
// @Summary Build a bank statement
// @Description Lists movements within [from, to] with a running balance. Omit accountID for every account.
// @Tags banking
// @Produce json
// @Param accountID query []string false "Bank account IDs" collectionFormat(multi)
// @Param from query string true "First day (YYYY-MM-DD)"
// @Param to query string true "Last day (YYYY-MM-DD)"
// @Param includeTransactions query bool false "Include general transactions" default(true)
// @Param includeSalesPayments query bool false "Include sales invoice payments" default(true)
// @Param includePurchasePayments query bool false "Include purchase invoice payments" default(true)
// @Param includeDebtSettlements query bool false "Include debt settlements" default(true)
// @Success 200 {object} domain.BankStatement
// @Failure 400 {object} map[string]string "Invalid period"
// @Security BearerAuth
// @Router /bank-statements [get]
func (h *bankingHandler) buildStatement(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var params dto.StatementParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindFailed(c, err)
		return
	}

	stmt, err := h.bankingService.BuildStatement(c.Request.Context(), params, userID)
	if err != nil {
		respondError(c, err, "Failed to build statement")
		return
	}
	c.JSON(http.StatusOK, stmt)
}

// openingBalance godoc
// @Summary Get the opening balance of accounts at a date
// @Tags banking
// @Produce json
// @Param accountID query []string false "Bank account IDs" collectionFormat(multi)
// @Param asOf query string true "Day (YYYY-MM-DD)"
// @Success 200 {object} dto.OpeningBalanceResponse
// @Failure 400 {object} map[string]string "Invalid date"
// @Security BearerAuth
// @Router /bank-statements/opening-balance [get]
func (h *bankingHandler) openingBalance(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var params dto.OpeningBalanceParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindFailed(c, err)
		return
	}

	balance, err := h.bankingService.OpeningBalance(c.Request.Context(), params.AccountIDs, params.AsOf, userID)
	if err != nil {
		respondError(c, err, "Failed to compute opening balance")
		return
	}
	ids := params.AccountIDs
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, dto.OpeningBalanceResponse{AccountIDs: ids, AsOf: params.AsOf, OpeningBalance: balance})
}
