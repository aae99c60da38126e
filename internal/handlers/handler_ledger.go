package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	portssvc "github.com/SscSPs/xero_import_app/internal/core/ports/services"
	"github.com/SscSPs/xero_import_app/internal/dto"
	"github.com/SscSPs/xero_import_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler exposes read access to the Xero ledger and the reconcile helpers.
type ledgerHandler struct {
	ledgerService  portssvc.LedgerSvcFacade
	advisorService portssvc.AdvisorSvcFacade
}

func newLedgerHandler(ls portssvc.LedgerSvcFacade, as portssvc.AdvisorSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls, advisorService: as}
}

// registerLedgerRoutes registers the Xero accounting and reconcile routes.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, advisorService portssvc.AdvisorSvcFacade) {
	h := newLedgerHandler(ledgerService, advisorService)

	xero := rg.Group("/xero")
	{
		xero.GET("/accounts", h.listCodingAccounts)
		xero.GET("/bank-accounts", h.listBankAccounts)
		xero.GET("/bank-transactions", h.listBankTransactions)
		xero.POST("/bank-transactions/:transactionID/reconcile", h.reconcileTransaction)
		xero.GET("/reports/bank-summary", h.bankSummary)
	}

	rg.POST("/reconcile/suggestions", h.suggestMatch)
}

// listCodingAccounts godoc
// @Summary List Xero coding accounts
// @Description Returns active revenue and expense accounts usable for coding
// @Tags xero
// @Produce  json
// @Param   companyID path int true "Company ID"
// @Success 200 {array} domain.LedgerAccount
// @Failure 401 {object} map[string]interface{} "Reconnect required"
// @Failure 502 {object} map[string]string "Xero API error"
// @Router /companies/{companyID}/xero/accounts [get]
func (h *ledgerHandler) listCodingAccounts(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}

	accounts, err := h.ledgerService.ListCodingAccounts(c.Request.Context(), companyID)
	if err != nil {
		respondError(c, err, "Failed to list Xero accounts")
		return
	}
	c.JSON(http.StatusOK, accounts)
}

// listBankAccounts godoc
// @Summary List Xero bank accounts
// @Tags xero
// @Produce  json
// @Param   companyID path int true "Company ID"
// @Success 200 {array} domain.BankAccount
// @Failure 401 {object} map[string]interface{} "Reconnect required"
// @Failure 502 {object} map[string]string "Xero API error"
// @Router /companies/{companyID}/xero/bank-accounts [get]
func (h *ledgerHandler) listBankAccounts(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}

	accounts, err := h.ledgerService.ListBankAccounts(c.Request.Context(), companyID)
	if err != nil {
		respondError(c, err, "Failed to list Xero bank accounts")
		return
	}
	c.JSON(http.StatusOK, accounts)
}

// listBankTransactions godoc
// @Summary List Xero bank transactions
// @Description Unreconciled by default. includeAll adds reconciled rows and applies a six month window.
// @Tags xero
// @Produce  json
// @Param   companyID path int true "Company ID"
// @Param   bankAccountId query string false "Xero bank account ID"
// @Param   recent query bool false "Only the last six months"
// @Param   includeAll query bool false "Include reconciled transactions"
// @Success 200 {object} domain.BankTransactionList
// @Failure 400 {object} map[string]string "Invalid query"
// @Failure 401 {object} map[string]interface{} "Reconnect required"
// @Failure 502 {object} map[string]string "Xero API error"
// @Router /companies/{companyID}/xero/bank-transactions [get]
func (h *ledgerHandler) listBankTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}

	var q dto.BankTransactionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		logger.Warn("Failed to bind query for ListBankTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	list, err := h.ledgerService.ListBankTransactions(c.Request.Context(), companyID, q.ToDomain())
	if err != nil {
		respondError(c, err, "Failed to list Xero bank transactions")
		return
	}
	c.JSON(http.StatusOK, list)
}

// reconcileTransaction godoc
// @Summary Mark a Xero bank transaction reconciled
// @Tags xero
// @Produce  json
// @Param   companyID path int true "Company ID"
// @Param   transactionID path string true "Xero bank transaction ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{} "Reconnect required"
// @Failure 502 {object} map[string]string "Xero API error"
// @Router /companies/{companyID}/xero/bank-transactions/{transactionID}/reconcile [post]
func (h *ledgerHandler) reconcileTransaction(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}
	transactionID := strings.TrimSpace(c.Param("transactionID"))

	if err := h.ledgerService.ReconcileTransaction(c.Request.Context(), companyID, transactionID); err != nil {
		respondError(c, err, "Failed to reconcile transaction")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Bank transaction reconciled", slog.String("transaction_id", transactionID))
	c.JSON(http.StatusOK, gin.H{"success": true, "transactionId": transactionID})
}

// bankSummary godoc
// @Summary Xero bank summary report
// @Description Proxies the Xero BankSummary report for the last six months
// @Tags xero
// @Produce  json
// @Param   companyID path int true "Company ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{} "Reconnect required"
// @Failure 502 {object} map[string]string "Xero API error"
// @Router /companies/{companyID}/xero/reports/bank-summary [get]
func (h *ledgerHandler) bankSummary(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}

	report, err := h.ledgerService.BankSummary(c.Request.Context(), companyID)
	if err != nil {
		respondError(c, err, "Failed to fetch bank summary")
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", report)
}

// suggestMatch godoc
// @Summary Suggest a reconciliation match
// @Description Asks the LLM advisor which Xero transaction matches a bank statement line. Advisory only.
// @Tags reconcile
// @Accept  json
// @Produce  json
// @Param   companyID path int true "Company ID"
// @Param   request body dto.SuggestMatchRequest true "Bank line and candidate Xero transactions"
// @Success 200 {object} domain.ReconcileSuggestion
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 503 {object} map[string]string "Advisor not configured"
// @Router /companies/{companyID}/reconcile/suggestions [post]
func (h *ledgerHandler) suggestMatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.SuggestMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SuggestMatch", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	suggestion, err := h.advisorService.SuggestMatch(c.Request.Context(), req.BankLine.ToDomain(), req.Candidates)
	if err != nil {
		respondError(c, err, "Failed to get reconciliation suggestion")
		return
	}
	c.JSON(http.StatusOK, suggestion)
}
