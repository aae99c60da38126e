package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	portssvc "github.com/SscSPs/xero_import_app/internal/core/ports/services"
	"github.com/SscSPs/xero_import_app/internal/dto"
	"github.com/SscSPs/xero_import_app/internal/middleware"
	"github.com/SscSPs/xero_import_app/internal/utils"
	"github.com/gin-gonic/gin"
)

// maxStatementSize bounds a single statement upload.
const maxStatementSize = 10 << 20

// transactionHandler handles statement imports and the staged transaction lifecycle.
type transactionHandler struct {
	importService portssvc.ImportSvcFacade
	codingService portssvc.CodingSvcFacade
	ledgerService portssvc.LedgerWriterSvc
	posthog       *utils.PosthogClientWrapper
}

func newTransactionHandler(is portssvc.ImportSvcFacade, cs portssvc.CodingSvcFacade, ls portssvc.LedgerWriterSvc, ph *utils.PosthogClientWrapper) *transactionHandler {
	return &transactionHandler{importService: is, codingService: cs, ledgerService: ls, posthog: ph}
}

// registerTransactionRoutes registers the import and staged transaction routes.
func registerTransactionRoutes(
	rg *gin.RouterGroup,
	importService portssvc.ImportSvcFacade,
	codingService portssvc.CodingSvcFacade,
	ledgerService portssvc.LedgerWriterSvc,
	posthog *utils.PosthogClientWrapper,
) {
	h := newTransactionHandler(importService, codingService, ledgerService, posthog)

	rg.POST("/imports", h.importStatement)

	transactions := rg.Group("/transactions")
	{
		transactions.GET("", h.listTransactions)
		transactions.PATCH("", h.bulkUpdateTransactions)
		transactions.DELETE("", h.clearTransactions)
		transactions.PATCH("/:id", h.updateTransaction)
		transactions.DELETE("/:id", h.deleteTransaction)
		transactions.POST("/coding", h.applyCoding)
		transactions.POST("/push", h.pushTransactions)
	}
}

// importStatement godoc
// @Summary Import a bank statement
// @Description Parses a statement CSV export and stages every new line as pending. Duplicates of existing rows are skipped.
// @Tags imports
// @Accept  multipart/form-data
// @Produce  json
// @Param   companyID path int true "Company ID"
// @Param   file formData file true "Statement CSV"
// @Success 200 {object} dto.ImportResponse
// @Failure 400 {object} map[string]string "Missing or unreadable file"
// @Failure 500 {object} map[string]string "Failed to import statement"
// @Router /companies/{companyID}/imports [post]
func (h *transactionHandler) importStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxStatementSize)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		logger.Warn("Statement upload without file", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded statement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Uploaded file could not be read"})
		return
	}
	defer file.Close()

	logger = logger.With(slog.String("filename", fileHeader.Filename))
	logger.Info("Received statement upload", slog.Int64("size", fileHeader.Size))

	summary, err := h.importService.ImportStatement(c.Request.Context(), companyID, fileHeader.Filename, file)
	if err != nil {
		respondError(c, err, "Failed to import statement")
		return
	}

	middleware.PosthogEvent(c, h.posthog, "statement_imported", map[string]any{
		"parsed":     summary.Parsed,
		"saved":      summary.Saved,
		"duplicates": summary.Duplicates,
		"rejected":   summary.Rejected,
	})
	c.JSON(http.StatusOK, dto.ToImportResponse(summary))
}

// listTransactions godoc
// @Summary List staged transactions
// @Description Returns one page of staged rows, newest first
// @Tags transactions
// @Produce  json
// @Param   companyID path int true "Company ID"
// @Param   status query string false "Lifecycle status" Enums(pending, coded, skipped, pushed, payrun_created)
// @Param   filter query string false "Only rows whose payee or particulars look like wages" Enums(wage)
// @Param   limit query int false "Page size (max 500)"
// @Param   pageToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid query"
// @Failure 500 {object} map[string]string "Failed to list transactions"
// @Router /companies/{companyID}/transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}

	var q dto.ListTransactionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		logger.Warn("Failed to bind query for ListTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	txns, next, err := h.importService.ListTransactions(c.Request.Context(), companyID, q.ToDomain())
	if err != nil {
		respondError(c, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ListTransactionsResponse{Transactions: txns, NextPageToken: next})
}

// updateTransaction godoc
// @Summary Update a staged transaction
// @Description Sets the account code, account name or status of one row. An empty string clears code or name.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   companyID path int true "Company ID"
// @Param   id path int true "Staged transaction ID"
// @Param   patch body dto.UpdateTransactionRequest true "Fields to change"
// @Success 200 {object} domain.StagedTransaction
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to update transaction"
// @Router /companies/{companyID}/transactions/{id} [patch]
func (h *transactionHandler) updateTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}
	id, ok := transactionIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	txn, err := h.importService.UpdateTransaction(c.Request.Context(), companyID, id, req.ToDomain())
	if err != nil {
		respondError(c, err, "Failed to update transaction")
		return
	}
	c.JSON(http.StatusOK, txn)
}

// bulkUpdateTransactions godoc
// @Summary Update many staged transactions
// @Description Applies one patch to every listed row
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   companyID path int true "Company ID"
// @Param   patch body dto.BulkUpdateTransactionsRequest true "Row ids and fields to change"
// @Success 200 {object} dto.BulkUpdateResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to update transactions"
// @Router /companies/{companyID}/transactions [patch]
func (h *transactionHandler) bulkUpdateTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}

	var req dto.BulkUpdateTransactionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for BulkUpdateTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	updated, err := h.importService.BulkUpdateTransactions(c.Request.Context(), companyID, req.IDs, req.UpdateTransactionRequest.ToDomain())
	if err != nil {
		respondError(c, err, "Failed to update transactions")
		return
	}
	c.JSON(http.StatusOK, dto.BulkUpdateResponse{Updated: updated})
}

// deleteTransaction godoc
// @Summary Delete a staged transaction
// @Tags transactions
// @Param   companyID path int true "Company ID"
// @Param   id path int true "Staged transaction ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to delete transaction"
// @Router /companies/{companyID}/transactions/{id} [delete]
func (h *transactionHandler) deleteTransaction(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}
	id, ok := transactionIDParam(c)
	if !ok {
		return
	}

	if err := h.importService.DeleteTransaction(c.Request.Context(), companyID, id); err != nil {
		respondError(c, err, "Failed to delete transaction")
		return
	}
	c.Status(http.StatusNoContent)
}

// clearTransactions godoc
// @Summary Delete all staged transactions
// @Tags transactions
// @Produce  json
// @Param   companyID path int true "Company ID"
// @Success 200 {object} dto.DeleteResponse
// @Failure 500 {object} map[string]string "Failed to clear transactions"
// @Router /companies/{companyID}/transactions [delete]
func (h *transactionHandler) clearTransactions(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}

	deleted, err := h.importService.ClearTransactions(c.Request.Context(), companyID)
	if err != nil {
		respondError(c, err, "Failed to clear transactions")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Staged transactions cleared", slog.Int64("deleted", deleted))
	c.JSON(http.StatusOK, dto.DeleteResponse{Deleted: deleted})
}

// applyCoding godoc
// @Summary Apply coding rules
// @Description Runs the coding rules over every pending row
// @Tags transactions
// @Produce  json
// @Param   companyID path int true "Company ID"
// @Success 200 {object} dto.BatchResponse
// @Failure 500 {object} map[string]string "Failed to apply coding"
// @Router /companies/{companyID}/transactions/coding [post]
func (h *transactionHandler) applyCoding(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}

	result, err := h.codingService.ApplyCoding(c.Request.Context(), companyID)
	if err != nil {
		respondError(c, err, "Failed to apply coding")
		return
	}
	c.JSON(http.StatusOK, dto.BatchResponse{
		Message:     "Coded " + strconv.Itoa(len(result.Succeeded)) + " transactions",
		BatchResult: result,
	})
}

// pushTransactions godoc
// @Summary Push coded transactions to Xero
// @Description Creates a Xero bank transaction for each coded row. Without ids every coded row is pushed.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   companyID path int true "Company ID"
// @Param   request body dto.PushTransactionsRequest false "Rows to push"
// @Success 200 {object} dto.BatchResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]interface{} "Reconnect required"
// @Failure 500 {object} map[string]string "Failed to push transactions"
// @Router /companies/{companyID}/transactions/push [post]
func (h *transactionHandler) pushTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}

	var req dto.PushTransactionsRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for PushTransactions", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	result, err := h.ledgerService.PushTransactions(c.Request.Context(), companyID, req.TransactionIDs)
	if err != nil {
		respondError(c, err, "Failed to push transactions")
		return
	}

	middleware.PosthogEvent(c, h.posthog, "transactions_pushed", map[string]any{
		"pushed": len(result.Succeeded),
		"failed": len(result.Failed),
	})
	c.JSON(http.StatusOK, dto.BatchResponse{
		Message:     "Pushed " + strconv.Itoa(len(result.Succeeded)) + " transactions to Xero",
		BatchResult: result,
	})
}

func transactionIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction ID"})
		return 0, false
	}
	return id, true
}
