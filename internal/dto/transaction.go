package dto

import (
	"github.com/SscSPs/xero_import_app/internal/core/domain"
)

// ListTransactionsQuery holds the query string of the staged transaction listing.
type ListTransactionsQuery struct {
	Status    string `form:"status" binding:"omitempty,txnstatus"`
	Filter    string `form:"filter" binding:"omitempty,oneof=wage"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=500"`
	PageToken string `form:"pageToken"`
}

// ToDomain converts the query into a repository filter.
func (q ListTransactionsQuery) ToDomain() domain.TransactionFilter {
	f := domain.TransactionFilter{
		WageOnly:  q.Filter == "wage",
		Limit:     q.Limit,
		PageToken: q.PageToken,
	}
	if q.Status != "" {
		s := domain.TransactionStatus(q.Status)
		f.Status = &s
	}
	return f
}

// ListTransactionsResponse is one page of staged rows.
type ListTransactionsResponse struct {
	Transactions  []domain.StagedTransaction `json:"transactions"`
	NextPageToken string                     `json:"nextPageToken,omitempty"`
}

// UpdateTransactionRequest is a partial update of one staged row.
// An empty string clears the account code or name.
type UpdateTransactionRequest struct {
	AccountCode *string `json:"accountCode"`
	AccountName *string `json:"accountName"`
	Status      *string `json:"status" binding:"omitempty,txnstatus"`
}

// ToDomain converts the request into a patch.
func (r UpdateTransactionRequest) ToDomain() domain.TransactionPatch {
	p := domain.TransactionPatch{AccountCode: r.AccountCode, AccountName: r.AccountName}
	if r.Status != nil {
		s := domain.TransactionStatus(*r.Status)
		p.Status = &s
	}
	return p
}

// BulkUpdateTransactionsRequest applies the same patch to several rows.
type BulkUpdateTransactionsRequest struct {
	IDs []int64 `json:"ids" binding:"required,min=1,dive,gt=0"`
	UpdateTransactionRequest
}

// BulkUpdateResponse reports how many rows changed.
type BulkUpdateResponse struct {
	Updated int64 `json:"updated"`
}

// DeleteResponse reports how many rows were removed.
type DeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

// PushTransactionsRequest selects rows to push. Empty means every coded row.
type PushTransactionsRequest struct {
	TransactionIDs []int64 `json:"transactionIds" binding:"omitempty,dive,gt=0"`
}

// ImportResponse reports the outcome of a statement upload.
type ImportResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	domain.ImportSummary
}

// ToImportResponse renders an import summary.
func ToImportResponse(s domain.ImportSummary) ImportResponse {
	return ImportResponse{Success: true, Message: s.Message(), ImportSummary: s}
}

// BatchResponse renders a bulk operation outcome.
type BatchResponse struct {
	Message string `json:"message"`
	domain.BatchResult
}
