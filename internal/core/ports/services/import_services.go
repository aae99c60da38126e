package services

import (
	"context"
	"io"

	"github.com/SscSPs/xero_import_app/internal/core/domain"
)

// ImportWriterSvc defines operations that create or change staged rows.
type ImportWriterSvc interface {
	// ImportStatement parses a statement export and stages every new line as pending.
	ImportStatement(ctx context.Context, companyID int64, filename string, r io.Reader) (domain.ImportSummary, error)

	UpdateTransaction(ctx context.Context, companyID, id int64, patch domain.TransactionPatch) (*domain.StagedTransaction, error)

	// BulkUpdateTransactions applies one patch to many rows and returns how many changed.
	BulkUpdateTransactions(ctx context.Context, companyID int64, ids []int64, patch domain.TransactionPatch) (int64, error)

	DeleteTransaction(ctx context.Context, companyID, id int64) error

	// ClearTransactions deletes every staged row of the company.
	ClearTransactions(ctx context.Context, companyID int64) (int64, error)
}

// ImportReaderSvc defines read operations over staged rows.
type ImportReaderSvc interface {
	// ListTransactions returns one page of rows and the token for the next page.
	ListTransactions(ctx context.Context, companyID int64, filter domain.TransactionFilter) ([]domain.StagedTransaction, string, error)
}

// ImportSvcFacade combines the import reader and writer.
type ImportSvcFacade interface {
	ImportReaderSvc
	ImportWriterSvc
}

// CodingSvcFacade runs the coding rules over pending rows.
type CodingSvcFacade interface {
	ApplyCoding(ctx context.Context, companyID int64) (domain.BatchResult, error)
}
