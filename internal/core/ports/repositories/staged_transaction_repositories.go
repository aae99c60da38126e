package repositories

import (
	"context"

	"github.com/SscSPs/xero_import_app/internal/core/domain"
)

// StagedTransactionReader defines read operations for staged import rows.
// Every call is scoped to a company.
type StagedTransactionReader interface {
	// FindByID retrieves one row. Returns apperrors.ErrNotFound when absent.
	FindByID(ctx context.Context, companyID, id int64) (*domain.StagedTransaction, error)

	// FindByIDs retrieves the given rows, silently skipping ids that do not exist.
	FindByIDs(ctx context.Context, companyID int64, ids []int64) ([]domain.StagedTransaction, error)

	// FindByStatus retrieves every row in the given status, oldest first.
	FindByStatus(ctx context.Context, companyID int64, status domain.TransactionStatus) ([]domain.StagedTransaction, error)

	// List retrieves rows ordered by date desc, id desc. The returned token is
	// non-empty when another page exists.
	List(ctx context.Context, companyID int64, filter domain.TransactionFilter) ([]domain.StagedTransaction, string, error)
}

// StagedTransactionWriter defines write operations for staged import rows.
type StagedTransactionWriter interface {
	// CreateManyIfAbsent inserts each txn unless a row with the same dedupe key
	// exists, all in one database transaction. It returns how many rows were
	// inserted and fills ID on each inserted txn.
	CreateManyIfAbsent(ctx context.Context, txns []*domain.StagedTransaction) (int, error)

	// Update applies patch to one row and returns the updated row.
	Update(ctx context.Context, companyID, id int64, patch domain.TransactionPatch) (*domain.StagedTransaction, error)

	// UpdateMany applies patch to every listed row and returns the number changed.
	UpdateMany(ctx context.Context, companyID int64, ids []int64, patch domain.TransactionPatch) (int64, error)

	// MarkPushed sets status pushed and records the Xero bank transaction id.
	MarkPushed(ctx context.Context, companyID, id int64, xeroTransactionID string) error

	// Delete removes one row. Returns apperrors.ErrNotFound when absent.
	Delete(ctx context.Context, companyID, id int64) error

	// DeleteAll removes every row for the company and returns the count.
	DeleteAll(ctx context.Context, companyID int64) (int64, error)
}

// StagedTransactionRepositoryFacade combines the reader and writer.
type StagedTransactionRepositoryFacade interface {
	StagedTransactionReader
	StagedTransactionWriter
}
