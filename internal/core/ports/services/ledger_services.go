package services

import (
	"context"
	"encoding/json"

	"github.com/SscSPs/xero_import_app/internal/core/domain"
)

// LedgerReaderSvc reads accounting data from Xero.
type LedgerReaderSvc interface {
	ListCodingAccounts(ctx context.Context, companyID int64) ([]domain.LedgerAccount, error)
	ListBankAccounts(ctx context.Context, companyID int64) ([]domain.BankAccount, error)
	ListBankTransactions(ctx context.Context, companyID int64, q domain.BankTransactionQuery) (domain.BankTransactionList, error)
	BankSummary(ctx context.Context, companyID int64) (json.RawMessage, error)
}

// LedgerWriterSvc changes accounting data in Xero.
type LedgerWriterSvc interface {
	// PushTransactions creates coded staged rows in Xero. An empty ids list pushes every coded row.
	PushTransactions(ctx context.Context, companyID int64, ids []int64) (domain.BatchResult, error)
	ReconcileTransaction(ctx context.Context, companyID int64, transactionID string) error
}

// LedgerSvcFacade combines the ledger reader and writer.
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}
