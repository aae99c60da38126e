package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle state of a staged import row.
type TransactionStatus string

const (
	StatusPending       TransactionStatus = "pending"
	StatusCoded         TransactionStatus = "coded"
	StatusSkipped       TransactionStatus = "skipped"
	StatusPushed        TransactionStatus = "pushed"
	StatusPayrunCreated TransactionStatus = "payrun_created"
)

// Valid reports whether s is one of the known lifecycle states.
func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCoded, StatusSkipped, StatusPushed, StatusPayrunCreated:
		return true
	}
	return false
}

// DateLayout is the ISO calendar date format used by statement exports.
const DateLayout = "2006-01-02"

// StatementLine is one bank transaction row as parsed from a statement CSV export.
// It is transient and carries the raw ISO date string.
type StatementLine struct {
	BankAccountName   string           `json:"bankAccount"`
	BankAccountNumber string           `json:"bankAccountNumber"`
	Date              string           `json:"date"`
	Payee             string           `json:"payee"`
	Particulars       string           `json:"particulars"`
	Spent             *decimal.Decimal `json:"spent"`
	Received          *decimal.Decimal `json:"received"`
	Tax               *string          `json:"tax"`
	Comments          *string          `json:"comments"`
}

// HasAmount reports whether at least one of spent/received is present.
func (l StatementLine) HasAmount() bool {
	return l.Spent != nil || l.Received != nil
}

// StagedTransaction is a persisted statement line awaiting coding and push to Xero.
type StagedTransaction struct {
	ID                int64             `json:"id"`
	CompanyID         int64             `json:"companyId"`
	BankAccountName   string            `json:"bankAccount"`
	BankAccountNumber string            `json:"bankAccountNumber"`
	Date              time.Time         `json:"date"`
	Payee             string            `json:"payee"`
	Particulars       string            `json:"particulars"`
	Spent             *decimal.Decimal  `json:"spent"`
	Received          *decimal.Decimal  `json:"received"`
	Tax               *string           `json:"tax"`
	Comments          *string           `json:"comments"`
	Status            TransactionStatus `json:"status"`
	AccountCode       *string           `json:"accountCode"`
	AccountName       *string           `json:"accountName"`
	XeroTransactionID *string           `json:"xeroTransactionId"`
	Timestamps
}

// NewStagedTransaction converts a parsed line into a pending row for the given company.
func NewStagedTransaction(companyID int64, line StatementLine, now time.Time) (StagedTransaction, error) {
	date, err := time.Parse(DateLayout, line.Date)
	if err != nil {
		return StagedTransaction{}, fmt.Errorf("invalid statement date %q: %w", line.Date, err)
	}
	return StagedTransaction{
		CompanyID:         companyID,
		BankAccountName:   line.BankAccountName,
		BankAccountNumber: line.BankAccountNumber,
		Date:              date,
		Payee:             line.Payee,
		Particulars:       line.Particulars,
		Spent:             line.Spent,
		Received:          line.Received,
		Tax:               line.Tax,
		Comments:          line.Comments,
		Status:            StatusPending,
		Timestamps:        Timestamps{CreatedAt: now, UpdatedAt: now},
	}, nil
}

// IsPushable reports whether the row can be sent to Xero as a bank transaction.
func (t StagedTransaction) IsPushable() bool {
	return t.Status == StatusCoded && t.AccountCode != nil && *t.AccountCode != ""
}

// TransactionPatch is an explicit partial update for a staged row.
// A nil field leaves the stored value untouched; a non-nil field overwrites it,
// including the empty string, which clears code or name.
type TransactionPatch struct {
	AccountCode *string
	AccountName *string
	Status      *TransactionStatus
}

// IsEmpty reports whether the patch changes nothing.
func (p TransactionPatch) IsEmpty() bool {
	return p.AccountCode == nil && p.AccountName == nil && p.Status == nil
}

// Validate rejects unknown statuses.
func (p TransactionPatch) Validate() error {
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("unknown status %q", *p.Status)
	}
	return nil
}

// Apply merges the patch into t.
func (p TransactionPatch) Apply(t *StagedTransaction) {
	if p.AccountCode != nil {
		code := *p.AccountCode
		t.AccountCode = &code
	}
	if p.AccountName != nil {
		name := *p.AccountName
		t.AccountName = &name
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
}

// TransactionFilter narrows a staged transaction listing.
type TransactionFilter struct {
	Status    *TransactionStatus
	WageOnly  bool
	Limit     int
	PageToken string
}

// DedupeKey identifies a statement line for duplicate detection within a company.
type DedupeKey struct {
	CompanyID         int64
	BankAccountNumber string
	Date              time.Time
	Payee             string
	Spent             *decimal.Decimal
	Received          *decimal.Decimal
}

// Key returns the dedupe key for t.
func (t StagedTransaction) Key() DedupeKey {
	return DedupeKey{
		CompanyID:         t.CompanyID,
		BankAccountNumber: t.BankAccountNumber,
		Date:              t.Date,
		Payee:             t.Payee,
		Spent:             t.Spent,
		Received:          t.Received,
	}
}

// ImportSummary reports the outcome of one statement upload.
type ImportSummary struct {
	Parsed     int    `json:"parsed"`
	Saved      int    `json:"saved"`
	Duplicates int    `json:"duplicates"`
	Rejected   int    `json:"rejected"`
	ArchiveKey string `json:"archiveKey,omitempty"`
}

// Message renders the summary the way the import screen shows it.
func (s ImportSummary) Message() string {
	return fmt.Sprintf("Parsed %d transactions, saved %d new records", s.Parsed, s.Saved)
}
