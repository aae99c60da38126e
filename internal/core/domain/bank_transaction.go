package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankTransactionType is the direction of a Xero bank transaction.
type BankTransactionType string

const (
	BankTransactionSpend   BankTransactionType = "SPEND"
	BankTransactionReceive BankTransactionType = "RECEIVE"
)

// BankTransactionDraft is what gets created in Xero for one pushed staged row.
type BankTransactionDraft struct {
	Type          BankTransactionType
	BankAccountID string
	Date          time.Time
	Amount        decimal.Decimal
	Description   string
	AccountCode   string
	ContactName   string
	Reference     string
}

// LineItem is one line of a Xero bank transaction.
type LineItem struct {
	Description string           `json:"description"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitAmount  decimal.Decimal  `json:"unitAmount"`
	LineAmount  decimal.Decimal  `json:"lineAmount"`
	AccountCode string           `json:"accountCode"`
	TaxType     string           `json:"taxType,omitempty"`
}

// Contact is the counterparty reference on a bank transaction.
type Contact struct {
	ContactID string `json:"contactId"`
	Name      string `json:"name"`
}

// BankAccountRef identifies the bank account a transaction belongs to.
type BankAccountRef struct {
	AccountID string `json:"accountId"`
	Name      string `json:"name"`
	Code      string `json:"code"`
}

// BankTransaction is a read-only view of a Xero bank transaction.
type BankTransaction struct {
	BankTransactionID string          `json:"transactionId"`
	Type              string          `json:"type"`
	Status            string          `json:"status"`
	Date              *time.Time      `json:"date"`
	Reference         string          `json:"reference"`
	IsReconciled      bool            `json:"isReconciled"`
	BankAccount       BankAccountRef  `json:"bankAccount"`
	Contact           *Contact        `json:"contact"`
	LineItems         []LineItem      `json:"lineItems"`
	SubTotal          decimal.Decimal `json:"subTotal"`
	TotalTax          decimal.Decimal `json:"totalTax"`
	Total             decimal.Decimal `json:"total"`
	CurrencyCode      string          `json:"currencyCode"`
}

// Description returns the first line item's description, or "".
func (t BankTransaction) Description() string {
	if len(t.LineItems) == 0 {
		return ""
	}
	return t.LineItems[0].Description
}

// BankTransactionQuery selects bank transactions from Xero.
type BankTransactionQuery struct {
	BankAccountID string
	// Recent restricts to the last six months.
	Recent bool
	// IncludeAll also returns reconciled transactions and always applies the six month window.
	IncludeAll bool
}

// UsesDateWindow reports whether the six month lower bound applies.
func (q BankTransactionQuery) UsesDateWindow() bool {
	return q.Recent || q.IncludeAll
}

// BankTransactionList wraps a listing with counts.
type BankTransactionList struct {
	Transactions      []BankTransaction `json:"transactions"`
	TotalCount        int               `json:"totalCount"`
	UnreconciledCount int               `json:"unreconciledCount"`
	IncludeAll        bool              `json:"includeAll"`
	DateFilter        string            `json:"dateFilter"`
}

// NewBankTransactionList computes the counts for txns.
func NewBankTransactionList(txns []BankTransaction, q BankTransactionQuery, since time.Time) BankTransactionList {
	if txns == nil {
		txns = []BankTransaction{}
	}
	unreconciled := 0
	for _, t := range txns {
		if !t.IsReconciled {
			unreconciled++
		}
	}
	return BankTransactionList{
		Transactions:      txns,
		TotalCount:        len(txns),
		UnreconciledCount: unreconciled,
		IncludeAll:        q.IncludeAll,
		DateFilter:        since.Format(DateLayout),
	}
}

// SixMonthsBefore is the lower date bound used for bank transaction and report queries.
func SixMonthsBefore(now time.Time) time.Time {
	return now.AddDate(0, -6, 0)
}
