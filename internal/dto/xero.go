package dto

import (
	"github.com/SscSPs/xero_import_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BankTransactionsQuery holds the query string of the Xero bank transaction listing.
type BankTransactionsQuery struct {
	BankAccountID string `form:"bankAccountId"`
	Recent        bool   `form:"recent"`
	IncludeAll    bool   `form:"includeAll"`
}

// ToDomain converts the query into a gateway query.
func (q BankTransactionsQuery) ToDomain() domain.BankTransactionQuery {
	return domain.BankTransactionQuery{
		BankAccountID: q.BankAccountID,
		Recent:        q.Recent,
		IncludeAll:    q.IncludeAll,
	}
}

// SuggestMatchRequest asks the advisor to pick the Xero transaction matching a bank line.
type SuggestMatchRequest struct {
	BankLine   BankLineRequest          `json:"bankLine" binding:"required"`
	Candidates []domain.BankTransaction `json:"xeroTransactions" binding:"required,min=1"`
}

// BankLineRequest is the statement line being reconciled.
type BankLineRequest struct {
	Date        string          `json:"date" binding:"required,isodate"`
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Reference   string          `json:"reference"`
}

// ToDomain converts the bank line into the advisor prompt input.
func (b BankLineRequest) ToDomain() domain.StatementLinePrompt {
	return domain.StatementLinePrompt{
		Date:        b.Date,
		Description: b.Description,
		Amount:      b.Amount,
		Reference:   b.Reference,
	}
}
