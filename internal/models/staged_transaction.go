package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StagedTransaction is a row of the staged_transactions table.
type StagedTransaction struct {
	ID                int64            `db:"id"`
	CompanyID         int64            `db:"company_id"`
	BankAccountName   string           `db:"bank_account_name"`
	BankAccountNumber string           `db:"bank_account_number"`
	TxnDate           time.Time        `db:"txn_date"`
	Payee             string           `db:"payee"`
	Particulars       string           `db:"particulars"`
	Spent             *decimal.Decimal `db:"spent"`    // Nullable
	Received          *decimal.Decimal `db:"received"` // Nullable
	Tax               *string          `db:"tax"`
	Comments          *string          `db:"comments"`
	Status            string           `db:"status"`
	AccountCode       *string          `db:"account_code"`
	AccountName       *string          `db:"account_name"`
	XeroTransactionID *string          `db:"xero_transaction_id"`
	CreatedAt         time.Time        `db:"created_at"`
	UpdatedAt         time.Time        `db:"updated_at"`
}
