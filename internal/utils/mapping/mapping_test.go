package mapping

import (
	"testing"
	"time"

	"github.com/SscSPs/xero_import_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestStagedTransactionMapping(t *testing.T) {
	spent := decimal.RequireFromString("45.50")
	code := "461"
	d := domain.StagedTransaction{
		ID:                9,
		CompanyID:         2,
		BankAccountName:   "Business",
		BankAccountNumber: "12-3456",
		Date:              time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		Payee:             "OPENAI",
		Spent:             &spent,
		Status:            domain.StatusCoded,
		AccountCode:       &code,
	}

	m := ToModelStagedTransaction(d)
	assert.Equal(t, "coded", m.Status)
	assert.Equal(t, d.Date, m.TxnDate)
	assert.Equal(t, d, ToDomainStagedTransaction(m))
	assert.Len(t, ToDomainStagedTransactionSlice(nil), 0)
}
