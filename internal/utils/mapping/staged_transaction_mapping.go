package mapping

import (
	"github.com/SscSPs/xero_import_app/internal/core/domain"
	"github.com/SscSPs/xero_import_app/internal/models"
)

// ToModelStagedTransaction converts a domain StagedTransaction to a model StagedTransaction
func ToModelStagedTransaction(d domain.StagedTransaction) models.StagedTransaction {
	return models.StagedTransaction{
		ID:                d.ID,
		CompanyID:         d.CompanyID,
		BankAccountName:   d.BankAccountName,
		BankAccountNumber: d.BankAccountNumber,
		TxnDate:           d.Date,
		Payee:             d.Payee,
		Particulars:       d.Particulars,
		Spent:             d.Spent,
		Received:          d.Received,
		Tax:               d.Tax,
		Comments:          d.Comments,
		Status:            string(d.Status),
		AccountCode:       d.AccountCode,
		AccountName:       d.AccountName,
		XeroTransactionID: d.XeroTransactionID,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

// ToDomainStagedTransaction converts a model StagedTransaction to a domain StagedTransaction
func ToDomainStagedTransaction(m models.StagedTransaction) domain.StagedTransaction {
	return domain.StagedTransaction{
		ID:                m.ID,
		CompanyID:         m.CompanyID,
		BankAccountName:   m.BankAccountName,
		BankAccountNumber: m.BankAccountNumber,
		Date:              m.TxnDate,
		Payee:             m.Payee,
		Particulars:       m.Particulars,
		Spent:             m.Spent,
		Received:          m.Received,
		Tax:               m.Tax,
		Comments:          m.Comments,
		Status:            domain.TransactionStatus(m.Status),
		AccountCode:       m.AccountCode,
		AccountName:       m.AccountName,
		XeroTransactionID: m.XeroTransactionID,
		Timestamps:        domain.Timestamps{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
	}
}

// ToDomainStagedTransactionSlice converts a slice of model rows to domain rows
func ToDomainStagedTransactionSlice(ms []models.StagedTransaction) []domain.StagedTransaction {
	ds := make([]domain.StagedTransaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainStagedTransaction(m)
	}
	return ds
}
