package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/xero_import_app/internal/core/coding"
	"github.com/SscSPs/xero_import_app/internal/core/domain"
	"github.com/SscSPs/xero_import_app/internal/core/ports/gateways"
	portsrepo "github.com/SscSPs/xero_import_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/xero_import_app/internal/core/ports/services"
)

type codingService struct {
	BaseService
	txnRepo    portsrepo.StagedTransactionRepositoryFacade
	authorizer portssvc.CredentialAuthorizerSvc
	accounting gateways.AccountingGateway
	engine     *coding.Engine
}

// NewCodingService creates the bulk coding service. authorizer and accounting
// may be nil, in which case rule labels are used as account names.
func NewCodingService(
	txnRepo portsrepo.StagedTransactionRepositoryFacade,
	engine *coding.Engine,
	authorizer portssvc.CredentialAuthorizerSvc,
	accounting gateways.AccountingGateway,
) portssvc.CodingSvcFacade {
	return &codingService{
		txnRepo:    txnRepo,
		authorizer: authorizer,
		accounting: accounting,
		engine:     engine,
	}
}

var _ portssvc.CodingSvcFacade = (*codingService)(nil)

func (s *codingService) ApplyCoding(ctx context.Context, companyID int64) (domain.BatchResult, error) {
	result := domain.NewBatchResult()

	pending, err := s.txnRepo.FindByStatus(ctx, companyID, domain.StatusPending)
	if err != nil {
		return result, fmt.Errorf("failed to load pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return result, nil
	}

	accounts := s.codingAccounts(ctx, companyID)

	for _, txn := range pending {
		suggestion, ok := s.engine.Suggest(txn, accounts)
		if !ok {
			result.Unchanged++
			continue
		}

		code, name, status := suggestion.AccountCode, suggestion.AccountName, suggestion.Status
		patch := domain.TransactionPatch{AccountName: &name, Status: &status}
		if code != "" {
			patch.AccountCode = &code
		}
		if _, err := s.txnRepo.Update(ctx, companyID, txn.ID, patch); err != nil {
			s.LogError(ctx, err, "Failed to save coding suggestion", slog.Int64("transaction_id", txn.ID))
			result.AddFailure(txn.ID, err)
			continue
		}
		result.AddSuccess(domain.ItemOutcome{TransactionID: txn.ID, Status: status, AccountCode: code})
	}

	s.LogInfo(ctx, "Applied coding rules",
		slog.Int("coded", len(result.Succeeded)),
		slog.Int("failed", len(result.Failed)),
		slog.Int("unchanged", result.Unchanged))
	return result, nil
}

// codingAccounts fetches the chart of accounts for name lookup. Any failure
// is logged and coding proceeds with the rule labels.
func (s *codingService) codingAccounts(ctx context.Context, companyID int64) []domain.LedgerAccount {
	if s.authorizer == nil || s.accounting == nil {
		return nil
	}
	auth, err := s.authorizer.Authorize(ctx, companyID)
	if err != nil {
		s.LogWarn(ctx, err, "Xero unavailable for coding, using rule labels")
		return nil
	}
	accounts, err := s.accounting.ListAccounts(ctx, auth)
	if err != nil {
		s.LogWarn(ctx, err, "Failed to fetch Xero accounts, using rule labels")
		return nil
	}
	return domain.FilterCodingAccounts(accounts)
}
