package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/xero_import_app/internal/apperrors"
	"github.com/SscSPs/xero_import_app/internal/core/domain"
	"github.com/SscSPs/xero_import_app/internal/core/matching"
	"github.com/SscSPs/xero_import_app/internal/core/ports/gateways"
	portsrepo "github.com/SscSPs/xero_import_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/xero_import_app/internal/core/ports/services"
	"github.com/SscSPs/xero_import_app/internal/utils/accounting"
)

var errNotPushable = errors.New("transaction must be coded with an account code before it can be pushed")

type ledgerService struct {
	BaseService
	txnRepo    portsrepo.StagedTransactionRepositoryFacade
	authorizer portssvc.CredentialAuthorizerSvc
	accounting gateways.AccountingGateway
}

// LedgerServiceOption configures the ledger service
type LedgerServiceOption func(*ledgerService)

// WithLedgerClock overrides the clock used for the six month window.
func WithLedgerClock(now func() time.Time) LedgerServiceOption {
	return func(s *ledgerService) {
		s.now = now
	}
}

// NewLedgerService creates the service for Xero accounting reads and pushes.
func NewLedgerService(
	txnRepo portsrepo.StagedTransactionRepositoryFacade,
	authorizer portssvc.CredentialAuthorizerSvc,
	accounting gateways.AccountingGateway,
	options ...LedgerServiceOption,
) portssvc.LedgerSvcFacade {
	svc := &ledgerService{
		txnRepo:    txnRepo,
		authorizer: authorizer,
		accounting: accounting,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

func (s *ledgerService) ListCodingAccounts(ctx context.Context, companyID int64) ([]domain.LedgerAccount, error) {
	auth, err := s.authorizer.Authorize(ctx, companyID)
	if err != nil {
		return nil, err
	}
	accounts, err := s.accounting.ListAccounts(ctx, auth)
	if err != nil {
		return nil, err
	}
	return domain.FilterCodingAccounts(accounts), nil
}

func (s *ledgerService) ListBankAccounts(ctx context.Context, companyID int64) ([]domain.BankAccount, error) {
	auth, err := s.authorizer.Authorize(ctx, companyID)
	if err != nil {
		return nil, err
	}
	accounts, err := s.accounting.ListBankAccounts(ctx, auth)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []domain.BankAccount{}
	}
	return accounts, nil
}

func (s *ledgerService) ListBankTransactions(ctx context.Context, companyID int64, q domain.BankTransactionQuery) (domain.BankTransactionList, error) {
	auth, err := s.authorizer.Authorize(ctx, companyID)
	if err != nil {
		return domain.BankTransactionList{}, err
	}

	var since time.Time
	if q.UsesDateWindow() {
		since = domain.SixMonthsBefore(s.Now())
	}
	txns, err := s.accounting.ListBankTransactions(ctx, auth, q, since)
	if err != nil {
		return domain.BankTransactionList{}, err
	}
	list := domain.NewBankTransactionList(txns, q, since)
	if since.IsZero() {
		list.DateFilter = ""
	}
	return list, nil
}

func (s *ledgerService) BankSummary(ctx context.Context, companyID int64) (json.RawMessage, error) {
	auth, err := s.authorizer.Authorize(ctx, companyID)
	if err != nil {
		return nil, err
	}
	to := s.Now()
	return s.accounting.BankSummary(ctx, auth, domain.SixMonthsBefore(to), to)
}

func (s *ledgerService) ReconcileTransaction(ctx context.Context, companyID int64, transactionID string) error {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return apperrors.NewBadRequestError("transaction id is required")
	}
	auth, err := s.authorizer.Authorize(ctx, companyID)
	if err != nil {
		return err
	}
	if err := s.accounting.ReconcileBankTransaction(ctx, auth, transactionID); err != nil {
		s.LogError(ctx, err, "Failed to reconcile bank transaction", slog.String("xero_transaction_id", transactionID))
		return err
	}
	return nil
}

func (s *ledgerService) PushTransactions(ctx context.Context, companyID int64, ids []int64) (domain.BatchResult, error) {
	result := domain.NewBatchResult()

	txns, missing, err := s.loadForPush(ctx, companyID, ids)
	if err != nil {
		return result, err
	}
	for _, id := range missing {
		result.AddFailure(id, apperrors.ErrNotFound)
	}
	if len(txns) == 0 {
		return result, nil
	}

	auth, err := s.authorizer.Authorize(ctx, companyID)
	if err != nil {
		return result, err
	}
	bankAccounts, err := s.accounting.ListBankAccounts(ctx, auth)
	if err != nil {
		return result, fmt.Errorf("failed to fetch xero bank accounts: %w", err)
	}

	for _, txn := range txns {
		xeroID, err := s.pushOne(ctx, auth, txn, bankAccounts)
		if err != nil {
			s.LogWarn(ctx, err, "Failed to push transaction", slog.Int64("transaction_id", txn.ID))
			result.AddFailure(txn.ID, err)
			continue
		}
		result.AddSuccess(domain.ItemOutcome{TransactionID: txn.ID, Status: domain.StatusPushed, XeroID: xeroID})
	}

	s.LogInfo(ctx, "Pushed transactions to Xero",
		slog.Int("pushed", len(result.Succeeded)),
		slog.Int("failed", len(result.Failed)))
	return result, nil
}

// loadForPush returns the rows to push and any requested ids that do not exist.
func (s *ledgerService) loadForPush(ctx context.Context, companyID int64, ids []int64) ([]domain.StagedTransaction, []int64, error) {
	if len(ids) == 0 {
		txns, err := s.txnRepo.FindByStatus(ctx, companyID, domain.StatusCoded)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load coded transactions: %w", err)
		}
		return txns, nil, nil
	}

	txns, err := s.txnRepo.FindByIDs(ctx, companyID, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	found := make(map[int64]bool, len(txns))
	for _, t := range txns {
		found[t.ID] = true
	}
	var missing []int64
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return txns, missing, nil
}

func (s *ledgerService) pushOne(ctx context.Context, auth domain.XeroAuth, txn domain.StagedTransaction, bankAccounts []domain.BankAccount) (string, error) {
	if !txn.IsPushable() {
		return "", errNotPushable
	}
	bankAccountID, ok := matching.MatchBankAccount(txn.BankAccountNumber, bankAccounts)
	if !ok {
		return "", fmt.Errorf("%w for %q", apperrors.ErrUnmatchedBankAccount, txn.BankAccountNumber)
	}
	direction, amount, err := accounting.BankTransactionDirection(txn)
	if err != nil {
		return "", err
	}

	draft := domain.BankTransactionDraft{
		Type:          direction,
		BankAccountID: bankAccountID,
		Date:          txn.Date,
		Amount:        amount,
		Description:   txn.Payee + " - " + txn.Particulars,
		AccountCode:   *txn.AccountCode,
		ContactName:   txn.Payee,
		Reference:     txn.Particulars,
	}
	xeroID, err := s.accounting.CreateBankTransaction(ctx, auth, draft)
	if err != nil {
		return "", err
	}
	if err := s.txnRepo.MarkPushed(ctx, txn.CompanyID, txn.ID, xeroID); err != nil {
		// The Xero transaction exists; surface the id so it can be tidied by hand.
		return "", fmt.Errorf("created xero transaction %s but failed to mark row pushed: %w", xeroID, err)
	}
	return xeroID, nil
}
