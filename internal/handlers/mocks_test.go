package handlers_test

import (
	"context"
	"encoding/json"
	"io"

	"github.com/SscSPs/xero_import_app/internal/core/domain"
	portssvc "github.com/SscSPs/xero_import_app/internal/core/ports/services"
	"github.com/stretchr/testify/mock"
)

// --- Mock ImportService ---
type MockImportService struct {
	mock.Mock
}

func (m *MockImportService) ImportStatement(ctx context.Context, companyID int64, filename string, r io.Reader) (domain.ImportSummary, error) {
	// The body is read here so tests can assert on what was uploaded.
	raw, _ := io.ReadAll(r)
	args := m.Called(ctx, companyID, filename, string(raw))
	return args.Get(0).(domain.ImportSummary), args.Error(1)
}

func (m *MockImportService) UpdateTransaction(ctx context.Context, companyID, id int64, patch domain.TransactionPatch) (*domain.StagedTransaction, error) {
	args := m.Called(ctx, companyID, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StagedTransaction), args.Error(1)
}

func (m *MockImportService) BulkUpdateTransactions(ctx context.Context, companyID int64, ids []int64, patch domain.TransactionPatch) (int64, error) {
	args := m.Called(ctx, companyID, ids, patch)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockImportService) DeleteTransaction(ctx context.Context, companyID, id int64) error {
	args := m.Called(ctx, companyID, id)
	return args.Error(0)
}

func (m *MockImportService) ClearTransactions(ctx context.Context, companyID int64) (int64, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockImportService) ListTransactions(ctx context.Context, companyID int64, filter domain.TransactionFilter) ([]domain.StagedTransaction, string, error) {
	args := m.Called(ctx, companyID, filter)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]domain.StagedTransaction), args.String(1), args.Error(2)
}

var _ portssvc.ImportSvcFacade = (*MockImportService)(nil)

// --- Mock CodingService ---
type MockCodingService struct {
	mock.Mock
}

func (m *MockCodingService) ApplyCoding(ctx context.Context, companyID int64) (domain.BatchResult, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).(domain.BatchResult), args.Error(1)
}

var _ portssvc.CodingSvcFacade = (*MockCodingService)(nil)

// --- Mock CredentialService ---
type MockCredentialService struct {
	mock.Mock
}

func (m *MockCredentialService) Authorize(ctx context.Context, companyID int64) (domain.XeroAuth, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).(domain.XeroAuth), args.Error(1)
}

func (m *MockCredentialService) SaveClientCredentials(ctx context.Context, companyID int64, clientID, clientSecret, scope string) (*domain.OAuthCredential, error) {
	args := m.Called(ctx, companyID, clientID, clientSecret, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OAuthCredential), args.Error(1)
}

func (m *MockCredentialService) GetCredential(ctx context.Context, companyID int64) (*domain.OAuthCredential, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OAuthCredential), args.Error(1)
}

func (m *MockCredentialService) PatchCredential(ctx context.Context, companyID int64, patch domain.CredentialPatch) (*domain.OAuthCredential, error) {
	args := m.Called(ctx, companyID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OAuthCredential), args.Error(1)
}

func (m *MockCredentialService) Disconnect(ctx context.Context, companyID int64) error {
	args := m.Called(ctx, companyID)
	return args.Error(0)
}

func (m *MockCredentialService) ConnectURL(ctx context.Context, companyID int64) (string, error) {
	args := m.Called(ctx, companyID)
	return args.String(0), args.Error(1)
}

func (m *MockCredentialService) CompleteAuthorization(ctx context.Context, code, state string) (int64, error) {
	args := m.Called(ctx, code, state)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCredentialService) RefreshConnections(ctx context.Context, companyID int64) (domain.Tenant, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).(domain.Tenant), args.Error(1)
}

var _ portssvc.CredentialSvcFacade = (*MockCredentialService)(nil)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) ListCodingAccounts(ctx context.Context, companyID int64) ([]domain.LedgerAccount, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerAccount), args.Error(1)
}

func (m *MockLedgerService) ListBankAccounts(ctx context.Context, companyID int64) ([]domain.BankAccount, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankAccount), args.Error(1)
}

func (m *MockLedgerService) ListBankTransactions(ctx context.Context, companyID int64, q domain.BankTransactionQuery) (domain.BankTransactionList, error) {
	args := m.Called(ctx, companyID, q)
	return args.Get(0).(domain.BankTransactionList), args.Error(1)
}

func (m *MockLedgerService) BankSummary(ctx context.Context, companyID int64) (json.RawMessage, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockLedgerService) PushTransactions(ctx context.Context, companyID int64, ids []int64) (domain.BatchResult, error) {
	args := m.Called(ctx, companyID, ids)
	return args.Get(0).(domain.BatchResult), args.Error(1)
}

func (m *MockLedgerService) ReconcileTransaction(ctx context.Context, companyID int64, transactionID string) error {
	args := m.Called(ctx, companyID, transactionID)
	return args.Error(0)
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Mock PayrollService ---
type MockPayrollService struct {
	mock.Mock
}

func (m *MockPayrollService) ListEmployees(ctx context.Context, companyID int64) ([]domain.Employee, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Employee), args.Error(1)
}

func (m *MockPayrollService) PayrollSetup(ctx context.Context, companyID int64, employeeID string) (domain.PayrollSetup, error) {
	args := m.Called(ctx, companyID, employeeID)
	return args.Get(0).(domain.PayrollSetup), args.Error(1)
}

func (m *MockPayrollService) PreparePayRun(ctx context.Context, companyID int64, req domain.PayRunRequest) (domain.PayRunResult, error) {
	args := m.Called(ctx, companyID, req)
	return args.Get(0).(domain.PayRunResult), args.Error(1)
}

var _ portssvc.PayrollSvcFacade = (*MockPayrollService)(nil)

// --- Mock AdvisorService ---
type MockAdvisorService struct {
	mock.Mock
}

func (m *MockAdvisorService) SuggestMatch(ctx context.Context, line domain.StatementLinePrompt, candidates []domain.BankTransaction) (domain.ReconcileSuggestion, error) {
	args := m.Called(ctx, line, candidates)
	return args.Get(0).(domain.ReconcileSuggestion), args.Error(1)
}

var _ portssvc.AdvisorSvcFacade = (*MockAdvisorService)(nil)
