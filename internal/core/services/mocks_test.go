package services_test

import (
	"context"
	"encoding/json"
	"time"

	"github.com/SscSPs/xero_import_app/internal/core/domain"
	"github.com/SscSPs/xero_import_app/internal/core/ports/gateways"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock StagedTransactionRepository ---
type MockStagedTransactionRepository struct {
	mock.Mock
}

func (m *MockStagedTransactionRepository) FindByID(ctx context.Context, companyID, id int64) (*domain.StagedTransaction, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StagedTransaction), args.Error(1)
}

func (m *MockStagedTransactionRepository) FindByIDs(ctx context.Context, companyID int64, ids []int64) ([]domain.StagedTransaction, error) {
	args := m.Called(ctx, companyID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StagedTransaction), args.Error(1)
}

func (m *MockStagedTransactionRepository) FindByStatus(ctx context.Context, companyID int64, status domain.TransactionStatus) ([]domain.StagedTransaction, error) {
	args := m.Called(ctx, companyID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StagedTransaction), args.Error(1)
}

func (m *MockStagedTransactionRepository) List(ctx context.Context, companyID int64, filter domain.TransactionFilter) ([]domain.StagedTransaction, string, error) {
	args := m.Called(ctx, companyID, filter)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]domain.StagedTransaction), args.String(1), args.Error(2)
}

func (m *MockStagedTransactionRepository) CreateManyIfAbsent(ctx context.Context, txns []*domain.StagedTransaction) (int, error) {
	args := m.Called(ctx, txns)
	return args.Int(0), args.Error(1)
}

func (m *MockStagedTransactionRepository) Update(ctx context.Context, companyID, id int64, patch domain.TransactionPatch) (*domain.StagedTransaction, error) {
	args := m.Called(ctx, companyID, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StagedTransaction), args.Error(1)
}

func (m *MockStagedTransactionRepository) UpdateMany(ctx context.Context, companyID int64, ids []int64, patch domain.TransactionPatch) (int64, error) {
	args := m.Called(ctx, companyID, ids, patch)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStagedTransactionRepository) MarkPushed(ctx context.Context, companyID, id int64, xeroTransactionID string) error {
	args := m.Called(ctx, companyID, id, xeroTransactionID)
	return args.Error(0)
}

func (m *MockStagedTransactionRepository) Delete(ctx context.Context, companyID, id int64) error {
	args := m.Called(ctx, companyID, id)
	return args.Error(0)
}

func (m *MockStagedTransactionRepository) DeleteAll(ctx context.Context, companyID int64) (int64, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock CredentialRepository ---
type MockCredentialRepository struct {
	mock.Mock
}

func (m *MockCredentialRepository) FindByCompany(ctx context.Context, companyID int64) (*domain.OAuthCredential, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OAuthCredential), args.Error(1)
}

func (m *MockCredentialRepository) Save(ctx context.Context, cred *domain.OAuthCredential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}

// --- Mock OAuthGateway ---
type MockOAuthGateway struct {
	mock.Mock
}

func (m *MockOAuthGateway) AuthCodeURL(client gateways.OAuthClient, state string) string {
	args := m.Called(client, state)
	return args.String(0)
}

func (m *MockOAuthGateway) Exchange(ctx context.Context, client gateways.OAuthClient, code string) (domain.TokenSet, error) {
	args := m.Called(ctx, client, code)
	return args.Get(0).(domain.TokenSet), args.Error(1)
}

func (m *MockOAuthGateway) Refresh(ctx context.Context, client gateways.OAuthClient, refreshToken string) (domain.TokenSet, error) {
	args := m.Called(ctx, client, refreshToken)
	return args.Get(0).(domain.TokenSet), args.Error(1)
}

func (m *MockOAuthGateway) Connections(ctx context.Context, accessToken string) ([]domain.Tenant, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Tenant), args.Error(1)
}

// --- Mock AccountingGateway ---
type MockAccountingGateway struct {
	mock.Mock
}

func (m *MockAccountingGateway) ListAccounts(ctx context.Context, auth domain.XeroAuth) ([]domain.LedgerAccount, error) {
	args := m.Called(ctx, auth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerAccount), args.Error(1)
}

func (m *MockAccountingGateway) ListBankAccounts(ctx context.Context, auth domain.XeroAuth) ([]domain.BankAccount, error) {
	args := m.Called(ctx, auth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankAccount), args.Error(1)
}

func (m *MockAccountingGateway) CreateBankTransaction(ctx context.Context, auth domain.XeroAuth, draft domain.BankTransactionDraft) (string, error) {
	args := m.Called(ctx, auth, draft)
	return args.String(0), args.Error(1)
}

func (m *MockAccountingGateway) ListBankTransactions(ctx context.Context, auth domain.XeroAuth, q domain.BankTransactionQuery, since time.Time) ([]domain.BankTransaction, error) {
	args := m.Called(ctx, auth, q, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankTransaction), args.Error(1)
}

func (m *MockAccountingGateway) ReconcileBankTransaction(ctx context.Context, auth domain.XeroAuth, transactionID string) error {
	args := m.Called(ctx, auth, transactionID)
	return args.Error(0)
}

func (m *MockAccountingGateway) BankSummary(ctx context.Context, auth domain.XeroAuth, from, to time.Time) (json.RawMessage, error) {
	args := m.Called(ctx, auth, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

// --- Mock PayrollGateway ---
type MockPayrollGateway struct {
	mock.Mock
}

func (m *MockPayrollGateway) ListEmployees(ctx context.Context, auth domain.XeroAuth) ([]domain.Employee, error) {
	args := m.Called(ctx, auth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Employee), args.Error(1)
}

func (m *MockPayrollGateway) GetEmployee(ctx context.Context, auth domain.XeroAuth, employeeID string) (*domain.Employee, *domain.EmployeePayTemplate, error) {
	args := m.Called(ctx, auth, employeeID)
	var emp *domain.Employee
	var tpl *domain.EmployeePayTemplate
	if args.Get(0) != nil {
		emp = args.Get(0).(*domain.Employee)
	}
	if args.Get(1) != nil {
		tpl = args.Get(1).(*domain.EmployeePayTemplate)
	}
	return emp, tpl, args.Error(2)
}

func (m *MockPayrollGateway) ListPayrollCalendars(ctx context.Context, auth domain.XeroAuth) ([]domain.PayrollCalendar, error) {
	args := m.Called(ctx, auth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PayrollCalendar), args.Error(1)
}

func (m *MockPayrollGateway) GetPayrollCalendar(ctx context.Context, auth domain.XeroAuth, calendarID string) (*domain.PayrollCalendar, error) {
	args := m.Called(ctx, auth, calendarID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PayrollCalendar), args.Error(1)
}

func (m *MockPayrollGateway) CreatePayRun(ctx context.Context, auth domain.XeroAuth, calendarID string) (*domain.PayRun, error) {
	args := m.Called(ctx, auth, calendarID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PayRun), args.Error(1)
}

func (m *MockPayrollGateway) UpdatePayslipEarnings(ctx context.Context, auth domain.XeroAuth, payslipID, earningsRateID string, rate decimal.Decimal) error {
	args := m.Called(ctx, auth, payslipID, earningsRateID, rate)
	return args.Error(0)
}

// --- Mock CredentialAuthorizer ---
type MockAuthorizer struct {
	mock.Mock
}

func (m *MockAuthorizer) Authorize(ctx context.Context, companyID int64) (domain.XeroAuth, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).(domain.XeroAuth), args.Error(1)
}

// --- Mock StatementArchive ---
type MockArchive struct {
	mock.Mock
}

func (m *MockArchive) Store(ctx context.Context, companyID int64, filename string, body []byte) (string, error) {
	args := m.Called(ctx, companyID, filename, body)
	return args.String(0), args.Error(1)
}

// --- Mock MatchAdvisor ---
type MockAdvisor struct {
	mock.Mock
}

func (m *MockAdvisor) SuggestMatch(ctx context.Context, line domain.StatementLinePrompt, candidates []domain.BankTransaction) (domain.ReconcileSuggestion, error) {
	args := m.Called(ctx, line, candidates)
	return args.Get(0).(domain.ReconcileSuggestion), args.Error(1)
}

var testAuth = domain.XeroAuth{AccessToken: "access", TenantID: "tenant-1"}

func strPtr(s string) *string { return &s }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
