// Package gateways declares the outbound collaborators the services call:
// the Xero accounting, payroll and identity APIs, the LLM advisor and the statement archive.
package gateways

import (
	"context"
	"encoding/json"
	"time"

	"github.com/SscSPs/xero_import_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountingGateway wraps the Xero accounting API.
type AccountingGateway interface {
	ListAccounts(ctx context.Context, auth domain.XeroAuth) ([]domain.LedgerAccount, error)
	ListBankAccounts(ctx context.Context, auth domain.XeroAuth) ([]domain.BankAccount, error)

	// CreateBankTransaction creates one bank transaction and returns its Xero id.
	CreateBankTransaction(ctx context.Context, auth domain.XeroAuth, draft domain.BankTransactionDraft) (string, error)

	// ListBankTransactions returns AUTHORISED transactions, newest first. A zero since disables the date bound.
	ListBankTransactions(ctx context.Context, auth domain.XeroAuth, q domain.BankTransactionQuery, since time.Time) ([]domain.BankTransaction, error)

	ReconcileBankTransaction(ctx context.Context, auth domain.XeroAuth, transactionID string) error

	// BankSummary returns the BankSummary report body untouched.
	BankSummary(ctx context.Context, auth domain.XeroAuth, from, to time.Time) (json.RawMessage, error)
}

// PayrollGateway wraps the Xero AU payroll API.
type PayrollGateway interface {
	ListEmployees(ctx context.Context, auth domain.XeroAuth) ([]domain.Employee, error)
	GetEmployee(ctx context.Context, auth domain.XeroAuth, employeeID string) (*domain.Employee, *domain.EmployeePayTemplate, error)
	ListPayrollCalendars(ctx context.Context, auth domain.XeroAuth) ([]domain.PayrollCalendar, error)
	GetPayrollCalendar(ctx context.Context, auth domain.XeroAuth, calendarID string) (*domain.PayrollCalendar, error)

	// CreatePayRun creates a DRAFT pay run for the calendar.
	CreatePayRun(ctx context.Context, auth domain.XeroAuth, calendarID string) (*domain.PayRun, error)

	// UpdatePayslipEarnings replaces the payslip's earnings with a single line of one unit at rate.
	UpdatePayslipEarnings(ctx context.Context, auth domain.XeroAuth, payslipID, earningsRateID string, rate decimal.Decimal) error
}

// OAuthClient is the client id and secret a company registered with Xero.
type OAuthClient struct {
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// OAuthGateway wraps the Xero identity server.
type OAuthGateway interface {
	AuthCodeURL(client OAuthClient, state string) string
	Exchange(ctx context.Context, client OAuthClient, code string) (domain.TokenSet, error)
	Refresh(ctx context.Context, client OAuthClient, refreshToken string) (domain.TokenSet, error)

	// Connections lists the organisations the access token is authorized for.
	Connections(ctx context.Context, accessToken string) ([]domain.Tenant, error)
}

// MatchAdvisor asks an LLM which candidate transaction best matches a statement line.
type MatchAdvisor interface {
	SuggestMatch(ctx context.Context, line domain.StatementLinePrompt, candidates []domain.BankTransaction) (domain.ReconcileSuggestion, error)
}

// StatementArchive keeps a copy of every uploaded statement file.
type StatementArchive interface {
	// Store saves body and returns the object key.
	Store(ctx context.Context, companyID int64, filename string, body []byte) (string, error)
}
