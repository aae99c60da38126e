package services

import (
	"context"

	"github.com/SscSPs/xero_import_app/internal/core/domain"
)

// PayrollSvcFacade drives the pay run flow.
type PayrollSvcFacade interface {
	ListEmployees(ctx context.Context, companyID int64) ([]domain.Employee, error)

	// PayrollSetup returns pay calendars and, when employeeID is set, that employee's pay template.
	PayrollSetup(ctx context.Context, companyID int64, employeeID string) (domain.PayrollSetup, error)

	// PreparePayRun estimates a pay run and, when req.Create is set, creates it in Xero.
	PreparePayRun(ctx context.Context, companyID int64, req domain.PayRunRequest) (domain.PayRunResult, error)
}

// AdvisorSvcFacade is the optional LLM reconciliation helper.
type AdvisorSvcFacade interface {
	SuggestMatch(ctx context.Context, line domain.StatementLinePrompt, candidates []domain.BankTransaction) (domain.ReconcileSuggestion, error)
}
