package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/xero_import_app/internal/apperrors"
	"github.com/SscSPs/xero_import_app/internal/core/domain"
	"github.com/SscSPs/xero_import_app/internal/core/ports/gateways"
	portsrepo "github.com/SscSPs/xero_import_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/xero_import_app/internal/core/ports/services"
	"github.com/SscSPs/xero_import_app/internal/utils/accounting"
)

const (
	payRunCreatedMessage = "Pay run created in Xero! Review and post it in Xero to complete."
	payRunReadyMessage   = "Pay run calculation ready. Click \"Create Payrun in Xero\" to proceed."
)

type payrollService struct {
	BaseService
	txnRepo      portsrepo.StagedTransactionRepositoryFacade
	authorizer   portssvc.CredentialAuthorizerSvc
	payroll      gateways.PayrollGateway
	deepLinkBase string
}

// PayrollServiceOption configures the payroll service
type PayrollServiceOption func(*payrollService)

// WithPayrollClock overrides the clock used for the default pay period end.
func WithPayrollClock(now func() time.Time) PayrollServiceOption {
	return func(s *payrollService) {
		s.now = now
	}
}

// WithPayRunDeepLink sets the Xero pay run page URL prefix.
func WithPayRunDeepLink(base string) PayrollServiceOption {
	return func(s *payrollService) {
		s.deepLinkBase = strings.TrimRight(base, "/")
	}
}

// NewPayrollService creates the pay run service.
func NewPayrollService(
	txnRepo portsrepo.StagedTransactionRepositoryFacade,
	authorizer portssvc.CredentialAuthorizerSvc,
	payroll gateways.PayrollGateway,
	options ...PayrollServiceOption,
) portssvc.PayrollSvcFacade {
	svc := &payrollService{
		txnRepo:    txnRepo,
		authorizer: authorizer,
		payroll:    payroll,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.PayrollSvcFacade = (*payrollService)(nil)

func (s *payrollService) ListEmployees(ctx context.Context, companyID int64) ([]domain.Employee, error) {
	auth, err := s.authorizer.Authorize(ctx, companyID)
	if err != nil {
		return nil, err
	}
	employees, err := s.payroll.ListEmployees(ctx, auth)
	if err != nil {
		return nil, err
	}
	if employees == nil {
		employees = []domain.Employee{}
	}
	return employees, nil
}

func (s *payrollService) PayrollSetup(ctx context.Context, companyID int64, employeeID string) (domain.PayrollSetup, error) {
	auth, err := s.authorizer.Authorize(ctx, companyID)
	if err != nil {
		return domain.PayrollSetup{}, err
	}

	calendars, err := s.payroll.ListPayrollCalendars(ctx, auth)
	if err != nil {
		return domain.PayrollSetup{}, err
	}
	if calendars == nil {
		calendars = []domain.PayrollCalendar{}
	}
	setup := domain.PayrollSetup{PayrollCalendars: calendars}

	if employeeID = strings.TrimSpace(employeeID); employeeID != "" {
		_, template, err := s.payroll.GetEmployee(ctx, auth, employeeID)
		if err != nil {
			return domain.PayrollSetup{}, err
		}
		setup.EmployeePayTemplate = template
	}
	return setup, nil
}

func (s *payrollService) PreparePayRun(ctx context.Context, companyID int64, req domain.PayRunRequest) (domain.PayRunResult, error) {
	if strings.TrimSpace(req.EmployeeID) == "" {
		return domain.PayRunResult{}, apperrors.NewBadRequestError("employeeId is required")
	}
	calc, err := accounting.EstimatePayRun(req.NetPay, req.Earnings)
	if err != nil {
		return domain.PayRunResult{}, apperrors.NewBadRequestError(err.Error())
	}

	auth, err := s.authorizer.Authorize(ctx, companyID)
	if err != nil {
		return domain.PayRunResult{}, err
	}

	employee, template, err := s.payroll.GetEmployee(ctx, auth, req.EmployeeID)
	if err != nil {
		return domain.PayRunResult{}, err
	}

	earningsRateID := employee.OrdinaryEarningsRateID
	if earningsRateID == "" && template != nil {
		earningsRateID = template.OrdinaryEarningsRateID
	}
	calendarID := req.PayrollCalendarID
	if calendarID == "" {
		calendarID = employee.PayrollCalendarID
	}

	result := domain.PayRunResult{
		Calculation: calc,
		Employee: domain.PayRunEmployee{
			ID:                employee.EmployeeID,
			Name:              employee.FullName(),
			PayrollCalendarID: calendarID,
			EarningsRateID:    earningsRateID,
		},
		PayPeriodEndDate: s.periodEnd(ctx, auth, req, calendarID).Format(domain.DateLayout),
		Message:          payRunReadyMessage,
	}
	if !req.Create {
		return result, nil
	}

	if calendarID == "" {
		return domain.PayRunResult{}, apperrors.NewBadRequestError("employee has no payroll calendar; supply payrollCalendarId")
	}

	payRun, err := s.payroll.CreatePayRun(ctx, auth, calendarID)
	if err != nil {
		s.LogError(ctx, err, "Failed to create pay run", slog.String("payroll_calendar_id", calendarID))
		return domain.PayRunResult{}, err
	}

	if slip, ok := payRun.PayslipFor(employee.EmployeeID); ok && earningsRateID != "" {
		if err := s.payroll.UpdatePayslipEarnings(ctx, auth, slip.PayslipID, earningsRateID, calc.Earnings); err != nil {
			// The draft pay run is still usable; earnings can be edited in Xero.
			s.LogWarn(ctx, err, "Failed to set payslip earnings", slog.String("payslip_id", slip.PayslipID))
		}
	} else {
		s.LogWarn(ctx, fmt.Errorf("no payslip or earnings rate for employee %s", employee.EmployeeID),
			"Skipped payslip earnings update")
	}

	if len(req.StagedTransactionIDs) > 0 {
		status := domain.StatusPayrunCreated
		n, err := s.txnRepo.UpdateMany(ctx, companyID, req.StagedTransactionIDs, domain.TransactionPatch{Status: &status})
		if err != nil {
			s.LogError(ctx, err, "Failed to mark staged transactions payrun_created")
		}
		result.MarkedStaged = n
	}

	result.PayRunCreated = true
	result.PayRun = payRun
	result.Message = payRunCreatedMessage
	if s.deepLinkBase != "" && payRun.PayRunID != "" {
		result.DeepLink = s.deepLinkBase + "/" + payRun.PayRunID
	}
	s.LogInfo(ctx, "Created draft pay run", slog.String("pay_run_id", payRun.PayRunID))
	return result, nil
}

// periodEnd picks the pay period end: the request value, then the calendar's
// next payment date, then the coming Friday.
func (s *payrollService) periodEnd(ctx context.Context, auth domain.XeroAuth, req domain.PayRunRequest, calendarID string) time.Time {
	if req.PayPeriodEndDate != nil {
		return *req.PayPeriodEndDate
	}
	if calendarID != "" {
		cal, err := s.payroll.GetPayrollCalendar(ctx, auth, calendarID)
		if err != nil {
			s.LogWarn(ctx, err, "Failed to read payroll calendar", slog.String("payroll_calendar_id", calendarID))
		} else if cal != nil && cal.PaymentDate != nil {
			return *cal.PaymentDate
		}
	}
	return accounting.NextFriday(s.Now())
}
