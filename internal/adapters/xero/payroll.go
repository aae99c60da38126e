package xero

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/SscSPs/xero_import_app/internal/apperrors"
	"github.com/SscSPs/xero_import_app/internal/core/domain"
	"github.com/SscSPs/xero_import_app/internal/core/ports/gateways"
	"github.com/shopspring/decimal"
)

// PayrollClient implements gateways.PayrollGateway against the AU payroll API.
type PayrollClient struct {
	*Client
}

// NewPayrollClient wraps c with the payroll endpoints.
func NewPayrollClient(c *Client) *PayrollClient {
	return &PayrollClient{Client: c}
}

var _ gateways.PayrollGateway = (*PayrollClient)(nil)

type xeroEmployeeBankAccount struct {
	StatementText string `json:"StatementText"`
	AccountName   string `json:"AccountName"`
	BSB           string `json:"BSB"`
	AccountNumber string `json:"AccountNumber"`
	Remainder     bool   `json:"Remainder"`
}

type xeroEmployee struct {
	EmployeeID             string                    `json:"EmployeeID"`
	FirstName              string                    `json:"FirstName"`
	LastName               string                    `json:"LastName"`
	Email                  string                    `json:"Email"`
	Status                 string                    `json:"Status"`
	PayrollCalendarID      string                    `json:"PayrollCalendarID"`
	OrdinaryEarningsRateID string                    `json:"OrdinaryEarningsRateID"`
	BankAccounts           []xeroEmployeeBankAccount `json:"BankAccounts"`
	PayTemplate            json.RawMessage           `json:"PayTemplate"`
	TaxDeclaration         json.RawMessage           `json:"TaxDeclaration"`
	SuperMemberships       json.RawMessage           `json:"SuperMemberships"`
}

type employeesResponse struct {
	Employees []xeroEmployee `json:"Employees"`
}

func toDomainBankAccounts(in []xeroEmployeeBankAccount) []domain.EmployeeBankAccount {
	out := make([]domain.EmployeeBankAccount, 0, len(in))
	for _, b := range in {
		out = append(out, domain.EmployeeBankAccount{
			AccountName:      b.AccountName,
			BSB:              b.BSB,
			AccountNumber:    b.AccountNumber,
			Remainder:        b.Remainder,
			FormattedAccount: domain.FormatEmployeeAccount(b.BSB, b.AccountNumber),
		})
	}
	return out
}

func toDomainEmployee(e xeroEmployee) domain.Employee {
	return domain.Employee{
		EmployeeID:             e.EmployeeID,
		FirstName:              e.FirstName,
		LastName:               e.LastName,
		Email:                  e.Email,
		Status:                 e.Status,
		BankAccounts:           toDomainBankAccounts(e.BankAccounts),
		PayrollCalendarID:      e.PayrollCalendarID,
		OrdinaryEarningsRateID: e.OrdinaryEarningsRateID,
	}
}

// ListEmployees returns every payroll employee with formatted bank accounts.
func (c *PayrollClient) ListEmployees(ctx context.Context, auth domain.XeroAuth) ([]domain.Employee, error) {
	var resp employeesResponse
	if err := c.do(ctx, auth, http.MethodGet, payrollPath+"Employees", nil, nil, &resp); err != nil {
		return nil, err
	}
	out := make([]domain.Employee, 0, len(resp.Employees))
	for _, e := range resp.Employees {
		out = append(out, toDomainEmployee(e))
	}
	return out, nil
}

// GetEmployee returns one employee and the pay template attached to it.
func (c *PayrollClient) GetEmployee(ctx context.Context, auth domain.XeroAuth, employeeID string) (*domain.Employee, *domain.EmployeePayTemplate, error) {
	var resp employeesResponse
	if err := c.do(ctx, auth, http.MethodGet, payrollPath+"Employees/"+url.PathEscape(employeeID), nil, nil, &resp); err != nil {
		return nil, nil, err
	}
	if len(resp.Employees) == 0 {
		return nil, nil, apperrors.NewNotFoundError("employee " + employeeID + " not found")
	}
	e := resp.Employees[0]
	emp := toDomainEmployee(e)
	tmpl := &domain.EmployeePayTemplate{
		PayTemplate:            e.PayTemplate,
		TaxDeclaration:         e.TaxDeclaration,
		SuperMemberships:       e.SuperMemberships,
		BankAccounts:           emp.BankAccounts,
		OrdinaryEarningsRateID: e.OrdinaryEarningsRateID,
	}
	return &emp, tmpl, nil
}

type xeroPayrollCalendar struct {
	PayrollCalendarID string `json:"PayrollCalendarID"`
	Name              string `json:"Name"`
	CalendarType      string `json:"CalendarType"`
	StartDate         string `json:"StartDate"`
	PaymentDate       string `json:"PaymentDate"`
}

type calendarsResponse struct {
	PayrollCalendars []xeroPayrollCalendar `json:"PayrollCalendars"`
}

func toDomainCalendar(c xeroPayrollCalendar) domain.PayrollCalendar {
	return domain.PayrollCalendar{
		PayrollCalendarID: c.PayrollCalendarID,
		Name:              c.Name,
		CalendarType:      c.CalendarType,
		StartDate:         parseDate(c.StartDate),
		PaymentDate:       parseDate(c.PaymentDate),
	}
}

func (c *PayrollClient) ListPayrollCalendars(ctx context.Context, auth domain.XeroAuth) ([]domain.PayrollCalendar, error) {
	var resp calendarsResponse
	if err := c.do(ctx, auth, http.MethodGet, payrollPath+"PayrollCalendars", nil, nil, &resp); err != nil {
		return nil, err
	}
	out := make([]domain.PayrollCalendar, 0, len(resp.PayrollCalendars))
	for _, cal := range resp.PayrollCalendars {
		out = append(out, toDomainCalendar(cal))
	}
	return out, nil
}

func (c *PayrollClient) GetPayrollCalendar(ctx context.Context, auth domain.XeroAuth, calendarID string) (*domain.PayrollCalendar, error) {
	var resp calendarsResponse
	if err := c.do(ctx, auth, http.MethodGet, payrollPath+"PayrollCalendars/"+url.PathEscape(calendarID), nil, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.PayrollCalendars) == 0 {
		return nil, apperrors.NewNotFoundError("payroll calendar " + calendarID + " not found")
	}
	cal := toDomainCalendar(resp.PayrollCalendars[0])
	return &cal, nil
}

type xeroPayRun struct {
	PayRunID              string `json:"PayRunID"`
	PayRunStatus          string `json:"PayRunStatus"`
	PaymentDate           string `json:"PaymentDate"`
	PayRunPeriodStartDate string `json:"PayRunPeriodStartDate"`
	PayRunPeriodEndDate   string `json:"PayRunPeriodEndDate"`
	Payslips              []struct {
		PayslipID  string `json:"PayslipID"`
		EmployeeID string `json:"EmployeeID"`
	} `json:"Payslips"`
}

// CreatePayRun creates a DRAFT pay run and returns it with its payslips.
func (c *PayrollClient) CreatePayRun(ctx context.Context, auth domain.XeroAuth, calendarID string) (*domain.PayRun, error) {
	body := []map[string]string{{
		"PayrollCalendarID": calendarID,
		"PayRunStatus":      "DRAFT",
	}}
	var resp struct {
		PayRuns []xeroPayRun `json:"PayRuns"`
	}
	if err := c.do(ctx, auth, http.MethodPost, payrollPath+"PayRuns", nil, body, &resp); err != nil {
		return nil, err
	}
	if len(resp.PayRuns) == 0 {
		return nil, errors.New("xero: pay run created but no data returned")
	}

	pr := resp.PayRuns[0]
	run := &domain.PayRun{
		PayRunID:           pr.PayRunID,
		PayRunStatus:       pr.PayRunStatus,
		PaymentDate:        parseDate(pr.PaymentDate),
		PayPeriodStartDate: parseDate(pr.PayRunPeriodStartDate),
		PayPeriodEndDate:   parseDate(pr.PayRunPeriodEndDate),
	}
	for _, s := range pr.Payslips {
		run.Payslips = append(run.Payslips, domain.Payslip{PayslipID: s.PayslipID, EmployeeID: s.EmployeeID})
	}
	return run, nil
}

// UpdatePayslipEarnings sets a single earnings line of one unit at rate.
func (c *PayrollClient) UpdatePayslipEarnings(ctx context.Context, auth domain.XeroAuth, payslipID, earningsRateID string, rate decimal.Decimal) error {
	body := map[string]any{
		"PayslipID": payslipID,
		"EarningsLines": []map[string]any{{
			"EarningsRateID": earningsRateID,
			"NumberOfUnits":  json.Number("1"),
			"RatePerUnit":    json.Number(rate.StringFixed(2)),
		}},
	}
	return c.do(ctx, auth, http.MethodPost, payrollPath+"Payslip/"+url.PathEscape(payslipID), nil, body, nil)
}
