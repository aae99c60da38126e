package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EmployeeBankAccount is where an employee's pay is deposited.
type EmployeeBankAccount struct {
	AccountName      string `json:"accountName"`
	BSB              string `json:"bsb"`
	AccountNumber    string `json:"accountNumber"`
	Remainder        bool   `json:"remainder"`
	FormattedAccount string `json:"formattedAccount"`
}

// FormatEmployeeAccount joins BSB and account number and strips dashes,
// the form used to match against statement account numbers.
func FormatEmployeeAccount(bsb, accountNumber string) string {
	return strings.ReplaceAll(bsb+" "+accountNumber, "-", "")
}

// Employee is a Xero payroll employee.
type Employee struct {
	EmployeeID             string                `json:"employeeId"`
	FirstName              string                `json:"firstName"`
	LastName               string                `json:"lastName"`
	Email                  string                `json:"email"`
	Status                 string                `json:"status"`
	BankAccounts           []EmployeeBankAccount `json:"bankAccounts"`
	PayrollCalendarID      string                `json:"payrollCalendarId,omitempty"`
	OrdinaryEarningsRateID string                `json:"ordinaryEarningsRateId,omitempty"`
}

// FullName is first and last name joined by a space.
func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// EmployeePayTemplate is the pay setup attached to an employee record.
// The nested Xero structures are passed through untouched.
type EmployeePayTemplate struct {
	PayTemplate            json.RawMessage       `json:"payTemplate,omitempty"`
	TaxDeclaration         json.RawMessage       `json:"taxDeclaration,omitempty"`
	SuperMemberships       json.RawMessage       `json:"superMemberships,omitempty"`
	BankAccounts           []EmployeeBankAccount `json:"bankAccounts"`
	OrdinaryEarningsRateID string                `json:"ordinaryEarningsRateId"`
}

// PayrollCalendar is a Xero pay calendar.
type PayrollCalendar struct {
	PayrollCalendarID string     `json:"payrollCalendarId"`
	Name              string     `json:"name"`
	CalendarType      string     `json:"calendarType"`
	StartDate         *time.Time `json:"startDate"`
	PaymentDate       *time.Time `json:"paymentDate"`
}

// PayrollSetup is the calendar list plus, optionally, one employee's template.
type PayrollSetup struct {
	PayrollCalendars    []PayrollCalendar    `json:"payrollCalendars"`
	EmployeePayTemplate *EmployeePayTemplate `json:"employeePayTemplate"`
}

// PayRunRequest asks for a pay run estimate and optionally creates it in Xero.
type PayRunRequest struct {
	EmployeeID        string
	NetPay            decimal.Decimal
	PayrollCalendarID string
	PayPeriodEndDate  *time.Time
	Earnings          *decimal.Decimal
	Create            bool
	// StagedTransactionIDs are marked payrun_created once the pay run exists in Xero.
	StagedTransactionIDs []int64
}

// PayRunCalculation is the gross-up estimate for a target net pay.
type PayRunCalculation struct {
	TargetNetPay decimal.Decimal `json:"targetNetPay"`
	Earnings     decimal.Decimal `json:"estimatedEarnings"`
	Tax          decimal.Decimal `json:"estimatedTax"`
	Super        decimal.Decimal `json:"estimatedSuper"`
	TotalCost    decimal.Decimal `json:"totalCost"`
}

// Payslip is one employee's slip within a pay run.
type Payslip struct {
	PayslipID  string `json:"payslipId"`
	EmployeeID string `json:"employeeId"`
}

// PayRun is a Xero pay run summary.
type PayRun struct {
	PayRunID           string     `json:"payRunId"`
	PayRunStatus       string     `json:"payRunStatus"`
	PaymentDate        *time.Time `json:"paymentDate"`
	PayPeriodStartDate *time.Time `json:"payPeriodStartDate"`
	PayPeriodEndDate   *time.Time `json:"payPeriodEndDate"`
	Payslips           []Payslip  `json:"-"`
}

// PayslipFor returns the payslip belonging to employeeID.
func (p PayRun) PayslipFor(employeeID string) (Payslip, bool) {
	for _, s := range p.Payslips {
		if s.EmployeeID == employeeID {
			return s, true
		}
	}
	return Payslip{}, false
}

// PayRunEmployee summarises the employee a pay run was prepared for.
type PayRunEmployee struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	PayrollCalendarID string `json:"payrollCalendarId"`
	EarningsRateID    string `json:"earningsRateId"`
}

// PayRunResult is returned from the pay run flow.
type PayRunResult struct {
	PayRunCreated    bool              `json:"payrunCreated"`
	PayRun           *PayRun           `json:"payRun,omitempty"`
	Calculation      PayRunCalculation `json:"calculation"`
	Employee         PayRunEmployee    `json:"employee"`
	PayPeriodEndDate string            `json:"payPeriodEndDate"`
	Message          string            `json:"message"`
	DeepLink         string            `json:"xeroDeepLink"`
	MarkedStaged     int64             `json:"markedTransactions"`
}
