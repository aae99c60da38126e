package dto

import (
	"time"

	"github.com/SscSPs/xero_import_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PayRunRequest estimates and optionally creates a pay run for one employee.
type PayRunRequest struct {
	EmployeeID        string           `json:"employeeId" binding:"required"`
	NetPay            decimal.Decimal  `json:"netPay"`
	PayrollCalendarID string           `json:"payrollCalendarId"`
	PayPeriodEndDate  string           `json:"payPeriodEndDate" binding:"omitempty,isodate"`
	Earnings          *decimal.Decimal `json:"earnings"`
	CreatePayRun      bool             `json:"createPayrun"`
	TransactionIDs    []int64          `json:"transactionIds" binding:"omitempty,dive,gt=0"`
}

// ToDomain converts the request. PayPeriodEndDate has already passed isodate validation.
func (r PayRunRequest) ToDomain() domain.PayRunRequest {
	req := domain.PayRunRequest{
		EmployeeID:           r.EmployeeID,
		NetPay:               r.NetPay,
		PayrollCalendarID:    r.PayrollCalendarID,
		Earnings:             r.Earnings,
		Create:               r.CreatePayRun,
		StagedTransactionIDs: r.TransactionIDs,
	}
	if r.PayPeriodEndDate != "" {
		if end, err := time.Parse(domain.DateLayout, r.PayPeriodEndDate); err == nil {
			req.PayPeriodEndDate = &end
		}
	}
	return req
}
