package accounting

import (
	"fmt"
	"time"

	"github.com/SscSPs/xero_import_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

var (
	// SuperRatePercent is the superannuation guarantee rate applied to gross earnings.
	SuperRatePercent = decimal.RequireFromString("11.5")
	// EstimatedTaxRate approximates PAYG withholding for a mid-range income.
	EstimatedTaxRate = decimal.RequireFromString("0.27")

	hundred = decimal.NewFromInt(100)
)

// BankTransactionDirection derives the Xero transaction type and the absolute amount
// from a staged row. Spent takes precedence; a row with neither amount is an error.
func BankTransactionDirection(txn domain.StagedTransaction) (domain.BankTransactionType, decimal.Decimal, error) {
	switch {
	case txn.Spent != nil:
		return domain.BankTransactionSpend, txn.Spent.Abs(), nil
	case txn.Received != nil:
		return domain.BankTransactionReceive, txn.Received.Abs(), nil
	default:
		return "", decimal.Zero, fmt.Errorf("transaction %d has neither spent nor received amount", txn.ID)
	}
}

// Round2 rounds half away from zero to cents.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// EstimatePayRun grosses up a target net pay. When earnings is supplied it is used as-is.
//
//	earnings = round2(net / (1 - tax rate))
//	tax      = round2(earnings * tax rate)
//	super    = round2(earnings * super% / 100)
//	total    = earnings + super
func EstimatePayRun(netPay decimal.Decimal, earnings *decimal.Decimal) (domain.PayRunCalculation, error) {
	if !netPay.IsPositive() {
		return domain.PayRunCalculation{}, fmt.Errorf("net pay must be positive, got %s", netPay.String())
	}

	gross := Round2(netPay.Div(decimal.NewFromInt(1).Sub(EstimatedTaxRate)))
	if earnings != nil {
		if !earnings.IsPositive() {
			return domain.PayRunCalculation{}, fmt.Errorf("earnings must be positive, got %s", earnings.String())
		}
		gross = *earnings
	}

	tax := Round2(gross.Mul(EstimatedTaxRate))
	super := Round2(gross.Mul(SuperRatePercent).Div(hundred))

	return domain.PayRunCalculation{
		TargetNetPay: netPay,
		Earnings:     gross,
		Tax:          tax,
		Super:        super,
		TotalCost:    gross.Add(super),
	}, nil
}

// NextFriday returns the date of the next Friday strictly after today.
func NextFriday(today time.Time) time.Time {
	days := (int(time.Friday) - int(today.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	y, m, d := today.AddDate(0, 0, days).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
