package utils

import (
	"github.com/shopspring/decimal"
)

// FormatAmount renders a money amount with two decimal places, e.g. 12.3456 -> "12.35".
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// FormatOptionalAmount renders nil as "".
func FormatOptionalAmount(amount *decimal.Decimal) string {
	if amount == nil {
		return ""
	}
	return FormatAmount(*amount)
}
