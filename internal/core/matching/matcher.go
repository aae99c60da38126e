// Package matching resolves a statement's free-text bank account number to a Xero bank account.
package matching

import (
	"strings"

	"github.com/SscSPs/xero_import_app/internal/core/domain"
)

// MatchBankAccount returns the AccountID of the first bank account whose number
// contains or is contained in number, or whose digit-only form equals number's.
// Leading zeros are ignored in the digit comparison, so "123-456" matches "00123456".
// Accounts without a number are skipped and an empty number never matches.
func MatchBankAccount(number string, accounts []domain.BankAccount) (string, bool) {
	number = strings.TrimSpace(number)
	if number == "" {
		return "", false
	}
	digits := significantDigits(number)

	for _, acc := range accounts {
		candidate := strings.TrimSpace(acc.AccountNumber)
		if candidate == "" {
			continue
		}
		if strings.Contains(candidate, number) || strings.Contains(number, candidate) {
			return acc.AccountID, true
		}
		if digits != "" && significantDigits(candidate) == digits {
			return acc.AccountID, true
		}
	}
	return "", false
}

// DigitsOnly strips every non-digit character.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func significantDigits(s string) string {
	return strings.TrimLeft(DigitsOnly(s), "0")
}
