package domain

// AccountType is the Xero chart-of-accounts type.
type AccountType string

const (
	AccountTypeExpense     AccountType = "EXPENSE"
	AccountTypeRevenue     AccountType = "REVENUE"
	AccountTypeDirectCosts AccountType = "DIRECTCOSTS"
	AccountTypeOverheads   AccountType = "OVERHEADS"
	AccountTypeOtherIncome AccountType = "OTHERINCOME"
	AccountTypeBank        AccountType = "BANK"
)

// AccountStatusActive is the Xero status of a usable account.
const AccountStatusActive = "ACTIVE"

// codingTypes are the account types a statement line may be coded against.
var codingTypes = map[AccountType]bool{
	AccountTypeExpense:     true,
	AccountTypeRevenue:     true,
	AccountTypeDirectCosts: true,
	AccountTypeOverheads:   true,
	AccountTypeOtherIncome: true,
}

// LedgerAccount is a read-only view of a Xero chart-of-accounts entry.
// It is fetched fresh on every request and never persisted.
type LedgerAccount struct {
	AccountID string      `json:"accountId"`
	Code      string      `json:"code"`
	Name      string      `json:"name"`
	Type      AccountType `json:"type"`
	Status    string      `json:"status"`
}

// IsActive reports whether Xero marks the account as active.
func (a LedgerAccount) IsActive() bool {
	return a.Status == AccountStatusActive
}

// IsCodingAccount reports whether bank lines may be coded to this account.
func (a LedgerAccount) IsCodingAccount() bool {
	return codingTypes[a.Type] && a.IsActive()
}

// FilterCodingAccounts keeps active expense/revenue-like accounts, preserving order.
func FilterCodingAccounts(accounts []LedgerAccount) []LedgerAccount {
	out := make([]LedgerAccount, 0, len(accounts))
	for _, a := range accounts {
		if a.IsCodingAccount() {
			out = append(out, a)
		}
	}
	return out
}

// FindAccountByCode returns the first account carrying code.
func FindAccountByCode(accounts []LedgerAccount, code string) (LedgerAccount, bool) {
	for _, a := range accounts {
		if a.Code == code {
			return a, true
		}
	}
	return LedgerAccount{}, false
}

// BankAccount is a read-only view of a Xero bank account.
type BankAccount struct {
	AccountID       string `json:"accountId"`
	Name            string `json:"name"`
	Code            string `json:"code"`
	AccountNumber   string `json:"accountNumber"`
	BankAccountType string `json:"bankAccountType"`
	CurrencyCode    string `json:"currencyCode"`
	Status          string `json:"status"`
}
