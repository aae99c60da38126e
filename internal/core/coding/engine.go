// Package coding suggests general ledger codes for staged bank lines using
// ordered keyword rules. The first matching rule wins.
package coding

import (
	"strings"

	"github.com/SscSPs/xero_import_app/internal/core/domain"
)

// Codes are the chart-of-accounts codes the rules assign.
type Codes struct {
	Subscriptions     string
	TelephoneInternet string
	InterestExpense   string
	BankFees          string
	Wages             string
}

// DefaultCodes matches the standard Xero AU chart of accounts.
func DefaultCodes() Codes {
	return Codes{
		Subscriptions:     "461",
		TelephoneInternet: "445",
		InterestExpense:   "425",
		BankFees:          "404",
		Wages:             "477",
	}
}

const (
	skipInternalTransfer = "Skip - Internal Transfer"
	skipCardPayment      = "Skip - CC Payment"
)

var (
	subscriptionVendors = []string{"CLAUDE", "OPENAI", "MICROSOFT", "XERO", "NETFLIX"}
	utilityPayees       = []string{"DODO"}
	utilityParticulars  = []string{"UTL"}
	transferPayees      = []string{"TRANSFER", "REIMBURSE"}
	wageParticulars     = []string{"WAGE", "NPP"}
)

type rule struct {
	name  string
	match func(payee, particulars string) bool
	code  func(Codes) string
	label string
	skip  bool
}

var rules = []rule{
	{
		name:  "subscriptions",
		match: func(p, _ string) bool { return containsAny(p, subscriptionVendors) },
		code:  func(c Codes) string { return c.Subscriptions },
		label: "Subscriptions",
	},
	{
		name: "telephone_internet",
		match: func(p, d string) bool {
			return containsAny(p, utilityPayees) || containsAny(d, utilityParticulars)
		},
		code:  func(c Codes) string { return c.TelephoneInternet },
		label: "Telephone & Internet",
	},
	{
		name:  "interest_expense",
		match: func(p, _ string) bool { return strings.Contains(p, "INTEREST") },
		code:  func(c Codes) string { return c.InterestExpense },
		label: "Interest Expense",
	},
	{
		name:  "bank_fees",
		match: func(p, d string) bool { return strings.Contains(p, "FEE") || strings.Contains(d, "FEE") },
		code:  func(c Codes) string { return c.BankFees },
		label: "Bank Fees",
	},
	{
		name:  "internal_transfer",
		match: func(p, _ string) bool { return containsAny(p, transferPayees) },
		label: skipInternalTransfer,
		skip:  true,
	},
	{
		name:  "card_payment",
		match: func(p, _ string) bool { return strings.Contains(p, "PAYMENT RECEIVED") },
		label: skipCardPayment,
		skip:  true,
	},
	{
		name:  "wages",
		match: func(_, d string) bool { return containsAny(d, wageParticulars) },
		code:  func(c Codes) string { return c.Wages },
		label: "Wages and Salaries",
	},
}

// Engine applies the coding rules. It is stateless and safe for concurrent use.
type Engine struct {
	codes Codes
}

// NewEngine creates an Engine. Blank codes fall back to DefaultCodes.
func NewEngine(codes Codes) *Engine {
	def := DefaultCodes()
	if codes.Subscriptions == "" {
		codes.Subscriptions = def.Subscriptions
	}
	if codes.TelephoneInternet == "" {
		codes.TelephoneInternet = def.TelephoneInternet
	}
	if codes.InterestExpense == "" {
		codes.InterestExpense = def.InterestExpense
	}
	if codes.BankFees == "" {
		codes.BankFees = def.BankFees
	}
	if codes.Wages == "" {
		codes.Wages = def.Wages
	}
	return &Engine{codes: codes}
}

// Suggest evaluates txn against the rules. Only pending rows are considered;
// anything else, or a row matching no rule, returns false.
// When a code is chosen its name is taken from accounts if present there.
func (e *Engine) Suggest(txn domain.StagedTransaction, accounts []domain.LedgerAccount) (domain.CodingSuggestion, bool) {
	if txn.Status != domain.StatusPending {
		return domain.CodingSuggestion{}, false
	}
	return e.Evaluate(txn.Payee, txn.Particulars, accounts)
}

// Evaluate runs the rules against a payee and particulars pair regardless of status.
func (e *Engine) Evaluate(payee, particulars string, accounts []domain.LedgerAccount) (domain.CodingSuggestion, bool) {
	p := strings.ToUpper(payee)
	d := strings.ToUpper(particulars)

	for _, r := range rules {
		if !r.match(p, d) {
			continue
		}
		if r.skip {
			return domain.CodingSuggestion{
				AccountName: r.label,
				Status:      domain.StatusSkipped,
				Rule:        r.name,
			}, true
		}

		code := r.code(e.codes)
		name := r.label
		if acc, ok := domain.FindAccountByCode(accounts, code); ok && acc.Name != "" {
			name = acc.Name
		}
		return domain.CodingSuggestion{
			AccountCode: code,
			AccountName: name,
			Status:      domain.StatusCoded,
			Rule:        r.name,
		}, true
	}

	return domain.CodingSuggestion{}, false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
