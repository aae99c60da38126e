package domain

import "github.com/shopspring/decimal"

// Confidence grades an advisor suggestion.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceNone   Confidence = "none"
)

// StatementLinePrompt is the bank line the advisor is asked to match.
type StatementLinePrompt struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Reference   string          `json:"reference"`
}

// ReconcileSuggestion is the advisor's structured answer.
// BestMatchIndex is zero-based into the candidate list; nil means no match.
type ReconcileSuggestion struct {
	BestMatchIndex       *int       `json:"bestMatchIndex"`
	Confidence           Confidence `json:"confidence"`
	Reason               string     `json:"reason"`
	SuggestedAccountCode string     `json:"suggestedAccountCode"`
	SuggestedContact     string     `json:"suggestedContact"`
}

// CodingSuggestion is the rule engine's proposal for one staged row.
type CodingSuggestion struct {
	AccountCode string
	AccountName string
	Status      TransactionStatus
	Rule        string
}
