// Package llm asks a Gemini model to pick the bank transaction matching a statement line.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/xero_import_app/internal/core/domain"
	"github.com/SscSPs/xero_import_app/internal/core/ports/gateways"
	"github.com/SscSPs/xero_import_app/internal/utils"
	"google.golang.org/genai"
)

const systemInstruction = "You are a helpful accounting assistant specialized in bank reconciliation."

// contentGenerator is the slice of *genai.Models the advisor uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiAdvisor implements gateways.MatchAdvisor.
type GeminiAdvisor struct {
	models contentGenerator
	model  string
}

var _ gateways.MatchAdvisor = (*GeminiAdvisor)(nil)

// NewGeminiAdvisor creates a Gemini API client for model.
func NewGeminiAdvisor(ctx context.Context, apiKey, model string) (*GeminiAdvisor, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiAdvisor{models: client.Models, model: model}, nil
}

type modelAnswer struct {
	BestMatchIndex       *int   `json:"bestMatchIndex"`
	Confidence           string `json:"confidence"`
	Reason               string `json:"reason"`
	SuggestedAccountCode string `json:"suggestedAccountCode"`
	SuggestedContact     string `json:"suggestedContact"`
}

// SuggestMatch sends one prompt and parses the JSON answer.
func (a *GeminiAdvisor) SuggestMatch(ctx context.Context, line domain.StatementLinePrompt, candidates []domain.BankTransaction) (domain.ReconcileSuggestion, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: buildPrompt(line, candidates)}},
		},
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
		Temperature:       genai.Ptr[float32](0.3),
		ResponseMIMEType:  "application/json",
	}

	resp, err := a.models.GenerateContent(ctx, a.model, contents, cfg)
	if err != nil {
		return domain.ReconcileSuggestion{}, fmt.Errorf("generate content: %w", err)
	}
	rawText := resp.Text()
	if rawText == "" {
		return domain.ReconcileSuggestion{}, errors.New("empty response from model")
	}

	var answer modelAnswer
	if err := json.Unmarshal([]byte(cleanModelJSON(rawText)), &answer); err != nil {
		return domain.ReconcileSuggestion{}, fmt.Errorf("unmarshal model answer: %w", err)
	}
	return toSuggestion(answer, len(candidates)), nil
}

// toSuggestion converts the prompt's 1-based numbering to a zero-based index and
// drops indexes that point outside the candidate list.
func toSuggestion(a modelAnswer, n int) domain.ReconcileSuggestion {
	s := domain.ReconcileSuggestion{
		Confidence:           normalizeConfidence(a.Confidence),
		Reason:               a.Reason,
		SuggestedAccountCode: a.SuggestedAccountCode,
		SuggestedContact:     a.SuggestedContact,
	}
	if a.BestMatchIndex == nil {
		return s
	}
	if *a.BestMatchIndex < 1 || *a.BestMatchIndex > n {
		s.Confidence = domain.ConfidenceNone
		return s
	}
	idx := *a.BestMatchIndex - 1
	s.BestMatchIndex = &idx
	return s
}

func normalizeConfidence(c string) domain.Confidence {
	switch conf := domain.Confidence(strings.ToLower(strings.TrimSpace(c))); conf {
	case domain.ConfidenceHigh, domain.ConfidenceMedium, domain.ConfidenceLow:
		return conf
	}
	return domain.ConfidenceNone
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func buildPrompt(line domain.StatementLinePrompt, candidates []domain.BankTransaction) string {
	var b strings.Builder
	b.WriteString("You are a bank reconciliation assistant. Analyze this bank statement line and suggest the best matching transaction from the list.\n\n")
	b.WriteString("Bank Statement Line:\n")
	fmt.Fprintf(&b, "- Date: %s\n", line.Date)
	fmt.Fprintf(&b, "- Description: %s\n", line.Description)
	fmt.Fprintf(&b, "- Amount: %s\n", utils.FormatAmount(line.Amount))
	fmt.Fprintf(&b, "- Reference: %s\n\n", orNA(line.Reference))

	b.WriteString("Existing Transactions to Match:\n")
	for i, tx := range candidates {
		date := "N/A"
		if tx.Date != nil {
			date = tx.Date.Format(domain.DateLayout)
		}
		contact := "Unknown"
		if tx.Contact != nil && tx.Contact.Name != "" {
			contact = tx.Contact.Name
		}
		fmt.Fprintf(&b, "\n%d. Transaction ID: %s\n", i+1, tx.BankTransactionID)
		fmt.Fprintf(&b, "   - Date: %s\n", date)
		fmt.Fprintf(&b, "   - Contact: %s\n", contact)
		fmt.Fprintf(&b, "   - Description: %s\n", orNA(tx.Description()))
		fmt.Fprintf(&b, "   - Amount: %s\n", utils.FormatAmount(tx.Total))
		fmt.Fprintf(&b, "   - Reference: %s\n", orNA(tx.Reference))
	}

	b.WriteString(`
Respond with JSON only:
{
  "bestMatchIndex": <number or null if no match>,
  "confidence": <"high", "medium", "low", or "none">,
  "reason": "<brief explanation>",
  "suggestedAccountCode": "<if no match, suggest an account code>",
  "suggestedContact": "<if no match, suggest creating/using this contact name>"
}`)
	return b.String()
}

// cleanModelJSON strips Markdown fences and any text around the outermost object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = s[start : end+1]
		}
	}
	return s
}
