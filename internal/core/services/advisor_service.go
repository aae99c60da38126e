package services

import (
	"context"

	"github.com/SscSPs/xero_import_app/internal/apperrors"
	"github.com/SscSPs/xero_import_app/internal/core/domain"
	"github.com/SscSPs/xero_import_app/internal/core/ports/gateways"
	portssvc "github.com/SscSPs/xero_import_app/internal/core/ports/services"
)

type advisorService struct {
	BaseService
	advisor gateways.MatchAdvisor
}

// NewAdvisorService wraps the optional LLM advisor. A nil advisor disables suggestions.
func NewAdvisorService(advisor gateways.MatchAdvisor) portssvc.AdvisorSvcFacade {
	return &advisorService{advisor: advisor}
}

var _ portssvc.AdvisorSvcFacade = (*advisorService)(nil)

func (s *advisorService) SuggestMatch(ctx context.Context, line domain.StatementLinePrompt, candidates []domain.BankTransaction) (domain.ReconcileSuggestion, error) {
	if s.advisor == nil {
		return domain.ReconcileSuggestion{}, apperrors.ErrAdvisorDisabled
	}
	if len(candidates) == 0 {
		return domain.ReconcileSuggestion{Confidence: domain.ConfidenceNone, Reason: "No candidate transactions supplied"}, nil
	}
	suggestion, err := s.advisor.SuggestMatch(ctx, line, candidates)
	if err != nil {
		s.LogError(ctx, err, "Reconciliation advisor failed")
		return domain.ReconcileSuggestion{}, err
	}
	return suggestion, nil
}
