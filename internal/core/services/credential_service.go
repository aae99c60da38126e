package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/xero_import_app/internal/apperrors"
	"github.com/SscSPs/xero_import_app/internal/core/domain"
	"github.com/SscSPs/xero_import_app/internal/core/ports/gateways"
	portsrepo "github.com/SscSPs/xero_import_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/xero_import_app/internal/core/ports/services"
	"github.com/SscSPs/xero_import_app/internal/platform/config"
	"github.com/SscSPs/xero_import_app/internal/utils"
)

type credentialService struct {
	BaseService
	credRepo      portsrepo.CredentialRepositoryFacade
	oauth         gateways.OAuthGateway
	refreshWindow time.Duration
	stateSecret   string
	stateIssuer   string
	stateExpiry   time.Duration
	defaultScope  string
}

// CredentialServiceOption configures the credential service
type CredentialServiceOption func(*credentialService)

// WithCredentialClock overrides the clock used for expiry checks.
func WithCredentialClock(now func() time.Time) CredentialServiceOption {
	return func(s *credentialService) {
		s.now = now
	}
}

// NewCredentialService creates the service that owns the Xero OAuth lifecycle.
func NewCredentialService(cfg *config.Config, credRepo portsrepo.CredentialRepositoryFacade, oauth gateways.OAuthGateway, options ...CredentialServiceOption) portssvc.CredentialSvcFacade {
	svc := &credentialService{
		credRepo:      credRepo,
		oauth:         oauth,
		refreshWindow: cfg.TokenRefreshWindow,
		stateSecret:   cfg.StateSecret,
		stateIssuer:   cfg.StateIssuer,
		stateExpiry:   cfg.StateExpiryDuration,
		defaultScope:  config.DefaultXeroScope,
	}
	if svc.refreshWindow <= 0 {
		svc.refreshWindow = 5 * time.Minute
	}
	if svc.stateExpiry <= 0 {
		svc.stateExpiry = 15 * time.Minute
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.CredentialSvcFacade = (*credentialService)(nil)

func (s *credentialService) Authorize(ctx context.Context, companyID int64) (domain.XeroAuth, error) {
	cred, err := s.load(ctx, companyID)
	if err != nil {
		return domain.XeroAuth{}, err
	}
	if cred.State() == domain.CredentialUncredentialed {
		return domain.XeroAuth{}, apperrors.ErrNotConfigured
	}
	if cred.AccessToken == nil || *cred.AccessToken == "" {
		return domain.XeroAuth{}, apperrors.ErrNotConnected
	}

	if cred.NeedsRefresh(s.Now(), s.refreshWindow) {
		if cred.RefreshToken == nil || *cred.RefreshToken == "" {
			return domain.XeroAuth{}, apperrors.ErrNeedsReconnect
		}
		tokens, err := s.oauth.Refresh(ctx, clientOf(cred), *cred.RefreshToken)
		if err != nil {
			s.LogWarn(ctx, err, "Xero token refresh failed")
			return domain.XeroAuth{}, fmt.Errorf("%w: %v", apperrors.ErrNeedsReconnect, err)
		}
		cred.ApplyTokens(tokens)
		if err := s.credRepo.Save(ctx, cred); err != nil {
			s.LogError(ctx, err, "Failed to persist refreshed Xero tokens")
			return domain.XeroAuth{}, fmt.Errorf("failed to save refreshed tokens: %w", err)
		}
		s.LogInfo(ctx, "Refreshed Xero access token")
	}

	if !cred.HasTenant() {
		return domain.XeroAuth{}, apperrors.ErrNoTenant
	}
	return domain.XeroAuth{AccessToken: *cred.AccessToken, TenantID: *cred.TenantID}, nil
}

func (s *credentialService) SaveClientCredentials(ctx context.Context, companyID int64, clientID, clientSecret, scope string) (*domain.OAuthCredential, error) {
	clientID = strings.TrimSpace(clientID)
	clientSecret = strings.TrimSpace(clientSecret)
	if clientID == "" || clientSecret == "" {
		return nil, apperrors.NewBadRequestError("clientId and clientSecret are required")
	}
	scope = strings.TrimSpace(scope)
	if scope == "" {
		scope = s.defaultScope
	}

	cred, err := s.credRepo.FindByCompany(ctx, companyID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		cred = &domain.OAuthCredential{CompanyID: companyID}
	case err != nil:
		return nil, err
	case cred.ClientID != clientID:
		// Tokens issued to a different app are useless.
		cred.Disconnect()
	}

	cred.ClientID = clientID
	cred.ClientSecret = clientSecret
	cred.Scope = scope
	if err := s.credRepo.Save(ctx, cred); err != nil {
		s.LogError(ctx, err, "Failed to save Xero client credentials")
		return nil, err
	}
	s.LogInfo(ctx, "Saved Xero client credentials", slog.String("client_id", clientID))
	return cred, nil
}

func (s *credentialService) GetCredential(ctx context.Context, companyID int64) (*domain.OAuthCredential, error) {
	return s.credRepo.FindByCompany(ctx, companyID)
}

func (s *credentialService) PatchCredential(ctx context.Context, companyID int64, patch domain.CredentialPatch) (*domain.OAuthCredential, error) {
	cred, err := s.credRepo.FindByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	patch.Apply(cred)
	if cred.ClientID == "" || cred.ClientSecret == "" {
		return nil, apperrors.NewBadRequestError("clientId and clientSecret cannot be cleared")
	}
	if err := s.credRepo.Save(ctx, cred); err != nil {
		return nil, err
	}
	return cred, nil
}

func (s *credentialService) Disconnect(ctx context.Context, companyID int64) error {
	cred, err := s.credRepo.FindByCompany(ctx, companyID)
	if err != nil {
		return err
	}
	cred.Disconnect()
	if err := s.credRepo.Save(ctx, cred); err != nil {
		return err
	}
	s.LogInfo(ctx, "Disconnected from Xero")
	return nil
}

func (s *credentialService) ConnectURL(ctx context.Context, companyID int64) (string, error) {
	cred, err := s.load(ctx, companyID)
	if err != nil {
		return "", err
	}
	if cred.State() == domain.CredentialUncredentialed {
		return "", apperrors.ErrNotConfigured
	}
	state, err := utils.GenerateStateToken(companyID, s.stateSecret, s.stateExpiry, s.stateIssuer)
	if err != nil {
		return "", fmt.Errorf("failed to sign oauth state: %w", err)
	}
	return s.oauth.AuthCodeURL(clientOf(cred), state), nil
}

func (s *credentialService) CompleteAuthorization(ctx context.Context, code, state string) (int64, error) {
	companyID, err := utils.ParseStateToken(state, s.stateSecret, s.stateIssuer)
	if err != nil {
		s.LogWarn(ctx, err, "Rejected OAuth callback state")
		return 0, fmt.Errorf("%w: invalid oauth state", apperrors.ErrUnauthorized)
	}
	if code == "" {
		return companyID, apperrors.NewBadRequestError("authorization code is missing")
	}

	cred, err := s.load(ctx, companyID)
	if err != nil {
		return companyID, err
	}
	if cred.State() == domain.CredentialUncredentialed {
		return companyID, apperrors.ErrNotConfigured
	}

	tokens, err := s.oauth.Exchange(ctx, clientOf(cred), code)
	if err != nil {
		s.LogError(ctx, err, "Xero code exchange failed", slog.Int64("company_id", companyID))
		return companyID, err
	}
	cred.ApplyTokens(tokens)

	tenants, err := s.oauth.Connections(ctx, tokens.AccessToken)
	if err != nil {
		s.LogWarn(ctx, err, "Failed to read Xero connections", slog.Int64("company_id", companyID))
	} else if len(tenants) > 0 {
		cred.ApplyTenant(tenants[0])
	}

	if err := s.credRepo.Save(ctx, cred); err != nil {
		return companyID, err
	}
	s.LogInfo(ctx, "Connected to Xero", slog.Int64("company_id", companyID), slog.Bool("has_tenant", cred.HasTenant()))
	return companyID, nil
}

func (s *credentialService) RefreshConnections(ctx context.Context, companyID int64) (domain.Tenant, error) {
	cred, err := s.load(ctx, companyID)
	if err != nil {
		return domain.Tenant{}, err
	}
	if cred.AccessToken == nil || *cred.AccessToken == "" {
		return domain.Tenant{}, apperrors.ErrNotConnected
	}

	tenants, err := s.oauth.Connections(ctx, *cred.AccessToken)
	if err != nil {
		return domain.Tenant{}, err
	}
	if len(tenants) == 0 {
		return domain.Tenant{}, apperrors.NewNotFoundError("no Xero organisations are connected")
	}
	cred.ApplyTenant(tenants[0])
	if err := s.credRepo.Save(ctx, cred); err != nil {
		return domain.Tenant{}, err
	}
	return tenants[0], nil
}

// load maps a missing credential row to ErrNotConfigured.
func (s *credentialService) load(ctx context.Context, companyID int64) (*domain.OAuthCredential, error) {
	cred, err := s.credRepo.FindByCompany(ctx, companyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotConfigured
		}
		return nil, err
	}
	return cred, nil
}

func clientOf(cred *domain.OAuthCredential) gateways.OAuthClient {
	return gateways.OAuthClient{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		Scopes:       cred.Scopes(),
	}
}
