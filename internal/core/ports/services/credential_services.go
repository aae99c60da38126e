package services

import (
	"context"

	"github.com/SscSPs/xero_import_app/internal/core/domain"
)

// CredentialAuthorizerSvc is the pre-call check every Xero operation runs through.
type CredentialAuthorizerSvc interface {
	// Authorize returns a usable access token and tenant, refreshing the token at most once.
	Authorize(ctx context.Context, companyID int64) (domain.XeroAuth, error)
}

// CredentialManagerSvc manages the stored client credentials and tokens.
type CredentialManagerSvc interface {
	SaveClientCredentials(ctx context.Context, companyID int64, clientID, clientSecret, scope string) (*domain.OAuthCredential, error)
	GetCredential(ctx context.Context, companyID int64) (*domain.OAuthCredential, error)
	PatchCredential(ctx context.Context, companyID int64, patch domain.CredentialPatch) (*domain.OAuthCredential, error)

	// Disconnect clears tokens and tenant, keeping the client id and secret.
	Disconnect(ctx context.Context, companyID int64) error
}

// CredentialConnectSvc drives the authorization code flow.
type CredentialConnectSvc interface {
	// ConnectURL returns the Xero authorize URL with a signed state for the company.
	ConnectURL(ctx context.Context, companyID int64) (string, error)

	// CompleteAuthorization handles the redirect back from Xero and returns the company it was for.
	CompleteAuthorization(ctx context.Context, code, state string) (int64, error)

	// RefreshConnections re-reads the organisations the token can access and stores the first.
	RefreshConnections(ctx context.Context, companyID int64) (domain.Tenant, error)
}

// CredentialSvcFacade combines all credential operations.
type CredentialSvcFacade interface {
	CredentialAuthorizerSvc
	CredentialManagerSvc
	CredentialConnectSvc
}
