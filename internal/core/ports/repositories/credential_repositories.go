package repositories

import (
	"context"

	"github.com/SscSPs/xero_import_app/internal/core/domain"
)

// CredentialRepositoryFacade stores the single Xero credential kept per company.
type CredentialRepositoryFacade interface {
	// FindByCompany returns apperrors.ErrNotFound when the company has no credential.
	FindByCompany(ctx context.Context, companyID int64) (*domain.OAuthCredential, error)

	// Save inserts or replaces the company's credential and refreshes its timestamps and ID.
	Save(ctx context.Context, cred *domain.OAuthCredential) error
}
