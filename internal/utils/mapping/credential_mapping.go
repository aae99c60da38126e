package mapping

import (
	"github.com/SscSPs/xero_import_app/internal/core/domain"
	"github.com/SscSPs/xero_import_app/internal/models"
)

// ToModelCredential converts a domain OAuthCredential to a model XeroCredential.
// Secrets are copied as-is; sealing is the repository's job.
func ToModelCredential(d domain.OAuthCredential) models.XeroCredential {
	return models.XeroCredential{
		ID:           d.ID,
		CompanyID:    d.CompanyID,
		ClientID:     d.ClientID,
		ClientSecret: d.ClientSecret,
		Scope:        d.Scope,
		AccessToken:  d.AccessToken,
		RefreshToken: d.RefreshToken,
		ExpiresAt:    d.ExpiresAt,
		TenantID:     d.TenantID,
		TenantName:   d.TenantName,
		TenantType:   d.TenantType,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// ToDomainCredential converts a model XeroCredential to a domain OAuthCredential
func ToDomainCredential(m models.XeroCredential) domain.OAuthCredential {
	return domain.OAuthCredential{
		ID:           m.ID,
		CompanyID:    m.CompanyID,
		ClientID:     m.ClientID,
		ClientSecret: m.ClientSecret,
		Scope:        m.Scope,
		AccessToken:  m.AccessToken,
		RefreshToken: m.RefreshToken,
		ExpiresAt:    m.ExpiresAt,
		TenantID:     m.TenantID,
		TenantName:   m.TenantName,
		TenantType:   m.TenantType,
		Timestamps:   domain.Timestamps{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
	}
}
