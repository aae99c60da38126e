package dto

import (
	"time"

	"github.com/SscSPs/xero_import_app/internal/core/domain"
)

// SaveCredentialRequest stores the client id and secret of the company's Xero app.
type SaveCredentialRequest struct {
	ClientID     string `json:"clientId" binding:"required"`
	ClientSecret string `json:"clientSecret" binding:"required"`
	Scope        string `json:"scope"` // Optional, defaults to the full scope list
}

// PatchCredentialRequest is a partial update. Omitted fields are left untouched.
type PatchCredentialRequest struct {
	ClientID     *string    `json:"clientId"`
	ClientSecret *string    `json:"clientSecret"`
	Scope        *string    `json:"scope"`
	AccessToken  *string    `json:"accessToken"`
	RefreshToken *string    `json:"refreshToken"`
	ExpiresAt    *time.Time `json:"expiresAt"`
	TenantID     *string    `json:"tenantId"`
	TenantName   *string    `json:"tenantName"`
	TenantType   *string    `json:"tenantType"`
}

// ToDomain converts the request into a credential patch.
func (r PatchCredentialRequest) ToDomain() domain.CredentialPatch {
	return domain.CredentialPatch{
		ClientID:     r.ClientID,
		ClientSecret: r.ClientSecret,
		Scope:        r.Scope,
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		ExpiresAt:    r.ExpiresAt,
		TenantID:     r.TenantID,
		TenantName:   r.TenantName,
		TenantType:   r.TenantType,
	}
}

// CredentialResponse never carries secrets or tokens, only whether they are set.
type CredentialResponse struct {
	CompanyID       int64                  `json:"companyId"`
	ClientID        string                 `json:"clientId"`
	HasClientSecret bool                   `json:"hasClientSecret"`
	Scope           string                 `json:"scope"`
	State           domain.CredentialState `json:"state"`
	Connected       bool                   `json:"connected"`
	ExpiresAt       *time.Time             `json:"expiresAt"`
	TenantID        string                 `json:"tenantId,omitempty"`
	TenantName      string                 `json:"tenantName,omitempty"`
	TenantType      string                 `json:"tenantType,omitempty"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

// ToCredentialResponse masks a credential for output.
func ToCredentialResponse(c *domain.OAuthCredential) CredentialResponse {
	resp := CredentialResponse{
		CompanyID:       c.CompanyID,
		ClientID:        c.ClientID,
		HasClientSecret: c.ClientSecret != "",
		Scope:           c.Scope,
		State:           c.State(),
		Connected:       c.State() == domain.CredentialAuthorized && c.HasTenant(),
		ExpiresAt:       c.ExpiresAt,
		UpdatedAt:       c.UpdatedAt,
	}
	if c.TenantID != nil {
		resp.TenantID = *c.TenantID
	}
	if c.TenantName != nil {
		resp.TenantName = *c.TenantName
	}
	if c.TenantType != nil {
		resp.TenantType = *c.TenantType
	}
	return resp
}

// ConnectURLResponse carries the Xero authorize URL the browser should be sent to.
type ConnectURLResponse struct {
	AuthURL string `json:"authUrl"`
}
