package domain

import (
	"strings"
	"time"
)

// CredentialState is the position of a company's credential in the OAuth lifecycle.
type CredentialState string

const (
	CredentialUncredentialed CredentialState = "uncredentialed"
	CredentialCredentialed   CredentialState = "credentialed"
	CredentialAuthorized     CredentialState = "authorized"
)

// Tenant is a Xero organisation the credential is scoped to.
type Tenant struct {
	ID   string `json:"tenantId"`
	Name string `json:"tenantName"`
	Type string `json:"tenantType"`
}

// OAuthCredential is the single Xero credential record kept per company.
type OAuthCredential struct {
	ID           int64
	CompanyID    int64
	ClientID     string
	ClientSecret string
	Scope        string
	AccessToken  *string
	RefreshToken *string
	ExpiresAt    *time.Time
	TenantID     *string
	TenantName   *string
	TenantType   *string
	Timestamps
}

// State derives the lifecycle state from which fields are populated.
func (c *OAuthCredential) State() CredentialState {
	if c == nil || c.ClientID == "" || c.ClientSecret == "" {
		return CredentialUncredentialed
	}
	if c.AccessToken != nil && *c.AccessToken != "" && c.RefreshToken != nil && *c.RefreshToken != "" {
		return CredentialAuthorized
	}
	return CredentialCredentialed
}

// Scopes splits the space separated scope string.
func (c *OAuthCredential) Scopes() []string {
	return strings.Fields(c.Scope)
}

// NeedsRefresh reports whether the access token expires before now+window.
// A credential without a stored expiry is never refreshed proactively.
func (c *OAuthCredential) NeedsRefresh(now time.Time, window time.Duration) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return c.ExpiresAt.Before(now.Add(window))
}

// HasTenant reports whether an organisation is attached.
func (c *OAuthCredential) HasTenant() bool {
	return c.TenantID != nil && *c.TenantID != ""
}

// ApplyTokens stores a freshly issued token set.
func (c *OAuthCredential) ApplyTokens(ts TokenSet) {
	access := ts.AccessToken
	c.AccessToken = &access
	if ts.RefreshToken != "" {
		refresh := ts.RefreshToken
		c.RefreshToken = &refresh
	}
	if ts.Expiry.IsZero() {
		c.ExpiresAt = nil
	} else {
		exp := ts.Expiry
		c.ExpiresAt = &exp
	}
}

// ApplyTenant stores the organisation details.
func (c *OAuthCredential) ApplyTenant(t Tenant) {
	id, name, typ := t.ID, t.Name, t.Type
	c.TenantID, c.TenantName, c.TenantType = &id, &name, &typ
}

// Disconnect clears tokens and tenant but keeps the client id and secret.
func (c *OAuthCredential) Disconnect() {
	c.AccessToken = nil
	c.RefreshToken = nil
	c.ExpiresAt = nil
	c.TenantID = nil
	c.TenantName = nil
	c.TenantType = nil
}

// CredentialPatch is an explicit partial update of a credential. Nil fields are left untouched.
type CredentialPatch struct {
	ClientID     *string
	ClientSecret *string
	Scope        *string
	AccessToken  *string
	RefreshToken *string
	ExpiresAt    *time.Time
	TenantID     *string
	TenantName   *string
	TenantType   *string
}

// Apply merges the patch into c.
func (p CredentialPatch) Apply(c *OAuthCredential) {
	if p.ClientID != nil {
		c.ClientID = *p.ClientID
	}
	if p.ClientSecret != nil {
		c.ClientSecret = *p.ClientSecret
	}
	if p.Scope != nil {
		c.Scope = *p.Scope
	}
	if p.AccessToken != nil {
		c.AccessToken = copyString(p.AccessToken)
	}
	if p.RefreshToken != nil {
		c.RefreshToken = copyString(p.RefreshToken)
	}
	if p.ExpiresAt != nil {
		exp := *p.ExpiresAt
		c.ExpiresAt = &exp
	}
	if p.TenantID != nil {
		c.TenantID = copyString(p.TenantID)
	}
	if p.TenantName != nil {
		c.TenantName = copyString(p.TenantName)
	}
	if p.TenantType != nil {
		c.TenantType = copyString(p.TenantType)
	}
}

func copyString(s *string) *string {
	v := *s
	return &v
}

// TokenSet is what the Xero identity server issues on code exchange or refresh.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// XeroAuth is the bearer token and tenant required by every Xero API call.
type XeroAuth struct {
	AccessToken string
	TenantID    string
}
