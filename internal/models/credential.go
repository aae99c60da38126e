package models

import "time"

// XeroCredential is a row of the xero_credentials table.
// ClientSecret, AccessToken and RefreshToken hold sealed values.
type XeroCredential struct {
	ID           int64      `db:"id"`
	CompanyID    int64      `db:"company_id"`
	ClientID     string     `db:"client_id"`
	ClientSecret string     `db:"client_secret"`
	Scope        string     `db:"scope"`
	AccessToken  *string    `db:"access_token"`
	RefreshToken *string    `db:"refresh_token"`
	ExpiresAt    *time.Time `db:"expires_at"`
	TenantID     *string    `db:"tenant_id"`
	TenantName   *string    `db:"tenant_name"`
	TenantType   *string    `db:"tenant_type"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}
