package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/xero_import_app/internal/apperrors"
	"github.com/SscSPs/xero_import_app/internal/core/domain"
	portsrepo "github.com/SscSPs/xero_import_app/internal/core/ports/repositories"
	"github.com/SscSPs/xero_import_app/internal/models"
	"github.com/SscSPs/xero_import_app/internal/utils"
	"github.com/SscSPs/xero_import_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxCredentialRepository stores Xero credentials with secrets sealed at rest.
type PgxCredentialRepository struct {
	BaseRepository
	sealer *utils.SecretSealer
}

func newPgxCredentialRepository(db *pgxpool.Pool, sealer *utils.SecretSealer) portsrepo.CredentialRepositoryFacade {
	return &PgxCredentialRepository{
		BaseRepository: BaseRepository{Pool: db},
		sealer:         sealer,
	}
}

const (
	selectCredentialFields = `
		id, company_id, client_id, client_secret, scope, access_token, refresh_token,
		expires_at, tenant_id, tenant_name, tenant_type, created_at, updated_at
	`

	findCredentialByCompanyQuery = `
		SELECT ` + selectCredentialFields + `
		FROM xero_credentials
		WHERE company_id = $1
	`

	upsertCredentialQuery = `
		INSERT INTO xero_credentials (
			company_id, client_id, client_secret, scope, access_token, refresh_token,
			expires_at, tenant_id, tenant_name, tenant_type, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		ON CONFLICT (company_id) DO UPDATE SET
			client_id = EXCLUDED.client_id,
			client_secret = EXCLUDED.client_secret,
			scope = EXCLUDED.scope,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			tenant_id = EXCLUDED.tenant_id,
			tenant_name = EXCLUDED.tenant_name,
			tenant_type = EXCLUDED.tenant_type,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
)

// FindByCompany loads and unseals the company's credential.
func (r *PgxCredentialRepository) FindByCompany(ctx context.Context, companyID int64) (*domain.OAuthCredential, error) {
	var m models.XeroCredential
	err := r.Pool.QueryRow(ctx, findCredentialByCompanyQuery, companyID).Scan(
		&m.ID,
		&m.CompanyID,
		&m.ClientID,
		&m.ClientSecret,
		&m.Scope,
		&m.AccessToken,
		&m.RefreshToken,
		&m.ExpiresAt,
		&m.TenantID,
		&m.TenantName,
		&m.TenantType,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find credential for company %d: %w", companyID, err)
	}

	if err := r.open(&m); err != nil {
		return nil, fmt.Errorf("failed to unseal credential for company %d: %w", companyID, err)
	}
	cred := mapping.ToDomainCredential(m)
	return &cred, nil
}

// Save upserts the credential keyed by company.
func (r *PgxCredentialRepository) Save(ctx context.Context, cred *domain.OAuthCredential) error {
	if cred == nil {
		return errors.New("credential cannot be nil")
	}

	m := mapping.ToModelCredential(*cred)
	if err := r.seal(&m); err != nil {
		return fmt.Errorf("failed to seal credential for company %d: %w", cred.CompanyID, err)
	}

	err := r.Pool.QueryRow(ctx, upsertCredentialQuery,
		m.CompanyID, m.ClientID, m.ClientSecret, m.Scope, m.AccessToken, m.RefreshToken,
		m.ExpiresAt, m.TenantID, m.TenantName, m.TenantType,
	).Scan(&cred.ID, &cred.CreatedAt, &cred.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save credential for company %d: %w", cred.CompanyID, err)
	}
	return nil
}

func (r *PgxCredentialRepository) seal(m *models.XeroCredential) error {
	var err error
	if m.ClientSecret, err = r.sealer.Seal(m.ClientSecret); err != nil {
		return err
	}
	if m.AccessToken, err = r.sealer.SealOptional(m.AccessToken); err != nil {
		return err
	}
	m.RefreshToken, err = r.sealer.SealOptional(m.RefreshToken)
	return err
}

func (r *PgxCredentialRepository) open(m *models.XeroCredential) error {
	var err error
	if m.ClientSecret, err = r.sealer.Open(m.ClientSecret); err != nil {
		return err
	}
	if m.AccessToken, err = r.sealer.OpenOptional(m.AccessToken); err != nil {
		return err
	}
	m.RefreshToken, err = r.sealer.OpenOptional(m.RefreshToken)
	return err
}
