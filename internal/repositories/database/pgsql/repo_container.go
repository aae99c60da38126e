package pgsql

import (
	portsrepo "github.com/SscSPs/xero_import_app/internal/core/ports/repositories"
	"github.com/SscSPs/xero_import_app/internal/utils"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool, sealer *utils.SecretSealer) portsrepo.RepositoryProvider {
	stagedTransactionRepo := newPgxStagedTransactionRepository(dbPool)
	credentialRepo := newPgxCredentialRepository(dbPool, sealer)

	return portsrepo.RepositoryProvider{
		StagedTransactionRepo: stagedTransactionRepo,
		CredentialRepo:        credentialRepo,
	}
}
