//go:build integration

package pgsql_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	mpg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/SscSPs/xero_import_app/internal/apperrors"
	"github.com/SscSPs/xero_import_app/internal/core/domain"
	portsrepo "github.com/SscSPs/xero_import_app/internal/core/ports/repositories"
	"github.com/SscSPs/xero_import_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/xero_import_app/internal/utils"
)

type RepositoryIntegrationSuite struct {
	suite.Suite
	container testcontainers.Container
	pool      *pgxpool.Pool
	repos     portsrepo.RepositoryProvider
}

func TestRepositoryIntegrationSuite(t *testing.T) {
	suite.Run(t, new(RepositoryIntegrationSuite))
}

func (s *RepositoryIntegrationSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("xia_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	s.Require().NoError(err, "Failed to start PostgreSQL container")
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	sqlDB, err := sql.Open("pgx", dsn)
	s.Require().NoError(err)
	defer sqlDB.Close()
	driver, err := mpg.WithInstance(sqlDB, &mpg.Config{})
	s.Require().NoError(err)
	m, err := migrate.NewWithDatabaseInstance("file://../../../../migrations", "postgres", driver)
	s.Require().NoError(err)
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		s.Require().NoError(err)
	}

	s.pool, err = pgxpool.New(ctx, dsn)
	s.Require().NoError(err)

	sealer, err := utils.NewSecretSealer("integration-secret")
	s.Require().NoError(err)
	s.repos = pgsql.NewRepositoryProvider(s.pool, sealer)
}

func (s *RepositoryIntegrationSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *RepositoryIntegrationSuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(), "TRUNCATE staged_transactions, xero_credentials RESTART IDENTITY")
	s.Require().NoError(err)
}

func stagedRow(companyID int64, date, payee, spent string) *domain.StagedTransaction {
	d, _ := time.Parse(domain.DateLayout, date)
	amount := decimal.RequireFromString(spent)
	now := time.Now().UTC()
	return &domain.StagedTransaction{
		CompanyID:         companyID,
		BankAccountName:   "Business Cheque",
		BankAccountNumber: "12-3456-0001234-00",
		Date:              d,
		Payee:             payee,
		Particulars:       "ref",
		Spent:             &amount,
		Status:            domain.StatusPending,
		Timestamps:        domain.Timestamps{CreatedAt: now, UpdatedAt: now},
	}
}

func (s *RepositoryIntegrationSuite) TestCreateManyIfAbsent_Dedupes() {
	ctx := context.Background()
	repo := s.repos.StagedTransactionRepo

	first := []*domain.StagedTransaction{
		stagedRow(1, "2025-01-10", "Countdown", "12.50"),
		stagedRow(1, "2025-01-11", "Z Energy", "80.00"),
		stagedRow(1, "2025-01-11", "Z Energy", "80.00"),
	}
	n, err := repo.CreateManyIfAbsent(ctx, first)
	s.Require().NoError(err)
	s.Equal(2, n, "duplicate inside one upload is skipped")
	s.NotZero(first[0].ID)

	again := []*domain.StagedTransaction{
		stagedRow(1, "2025-01-10", "Countdown", "12.50"),
		stagedRow(2, "2025-01-10", "Countdown", "12.50"),
	}
	n, err = repo.CreateManyIfAbsent(ctx, again)
	s.Require().NoError(err)
	s.Equal(1, n, "same line for another company is not a duplicate")
}

func (s *RepositoryIntegrationSuite) TestListPagination() {
	ctx := context.Background()
	repo := s.repos.StagedTransactionRepo

	rows := []*domain.StagedTransaction{
		stagedRow(1, "2025-01-01", "A", "1"),
		stagedRow(1, "2025-01-02", "B", "2"),
		stagedRow(1, "2025-01-03", "Weekly wage", "3"),
	}
	_, err := repo.CreateManyIfAbsent(ctx, rows)
	s.Require().NoError(err)

	page, next, err := repo.List(ctx, 1, domain.TransactionFilter{Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Equal("Weekly wage", page[0].Payee)
	s.Equal("B", page[1].Payee)
	s.NotEmpty(next)

	page, next, err = repo.List(ctx, 1, domain.TransactionFilter{Limit: 2, PageToken: next})
	s.Require().NoError(err)
	s.Require().Len(page, 1)
	s.Equal("A", page[0].Payee)
	s.Empty(next)

	wages, _, err := repo.List(ctx, 1, domain.TransactionFilter{WageOnly: true})
	s.Require().NoError(err)
	s.Require().Len(wages, 1)

	_, _, err = repo.List(ctx, 1, domain.TransactionFilter{PageToken: "garbage!"})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *RepositoryIntegrationSuite) TestUpdateMarkPushedDelete() {
	ctx := context.Background()
	repo := s.repos.StagedTransactionRepo

	row := stagedRow(1, "2025-02-01", "Countdown", "20")
	_, err := repo.CreateManyIfAbsent(ctx, []*domain.StagedTransaction{row})
	s.Require().NoError(err)

	code, name, status := "400", "Groceries", domain.StatusCoded
	updated, err := repo.Update(ctx, 1, row.ID, domain.TransactionPatch{AccountCode: &code, AccountName: &name, Status: &status})
	s.Require().NoError(err)
	s.Equal(domain.StatusCoded, updated.Status)
	s.Equal("400", *updated.AccountCode)

	coded, err := repo.FindByStatus(ctx, 1, domain.StatusCoded)
	s.Require().NoError(err)
	s.Len(coded, 1)

	s.Require().NoError(repo.MarkPushed(ctx, 1, row.ID, "xero-bt-1"))
	got, err := repo.FindByID(ctx, 1, row.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusPushed, got.Status)
	s.Equal("xero-bt-1", *got.XeroTransactionID)

	_, err = repo.FindByID(ctx, 2, row.ID)
	s.ErrorIs(err, apperrors.ErrNotFound, "rows are company scoped")

	s.Require().NoError(repo.Delete(ctx, 1, row.ID))
	s.ErrorIs(repo.Delete(ctx, 1, row.ID), apperrors.ErrNotFound)
}

func (s *RepositoryIntegrationSuite) TestUpdateManyAndDeleteAll() {
	ctx := context.Background()
	repo := s.repos.StagedTransactionRepo

	rows := []*domain.StagedTransaction{
		stagedRow(1, "2025-03-01", "A", "1"),
		stagedRow(1, "2025-03-02", "B", "2"),
	}
	_, err := repo.CreateManyIfAbsent(ctx, rows)
	s.Require().NoError(err)

	status := domain.StatusPayrunCreated
	n, err := repo.UpdateMany(ctx, 1, []int64{rows[0].ID, rows[1].ID, 9999}, domain.TransactionPatch{Status: &status})
	s.Require().NoError(err)
	s.Equal(int64(2), n)

	found, err := repo.FindByIDs(ctx, 1, []int64{rows[0].ID, rows[1].ID})
	s.Require().NoError(err)
	for _, f := range found {
		s.Equal(domain.StatusPayrunCreated, f.Status)
	}

	deleted, err := repo.DeleteAll(ctx, 1)
	s.Require().NoError(err)
	s.Equal(int64(2), deleted)
}

func (s *RepositoryIntegrationSuite) TestCredentialSealedRoundTrip() {
	ctx := context.Background()
	repo := s.repos.CredentialRepo

	_, err := repo.FindByCompany(ctx, 7)
	s.ErrorIs(err, apperrors.ErrNotFound)

	access, refresh := "access-token", "refresh-token"
	cred := &domain.OAuthCredential{
		CompanyID:    7,
		ClientID:     "client",
		ClientSecret: "secret",
		Scope:        "offline_access accounting.transactions",
		AccessToken:  &access,
		RefreshToken: &refresh,
	}
	s.Require().NoError(repo.Save(ctx, cred))
	s.NotZero(cred.ID)

	var storedSecret string
	err = s.pool.QueryRow(ctx, "SELECT client_secret FROM xero_credentials WHERE company_id = 7").Scan(&storedSecret)
	s.Require().NoError(err)
	s.NotEqual("secret", storedSecret, "secret is sealed at rest")

	got, err := repo.FindByCompany(ctx, 7)
	s.Require().NoError(err)
	s.Equal("secret", got.ClientSecret)
	s.Equal(domain.CredentialAuthorized, got.State())

	got.Disconnect()
	s.Require().NoError(repo.Save(ctx, got))
	again, err := repo.FindByCompany(ctx, 7)
	s.Require().NoError(err)
	s.Equal(cred.ID, again.ID, "save upserts per company")
	s.Nil(again.AccessToken)
	s.Equal(domain.CredentialCredentialed, again.State())
}
