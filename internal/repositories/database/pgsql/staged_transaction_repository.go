package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/SscSPs/xero_import_app/internal/apperrors"
	"github.com/SscSPs/xero_import_app/internal/core/domain"
	portsrepo "github.com/SscSPs/xero_import_app/internal/core/ports/repositories"
	"github.com/SscSPs/xero_import_app/internal/models"
	"github.com/SscSPs/xero_import_app/internal/utils/mapping"
	"github.com/SscSPs/xero_import_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxStagedTransactionRepository struct {
	BaseRepository
}

// newPgxStagedTransactionRepository creates a new instance of PgxStagedTransactionRepository
func newPgxStagedTransactionRepository(db *pgxpool.Pool) portsrepo.StagedTransactionRepositoryFacade {
	return &PgxStagedTransactionRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// queryRow is a helper method to execute a query that returns a single row
func (r *PgxStagedTransactionRepository) queryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return r.Pool.QueryRow(ctx, sql, args...)
}

// query is a helper method to execute a query that returns multiple rows
func (r *PgxStagedTransactionRepository) query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return r.Pool.Query(ctx, sql, args...)
}

// exec is a helper method to execute a query that doesn't return rows
func (r *PgxStagedTransactionRepository) exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	return r.Pool.Exec(ctx, sql, args...)
}

const (
	stagedTransactionsTable = "staged_transactions"

	selectStagedTransactionFields = `
		id, company_id, bank_account_name, bank_account_number, txn_date,
		payee, particulars, spent, received, tax, comments, status,
		account_code, account_name, xero_transaction_id, created_at, updated_at
	`

	// The NOT EXISTS guard makes insertion idempotent per statement line.
	// spent/received are nullable, hence IS NOT DISTINCT FROM.
	insertStagedTransactionIfAbsentQuery = `
		INSERT INTO ` + stagedTransactionsTable + ` (
			company_id, bank_account_name, bank_account_number, txn_date, payee,
			particulars, spent, received, tax, comments, status, created_at, updated_at
		)
		SELECT $1::bigint, $2::text, $3::text, $4::date, $5::text,
			$6::text, $7::numeric, $8::numeric, $9::text, $10::text, $11::varchar, $12::timestamptz, $12::timestamptz
		WHERE NOT EXISTS (
			SELECT 1 FROM ` + stagedTransactionsTable + `
			WHERE company_id = $1 AND bank_account_number = $3 AND txn_date = $4 AND payee = $5
				AND spent IS NOT DISTINCT FROM $7::numeric AND received IS NOT DISTINCT FROM $8::numeric
		)
		RETURNING id, created_at, updated_at
	`

	findStagedTransactionByIDQuery = `
		SELECT ` + selectStagedTransactionFields + `
		FROM ` + stagedTransactionsTable + `
		WHERE company_id = $1 AND id = $2
	`

	findStagedTransactionsByIDsQuery = `
		SELECT ` + selectStagedTransactionFields + `
		FROM ` + stagedTransactionsTable + `
		WHERE company_id = $1 AND id = ANY($2)
		ORDER BY txn_date, id
	`

	findStagedTransactionsByStatusQuery = `
		SELECT ` + selectStagedTransactionFields + `
		FROM ` + stagedTransactionsTable + `
		WHERE company_id = $1 AND status = $2
		ORDER BY txn_date, id
	`

	markStagedTransactionPushedQuery = `
		UPDATE ` + stagedTransactionsTable + `
		SET status = 'pushed', xero_transaction_id = $3, updated_at = NOW()
		WHERE company_id = $1 AND id = $2
	`

	deleteStagedTransactionQuery = `
		DELETE FROM ` + stagedTransactionsTable + `
		WHERE company_id = $1 AND id = $2
	`

	deleteAllStagedTransactionsQuery = `
		DELETE FROM ` + stagedTransactionsTable + `
		WHERE company_id = $1
	`

	wageFilterClause = ` AND (payee ILIKE '%wage%' OR particulars ILIKE '%wage%') AND spent > 0`
)

// CreateManyIfAbsent inserts every txn that is not already staged. Either all
// new rows are stored or none are.
func (r *PgxStagedTransactionRepository) CreateManyIfAbsent(ctx context.Context, txns []*domain.StagedTransaction) (int, error) {
	if len(txns) == 0 {
		return 0, nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer r.Rollback(ctx, tx) // Will be ignored if transaction is committed successfully

	inserted := 0
	for i, txn := range txns {
		if txn == nil {
			return 0, fmt.Errorf("transaction %d cannot be nil", i)
		}
		m := mapping.ToModelStagedTransaction(*txn)
		err := tx.QueryRow(ctx, insertStagedTransactionIfAbsentQuery,
			m.CompanyID, m.BankAccountName, m.BankAccountNumber, m.TxnDate, m.Payee,
			m.Particulars, m.Spent, m.Received, m.Tax, m.Comments, m.Status, m.CreatedAt,
		).Scan(&txn.ID, &txn.CreatedAt, &txn.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return 0, fmt.Errorf("failed to insert staged transaction: %w", err)
		}
		inserted++
	}

	if err := r.Commit(ctx, tx); err != nil {
		return 0, err
	}
	return inserted, nil
}

// FindByID retrieves one staged transaction.
func (r *PgxStagedTransactionRepository) FindByID(ctx context.Context, companyID, id int64) (*domain.StagedTransaction, error) {
	m, err := scanStagedTransaction(r.queryRow(ctx, findStagedTransactionByIDQuery, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find staged transaction %d: %w", id, err)
	}
	d := mapping.ToDomainStagedTransaction(*m)
	return &d, nil
}

// FindByIDs retrieves the listed rows; unknown ids are skipped.
func (r *PgxStagedTransactionRepository) FindByIDs(ctx context.Context, companyID int64, ids []int64) ([]domain.StagedTransaction, error) {
	if len(ids) == 0 {
		return []domain.StagedTransaction{}, nil
	}
	return r.collect(ctx, findStagedTransactionsByIDsQuery, companyID, ids)
}

// FindByStatus retrieves every row in status, oldest first.
func (r *PgxStagedTransactionRepository) FindByStatus(ctx context.Context, companyID int64, status domain.TransactionStatus) ([]domain.StagedTransaction, error) {
	return r.collect(ctx, findStagedTransactionsByStatusQuery, companyID, string(status))
}

// List returns one page ordered by (txn_date desc, id desc) and the token for the next page.
func (r *PgxStagedTransactionRepository) List(ctx context.Context, companyID int64, filter domain.TransactionFilter) ([]domain.StagedTransaction, string, error) {
	var sb strings.Builder
	args := []interface{}{companyID}

	sb.WriteString(`SELECT ` + selectStagedTransactionFields + ` FROM ` + stagedTransactionsTable + ` WHERE company_id = $1`)
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		sb.WriteString(` AND status = $` + strconv.Itoa(len(args)))
	}
	if filter.WageOnly {
		sb.WriteString(wageFilterClause)
	}
	if filter.PageToken != "" {
		lastDate, lastID, err := pagination.DecodeToken(filter.PageToken)
		if err != nil {
			return nil, "", apperrors.NewBadRequestError(err.Error())
		}
		args = append(args, lastDate, lastID)
		sb.WriteString(fmt.Sprintf(` AND (txn_date, id) < ($%d::date, $%d::bigint)`, len(args)-1, len(args)))
	}
	sb.WriteString(` ORDER BY txn_date DESC, id DESC`)
	if filter.Limit > 0 {
		// One extra row tells us whether a next page exists.
		args = append(args, filter.Limit+1)
		sb.WriteString(` LIMIT $` + strconv.Itoa(len(args)))
	}

	txns, err := r.collect(ctx, sb.String(), args...)
	if err != nil {
		return nil, "", err
	}

	nextToken := ""
	if filter.Limit > 0 && len(txns) > filter.Limit {
		txns = txns[:filter.Limit]
		last := txns[len(txns)-1]
		nextToken = pagination.EncodeToken(last.Date, last.ID)
	}
	return txns, nextToken, nil
}

// Update applies patch to one row.
func (r *PgxStagedTransactionRepository) Update(ctx context.Context, companyID, id int64, patch domain.TransactionPatch) (*domain.StagedTransaction, error) {
	if patch.IsEmpty() {
		return r.FindByID(ctx, companyID, id)
	}
	set, args := patchSetClause(patch, 3)
	sql := `UPDATE ` + stagedTransactionsTable + ` SET ` + set +
		` WHERE company_id = $1 AND id = $2 RETURNING ` + selectStagedTransactionFields

	m, err := scanStagedTransaction(r.queryRow(ctx, sql, append([]interface{}{companyID, id}, args...)...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update staged transaction %d: %w", id, err)
	}
	d := mapping.ToDomainStagedTransaction(*m)
	return &d, nil
}

// UpdateMany applies patch to every listed row and returns how many matched.
func (r *PgxStagedTransactionRepository) UpdateMany(ctx context.Context, companyID int64, ids []int64, patch domain.TransactionPatch) (int64, error) {
	if len(ids) == 0 || patch.IsEmpty() {
		return 0, nil
	}
	set, args := patchSetClause(patch, 3)
	sql := `UPDATE ` + stagedTransactionsTable + ` SET ` + set + ` WHERE company_id = $1 AND id = ANY($2)`

	tag, err := r.exec(ctx, sql, append([]interface{}{companyID, ids}, args...)...)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk update staged transactions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// MarkPushed records a successful push to Xero.
func (r *PgxStagedTransactionRepository) MarkPushed(ctx context.Context, companyID, id int64, xeroTransactionID string) error {
	tag, err := r.exec(ctx, markStagedTransactionPushedQuery, companyID, id, xeroTransactionID)
	if err != nil {
		return fmt.Errorf("failed to mark staged transaction %d pushed: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete removes one row.
func (r *PgxStagedTransactionRepository) Delete(ctx context.Context, companyID, id int64) error {
	tag, err := r.exec(ctx, deleteStagedTransactionQuery, companyID, id)
	if err != nil {
		return fmt.Errorf("failed to delete staged transaction %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteAll removes every row of the company.
func (r *PgxStagedTransactionRepository) DeleteAll(ctx context.Context, companyID int64) (int64, error) {
	tag, err := r.exec(ctx, deleteAllStagedTransactionsQuery, companyID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear staged transactions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PgxStagedTransactionRepository) collect(ctx context.Context, sql string, args ...interface{}) ([]domain.StagedTransaction, error) {
	rows, err := r.query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query staged transactions: %w", err)
	}
	defer rows.Close()

	var ms []models.StagedTransaction
	for rows.Next() {
		m, err := scanStagedTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan staged transaction row: %w", err)
		}
		ms = append(ms, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating staged transaction rows: %w", err)
	}
	return mapping.ToDomainStagedTransactionSlice(ms), nil
}

// patchSetClause renders the SET list for the non-nil patch fields, numbering
// placeholders from firstArg. updated_at is always bumped.
func patchSetClause(patch domain.TransactionPatch, firstArg int) (string, []interface{}) {
	var sets []string
	var args []interface{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, firstArg+len(args)-1))
	}
	if patch.AccountCode != nil {
		add("account_code", *patch.AccountCode)
	}
	if patch.AccountName != nil {
		add("account_name", *patch.AccountName)
	}
	if patch.Status != nil {
		add("status", string(*patch.Status))
	}
	sets = append(sets, "updated_at = NOW()")
	return strings.Join(sets, ", "), args
}

// scanStagedTransaction scans one row in selectStagedTransactionFields order.
func scanStagedTransaction(row pgx.Row) (*models.StagedTransaction, error) {
	var m models.StagedTransaction
	err := row.Scan(
		&m.ID,
		&m.CompanyID,
		&m.BankAccountName,
		&m.BankAccountNumber,
		&m.TxnDate,
		&m.Payee,
		&m.Particulars,
		&m.Spent,
		&m.Received,
		&m.Tax,
		&m.Comments,
		&m.Status,
		&m.AccountCode,
		&m.AccountName,
		&m.XeroTransactionID,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
