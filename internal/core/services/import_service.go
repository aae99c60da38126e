package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/SscSPs/xero_import_app/internal/apperrors"
	"github.com/SscSPs/xero_import_app/internal/core/domain"
	"github.com/SscSPs/xero_import_app/internal/core/ports/gateways"
	portsrepo "github.com/SscSPs/xero_import_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/xero_import_app/internal/core/ports/services"
	"github.com/SscSPs/xero_import_app/internal/core/statement"
)

// maxListLimit caps a single page of staged rows.
const maxListLimit = 500

type importService struct {
	BaseService
	txnRepo portsrepo.StagedTransactionRepositoryFacade
	archive gateways.StatementArchive
}

// ImportServiceOption configures the import service
type ImportServiceOption func(*importService)

// WithStatementArchive copies every uploaded file to archive before parsing.
func WithStatementArchive(archive gateways.StatementArchive) ImportServiceOption {
	return func(s *importService) {
		s.archive = archive
	}
}

// WithImportClock overrides the clock used for row timestamps.
func WithImportClock(now func() time.Time) ImportServiceOption {
	return func(s *importService) {
		s.now = now
	}
}

// NewImportService creates the staged transaction import service.
func NewImportService(txnRepo portsrepo.StagedTransactionRepositoryFacade, options ...ImportServiceOption) portssvc.ImportSvcFacade {
	svc := &importService{txnRepo: txnRepo}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ImportSvcFacade = (*importService)(nil)

func (s *importService) ImportStatement(ctx context.Context, companyID int64, filename string, r io.Reader) (domain.ImportSummary, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return domain.ImportSummary{}, fmt.Errorf("failed to read statement upload: %w", err)
	}

	summary := domain.ImportSummary{}
	if s.archive != nil {
		key, err := s.archive.Store(ctx, companyID, filename, body)
		if err != nil {
			s.LogWarn(ctx, err, "Failed to archive statement upload", slog.String("filename", filename))
		} else {
			summary.ArchiveKey = key
		}
	}

	lines, err := statement.ParseReader(bytes.NewReader(body))
	if err != nil {
		return domain.ImportSummary{}, err
	}
	summary.Parsed = len(lines)

	now := s.Now()
	rows := make([]*domain.StagedTransaction, 0, len(lines))
	for _, line := range lines {
		if !line.HasAmount() {
			summary.Rejected++
			continue
		}
		txn, err := domain.NewStagedTransaction(companyID, line, now)
		if err != nil {
			s.LogDebug(ctx, "Rejected statement line", slog.String("reason", err.Error()))
			summary.Rejected++
			continue
		}
		rows = append(rows, &txn)
	}

	saved, err := s.txnRepo.CreateManyIfAbsent(ctx, rows)
	if err != nil {
		s.LogError(ctx, err, "Failed to stage statement lines", slog.Int("rows", len(rows)))
		return domain.ImportSummary{}, fmt.Errorf("failed to stage statement lines: %w", err)
	}
	summary.Saved = saved
	summary.Duplicates = len(rows) - saved

	s.LogInfo(ctx, "Statement imported",
		slog.String("filename", filename),
		slog.Int("parsed", summary.Parsed),
		slog.Int("saved", summary.Saved),
		slog.Int("duplicates", summary.Duplicates),
		slog.Int("rejected", summary.Rejected))
	return summary, nil
}

func (s *importService) ListTransactions(ctx context.Context, companyID int64, filter domain.TransactionFilter) ([]domain.StagedTransaction, string, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, "", apperrors.NewBadRequestError(fmt.Sprintf("unknown status %q", *filter.Status))
	}
	if filter.Limit < 0 {
		return nil, "", apperrors.NewBadRequestError("limit must not be negative")
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}

	txns, next, err := s.txnRepo.List(ctx, companyID, filter)
	if err != nil {
		return nil, "", err
	}
	if txns == nil {
		txns = []domain.StagedTransaction{}
	}
	return txns, next, nil
}

func (s *importService) UpdateTransaction(ctx context.Context, companyID, id int64, patch domain.TransactionPatch) (*domain.StagedTransaction, error) {
	if err := patch.Validate(); err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}
	txn, err := s.txnRepo.Update(ctx, companyID, id, patch)
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *importService) BulkUpdateTransactions(ctx context.Context, companyID int64, ids []int64, patch domain.TransactionPatch) (int64, error) {
	if len(ids) == 0 {
		return 0, apperrors.NewBadRequestError("ids must not be empty")
	}
	if err := patch.Validate(); err != nil {
		return 0, apperrors.NewBadRequestError(err.Error())
	}
	if patch.IsEmpty() {
		return 0, apperrors.NewBadRequestError("no fields to update")
	}

	n, err := s.txnRepo.UpdateMany(ctx, companyID, ids, patch)
	if err != nil {
		s.LogError(ctx, err, "Bulk update failed", slog.Int("ids", len(ids)))
		return 0, err
	}
	return n, nil
}

func (s *importService) DeleteTransaction(ctx context.Context, companyID, id int64) error {
	return s.txnRepo.Delete(ctx, companyID, id)
}

func (s *importService) ClearTransactions(ctx context.Context, companyID int64) (int64, error) {
	n, err := s.txnRepo.DeleteAll(ctx, companyID)
	if err != nil {
		return 0, err
	}
	s.LogInfo(ctx, "Cleared staged transactions", slog.Int64("deleted", n))
	return n, nil
}
