package accounting

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/solvia-erp/solvia-erp/internal/shared"
	"github.com/solvia-erp/solvia-erp/internal/txlog"
)

// TxRepository exposes transactional operations used by the service.
type TxRepository interface {
	InsertEntryHeader(ctx context.Context, entry JournalEntry) (int64, error)
	InsertEntryLine(ctx context.Context, entryID int64, line JournalLine) error
	AppendLog(ctx context.Context, entry txlog.Entry) (int64, error)
}

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetEntry(ctx context.Context, id int64) (JournalEntry, error)
	ListEntries(ctx context.Context, filter ListFilter) ([]JournalEntry, shared.Pagination, error)
}

// ListFilter narrows the journal book listing.
type ListFilter struct {
	JournalCode string
	From        time.Time
	To          time.Time
	Page        int
	PerPage     int
}

// Service orchestrates journal entry construction.
type Service struct {
	repo RepositoryPort
	now  func() time.Time
}

// NewService constructs accounting service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithNow overrides the clock, used by tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreateEntryInput describes the journal entry request.
type CreateEntryInput struct {
	Date        time.Time
	JournalCode string
	Description string
	ActorID     int64
	Lines       []JournalLine
}

// CreateEntryResult pairs the committed entry with its audit log id.
type CreateEntryResult struct {
	Entry            JournalEntry `json:"entry"`
	TransactionLogID int64        `json:"transaction_log_id"`
}

// CreateEntry computes the entry totals as sums over the lines, verifies the
// debit/credit identity before touching storage, then inserts the header,
// one detail row per line, and the transaction-log snapshot in one scope. A
// detail failure rolls back the header, so no entry ever commits with zero
// lines.
func (s *Service) CreateEntry(ctx context.Context, input CreateEntryInput) (CreateEntryResult, error) {
	if input.JournalCode == "" || len(input.Lines) == 0 {
		return CreateEntryResult{}, ErrValidation
	}
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, line := range input.Lines {
		if line.AccountID == 0 {
			return CreateEntryResult{}, ErrValidation
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return CreateEntryResult{}, ErrNegativeAmount
		}
		totalDebit = totalDebit.Add(line.Debit)
		totalCredit = totalCredit.Add(line.Credit)
	}
	if !totalDebit.Equal(totalCredit) {
		return CreateEntryResult{}, fmt.Errorf("%w: debe %s, haber %s", ErrUnbalanced, totalDebit, totalCredit)
	}
	date := input.Date
	if date.IsZero() {
		date = s.now()
	}
	entry := JournalEntry{
		Date:        date,
		JournalCode: input.JournalCode,
		Description: input.Description,
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		Lines:       input.Lines,
	}

	var result CreateEntryResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertEntryHeader(ctx, entry)
		if err != nil {
			return err
		}
		lineDetail := make([]map[string]any, 0, len(input.Lines))
		for _, line := range input.Lines {
			if err := tx.InsertEntryLine(ctx, id, line); err != nil {
				return err
			}
			lineDetail = append(lineDetail, map[string]any{
				"cuenta_id": line.AccountID,
				"debe":      line.Debit,
				"haber":     line.Credit,
			})
		}
		logID, err := tx.AppendLog(ctx, txlog.Entry{
			Type:        txlog.TypeJournalEntry,
			ReferenceID: id,
			Description: fmt.Sprintf("Asiento %s %s", input.JournalCode, date.Format("2006-01-02")),
			ActorID:     input.ActorID,
			Payload: map[string]any{
				"diario":      input.JournalCode,
				"total_debe":  totalDebit,
				"total_haber": totalCredit,
				"lineas":      lineDetail,
			},
		})
		if err != nil {
			return err
		}
		entry.ID = id
		result = CreateEntryResult{Entry: entry, TransactionLogID: logID}
		return nil
	})
	if err != nil {
		return CreateEntryResult{}, err
	}
	return result, nil
}

// GetEntry loads a single entry with its lines.
func (s *Service) GetEntry(ctx context.Context, id int64) (JournalEntry, error) {
	return s.repo.GetEntry(ctx, id)
}

// ListEntries pages through the journal books.
func (s *Service) ListEntries(ctx context.Context, filter ListFilter) ([]JournalEntry, shared.Pagination, error) {
	return s.repo.ListEntries(ctx, filter)
}
