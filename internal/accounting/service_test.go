package accounting

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/solvia-erp/solvia-erp/internal/shared"
	"github.com/solvia-erp/solvia-erp/internal/txlog"
)

type memoryRepo struct {
	headers map[int64]JournalEntry
	details map[int64][]JournalLine
	logs    []txlog.Entry
	nextID  int64

	failLine int // fail on the nth InsertEntryLine call, 0 = never
	lineCall int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		headers: make(map[int64]JournalEntry),
		details: make(map[int64][]JournalLine),
	}
}

type memoryTx struct {
	repo *memoryRepo
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	headers := make(map[int64]JournalEntry, len(r.headers))
	for k, v := range r.headers {
		headers[k] = v
	}
	details := make(map[int64][]JournalLine, len(r.details))
	for k, v := range r.details {
		details[k] = v
	}
	logs := append([]txlog.Entry(nil), r.logs...)
	nextID := r.nextID

	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.headers = headers
		r.details = details
		r.logs = logs
		r.nextID = nextID
		return err
	}
	return nil
}

func (r *memoryRepo) GetEntry(ctx context.Context, id int64) (JournalEntry, error) {
	entry, ok := r.headers[id]
	if !ok {
		return JournalEntry{}, ErrNotFound
	}
	entry.Lines = r.details[id]
	return entry, nil
}

func (r *memoryRepo) ListEntries(ctx context.Context, filter ListFilter) ([]JournalEntry, shared.Pagination, error) {
	var entries []JournalEntry
	for _, entry := range r.headers {
		entries = append(entries, entry)
	}
	return entries, shared.NewPagination(filter.Page, filter.PerPage, len(entries)), nil
}

func (t *memoryTx) InsertEntryHeader(ctx context.Context, entry JournalEntry) (int64, error) {
	t.repo.nextID++
	entry.ID = t.repo.nextID
	entry.Lines = nil
	t.repo.headers[entry.ID] = entry
	return entry.ID, nil
}

func (t *memoryTx) InsertEntryLine(ctx context.Context, entryID int64, line JournalLine) error {
	t.repo.lineCall++
	if t.repo.failLine > 0 && t.repo.lineCall == t.repo.failLine {
		return errors.New("detail insert rejected")
	}
	t.repo.details[entryID] = append(t.repo.details[entryID], line)
	return nil
}

func (t *memoryTx) AppendLog(ctx context.Context, entry txlog.Entry) (int64, error) {
	t.repo.nextID++
	entry.ID = t.repo.nextID
	t.repo.logs = append(t.repo.logs, entry)
	return entry.ID, nil
}

func TestCreateEntryComputesBalancedTotals(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	amount := decimal.NewFromInt(282750)
	result, err := svc.CreateEntry(context.Background(), CreateEntryInput{
		JournalCode: "VENTAS",
		Description: "Venta al contado",
		ActorID:     4,
		Lines: []JournalLine{
			{AccountID: 1211, Debit: amount},
			{AccountID: 7011, Credit: amount},
		},
	})
	require.NoError(t, err)
	require.True(t, result.Entry.TotalDebit.Equal(amount), "total debit = %s", result.Entry.TotalDebit)
	require.True(t, result.Entry.TotalCredit.Equal(amount), "total credit = %s", result.Entry.TotalCredit)
	require.NotZero(t, result.TransactionLogID)

	require.Len(t, repo.logs, 1)
	require.Equal(t, txlog.TypeJournalEntry, repo.logs[0].Type)
	require.Equal(t, result.Entry.ID, repo.logs[0].ReferenceID)
	require.Len(t, repo.details[result.Entry.ID], 2)
}

func TestCreateEntryRejectsUnbalanced(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	_, err := svc.CreateEntry(context.Background(), CreateEntryInput{
		JournalCode: "DIARIO",
		Lines: []JournalLine{
			{AccountID: 1211, Debit: decimal.NewFromInt(100)},
			{AccountID: 7011, Credit: decimal.NewFromInt(99)},
		},
	})
	require.ErrorIs(t, err, ErrUnbalanced)
	require.Empty(t, repo.headers, "validation happens before any write")
	require.Empty(t, repo.logs)
}

func TestCreateEntryAllowsDebitAndCreditOnOneLine(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	// A single line carrying equal debit and credit is balanced and valid.
	result, err := svc.CreateEntry(context.Background(), CreateEntryInput{
		JournalCode: "DIARIO",
		Lines: []JournalLine{
			{AccountID: 1211, Debit: decimal.NewFromInt(50), Credit: decimal.NewFromInt(50)},
		},
	})
	require.NoError(t, err)
	require.True(t, result.Entry.TotalDebit.Equal(decimal.NewFromInt(50)))
	require.True(t, result.Entry.TotalCredit.Equal(decimal.NewFromInt(50)))
	require.Len(t, repo.details[result.Entry.ID], 1)
}

func TestCreateEntryRollsBackHeaderOnLineFailure(t *testing.T) {
	repo := newMemoryRepo()
	repo.failLine = 2
	svc := NewService(repo)

	_, err := svc.CreateEntry(context.Background(), CreateEntryInput{
		JournalCode: "DIARIO",
		Lines: []JournalLine{
			{AccountID: 1211, Debit: decimal.NewFromInt(100)},
			{AccountID: 7011, Credit: decimal.NewFromInt(100)},
		},
	})
	require.Error(t, err)
	require.Empty(t, repo.headers, "no orphan header after detail failure")
	require.Empty(t, repo.details)
	require.Empty(t, repo.logs)
}

func TestCreateEntryRejectsNegativeAmounts(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.CreateEntry(context.Background(), CreateEntryInput{
		JournalCode: "DIARIO",
		Lines: []JournalLine{
			{AccountID: 1211, Debit: decimal.NewFromInt(-10)},
			{AccountID: 7011, Credit: decimal.NewFromInt(-10)},
		},
	})
	require.ErrorIs(t, err, ErrNegativeAmount)
}

func TestCreateEntryValidatesInput(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.CreateEntry(context.Background(), CreateEntryInput{JournalCode: "DIARIO"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateEntry(context.Background(), CreateEntryInput{
		Lines: []JournalLine{{AccountID: 1211}},
	})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateEntry(context.Background(), CreateEntryInput{
		JournalCode: "DIARIO",
		Lines:       []JournalLine{{AccountID: 0, Debit: decimal.NewFromInt(10)}},
	})
	require.ErrorIs(t, err, ErrValidation)
}
