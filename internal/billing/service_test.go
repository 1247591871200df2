package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/solvia-erp/solvia-erp/internal/txlog"
)

type memoryRepo struct {
	invoices map[int64]Invoice
	logs     []txlog.Entry
	nextID   int64

	fnResult IssueResult
	fnErr    error
	logErr   error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		invoices: make(map[int64]Invoice),
		fnResult: IssueResult{InvoiceID: 1},
	}
}

type memoryTx struct {
	repo *memoryRepo
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	logs := append([]txlog.Entry(nil), r.logs...)
	nextID := r.nextID

	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.logs = logs
		r.nextID = nextID
		return err
	}
	return nil
}

func (r *memoryRepo) GetInvoice(ctx context.Context, id int64) (Invoice, error) {
	invoice, ok := r.invoices[id]
	if !ok {
		return Invoice{}, ErrNotFound
	}
	return invoice, nil
}

func (t *memoryTx) CallIssueInvoice(ctx context.Context, payload IssuePayload) (IssueResult, error) {
	if t.repo.fnErr != nil {
		return IssueResult{}, t.repo.fnErr
	}
	return t.repo.fnResult, nil
}

func (t *memoryTx) AppendLog(ctx context.Context, entry txlog.Entry) (int64, error) {
	if t.repo.logErr != nil {
		return 0, t.repo.logErr
	}
	t.repo.nextID++
	entry.ID = t.repo.nextID
	t.repo.logs = append(t.repo.logs, entry)
	return entry.ID, nil
}

func TestIssueInvoiceUsesComputedTotal(t *testing.T) {
	repo := newMemoryRepo()
	repo.fnResult = IssueResult{InvoiceID: 15, Total: decimal.RequireFromString("354.00")}
	svc := NewService(repo)

	invoice, err := svc.IssueInvoice(context.Background(), IssueInvoiceInput{
		ClientID: 9,
		ActorID:  4,
		Lines:    []InvoiceLine{{ProductID: 10, Qty: 2, UnitPrice: decimal.NewFromInt(150)}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(15), invoice.ID)
	require.Equal(t, InvoiceStatusIssued, invoice.Status)
	require.True(t, invoice.Total.Equal(decimal.RequireFromString("354.00")), "total = %s", invoice.Total)

	require.Len(t, repo.logs, 1)
	require.Equal(t, txlog.TypeInvoice, repo.logs[0].Type)
	require.Equal(t, int64(15), repo.logs[0].ReferenceID)
}

func TestIssueInvoiceCollaboratorFailure(t *testing.T) {
	repo := newMemoryRepo()
	repo.fnResult = IssueResult{} // issuance function returned no id
	svc := NewService(repo)

	_, err := svc.IssueInvoice(context.Background(), IssueInvoiceInput{
		ClientID: 9,
		Lines:    []InvoiceLine{{ProductID: 10, Qty: 1}},
	})
	require.ErrorIs(t, err, ErrInvoiceNotIssued)
	require.Empty(t, repo.logs)
}

func TestIssueInvoiceRollsBackOnLogFailure(t *testing.T) {
	repo := newMemoryRepo()
	repo.fnResult = IssueResult{InvoiceID: 20, Total: decimal.NewFromInt(100)}
	repo.logErr = errors.New("log insert rejected")
	svc := NewService(repo)

	_, err := svc.IssueInvoice(context.Background(), IssueInvoiceInput{
		ClientID: 9,
		Lines:    []InvoiceLine{{ProductID: 10, Qty: 1}},
	})
	require.Error(t, err)
	require.Empty(t, repo.logs)
}

func TestIssueInvoiceValidatesInput(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.IssueInvoice(context.Background(), IssueInvoiceInput{Lines: []InvoiceLine{{ProductID: 1, Qty: 1}}})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.IssueInvoice(context.Background(), IssueInvoiceInput{ClientID: 9})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.IssueInvoice(context.Background(), IssueInvoiceInput{ClientID: 9, Lines: []InvoiceLine{{ProductID: 1, Qty: 0}}})
	require.ErrorIs(t, err, ErrValidation)
}

func TestIssueInvoiceResubmissionIssuesTwice(t *testing.T) {
	repo := newMemoryRepo()
	repo.fnResult = IssueResult{InvoiceID: 1, Total: decimal.NewFromInt(50)}
	svc := NewService(repo)

	input := IssueInvoiceInput{ClientID: 9, Lines: []InvoiceLine{{ProductID: 10, Qty: 1}}}
	_, err := svc.IssueInvoice(context.Background(), input)
	require.NoError(t, err)
	repo.fnResult.InvoiceID = 2
	_, err = svc.IssueInvoice(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, repo.logs, 2, "no deduplication between identical submissions")
}
