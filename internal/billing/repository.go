package billing

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/solvia-erp/solvia-erp/internal/platform/db"
	"github.com/solvia-erp/solvia-erp/internal/txlog"
)

// Repository persists invoices in PostgreSQL.
type Repository struct {
	pool     *pgxpool.Pool
	recorder *txlog.Recorder
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool, logRec *txlog.Recorder) *Repository {
	return &Repository{pool: pool, recorder: logRec}
}

type txRepo struct {
	tx       pgx.Tx
	recorder *txlog.Recorder
}

// WithTx executes fn inside one transaction scope.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx, recorder: r.recorder})
	})
}

func (t *txRepo) CallIssueInvoice(ctx context.Context, payload IssuePayload) (IssueResult, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return IssueResult{}, err
	}
	var (
		id    *int64
		total decimal.NullDecimal
	)
	err = t.tx.QueryRow(ctx,
		`SELECT factura_id, total FROM fn_emitir_factura($1::jsonb)`, raw,
	).Scan(&id, &total)
	if err != nil {
		return IssueResult{}, err
	}
	result := IssueResult{}
	if id != nil {
		result.InvoiceID = *id
	}
	if total.Valid {
		result.Total = total.Decimal
	}
	return result, nil
}

func (t *txRepo) AppendLog(ctx context.Context, entry txlog.Entry) (int64, error) {
	return t.recorder.Record(ctx, t.tx, entry)
}

// GetInvoice loads one invoice header.
func (r *Repository) GetInvoice(ctx context.Context, id int64) (Invoice, error) {
	var (
		invoice Invoice
		status  string
		soID    *int64
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, cliente_id, orden_venta_id, fecha, moneda, estado, total, COALESCE(observaciones, '')
		 FROM facturas WHERE id = $1`, id,
	).Scan(&invoice.ID, &invoice.ClientID, &soID, &invoice.Date, &invoice.Currency, &status, &invoice.Total, &invoice.Note)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invoice{}, ErrNotFound
		}
		return Invoice{}, err
	}
	if soID != nil {
		invoice.SalesOrderID = *soID
	}
	invoice.Status = InvoiceStatus(status)
	return invoice, nil
}
