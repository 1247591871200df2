package sales

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solvia-erp/solvia-erp/internal/ledger"
	"github.com/solvia-erp/solvia-erp/internal/platform/db"
	"github.com/solvia-erp/solvia-erp/internal/txlog"
)

// Repository persists sales documents in PostgreSQL.
type Repository struct {
	pool     *pgxpool.Pool
	ledger   *ledger.Recorder
	recorder *txlog.Recorder
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool, ledgerRec *ledger.Recorder, logRec *txlog.Recorder) *Repository {
	return &Repository{pool: pool, ledger: ledgerRec, recorder: logRec}
}

type txRepo struct {
	tx       pgx.Tx
	ledger   *ledger.Recorder
	recorder *txlog.Recorder
}

// WithTx executes fn inside one transaction scope.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx, ledger: r.ledger, recorder: r.recorder})
	})
}

func (t *txRepo) CallCreateSalesOrder(ctx context.Context, payload CreateSOPayload) (int64, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}
	var id *int64
	if err := t.tx.QueryRow(ctx, `SELECT fn_crear_orden_venta($1::jsonb)`, raw).Scan(&id); err != nil {
		return 0, err
	}
	if id == nil {
		return 0, nil
	}
	return *id, nil
}

func (t *txRepo) RecordMovement(ctx context.Context, input ledger.MovementInput) (ledger.Movement, error) {
	return t.ledger.Record(ctx, t.tx, input)
}

func (t *txRepo) AppendLog(ctx context.Context, entry txlog.Entry) (int64, error) {
	return t.recorder.Record(ctx, t.tx, entry)
}

// GetSalesOrder loads one order header.
func (r *Repository) GetSalesOrder(ctx context.Context, id int64) (SalesOrder, error) {
	var (
		order  SalesOrder
		status string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, cliente_id, fecha, moneda, estado, total, COALESCE(observaciones, '')
		 FROM ordenes_venta WHERE id = $1`, id,
	).Scan(&order.ID, &order.ClientID, &order.Date, &order.Currency, &status, &order.Total, &order.Note)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SalesOrder{}, ErrNotFound
		}
		return SalesOrder{}, err
	}
	order.Status = SOStatus(status)
	return order, nil
}
