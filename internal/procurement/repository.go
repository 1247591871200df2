package procurement

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/solvia-erp/solvia-erp/internal/ledger"
	"github.com/solvia-erp/solvia-erp/internal/platform/db"
	"github.com/solvia-erp/solvia-erp/internal/txlog"
)

// Repository persists procurement documents in PostgreSQL.
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

// CallCreatePurchaseOrder invokes the opaque order-creation function. A NULL
// result means the collaborator refused the document.
func (t *txRepo) CallCreatePurchaseOrder(ctx context.Context, payload CreatePOPayload) (int64, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}
	var id *int64
	if err := t.tx.QueryRow(ctx, `SELECT fn_crear_orden_compra($1::jsonb)`, raw).Scan(&id); err != nil {
		return 0, err
	}
	if id == nil {
		return 0, nil
	}
	return *id, nil
}

func (t *txRepo) InsertReceiptHeader(ctx context.Context, receipt GoodsReceipt) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO recepciones (orden_compra_id, proveedor_id, almacen_id, estado, recibido_en, observaciones, total)
		 VALUES ($1, $2, $3, $4, $5, $6, 0)
		 RETURNING id`,
		receipt.POID, receipt.SupplierID, receipt.WarehouseID, string(receipt.Status), receipt.ReceivedAt, receipt.Note,
	).Scan(&id)
	return id, err
}

func (t *txRepo) InsertReceiptLine(ctx context.Context, receiptID int64, line ReceiptLine) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO detalle_recepciones (recepcion_id, producto_id, cantidad, costo_unitario)
		 VALUES ($1, $2, $3, $4)`,
		receiptID, line.ProductID, line.Qty, line.UnitCost)
	return err
}

func (t *txRepo) UpdateReceiptTotal(ctx context.Context, receiptID int64, total decimal.Decimal) error {
	_, err := t.tx.Exec(ctx, `UPDATE recepciones SET total = $2 WHERE id = $1`, receiptID, total)
	return err
}

func (t *txRepo) RecordMovement(ctx context.Context, input ledger.MovementInput) (ledger.Movement, error) {
	return t.ledger.Record(ctx, t.tx, input)
}

func (t *txRepo) AppendLog(ctx context.Context, entry txlog.Entry) (int64, error) {
	return t.recorder.Record(ctx, t.tx, entry)
}

// GetPurchaseOrder loads one order header.
func (r *Repository) GetPurchaseOrder(ctx context.Context, id int64) (PurchaseOrder, error) {
	var (
		order  PurchaseOrder
		status string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, numero, proveedor_id, fecha, moneda, estado, total, COALESCE(observaciones, '')
		 FROM ordenes_compra WHERE id = $1`, id,
	).Scan(&order.ID, &order.Number, &order.SupplierID, &order.Date, &order.Currency, &status, &order.Total, &order.Note)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseOrder{}, ErrNotFound
		}
		return PurchaseOrder{}, err
	}
	order.Status = POStatus(status)
	return order, nil
}

// InsertQuickOrder inserts the convenience order outside any transaction scope.
func (r *Repository) InsertQuickOrder(ctx context.Context, order PurchaseOrder) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO ordenes_compra (numero, proveedor_id, fecha, moneda, estado, total, observaciones)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		order.Number, order.SupplierID, order.Date, order.Currency, string(order.Status), order.Total, order.Note,
	).Scan(&id)
	return id, err
}

// NextOrderSequence draws the next value from the order-number sequence.
// Monotonic and gap-tolerant: concurrent callers never collide, numbers may
// skip on rollback.
func (r *Repository) NextOrderSequence(ctx context.Context) (int64, error) {
	var seq int64
	err := r.pool.QueryRow(ctx, `SELECT nextval('seq_ordenes_compra')`).Scan(&seq)
	return seq, err
}

// AppendLogDirect appends a log entry outside any transaction scope.
func (r *Repository) AppendLogDirect(ctx context.Context, entry txlog.Entry) (int64, error) {
	return r.recorder.Record(ctx, r.pool, entry)
}
