package inventory

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solvia-erp/solvia-erp/internal/ledger"
	"github.com/solvia-erp/solvia-erp/internal/platform/db"
	"github.com/solvia-erp/solvia-erp/internal/shared"
	"github.com/solvia-erp/solvia-erp/internal/txlog"
)

// Repository persists inventory flows in PostgreSQL.
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

func (t *txRepo) RecordMovement(ctx context.Context, input ledger.MovementInput) (ledger.Movement, error) {
	return t.ledger.Record(ctx, t.tx, input)
}

func (t *txRepo) AppendLog(ctx context.Context, entry txlog.Entry) (int64, error) {
	return t.recorder.Record(ctx, t.tx, entry)
}

// ListMovements reads the movement ledger outside any transaction scope.
func (r *Repository) ListMovements(ctx context.Context, filter ledger.MovementFilter) ([]ledger.Movement, shared.Pagination, error) {
	return r.ledger.ListMovements(ctx, r.pool, filter)
}

// GetStockSummary reads current balances via the valuation view maintained by
// the database.
func (r *Repository) GetStockSummary(ctx context.Context, warehouseID int64) ([]StockLevel, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT producto_id, producto_codigo, almacen_id, cantidad, costo_promedio
		 FROM vw_saldos_inventario
		 WHERE almacen_id = $1
		 ORDER BY producto_codigo`,
		warehouseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var levels []StockLevel
	for rows.Next() {
		var lvl StockLevel
		if err := rows.Scan(&lvl.ProductID, &lvl.ProductCode, &lvl.WarehouseID, &lvl.Qty, &lvl.AvgCost); err != nil {
			return nil, err
		}
		levels = append(levels, lvl)
	}
	return levels, rows.Err()
}
