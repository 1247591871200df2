package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// balanceTolerance absorbs float accumulation noise when comparing a
// recomputed quantity with the stored running balance.
const balanceTolerance = 1e-6

// LedgerIntegrityJob recomputes cumulative stock balances from the raw
// movement history and flags products whose stored running balance drifted.
type LedgerIntegrityJob struct {
	Pool   *pgxpool.Pool
	Logger *slog.Logger
	// Parallelism bounds the per-warehouse fan-out. Zero means 4.
	Parallelism int
}

// NewLedgerIntegrityJob constructs the integrity scan handler.
func NewLedgerIntegrityJob(pool *pgxpool.Pool, logger *slog.Logger) *LedgerIntegrityJob {
	return &LedgerIntegrityJob{Pool: pool, Logger: logger}
}

// Handle executes the scan across all warehouses.
func (j *LedgerIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("ledger integrity: handler not configured")
	}
	var payload IntegrityScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	warehouseIDs, err := j.warehouses(ctx)
	if err != nil {
		return err
	}

	parallelism := j.Parallelism
	if parallelism <= 0 {
		parallelism = 4
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for _, warehouseID := range warehouseIDs {
		g.Go(func() error {
			drifted, err := j.scanWarehouse(gctx, warehouseID)
			if err != nil {
				return err
			}
			if drifted > 0 {
				j.Logger.Warn("ledger balance drift detected",
					slog.Int64("warehouse_id", warehouseID),
					slog.Int("products", drifted))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	j.Logger.Info("ledger integrity scan finished", slog.Int("warehouses", len(warehouseIDs)))
	return nil
}

func (j *LedgerIntegrityJob) warehouses(ctx context.Context) ([]int64, error) {
	rows, err := j.Pool.Query(ctx, `SELECT id FROM almacenes ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// scanWarehouse compares, per product, the sum of movement deltas with the
// running balance stored on the latest movement row.
func (j *LedgerIntegrityJob) scanWarehouse(ctx context.Context, warehouseID int64) (int, error) {
	rows, err := j.Pool.Query(ctx,
		`SELECT m.producto_id, SUM(m.cantidad) AS recomputed,
		        (SELECT u.saldo_cantidad FROM movimientos_inventario u
		          WHERE u.producto_id = m.producto_id AND u.almacen_id = m.almacen_id
		          ORDER BY u.registrado_en DESC, u.id DESC LIMIT 1) AS stored
		 FROM movimientos_inventario m
		 WHERE m.almacen_id = $1
		 GROUP BY m.producto_id, m.almacen_id`, warehouseID)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	drifted := 0
	for rows.Next() {
		var (
			productID          int64
			recomputed, stored float64
		)
		if err := rows.Scan(&productID, &recomputed, &stored); err != nil {
			return 0, err
		}
		if math.Abs(recomputed-stored) > balanceTolerance {
			drifted++
			j.Logger.Warn("running balance mismatch",
				slog.Int64("warehouse_id", warehouseID),
				slog.Int64("product_id", productID),
				slog.Float64("recomputed", recomputed),
				slog.Float64("stored", stored))
		}
	}
	return drifted, rows.Err()
}
