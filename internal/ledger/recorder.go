package ledger

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/solvia-erp/solvia-erp/internal/shared"
)

// Recorder posts movements through whatever querier the caller supplies.
// Flows that record several movements pass their open pgx.Tx so a mid-flow
// failure leaves stock untouched everywhere.
type Recorder struct{}

// NewRecorder constructs a Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record validates the input and delegates to fn_registrar_movimiento, a
// single atomic call that persists the movement and computes the running
// balances. Validation failures surface before any write.
func (r *Recorder) Record(ctx context.Context, q shared.Querier, input MovementInput) (Movement, error) {
	if input.ProductID == 0 || input.WarehouseID == 0 {
		return Movement{}, ErrMissingTarget
	}
	if input.QtyDelta == 0 || math.IsNaN(input.QtyDelta) || math.IsInf(input.QtyDelta, 0) {
		return Movement{}, ErrInvalidQuantity
	}
	if input.UnitCost < 0 || math.IsNaN(input.UnitCost) {
		return Movement{}, ErrInvalidUnitCost
	}

	m := Movement{
		ProductID:   input.ProductID,
		WarehouseID: input.WarehouseID,
		QtyDelta:    input.QtyDelta,
		UnitCost:    input.UnitCost,
		Reason:      input.Reason,
		ActorID:     input.ActorID,
	}
	err := q.QueryRow(ctx,
		`SELECT movimiento_id, saldo_cantidad, saldo_costo, registrado_en
		 FROM fn_registrar_movimiento($1, $2, $3, $4, $5, $6)`,
		input.ProductID, input.WarehouseID, input.QtyDelta, input.UnitCost, input.Reason, input.ActorID,
	).Scan(&m.ID, &m.RunningQty, &m.RunningCost, &m.PostedAt)
	if err != nil {
		return Movement{}, err
	}
	return m, nil
}

// MovementFilter narrows the movement listing.
type MovementFilter struct {
	ProductID   int64
	WarehouseID int64
	From        time.Time
	To          time.Time
	Page        int
	PerPage     int
}

// ListMovements returns recorded movements oldest first, so the cumulative sum
// over a page sequence reproduces the stock balance.
func (r *Recorder) ListMovements(ctx context.Context, q shared.Querier, filter MovementFilter) ([]Movement, shared.Pagination, error) {
	selectSQL := `SELECT id, producto_id, almacen_id, cantidad, costo_unitario, motivo, usuario_id, registrado_en, saldo_cantidad, saldo_costo
		FROM movimientos_inventario WHERE 1=1`
	countSQL := `SELECT COUNT(*) FROM movimientos_inventario WHERE 1=1`
	var args []any
	appendCond := func(cond string, val any) {
		args = append(args, val)
		placeholder := "$" + strconv.Itoa(len(args))
		selectSQL += " AND " + cond + " " + placeholder
		countSQL += " AND " + cond + " " + placeholder
	}
	if filter.ProductID != 0 {
		appendCond("producto_id =", filter.ProductID)
	}
	if filter.WarehouseID != 0 {
		appendCond("almacen_id =", filter.WarehouseID)
	}
	if !filter.From.IsZero() {
		appendCond("registrado_en >=", filter.From)
	}
	if !filter.To.IsZero() {
		appendCond("registrado_en <=", filter.To)
	}
	selectSQL += ` ORDER BY registrado_en ASC, id ASC`

	return shared.QueryPaged(ctx, q, selectSQL, countSQL, args, filter.Page, filter.PerPage, scanMovement)
}

func scanMovement(rows pgx.Rows) (Movement, error) {
	var m Movement
	err := rows.Scan(&m.ID, &m.ProductID, &m.WarehouseID, &m.QtyDelta, &m.UnitCost, &m.Reason, &m.ActorID, &m.PostedAt, &m.RunningQty, &m.RunningCost)
	return m, err
}
