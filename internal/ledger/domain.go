// Package ledger records single inventory movements. Balance arithmetic and
// persistence live in the fn_registrar_movimiento stored function; this
// package owns input validation and the call contract.
package ledger

import (
	"errors"
	"time"
)

// Movement is one signed quantity change to a product's stock at a warehouse.
// Immutable once created; running balances come back computed by the database
// and are derived, never independently writable.
type Movement struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"product_id"`
	WarehouseID int64     `json:"warehouse_id"`
	QtyDelta    float64   `json:"qty_delta"`
	UnitCost    float64   `json:"unit_cost"`
	Reason      string    `json:"reason"`
	ActorID     int64     `json:"actor_id"`
	PostedAt    time.Time `json:"posted_at"`
	RunningQty  float64   `json:"running_qty"`
	RunningCost float64   `json:"running_cost"`
}

// MovementInput describes the movement to record. QtyDelta sign encodes
// direction: positive inbound, negative outbound. Callers normalize to
// absolute value and apply the sign explicitly.
type MovementInput struct {
	ProductID   int64
	WarehouseID int64
	QtyDelta    float64
	UnitCost    float64
	Reason      string
	ActorID     int64
}

var (
	// ErrInvalidQuantity rejects zero or NaN deltas before any write.
	ErrInvalidQuantity = errors.New("ledger: quantity delta must be a non-zero number")
	// ErrInvalidUnitCost rejects negative unit costs.
	ErrInvalidUnitCost = errors.New("ledger: unit cost must be >= 0")
	// ErrMissingTarget rejects movements without product or warehouse.
	ErrMissingTarget = errors.New("ledger: product and warehouse required")
)
