package inventory

import (
	"errors"

	"github.com/solvia-erp/solvia-erp/internal/ledger"
)

// TransferLine is one product moved between warehouses.
type TransferLine struct {
	ProductID int64
	Qty       float64
	UnitCost  float64
}

// TransferInput describes a multi-line transfer between two warehouses.
type TransferInput struct {
	SourceWarehouse int64
	DestWarehouse   int64
	Reason          string
	ActorID         int64
	Lines           []TransferLine
}

// MovementPair groups the outbound and inbound movements of one transfer line.
type MovementPair struct {
	ProductID int64           `json:"product_id"`
	Qty       float64         `json:"qty"`
	Out       ledger.Movement `json:"out"`
	In        ledger.Movement `json:"in"`
}

// TransferResult reports the committed transfer.
type TransferResult struct {
	LogID     int64          `json:"log_id"`
	Movements []MovementPair `json:"movements"`
}

// AdjustmentInput describes a single signed stock correction.
type AdjustmentInput struct {
	WarehouseID int64
	ProductID   int64
	QtyDelta    float64
	UnitCost    float64
	Reason      string
	ActorID     int64
}

// StockLevel summarises current stock of one product at one warehouse.
type StockLevel struct {
	ProductID   int64   `json:"product_id"`
	ProductCode string  `json:"product_code"`
	WarehouseID int64   `json:"warehouse_id"`
	Qty         float64 `json:"qty"`
	AvgCost     float64 `json:"avg_cost"`
}

var (
	// ErrSameWarehouse rejects transfers where origin equals destination.
	ErrSameWarehouse = errors.New("inventory: source and destination warehouse must differ")
	// ErrNoMovements signals a flow that would commit an empty transaction.
	ErrNoMovements = errors.New("inventory: no movements generated")
	// ErrMissingWarehouse rejects flows without both warehouses.
	ErrMissingWarehouse = errors.New("inventory: warehouse required")
)
