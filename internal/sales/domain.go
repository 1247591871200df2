package sales

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Sales order lifecycle statuses.
type SOStatus string

const (
	SOStatusPending   SOStatus = "PENDIENTE"
	SOStatusApproved  SOStatus = "APROBADA"
	SOStatusCompleted SOStatus = "COMPLETADA"
	SOStatusCancelled SOStatus = "ANULADA"
)

// SalesOrder is the document header returned by the creation flow.
type SalesOrder struct {
	ID       int64           `json:"id"`
	ClientID int64           `json:"client_id"`
	Date     time.Time       `json:"date"`
	Currency string          `json:"currency"`
	Status   SOStatus        `json:"status"`
	Total    decimal.Decimal `json:"total"`
	Note     string          `json:"note"`
}

// SOLine is one ordered item.
type SOLine struct {
	ProductID int64           `json:"product_id"`
	Qty       float64         `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
}

// DeliveryLine is one shipped item.
type DeliveryLine struct {
	ProductID int64   `json:"product_id"`
	Qty       float64 `json:"qty"`
}

// Delivery reports the committed outbound flow.
type Delivery struct {
	LogID        int64   `json:"log_id"`
	SalesOrderID int64   `json:"sales_order_id,omitempty"`
	WarehouseID  int64   `json:"warehouse_id"`
	MovementIDs  []int64 `json:"movement_ids"`
}

var (
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("sales: invalid input")
	// ErrNotFound indicates record missing.
	ErrNotFound = errors.New("sales: not found")
	// ErrOrderNotRegistered surfaces a collaborator-contract failure from the
	// order creation function.
	ErrOrderNotRegistered = errors.New("sales: could not register sales order")
	// ErrNoMovements signals a delivery that generated nothing to ship.
	ErrNoMovements = errors.New("sales: no movements generated")
)
