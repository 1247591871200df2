package procurement

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Purchase order lifecycle statuses.
type POStatus string

const (
	POStatusPending   POStatus = "PENDIENTE"
	POStatusApproved  POStatus = "APROBADA"
	POStatusCompleted POStatus = "COMPLETADA"
	POStatusCancelled POStatus = "ANULADA"
)

// Goods receipt statuses.
type ReceiptStatus string

const (
	ReceiptStatusRegistered ReceiptStatus = "REGISTRADA"
	ReceiptStatusCancelled  ReceiptStatus = "ANULADA"
)

// PurchaseOrder is the document header returned by the creation flows.
type PurchaseOrder struct {
	ID         int64           `json:"id"`
	Number     string          `json:"number"`
	SupplierID int64           `json:"supplier_id"`
	Date       time.Time       `json:"date"`
	Currency   string          `json:"currency"`
	Status     POStatus        `json:"status"`
	Total      decimal.Decimal `json:"total"`
	Note       string          `json:"note"`
}

// POLine is one ordered item.
type POLine struct {
	ProductID int64           `json:"product_id"`
	Qty       float64         `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
}

// GoodsReceipt is the receipt document header.
type GoodsReceipt struct {
	ID          int64           `json:"id"`
	POID        int64           `json:"po_id"`
	SupplierID  int64           `json:"supplier_id"`
	WarehouseID int64           `json:"warehouse_id"`
	Status      ReceiptStatus   `json:"status"`
	ReceivedAt  time.Time       `json:"received_at"`
	Total       decimal.Decimal `json:"total"`
	Note        string          `json:"note"`
}

// ReceiptLine is one received item.
type ReceiptLine struct {
	ProductID int64           `json:"product_id"`
	Qty       float64         `json:"qty"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// Supplier mirrors the catalog record the quick flow resolves or creates.
type Supplier struct {
	ID        int64
	Name      string
	TaxID     string
	UpdatedAt time.Time
}

var (
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("procurement: invalid input")
	// ErrNotFound indicates record missing.
	ErrNotFound = errors.New("procurement: not found")
	// ErrOrderNotRegistered surfaces a collaborator-contract failure: the
	// order creation function returned no identifier.
	ErrOrderNotRegistered = errors.New("procurement: could not register purchase order")
)
