package procurement

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePORequest is the JSON payload for POST /purchasing/orders.
type CreatePORequest struct {
	SupplierID int64           `json:"supplier_id" validate:"required,gt=0"`
	Date       *time.Time      `json:"date,omitempty"`
	Currency   string          `json:"currency" validate:"omitempty,len=3"`
	Note       string          `json:"note" validate:"max=500"`
	Lines      []POLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// POLineRequest is one requested line.
type POLineRequest struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Qty       float64         `json:"qty" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
}

// CreateReceiptRequest is the JSON payload for POST /purchasing/receipts.
type CreateReceiptRequest struct {
	POID        int64                `json:"po_id" validate:"gte=0"`
	SupplierID  int64                `json:"supplier_id" validate:"required,gt=0"`
	WarehouseID int64                `json:"warehouse_id" validate:"required,gt=0"`
	ReceivedAt  *time.Time           `json:"received_at,omitempty"`
	Note        string               `json:"note" validate:"max=500"`
	Lines       []ReceiptLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ReceiptLineRequest is one received line.
type ReceiptLineRequest struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Qty       float64         `json:"qty" validate:"required,gt=0"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// QuickPORequest is the JSON payload for POST /purchasing/orders/quick.
type QuickPORequest struct {
	SupplierName string          `json:"supplier_name" validate:"required,max=200"`
	Currency     string          `json:"currency" validate:"omitempty,len=3"`
	Note         string          `json:"note" validate:"max=500"`
	Total        decimal.Decimal `json:"total"`
}
