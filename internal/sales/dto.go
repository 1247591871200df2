package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSORequest is the JSON payload for POST /sales/orders.
type CreateSORequest struct {
	ClientID int64           `json:"client_id" validate:"required,gt=0"`
	Date     *time.Time      `json:"date,omitempty"`
	Currency string          `json:"currency" validate:"omitempty,len=3"`
	Note     string          `json:"note" validate:"max=500"`
	Lines    []SOLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// SOLineRequest is one requested line.
type SOLineRequest struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Qty       float64         `json:"qty" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
}

// CreateDeliveryRequest is the JSON payload for POST /sales/deliveries.
type CreateDeliveryRequest struct {
	SalesOrderID int64                 `json:"sales_order_id" validate:"gte=0"`
	WarehouseID  int64                 `json:"warehouse_id" validate:"required,gt=0"`
	Note         string                `json:"note" validate:"max=500"`
	Lines        []DeliveryLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// DeliveryLineRequest is one shipped line.
type DeliveryLineRequest struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Qty       float64 `json:"qty" validate:"required,gt=0"`
}
