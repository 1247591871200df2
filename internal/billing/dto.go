package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// IssueInvoiceRequest is the JSON payload for POST /billing/invoices.
type IssueInvoiceRequest struct {
	ClientID     int64                `json:"client_id" validate:"required,gt=0"`
	SalesOrderID int64                `json:"sales_order_id" validate:"gte=0"`
	Date         *time.Time           `json:"date,omitempty"`
	Currency     string               `json:"currency" validate:"omitempty,len=3"`
	Note         string               `json:"note" validate:"max=500"`
	Lines        []InvoiceLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// InvoiceLineRequest is one billed line.
type InvoiceLineRequest struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Qty       float64         `json:"qty" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
}
