package billing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Invoice lifecycle statuses.
type InvoiceStatus string

const (
	InvoiceStatusIssued    InvoiceStatus = "EMITIDA"
	InvoiceStatusCancelled InvoiceStatus = "ANULADA"
)

// Invoice is the document returned by the issuance flow. The total is
// computed by the issuance function, not by the application.
type Invoice struct {
	ID           int64           `json:"id"`
	ClientID     int64           `json:"client_id"`
	SalesOrderID int64           `json:"sales_order_id,omitempty"`
	Date         time.Time       `json:"date"`
	Currency     string          `json:"currency"`
	Status       InvoiceStatus   `json:"status"`
	Total        decimal.Decimal `json:"total"`
	Note         string          `json:"note"`
}

// InvoiceLine is one billed item.
type InvoiceLine struct {
	ProductID int64           `json:"product_id"`
	Qty       float64         `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
}

var (
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("billing: invalid input")
	// ErrNotFound indicates record missing.
	ErrNotFound = errors.New("billing: not found")
	// ErrInvoiceNotIssued surfaces a collaborator-contract failure from the
	// issuance function.
	ErrInvoiceNotIssued = errors.New("billing: could not issue invoice")
)
