package accounting

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateEntryRequest is the JSON payload for POST /accounting/entries.
type CreateEntryRequest struct {
	Date        *time.Time           `json:"date,omitempty"`
	JournalCode string               `json:"journal_code" validate:"required,max=20"`
	Description string               `json:"description" validate:"max=500"`
	Lines       []JournalLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// JournalLineRequest is one detail row.
type JournalLineRequest struct {
	AccountID    int64           `json:"account_id" validate:"required,gt=0"`
	CostCenterID int64           `json:"cost_center_id" validate:"gte=0"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
	DocumentRef  string          `json:"document_ref" validate:"max=100"`
}
