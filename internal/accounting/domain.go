package accounting

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is the double-entry header. Totals are computed by the
// application as sums over the detail lines.
type JournalEntry struct {
	ID          int64           `json:"id"`
	Date        time.Time       `json:"date"`
	JournalCode string          `json:"journal_code"`
	Description string          `json:"description"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Lines       []JournalLine   `json:"lines"`
}

// JournalLine is one detail row. A line may carry a non-zero debit and a
// non-zero credit at the same time; balance is enforced at the entry level.
type JournalLine struct {
	AccountID    int64           `json:"account_id"`
	CostCenterID int64           `json:"cost_center_id,omitempty"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
	DocumentRef  string          `json:"document_ref,omitempty"`
}

var (
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("accounting: invalid input")
	// ErrNotFound indicates record missing.
	ErrNotFound = errors.New("accounting: not found")
	// ErrUnbalanced signals total debits differing from total credits.
	ErrUnbalanced = errors.New("accounting: entry debits and credits do not balance")
	// ErrNegativeAmount signals a negative debit or credit on a line.
	ErrNegativeAmount = errors.New("accounting: negative debit or credit")
)
