package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/solvia-erp/solvia-erp/internal/txlog"
)

// IssueResult is what the issuance function returns: the generated invoice
// id plus the total it computed from the lines.
type IssueResult struct {
	InvoiceID int64
	Total     decimal.Decimal
}

// TxRepository exposes transactional operations used by the service.
type TxRepository interface {
	CallIssueInvoice(ctx context.Context, payload IssuePayload) (IssueResult, error)
	AppendLog(ctx context.Context, entry txlog.Entry) (int64, error)
}

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetInvoice(ctx context.Context, id int64) (Invoice, error)
}

// Service orchestrates invoice issuance.
type Service struct {
	repo RepositoryPort
	now  func() time.Time
}

// NewService constructs billing service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithNow overrides the clock, used by tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// IssuePayload is the JSON payload handed to fn_emitir_factura.
type IssuePayload struct {
	ClientID     int64         `json:"cliente_id"`
	SalesOrderID int64         `json:"orden_venta_id,omitempty"`
	Date         string        `json:"fecha"`
	Currency     string        `json:"moneda"`
	Note         string        `json:"observaciones,omitempty"`
	Lines        []InvoiceLine `json:"lineas"`
}

// IssueInvoiceInput describes the issuance request.
type IssueInvoiceInput struct {
	ClientID     int64
	SalesOrderID int64
	Date         time.Time
	Currency     string
	Note         string
	ActorID      int64
	Lines        []InvoiceLine
}

// IssueInvoice delegates invoice construction and total computation to the
// issuance function and appends the transaction-log record in the same
// scope, so a log entry never references an invoice that failed to commit.
func (s *Service) IssueInvoice(ctx context.Context, input IssueInvoiceInput) (Invoice, error) {
	if input.ClientID == 0 || len(input.Lines) == 0 {
		return Invoice{}, ErrValidation
	}
	for _, line := range input.Lines {
		if line.ProductID == 0 || line.Qty <= 0 {
			return Invoice{}, ErrValidation
		}
	}
	date := input.Date
	if date.IsZero() {
		date = s.now()
	}
	currency := input.Currency
	if currency == "" {
		currency = "PEN"
	}
	payload := IssuePayload{
		ClientID:     input.ClientID,
		SalesOrderID: input.SalesOrderID,
		Date:         date.Format("2006-01-02"),
		Currency:     currency,
		Note:         input.Note,
		Lines:        input.Lines,
	}

	var invoice Invoice
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		result, err := tx.CallIssueInvoice(ctx, payload)
		if err != nil {
			return err
		}
		if result.InvoiceID == 0 {
			return ErrInvoiceNotIssued
		}
		lineDetail := make([]map[string]any, 0, len(input.Lines))
		for _, line := range input.Lines {
			lineDetail = append(lineDetail, map[string]any{
				"producto_id":     line.ProductID,
				"cantidad":        line.Qty,
				"precio_unitario": line.UnitPrice,
			})
		}
		if _, err := tx.AppendLog(ctx, txlog.Entry{
			Type:        txlog.TypeInvoice,
			ReferenceID: result.InvoiceID,
			Description: fmt.Sprintf("Factura cliente %d", input.ClientID),
			ActorID:     input.ActorID,
			Payload: map[string]any{
				"cliente_id":     input.ClientID,
				"orden_venta_id": input.SalesOrderID,
				"moneda":         currency,
				"total":          result.Total,
				"lineas":         lineDetail,
			},
		}); err != nil {
			return err
		}
		invoice = Invoice{
			ID:           result.InvoiceID,
			ClientID:     input.ClientID,
			SalesOrderID: input.SalesOrderID,
			Date:         date,
			Currency:     currency,
			Status:       InvoiceStatusIssued,
			Total:        result.Total,
			Note:         input.Note,
		}
		return nil
	})
	if err != nil {
		return Invoice{}, err
	}
	return invoice, nil
}

// GetInvoice loads a single invoice header.
func (s *Service) GetInvoice(ctx context.Context, id int64) (Invoice, error) {
	return s.repo.GetInvoice(ctx, id)
}
