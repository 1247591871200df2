package procurement

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/solvia-erp/solvia-erp/internal/ledger"
	"github.com/solvia-erp/solvia-erp/internal/txlog"
)

// TxRepository exposes transactional operations used by the service.
type TxRepository interface {
	CallCreatePurchaseOrder(ctx context.Context, payload CreatePOPayload) (int64, error)
	InsertReceiptHeader(ctx context.Context, receipt GoodsReceipt) (int64, error)
	InsertReceiptLine(ctx context.Context, receiptID int64, line ReceiptLine) error
	UpdateReceiptTotal(ctx context.Context, receiptID int64, total decimal.Decimal) error
	RecordMovement(ctx context.Context, input ledger.MovementInput) (ledger.Movement, error)
	AppendLog(ctx context.Context, entry txlog.Entry) (int64, error)
}

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetPurchaseOrder(ctx context.Context, id int64) (PurchaseOrder, error)
	InsertQuickOrder(ctx context.Context, order PurchaseOrder) (int64, error)
	NextOrderSequence(ctx context.Context) (int64, error)
	AppendLogDirect(ctx context.Context, entry txlog.Entry) (int64, error)
}

// SupplierPort is the slice of the supplier catalog the quick flow needs.
type SupplierPort interface {
	FindByName(ctx context.Context, name string) (Supplier, error)
	Create(ctx context.Context, supplier Supplier) (Supplier, error)
}

// ErrSupplierNotFound is returned by SupplierPort.FindByName.
var ErrSupplierNotFound = errors.New("procurement: supplier not found")

// Service orchestrates purchasing flows.
type Service struct {
	repo      RepositoryPort
	suppliers SupplierPort
	now       func() time.Time
}

// NewService constructs procurement service.
func NewService(repo RepositoryPort, suppliers SupplierPort) *Service {
	return &Service{repo: repo, suppliers: suppliers, now: time.Now}
}

// WithNow overrides the clock, used by tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreatePOPayload is the JSON payload handed to fn_crear_orden_compra. The
// stored function computes line extensions, taxes and the document total.
type CreatePOPayload struct {
	SupplierID int64    `json:"proveedor_id"`
	Date       string   `json:"fecha"`
	Currency   string   `json:"moneda"`
	Note       string   `json:"observaciones,omitempty"`
	Lines      []POLine `json:"lineas"`
}

// CreatePOInput describes the purchase order creation request.
type CreatePOInput struct {
	SupplierID int64
	Date       time.Time
	Currency   string
	Note       string
	ActorID    int64
	Lines      []POLine
}

// CreatePurchaseOrder delegates document construction to the stored function
// and appends the transaction-log record in the same scope.
func (s *Service) CreatePurchaseOrder(ctx context.Context, input CreatePOInput) (PurchaseOrder, error) {
	if input.SupplierID == 0 || len(input.Lines) == 0 {
		return PurchaseOrder{}, ErrValidation
	}
	for _, line := range input.Lines {
		if line.ProductID == 0 || line.Qty <= 0 {
			return PurchaseOrder{}, ErrValidation
		}
	}
	date := input.Date
	if date.IsZero() {
		date = s.now()
	}
	payload := CreatePOPayload{
		SupplierID: input.SupplierID,
		Date:       date.Format("2006-01-02"),
		Currency:   defaultString(input.Currency, "PEN"),
		Note:       input.Note,
		Lines:      input.Lines,
	}

	var order PurchaseOrder
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.CallCreatePurchaseOrder(ctx, payload)
		if err != nil {
			return err
		}
		if id == 0 {
			return ErrOrderNotRegistered
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
			Type:        txlog.TypePurchaseOrder,
			ReferenceID: id,
			Description: fmt.Sprintf("Orden de compra proveedor %d", input.SupplierID),
			ActorID:     input.ActorID,
			Payload: map[string]any{
				"proveedor_id": input.SupplierID,
				"moneda":       payload.Currency,
				"lineas":       lineDetail,
			},
		}); err != nil {
			return err
		}
		order = PurchaseOrder{
			ID:         id,
			SupplierID: input.SupplierID,
			Date:       date,
			Currency:   payload.Currency,
			Status:     POStatusPending,
			Note:       input.Note,
		}
		return nil
	})
	if err != nil {
		return PurchaseOrder{}, err
	}
	return order, nil
}

// CreateReceiptInput describes the goods receipt request.
type CreateReceiptInput struct {
	POID        int64
	SupplierID  int64
	WarehouseID int64
	ReceivedAt  time.Time
	Note        string
	ActorID     int64
	Lines       []ReceiptLine
}

// CreateGoodsReceipt inserts the receipt header, then per line one
// receipt-line row and one inbound movement at the target warehouse carrying
// the line's cost, accumulating the computed total. Any line failure aborts
// the whole receipt.
func (s *Service) CreateGoodsReceipt(ctx context.Context, input CreateReceiptInput) (GoodsReceipt, error) {
	if input.WarehouseID == 0 || len(input.Lines) == 0 {
		return GoodsReceipt{}, ErrValidation
	}
	receipt := GoodsReceipt{
		POID:        input.POID,
		SupplierID:  input.SupplierID,
		WarehouseID: input.WarehouseID,
		Status:      ReceiptStatusRegistered,
		ReceivedAt:  defaultTime(input.ReceivedAt, s.now),
		Note:        input.Note,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		receiptID, err := tx.InsertReceiptHeader(ctx, receipt)
		if err != nil {
			return err
		}
		receipt.ID = receiptID

		total := decimal.Zero
		movementIDs := make([]int64, 0, len(input.Lines))
		lineDetail := make([]map[string]any, 0, len(input.Lines))
		for _, line := range input.Lines {
			if line.ProductID == 0 || line.Qty <= 0 {
				return ErrValidation
			}
			if err := tx.InsertReceiptLine(ctx, receiptID, line); err != nil {
				return err
			}
			cost, _ := line.UnitCost.Float64()
			movement, err := tx.RecordMovement(ctx, ledger.MovementInput{
				ProductID:   line.ProductID,
				WarehouseID: input.WarehouseID,
				QtyDelta:    line.Qty,
				UnitCost:    cost,
				Reason:      fmt.Sprintf("Recepción de mercadería #%d", receiptID),
				ActorID:     input.ActorID,
			})
			if err != nil {
				return err
			}
			movementIDs = append(movementIDs, movement.ID)
			lineTotal := line.UnitCost.Mul(decimal.NewFromFloat(line.Qty))
			total = total.Add(lineTotal)
			lineDetail = append(lineDetail, map[string]any{
				"producto_id":    line.ProductID,
				"cantidad":       line.Qty,
				"costo_unitario": line.UnitCost,
				"importe":        lineTotal,
			})
		}
		if err := tx.UpdateReceiptTotal(ctx, receiptID, total); err != nil {
			return err
		}
		receipt.Total = total

		if _, err := tx.AppendLog(ctx, txlog.Entry{
			Type:        txlog.TypeGoodsReceipt,
			ReferenceID: receiptID,
			Description: fmt.Sprintf("Recepción de mercadería OC %d", input.POID),
			ActorID:     input.ActorID,
			Payload: map[string]any{
				"correlacion":     uuid.NewString(),
				"orden_compra_id": input.POID,
				"almacen_id":      input.WarehouseID,
				"total":           total,
				"lineas":          lineDetail,
				"movimientos":     movementIDs,
			},
		}); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return GoodsReceipt{}, err
	}
	return receipt, nil
}

// QuickPOInput describes the convenience purchase order request.
type QuickPOInput struct {
	SupplierName string
	Currency     string
	Note         string
	ActorID      int64
	Total        decimal.Decimal
}

// CreateQuickPurchaseOrder resolves the supplier by case-insensitive name,
// creating a placeholder record when no match exists, then inserts the order
// with a sequence-backed human-readable number.
//
// Supplier resolution and order insertion deliberately run without a shared
// transaction scope, matching the long-observed behavior of this flow:
// concurrent calls may create duplicate placeholder suppliers but never
// colliding order numbers.
func (s *Service) CreateQuickPurchaseOrder(ctx context.Context, input QuickPOInput) (PurchaseOrder, error) {
	if input.SupplierName == "" {
		return PurchaseOrder{}, ErrValidation
	}
	supplier, err := s.suppliers.FindByName(ctx, input.SupplierName)
	if errors.Is(err, ErrSupplierNotFound) {
		supplier, err = s.suppliers.Create(ctx, Supplier{
			Name:  input.SupplierName,
			TaxID: placeholderTaxID(),
		})
	}
	if err != nil {
		return PurchaseOrder{}, err
	}

	seq, err := s.repo.NextOrderSequence(ctx)
	if err != nil {
		return PurchaseOrder{}, err
	}
	now := s.now()
	order := PurchaseOrder{
		Number:     fmt.Sprintf("OC-%s-%06d", now.Format("20060102"), seq),
		SupplierID: supplier.ID,
		Date:       now,
		Currency:   defaultString(input.Currency, "PEN"),
		Status:     POStatusPending,
		Total:      input.Total,
		Note:       input.Note,
	}
	id, err := s.repo.InsertQuickOrder(ctx, order)
	if err != nil {
		return PurchaseOrder{}, err
	}
	order.ID = id

	if _, err := s.repo.AppendLogDirect(ctx, txlog.Entry{
		Type:        txlog.TypePurchaseOrder,
		ReferenceID: id,
		Description: fmt.Sprintf("Orden de compra rápida %s", order.Number),
		ActorID:     input.ActorID,
		Payload: map[string]any{
			"numero":       order.Number,
			"proveedor_id": supplier.ID,
			"total":        order.Total,
		},
	}); err != nil {
		return PurchaseOrder{}, err
	}
	return order, nil
}

// GetPurchaseOrder loads a single order header.
func (s *Service) GetPurchaseOrder(ctx context.Context, id int64) (PurchaseOrder, error) {
	return s.repo.GetPurchaseOrder(ctx, id)
}

func placeholderTaxID() string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return "TEMP-" + hex.EncodeToString(buf)
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func defaultTime(value time.Time, now func() time.Time) time.Time {
	if value.IsZero() {
		return now()
	}
	return value
}
