package sales

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/solvia-erp/solvia-erp/internal/ledger"
	"github.com/solvia-erp/solvia-erp/internal/txlog"
)

// TxRepository exposes transactional operations used by the service.
type TxRepository interface {
	CallCreateSalesOrder(ctx context.Context, payload CreateSOPayload) (int64, error)
	RecordMovement(ctx context.Context, input ledger.MovementInput) (ledger.Movement, error)
	AppendLog(ctx context.Context, entry txlog.Entry) (int64, error)
}

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetSalesOrder(ctx context.Context, id int64) (SalesOrder, error)
}

// Service orchestrates sales flows.
type Service struct {
	repo RepositoryPort
	now  func() time.Time
}

// NewService constructs sales service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithNow overrides the clock, used by tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreateSOPayload is the JSON payload handed to fn_crear_orden_venta.
type CreateSOPayload struct {
	ClientID int64    `json:"cliente_id"`
	Date     string   `json:"fecha"`
	Currency string   `json:"moneda"`
	Note     string   `json:"observaciones,omitempty"`
	Lines    []SOLine `json:"lineas"`
}

// CreateSOInput describes the sales order creation request.
type CreateSOInput struct {
	ClientID int64
	Date     time.Time
	Currency string
	Note     string
	ActorID  int64
	Lines    []SOLine
}

// CreateSalesOrder delegates document construction to the stored function and
// appends the transaction-log record in the same scope.
func (s *Service) CreateSalesOrder(ctx context.Context, input CreateSOInput) (SalesOrder, error) {
	if input.ClientID == 0 || len(input.Lines) == 0 {
		return SalesOrder{}, ErrValidation
	}
	for _, line := range input.Lines {
		if line.ProductID == 0 || line.Qty <= 0 {
			return SalesOrder{}, ErrValidation
		}
	}
	date := input.Date
	if date.IsZero() {
		date = s.now()
	}
	payload := CreateSOPayload{
		ClientID: input.ClientID,
		Date:     date.Format("2006-01-02"),
		Currency: defaultString(input.Currency, "PEN"),
		Note:     input.Note,
		Lines:    input.Lines,
	}

	var order SalesOrder
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.CallCreateSalesOrder(ctx, payload)
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
			Type:        txlog.TypeSalesOrder,
			ReferenceID: id,
			Description: fmt.Sprintf("Orden de venta cliente %d", input.ClientID),
			ActorID:     input.ActorID,
			Payload: map[string]any{
				"cliente_id": input.ClientID,
				"moneda":     payload.Currency,
				"lineas":     lineDetail,
			},
		}); err != nil {
			return err
		}
		order = SalesOrder{
			ID:       id,
			ClientID: input.ClientID,
			Date:     date,
			Currency: payload.Currency,
			Status:   SOStatusPending,
			Note:     input.Note,
		}
		return nil
	})
	if err != nil {
		return SalesOrder{}, err
	}
	return order, nil
}

// CreateDeliveryInput describes the delivery request. SalesOrderID may be
// zero when the delivery is not backed by an order.
type CreateDeliveryInput struct {
	SalesOrderID int64
	WarehouseID  int64
	Note         string
	ActorID      int64
	Lines        []DeliveryLine
}

// CreateDelivery records one outbound movement per line. The log references
// the sales order when one is given; otherwise it falls back to the first
// generated movement id, keeping the audit reference non-null. Any line
// failure aborts the whole delivery.
func (s *Service) CreateDelivery(ctx context.Context, input CreateDeliveryInput) (Delivery, error) {
	if input.WarehouseID == 0 {
		return Delivery{}, ErrValidation
	}
	var delivery Delivery
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		movementIDs := make([]int64, 0, len(input.Lines))
		lineDetail := make([]map[string]any, 0, len(input.Lines))
		for _, line := range input.Lines {
			qty := math.Abs(line.Qty)
			movement, err := tx.RecordMovement(ctx, ledger.MovementInput{
				ProductID:   line.ProductID,
				WarehouseID: input.WarehouseID,
				QtyDelta:    -qty,
				Reason:      deliveryReason(input.SalesOrderID, input.Note),
				ActorID:     input.ActorID,
			})
			if err != nil {
				return err
			}
			movementIDs = append(movementIDs, movement.ID)
			lineDetail = append(lineDetail, map[string]any{
				"producto_id": line.ProductID,
				"cantidad":    qty,
				"movimiento":  movement.ID,
			})
		}
		if len(movementIDs) == 0 {
			return ErrNoMovements
		}
		referenceID := input.SalesOrderID
		if referenceID == 0 {
			referenceID = movementIDs[0]
		}
		logID, err := tx.AppendLog(ctx, txlog.Entry{
			Type:        txlog.TypeDelivery,
			ReferenceID: referenceID,
			Description: fmt.Sprintf("Entrega almacén %d (%d líneas)", input.WarehouseID, len(movementIDs)),
			ActorID:     input.ActorID,
			Payload: map[string]any{
				"correlacion":    uuid.NewString(),
				"orden_venta_id": input.SalesOrderID,
				"almacen_id":     input.WarehouseID,
				"lineas":         lineDetail,
				"movimientos":    movementIDs,
			},
		})
		if err != nil {
			return err
		}
		delivery = Delivery{
			LogID:        logID,
			SalesOrderID: input.SalesOrderID,
			WarehouseID:  input.WarehouseID,
			MovementIDs:  movementIDs,
		}
		return nil
	})
	if err != nil {
		return Delivery{}, err
	}
	return delivery, nil
}

// GetSalesOrder loads a single order header.
func (s *Service) GetSalesOrder(ctx context.Context, id int64) (SalesOrder, error) {
	return s.repo.GetSalesOrder(ctx, id)
}

func deliveryReason(salesOrderID int64, note string) string {
	if salesOrderID != 0 {
		return fmt.Sprintf("Entrega orden de venta %d: %s", salesOrderID, note)
	}
	return fmt.Sprintf("Entrega directa: %s", note)
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
