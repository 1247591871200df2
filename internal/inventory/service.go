package inventory

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/solvia-erp/solvia-erp/internal/ledger"
	"github.com/solvia-erp/solvia-erp/internal/platform/cache"
	"github.com/solvia-erp/solvia-erp/internal/shared"
	"github.com/solvia-erp/solvia-erp/internal/txlog"
)

// TxRepository exposes the operations available inside a transaction scope.
type TxRepository interface {
	RecordMovement(ctx context.Context, input ledger.MovementInput) (ledger.Movement, error)
	AppendLog(ctx context.Context, entry txlog.Entry) (int64, error)
}

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListMovements(ctx context.Context, filter ledger.MovementFilter) ([]ledger.Movement, shared.Pagination, error)
	GetStockSummary(ctx context.Context, warehouseID int64) ([]StockLevel, error)
}

// Service coordinates inventory flows.
type Service struct {
	repo  RepositoryPort
	cache *cache.Store
}

// NewService builds Service. cache may be nil.
func NewService(repo RepositoryPort, cacheStore *cache.Store) *Service {
	return &Service{repo: repo, cache: cacheStore}
}

// Transfer records an outbound movement at the source and an inbound movement
// at the destination for every line, inside one transaction. A failure on any
// line rolls back every movement already recorded for this request; no partial
// transfer is ever observably committed.
func (s *Service) Transfer(ctx context.Context, input TransferInput) (TransferResult, error) {
	if input.SourceWarehouse == 0 || input.DestWarehouse == 0 {
		return TransferResult{}, ErrMissingWarehouse
	}
	if input.SourceWarehouse == input.DestWarehouse {
		return TransferResult{}, ErrSameWarehouse
	}

	var result TransferResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var pairs []MovementPair
		lineDetail := make([]map[string]any, 0, len(input.Lines))
		for _, line := range input.Lines {
			qty := math.Abs(line.Qty)
			out, err := tx.RecordMovement(ctx, ledger.MovementInput{
				ProductID:   line.ProductID,
				WarehouseID: input.SourceWarehouse,
				QtyDelta:    -qty,
				UnitCost:    line.UnitCost,
				Reason:      fmt.Sprintf("Transferencia a almacén %d: %s", input.DestWarehouse, input.Reason),
				ActorID:     input.ActorID,
			})
			if err != nil {
				return err
			}
			in, err := tx.RecordMovement(ctx, ledger.MovementInput{
				ProductID:   line.ProductID,
				WarehouseID: input.DestWarehouse,
				QtyDelta:    qty,
				UnitCost:    line.UnitCost,
				Reason:      fmt.Sprintf("Transferencia desde almacén %d: %s", input.SourceWarehouse, input.Reason),
				ActorID:     input.ActorID,
			})
			if err != nil {
				return err
			}
			pairs = append(pairs, MovementPair{ProductID: line.ProductID, Qty: qty, Out: out, In: in})
			lineDetail = append(lineDetail, map[string]any{
				"producto_id": line.ProductID,
				"cantidad":    qty,
				"mov_salida":  out.ID,
				"mov_entrada": in.ID,
			})
		}
		if len(pairs) == 0 {
			return ErrNoMovements
		}
		logID, err := tx.AppendLog(ctx, txlog.Entry{
			Type:        txlog.TypeTransfer,
			ReferenceID: pairs[0].Out.ID,
			Description: fmt.Sprintf("Transferencia %d -> %d (%d líneas)", input.SourceWarehouse, input.DestWarehouse, len(pairs)),
			ActorID:     input.ActorID,
			Payload: map[string]any{
				"correlacion": uuid.NewString(),
				"origen":      input.SourceWarehouse,
				"destino":     input.DestWarehouse,
				"motivo":      input.Reason,
				"lineas":      lineDetail,
			},
		})
		if err != nil {
			return err
		}
		result = TransferResult{LogID: logID, Movements: pairs}
		return nil
	})
	if err != nil {
		return TransferResult{}, err
	}
	return result, nil
}

// Adjust records a single signed correction plus its log entry in one scope.
func (s *Service) Adjust(ctx context.Context, input AdjustmentInput) (ledger.Movement, error) {
	var movement ledger.Movement
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		m, err := tx.RecordMovement(ctx, ledger.MovementInput{
			ProductID:   input.ProductID,
			WarehouseID: input.WarehouseID,
			QtyDelta:    input.QtyDelta,
			UnitCost:    input.UnitCost,
			Reason:      input.Reason,
			ActorID:     input.ActorID,
		})
		if err != nil {
			return err
		}
		if _, err := tx.AppendLog(ctx, txlog.Entry{
			Type:        txlog.TypeAdjustment,
			ReferenceID: m.ID,
			Description: fmt.Sprintf("Ajuste de inventario producto %d", input.ProductID),
			ActorID:     input.ActorID,
			Payload: map[string]any{
				"almacen_id":  input.WarehouseID,
				"producto_id": input.ProductID,
				"cantidad":    input.QtyDelta,
				"motivo":      input.Reason,
				"saldo":       m.RunningQty,
			},
		}); err != nil {
			return err
		}
		movement = m
		return nil
	})
	if err != nil {
		return ledger.Movement{}, err
	}
	return movement, nil
}

// ListMovements lists ledger movements for audit and stock-card views.
func (s *Service) ListMovements(ctx context.Context, filter ledger.MovementFilter) ([]ledger.Movement, shared.Pagination, error) {
	return s.repo.ListMovements(ctx, filter)
}

// GetStockSummary returns current stock levels for a warehouse, read through
// the short-lived cache when one is configured.
func (s *Service) GetStockSummary(ctx context.Context, warehouseID int64) ([]StockLevel, error) {
	if warehouseID == 0 {
		return nil, ErrMissingWarehouse
	}
	key := fmt.Sprintf("stock:%d", warehouseID)
	var levels []StockLevel
	if err := s.cache.GetJSON(ctx, key, &levels); err == nil {
		return levels, nil
	}
	levels, err := s.repo.GetStockSummary(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	_ = s.cache.SetJSON(ctx, key, levels)
	return levels, nil
}
