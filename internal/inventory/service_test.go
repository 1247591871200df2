package inventory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/solvia-erp/solvia-erp/internal/ledger"
	"github.com/solvia-erp/solvia-erp/internal/platform/cache"
	"github.com/solvia-erp/solvia-erp/internal/shared"
	"github.com/solvia-erp/solvia-erp/internal/txlog"
)

// memoryRepo emulates the transactional repository: WithTx snapshots state and
// restores it when fn fails, mirroring a database rollback.
type memoryRepo struct {
	movements []ledger.Movement
	logs      []txlog.Entry
	balances  map[string]float64
	nextID    int64

	summaryCalls int
	levels       []StockLevel

	failOnMovement int // fail the Nth RecordMovement call (1-based), 0 = never
	movementCalls  int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{balances: make(map[string]float64)}
}

type memoryTx struct {
	repo *memoryRepo
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	movements := make([]ledger.Movement, len(r.movements))
	copy(movements, r.movements)
	logs := make([]txlog.Entry, len(r.logs))
	copy(logs, r.logs)
	balances := make(map[string]float64, len(r.balances))
	for k, v := range r.balances {
		balances[k] = v
	}
	nextID := r.nextID

	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.movements = movements
		r.logs = logs
		r.balances = balances
		r.nextID = nextID
		return err
	}
	return nil
}

func (r *memoryRepo) ListMovements(ctx context.Context, filter ledger.MovementFilter) ([]ledger.Movement, shared.Pagination, error) {
	out := make([]ledger.Movement, len(r.movements))
	copy(out, r.movements)
	return out, shared.NewPagination(filter.Page, filter.PerPage, len(out)), nil
}

func (r *memoryRepo) GetStockSummary(ctx context.Context, warehouseID int64) ([]StockLevel, error) {
	r.summaryCalls++
	return r.levels, nil
}

func (t *memoryTx) RecordMovement(ctx context.Context, input ledger.MovementInput) (ledger.Movement, error) {
	r := t.repo
	r.movementCalls++
	if r.failOnMovement != 0 && r.movementCalls == r.failOnMovement {
		return ledger.Movement{}, errors.New("constraint violation")
	}
	if input.QtyDelta == 0 {
		return ledger.Movement{}, ledger.ErrInvalidQuantity
	}
	key := fmt.Sprintf("%d:%d", input.ProductID, input.WarehouseID)
	r.nextID++
	r.balances[key] += input.QtyDelta
	m := ledger.Movement{
		ID:          r.nextID,
		ProductID:   input.ProductID,
		WarehouseID: input.WarehouseID,
		QtyDelta:    input.QtyDelta,
		UnitCost:    input.UnitCost,
		Reason:      input.Reason,
		ActorID:     input.ActorID,
		PostedAt:    time.Now().UTC(),
		RunningQty:  r.balances[key],
	}
	r.movements = append(r.movements, m)
	return m, nil
}

func (t *memoryTx) AppendLog(ctx context.Context, entry txlog.Entry) (int64, error) {
	t.repo.nextID++
	entry.ID = t.repo.nextID
	t.repo.logs = append(t.repo.logs, entry)
	return entry.ID, nil
}

func TestTransferCreatesPairedMovements(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	result, err := svc.Transfer(ctx, TransferInput{
		SourceWarehouse: 1,
		DestWarehouse:   2,
		Reason:          "Reposición tienda",
		ActorID:         9,
		Lines: []TransferLine{
			{ProductID: 10, Qty: 4},
			{ProductID: 11, Qty: 2.5},
			{ProductID: 12, Qty: 7},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Movements, 3)
	// 2N movements total: N negative at source, N positive at destination,
	// with pairwise matching absolute values.
	require.Len(t, repo.movements, 6)
	for _, pair := range result.Movements {
		require.Equal(t, int64(1), pair.Out.WarehouseID)
		require.Equal(t, int64(2), pair.In.WarehouseID)
		require.Negative(t, pair.Out.QtyDelta)
		require.Positive(t, pair.In.QtyDelta)
		require.InDelta(t, -pair.Out.QtyDelta, pair.In.QtyDelta, 0.0001)
	}
	require.Len(t, repo.logs, 1)
	require.Equal(t, txlog.TypeTransfer, repo.logs[0].Type)
	require.Equal(t, result.Movements[0].Out.ID, repo.logs[0].ReferenceID)
}

func TestTransferRollsBackOnLineFailure(t *testing.T) {
	repo := newMemoryRepo()
	repo.failOnMovement = 3 // second line's outbound movement
	svc := NewService(repo, nil)

	_, err := svc.Transfer(context.Background(), TransferInput{
		SourceWarehouse: 1,
		DestWarehouse:   2,
		Reason:          "fallo parcial",
		Lines: []TransferLine{
			{ProductID: 10, Qty: 4},
			{ProductID: 11, Qty: 2},
		},
	})
	require.Error(t, err)
	// Nothing survives a failed flow, including movements for prior lines.
	require.Empty(t, repo.movements)
	require.Empty(t, repo.logs)
	require.Empty(t, repo.balances)
}

func TestTransferWithoutLinesFails(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	_, err := svc.Transfer(context.Background(), TransferInput{SourceWarehouse: 1, DestWarehouse: 2, Reason: "vacío"})
	require.ErrorIs(t, err, ErrNoMovements)
	require.Empty(t, repo.movements)
	require.Empty(t, repo.logs)
}

func TestTransferSameWarehouseRejected(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	_, err := svc.Transfer(context.Background(), TransferInput{
		SourceWarehouse: 3,
		DestWarehouse:   3,
		Lines:           []TransferLine{{ProductID: 1, Qty: 1}},
	})
	require.ErrorIs(t, err, ErrSameWarehouse)
}

func TestAdjustLogsInSameScope(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	m, err := svc.Adjust(context.Background(), AdjustmentInput{
		WarehouseID: 1,
		ProductID:   500,
		QtyDelta:    125.5,
		UnitCost:    180,
		Reason:      "Carga inicial",
		ActorID:     4,
	})
	require.NoError(t, err)
	require.InDelta(t, 125.5, m.RunningQty, 0.0001)
	require.Len(t, repo.logs, 1)
	require.Equal(t, txlog.TypeAdjustment, repo.logs[0].Type)
	require.Equal(t, m.ID, repo.logs[0].ReferenceID)
}

func TestResubmitCreatesDistinctDocuments(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	input := TransferInput{
		SourceWarehouse: 1,
		DestWarehouse:   2,
		Reason:          "doble envío",
		Lines:           []TransferLine{{ProductID: 10, Qty: 1}},
	}
	first, err := svc.Transfer(ctx, input)
	require.NoError(t, err)
	second, err := svc.Transfer(ctx, input)
	require.NoError(t, err)

	// No deduplication: the same payload twice yields two documents.
	require.NotEqual(t, first.LogID, second.LogID)
	require.Len(t, repo.logs, 2)
	require.Len(t, repo.movements, 4)
}

func TestStockSummaryReadThroughCache(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	store := cache.NewStore(client, time.Minute)

	repo := newMemoryRepo()
	repo.levels = []StockLevel{{ProductID: 500, ProductCode: "SOL-MOD-500W", WarehouseID: 1, Qty: 75.5}}
	svc := NewService(repo, store)
	ctx := context.Background()

	first, err := svc.GetStockSummary(ctx, 1)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.GetStockSummary(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, repo.summaryCalls)
}
