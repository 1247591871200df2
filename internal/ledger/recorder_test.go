package ledger

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/solvia-erp/solvia-erp/internal/shared"
)

// fakeStorage emulates fn_registrar_movimiento: it persists the movement and
// keeps a running balance per (product, warehouse) pair.
type fakeStorage struct {
	nextID   int64
	balances map[string]float64
	calls    int
	failNext bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{balances: make(map[string]float64)}
}

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

func (s *fakeStorage) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, fmt.Errorf("unexpected Query: %s", sql)
}

func (s *fakeStorage) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	s.calls++
	return fakeRow{scan: func(dest ...any) error {
		if s.failNext {
			return fmt.Errorf("storage failure")
		}
		productID := args[0].(int64)
		warehouseID := args[1].(int64)
		delta := args[2].(float64)
		key := fmt.Sprintf("%d:%d", productID, warehouseID)
		s.nextID++
		s.balances[key] += delta
		*dest[0].(*int64) = s.nextID
		*dest[1].(*float64) = s.balances[key]
		*dest[2].(*float64) = 0
		*dest[3].(*time.Time) = time.Now().UTC()
		return nil
	}}
}

var _ shared.Querier = (*fakeStorage)(nil)

func TestRecordDerivesRunningBalance(t *testing.T) {
	storage := newFakeStorage()
	rec := NewRecorder()
	ctx := context.Background()

	// Seed stock of 125.5 for the product at the central warehouse.
	_, err := rec.Record(ctx, storage, MovementInput{ProductID: 500, WarehouseID: 1, QtyDelta: 125.5, UnitCost: 180, Reason: "Carga inicial SOL-MOD-500W ALM-CEN"})
	require.NoError(t, err)

	m, err := rec.Record(ctx, storage, MovementInput{ProductID: 500, WarehouseID: 1, QtyDelta: -50, Reason: "Delivery test"})
	require.NoError(t, err)
	require.InDelta(t, 75.5, m.RunningQty, 0.0001)
	require.InDelta(t, -50.0, m.QtyDelta, 0.0001)
	require.NotZero(t, m.ID)
}

func TestRecordFailsFastOnInvalidInput(t *testing.T) {
	storage := newFakeStorage()
	rec := NewRecorder()
	ctx := context.Background()

	cases := []struct {
		name  string
		input MovementInput
		want  error
	}{
		{"zero quantity", MovementInput{ProductID: 1, WarehouseID: 1, QtyDelta: 0}, ErrInvalidQuantity},
		{"nan quantity", MovementInput{ProductID: 1, WarehouseID: 1, QtyDelta: math.NaN()}, ErrInvalidQuantity},
		{"inf quantity", MovementInput{ProductID: 1, WarehouseID: 1, QtyDelta: math.Inf(1)}, ErrInvalidQuantity},
		{"negative cost", MovementInput{ProductID: 1, WarehouseID: 1, QtyDelta: 5, UnitCost: -1}, ErrInvalidUnitCost},
		{"missing product", MovementInput{WarehouseID: 1, QtyDelta: 5}, ErrMissingTarget},
		{"missing warehouse", MovementInput{ProductID: 1, QtyDelta: 5}, ErrMissingTarget},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := rec.Record(ctx, storage, tc.input)
			require.ErrorIs(t, err, tc.want)
		})
	}
	// Fail-fast means the storage collaborator was never reached.
	require.Zero(t, storage.calls)
}

func TestRecordPropagatesStorageError(t *testing.T) {
	storage := newFakeStorage()
	storage.failNext = true
	rec := NewRecorder()

	_, err := rec.Record(context.Background(), storage, MovementInput{ProductID: 1, WarehouseID: 1, QtyDelta: 3})
	require.Error(t, err)
}
