package sales

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/solvia-erp/solvia-erp/internal/ledger"
	"github.com/solvia-erp/solvia-erp/internal/txlog"
)

type memoryRepo struct {
	orders    map[int64]SalesOrder
	movements []ledger.Movement
	logs      []txlog.Entry
	nextID    int64

	soFnResult   int64
	soFnErr      error
	failMovement int // fail on the nth RecordMovement call, 0 = never
	moveCalls    int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{orders: make(map[int64]SalesOrder), soFnResult: 1}
}

type memoryTx struct {
	repo *memoryRepo
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	movements := append([]ledger.Movement(nil), r.movements...)
	logs := append([]txlog.Entry(nil), r.logs...)
	nextID := r.nextID

	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.movements = movements
		r.logs = logs
		r.nextID = nextID
		return err
	}
	return nil
}

func (r *memoryRepo) GetSalesOrder(ctx context.Context, id int64) (SalesOrder, error) {
	order, ok := r.orders[id]
	if !ok {
		return SalesOrder{}, ErrNotFound
	}
	return order, nil
}

func (t *memoryTx) CallCreateSalesOrder(ctx context.Context, payload CreateSOPayload) (int64, error) {
	if t.repo.soFnErr != nil {
		return 0, t.repo.soFnErr
	}
	return t.repo.soFnResult, nil
}

func (t *memoryTx) RecordMovement(ctx context.Context, input ledger.MovementInput) (ledger.Movement, error) {
	t.repo.moveCalls++
	if t.repo.failMovement > 0 && t.repo.moveCalls == t.repo.failMovement {
		return ledger.Movement{}, errors.New("movement rejected")
	}
	t.repo.nextID++
	m := ledger.Movement{ID: t.repo.nextID, ProductID: input.ProductID, WarehouseID: input.WarehouseID, QtyDelta: input.QtyDelta}
	t.repo.movements = append(t.repo.movements, m)
	return m, nil
}

func (t *memoryTx) AppendLog(ctx context.Context, entry txlog.Entry) (int64, error) {
	t.repo.nextID++
	entry.ID = t.repo.nextID
	t.repo.logs = append(t.repo.logs, entry)
	return entry.ID, nil
}

func TestCreateSalesOrderLogsInSameScope(t *testing.T) {
	repo := newMemoryRepo()
	repo.soFnResult = 42
	svc := NewService(repo)

	order, err := svc.CreateSalesOrder(context.Background(), CreateSOInput{
		ClientID: 9,
		ActorID:  4,
		Lines:    []SOLine{{ProductID: 10, Qty: 3, UnitPrice: decimal.NewFromInt(25)}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(42), order.ID)
	require.Equal(t, SOStatusPending, order.Status)
	require.Equal(t, "PEN", order.Currency)
	require.Len(t, repo.logs, 1)
	require.Equal(t, txlog.TypeSalesOrder, repo.logs[0].Type)
	require.Equal(t, int64(42), repo.logs[0].ReferenceID)
}

func TestCreateSalesOrderCollaboratorFailure(t *testing.T) {
	repo := newMemoryRepo()
	repo.soFnResult = 0 // stored function returned no id
	svc := NewService(repo)

	_, err := svc.CreateSalesOrder(context.Background(), CreateSOInput{
		ClientID: 9,
		Lines:    []SOLine{{ProductID: 10, Qty: 1}},
	})
	require.ErrorIs(t, err, ErrOrderNotRegistered)
	require.Empty(t, repo.logs)
}

func TestCreateDeliveryReferencesSalesOrder(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	delivery, err := svc.CreateDelivery(context.Background(), CreateDeliveryInput{
		SalesOrderID: 30,
		WarehouseID:  2,
		ActorID:      4,
		Lines: []DeliveryLine{
			{ProductID: 10, Qty: 3},
			{ProductID: 11, Qty: 1.5},
		},
	})
	require.NoError(t, err)
	require.Len(t, delivery.MovementIDs, 2)
	require.Len(t, repo.logs, 1)
	require.Equal(t, txlog.TypeDelivery, repo.logs[0].Type)
	require.Equal(t, int64(30), repo.logs[0].ReferenceID)

	for _, m := range repo.movements {
		require.Negative(t, m.QtyDelta, "deliveries decrement stock")
	}
}

func TestCreateDeliveryWithoutOrderReferencesFirstMovement(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	delivery, err := svc.CreateDelivery(context.Background(), CreateDeliveryInput{
		WarehouseID: 2,
		Lines: []DeliveryLine{
			{ProductID: 10, Qty: 1},
			{ProductID: 11, Qty: 2},
		},
	})
	require.NoError(t, err)
	require.Len(t, repo.logs, 1)
	require.Equal(t, delivery.MovementIDs[0], repo.logs[0].ReferenceID)
}

func TestCreateDeliveryRollsBackOnLineFailure(t *testing.T) {
	repo := newMemoryRepo()
	repo.failMovement = 2
	svc := NewService(repo)

	_, err := svc.CreateDelivery(context.Background(), CreateDeliveryInput{
		SalesOrderID: 30,
		WarehouseID:  2,
		Lines: []DeliveryLine{
			{ProductID: 10, Qty: 3},
			{ProductID: 11, Qty: 1},
		},
	})
	require.Error(t, err)
	require.Empty(t, repo.movements)
	require.Empty(t, repo.logs)
}

func TestCreateDeliveryWithoutLinesFails(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	_, err := svc.CreateDelivery(context.Background(), CreateDeliveryInput{WarehouseID: 2})
	require.ErrorIs(t, err, ErrNoMovements)
	require.Empty(t, repo.logs)
}

func TestCreateSalesOrderValidatesInput(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.CreateSalesOrder(context.Background(), CreateSOInput{ClientID: 0, Lines: []SOLine{{ProductID: 1, Qty: 1}}})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateSalesOrder(context.Background(), CreateSOInput{ClientID: 1})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateSalesOrder(context.Background(), CreateSOInput{ClientID: 1, Lines: []SOLine{{ProductID: 1, Qty: -2}}})
	require.ErrorIs(t, err, ErrValidation)
}
