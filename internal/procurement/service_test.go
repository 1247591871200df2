package procurement

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/solvia-erp/solvia-erp/internal/ledger"
	"github.com/solvia-erp/solvia-erp/internal/txlog"
)

type memoryRepo struct {
	receipts     map[int64]GoodsReceipt
	receiptLines map[int64][]ReceiptLine
	orders       map[int64]PurchaseOrder
	movements    []ledger.Movement
	logs         []txlog.Entry
	nextID       int64
	seq          int64

	poFnResult   int64 // id returned by the order-creation function
	poFnErr      error
	failMovement bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		receipts:     make(map[int64]GoodsReceipt),
		receiptLines: make(map[int64][]ReceiptLine),
		orders:       make(map[int64]PurchaseOrder),
		poFnResult:   1,
	}
}

type memoryTx struct {
	repo *memoryRepo
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapshot := *r
	snapshot.receipts = make(map[int64]GoodsReceipt, len(r.receipts))
	for k, v := range r.receipts {
		snapshot.receipts[k] = v
	}
	snapshot.receiptLines = make(map[int64][]ReceiptLine, len(r.receiptLines))
	for k, v := range r.receiptLines {
		snapshot.receiptLines[k] = v
	}
	snapshot.movements = append([]ledger.Movement(nil), r.movements...)
	snapshot.logs = append([]txlog.Entry(nil), r.logs...)

	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.receipts = snapshot.receipts
		r.receiptLines = snapshot.receiptLines
		r.movements = snapshot.movements
		r.logs = snapshot.logs
		r.nextID = snapshot.nextID
		return err
	}
	return nil
}

func (r *memoryRepo) GetPurchaseOrder(ctx context.Context, id int64) (PurchaseOrder, error) {
	order, ok := r.orders[id]
	if !ok {
		return PurchaseOrder{}, ErrNotFound
	}
	return order, nil
}

func (r *memoryRepo) InsertQuickOrder(ctx context.Context, order PurchaseOrder) (int64, error) {
	r.nextID++
	order.ID = r.nextID
	r.orders[order.ID] = order
	return order.ID, nil
}

func (r *memoryRepo) NextOrderSequence(ctx context.Context) (int64, error) {
	r.seq++
	return r.seq, nil
}

func (r *memoryRepo) AppendLogDirect(ctx context.Context, entry txlog.Entry) (int64, error) {
	r.nextID++
	entry.ID = r.nextID
	r.logs = append(r.logs, entry)
	return entry.ID, nil
}

func (t *memoryTx) CallCreatePurchaseOrder(ctx context.Context, payload CreatePOPayload) (int64, error) {
	if t.repo.poFnErr != nil {
		return 0, t.repo.poFnErr
	}
	return t.repo.poFnResult, nil
}

func (t *memoryTx) InsertReceiptHeader(ctx context.Context, receipt GoodsReceipt) (int64, error) {
	t.repo.nextID++
	receipt.ID = t.repo.nextID
	t.repo.receipts[receipt.ID] = receipt
	return receipt.ID, nil
}

func (t *memoryTx) InsertReceiptLine(ctx context.Context, receiptID int64, line ReceiptLine) error {
	t.repo.receiptLines[receiptID] = append(t.repo.receiptLines[receiptID], line)
	return nil
}

func (t *memoryTx) UpdateReceiptTotal(ctx context.Context, receiptID int64, total decimal.Decimal) error {
	receipt := t.repo.receipts[receiptID]
	receipt.Total = total
	t.repo.receipts[receiptID] = receipt
	return nil
}

func (t *memoryTx) RecordMovement(ctx context.Context, input ledger.MovementInput) (ledger.Movement, error) {
	if t.repo.failMovement {
		return ledger.Movement{}, errors.New("movement rejected")
	}
	t.repo.nextID++
	m := ledger.Movement{ID: t.repo.nextID, ProductID: input.ProductID, WarehouseID: input.WarehouseID, QtyDelta: input.QtyDelta, UnitCost: input.UnitCost}
	t.repo.movements = append(t.repo.movements, m)
	return m, nil
}

func (t *memoryTx) AppendLog(ctx context.Context, entry txlog.Entry) (int64, error) {
	t.repo.nextID++
	entry.ID = t.repo.nextID
	t.repo.logs = append(t.repo.logs, entry)
	return entry.ID, nil
}

type memorySuppliers struct {
	suppliers []Supplier
	nextID    int64
}

func (s *memorySuppliers) FindByName(ctx context.Context, name string) (Supplier, error) {
	var best *Supplier
	for i := range s.suppliers {
		if strings.EqualFold(s.suppliers[i].Name, name) {
			if best == nil || s.suppliers[i].UpdatedAt.After(best.UpdatedAt) {
				best = &s.suppliers[i]
			}
		}
	}
	if best == nil {
		return Supplier{}, ErrSupplierNotFound
	}
	return *best, nil
}

func (s *memorySuppliers) Create(ctx context.Context, supplier Supplier) (Supplier, error) {
	s.nextID++
	supplier.ID = s.nextID
	supplier.UpdatedAt = time.Now()
	s.suppliers = append(s.suppliers, supplier)
	return supplier, nil
}

func TestCreatePurchaseOrderLogsInSameScope(t *testing.T) {
	repo := newMemoryRepo()
	repo.poFnResult = 77
	svc := NewService(repo, &memorySuppliers{})

	order, err := svc.CreatePurchaseOrder(context.Background(), CreatePOInput{
		SupplierID: 3,
		ActorID:    8,
		Lines:      []POLine{{ProductID: 10, Qty: 2, UnitPrice: decimal.NewFromInt(150)}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(77), order.ID)
	require.Equal(t, POStatusPending, order.Status)
	require.Equal(t, "PEN", order.Currency)
	require.Len(t, repo.logs, 1)
	require.Equal(t, txlog.TypePurchaseOrder, repo.logs[0].Type)
	require.Equal(t, int64(77), repo.logs[0].ReferenceID)
}

func TestCreatePurchaseOrderCollaboratorFailure(t *testing.T) {
	repo := newMemoryRepo()
	repo.poFnResult = 0 // stored function returned no id
	svc := NewService(repo, &memorySuppliers{})

	_, err := svc.CreatePurchaseOrder(context.Background(), CreatePOInput{
		SupplierID: 3,
		Lines:      []POLine{{ProductID: 10, Qty: 1}},
	})
	require.ErrorIs(t, err, ErrOrderNotRegistered)
	require.Empty(t, repo.logs)
}

func TestCreateGoodsReceiptAccumulatesTotalAndMovements(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, &memorySuppliers{})

	receipt, err := svc.CreateGoodsReceipt(context.Background(), CreateReceiptInput{
		POID:        5,
		SupplierID:  3,
		WarehouseID: 1,
		ActorID:     2,
		Lines: []ReceiptLine{
			{ProductID: 10, Qty: 2, UnitCost: decimal.NewFromInt(10)},
			{ProductID: 11, Qty: 3, UnitCost: decimal.NewFromInt(5)},
		},
	})
	require.NoError(t, err)
	require.True(t, receipt.Total.Equal(decimal.NewFromInt(35)), "total = %s", receipt.Total)

	require.Len(t, repo.movements, 2)
	for _, m := range repo.movements {
		require.Positive(t, m.QtyDelta)
		require.Equal(t, int64(1), m.WarehouseID)
	}
	require.Len(t, repo.logs, 1)
	require.Equal(t, txlog.TypeGoodsReceipt, repo.logs[0].Type)
	require.Equal(t, receipt.ID, repo.logs[0].ReferenceID)
	require.Len(t, repo.logs[0].Payload["movimientos"], 2)
}

func TestCreateGoodsReceiptRollsBackWhole(t *testing.T) {
	repo := newMemoryRepo()
	repo.failMovement = true
	svc := NewService(repo, &memorySuppliers{})

	_, err := svc.CreateGoodsReceipt(context.Background(), CreateReceiptInput{
		SupplierID:  3,
		WarehouseID: 1,
		Lines:       []ReceiptLine{{ProductID: 10, Qty: 2, UnitCost: decimal.NewFromInt(10)}},
	})
	require.Error(t, err)
	require.Empty(t, repo.receipts)
	require.Empty(t, repo.receiptLines)
	require.Empty(t, repo.movements)
	require.Empty(t, repo.logs)
}

func TestQuickOrderResolvesSupplierCaseInsensitive(t *testing.T) {
	repo := newMemoryRepo()
	suppliers := &memorySuppliers{}
	older, _ := suppliers.Create(context.Background(), Supplier{Name: "Distribuidora Andina", TaxID: "20123456789"})
	suppliers.suppliers[0].UpdatedAt = time.Now().Add(-time.Hour)
	newer, _ := suppliers.Create(context.Background(), Supplier{Name: "DISTRIBUIDORA ANDINA", TaxID: "20987654321"})

	svc := NewService(repo, suppliers)
	svc.WithNow(func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) })

	order, err := svc.CreateQuickPurchaseOrder(context.Background(), QuickPOInput{SupplierName: "distribuidora andina"})
	require.NoError(t, err)
	require.Equal(t, newer.ID, order.SupplierID, "most recently updated match wins")
	require.NotEqual(t, older.ID, order.SupplierID)
	require.Equal(t, "OC-20260314-000001", order.Number)
	require.Len(t, suppliers.suppliers, 2, "no placeholder created for an existing name")
}

func TestQuickOrderCreatesPlaceholderSupplier(t *testing.T) {
	repo := newMemoryRepo()
	suppliers := &memorySuppliers{}
	svc := NewService(repo, suppliers)

	order, err := svc.CreateQuickPurchaseOrder(context.Background(), QuickPOInput{SupplierName: "Proveedor Nuevo SAC"})
	require.NoError(t, err)
	require.Len(t, suppliers.suppliers, 1)
	require.Equal(t, suppliers.suppliers[0].ID, order.SupplierID)
	require.Regexp(t, regexp.MustCompile(`^TEMP-[0-9a-f]{8}$`), suppliers.suppliers[0].TaxID)
}

func TestQuickOrderResubmissionMakesTwoOrders(t *testing.T) {
	repo := newMemoryRepo()
	suppliers := &memorySuppliers{}
	svc := NewService(repo, suppliers)

	input := QuickPOInput{SupplierName: "Proveedor Doble"}
	first, err := svc.CreateQuickPurchaseOrder(context.Background(), input)
	require.NoError(t, err)
	second, err := svc.CreateQuickPurchaseOrder(context.Background(), input)
	require.NoError(t, err)

	require.NotEqual(t, first.ID, second.ID)
	require.NotEqual(t, first.Number, second.Number)
	require.Len(t, repo.orders, 2)
}
