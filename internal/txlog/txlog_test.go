package txlog

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/solvia-erp/solvia-erp/internal/shared"
)

// fakeStorage emulates the log_transacciones insert, keeping the raw payload
// it received for inspection.
type fakeStorage struct {
	nextID   int64
	calls    int
	lastArgs []any
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
	s.lastArgs = args
	return fakeRow{scan: func(dest ...any) error {
		s.nextID++
		*dest[0].(*int64) = s.nextID
		return nil
	}}
}

var _ shared.Querier = (*fakeStorage)(nil)

func TestRecordAppendsEntry(t *testing.T) {
	storage := &fakeStorage{}
	rec := NewRecorder()

	id, err := rec.Record(context.Background(), storage, Entry{
		Type:        TypeTransfer,
		ReferenceID: 88,
		Description: "Transferencia ALM-CEN -> ALM-SUR",
		ActorID:     3,
		Payload:     map[string]any{"origen": 1, "destino": 2},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), id)
	require.Equal(t, 1, storage.calls)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(storage.lastArgs[3].([]byte), &payload))
	require.Equal(t, float64(1), payload["origen"])
	require.Equal(t, float64(2), payload["destino"])
}

func TestRecordRejectsIncompleteEntry(t *testing.T) {
	storage := &fakeStorage{}
	rec := NewRecorder()

	_, err := rec.Record(context.Background(), storage, Entry{ReferenceID: 1})
	require.Error(t, err)

	_, err = rec.Record(context.Background(), storage, Entry{Type: TypeInvoice})
	require.Error(t, err)

	require.Zero(t, storage.calls, "nothing written for invalid entries")
}
