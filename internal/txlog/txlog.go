// Package txlog maintains the append-only business operation log, distinct
// from the double-entry accounting journal. Every mutating flow writes one
// entry as its last step, inside the same transaction as the business
// document, so the log never references a document that failed to commit.
package txlog

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/solvia-erp/solvia-erp/internal/shared"
)

// EntryType enumerates logged business operations.
type EntryType string

const (
	TypePurchaseOrder EntryType = "ORDEN_COMPRA"
	TypeGoodsReceipt  EntryType = "RECEPCION"
	TypeSalesOrder    EntryType = "ORDEN_VENTA"
	TypeDelivery      EntryType = "ENTREGA"
	TypeTransfer      EntryType = "TRANSFERENCIA"
	TypeAdjustment    EntryType = "AJUSTE"
	TypeJournalEntry  EntryType = "ASIENTO_CONTABLE"
	TypeInvoice       EntryType = "FACTURA"
)

// Entry is one record in log_transacciones. Payload must losslessly capture
// every field relevant to later audit reconstruction.
type Entry struct {
	ID          int64          `json:"id"`
	Type        EntryType      `json:"type"`
	ReferenceID int64          `json:"reference_id"`
	Description string         `json:"description"`
	Payload     map[string]any `json:"payload"`
	ActorID     int64          `json:"actor_id"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Recorder appends entries through whatever querier the caller hands it,
// typically the pgx.Tx of the surrounding document flow.
type Recorder struct{}

// NewRecorder constructs a Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends the entry and returns its id.
func (r *Recorder) Record(ctx context.Context, q shared.Querier, entry Entry) (int64, error) {
	if entry.Type == "" {
		return 0, errors.New("txlog: entry type required")
	}
	if entry.ReferenceID == 0 {
		return 0, errors.New("txlog: reference id required")
	}
	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		return 0, err
	}
	var id int64
	err = q.QueryRow(ctx,
		`INSERT INTO log_transacciones (tipo, referencia_id, descripcion, detalle, usuario_id, creado_en)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 RETURNING id`,
		string(entry.Type), entry.ReferenceID, entry.Description, payload, entry.ActorID,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// ListFilter narrows the audit listing.
type ListFilter struct {
	Type    EntryType
	ActorID int64
	Page    int
	PerPage int
}

// List returns entries newest first with pagination metadata.
func (r *Recorder) List(ctx context.Context, q shared.Querier, filter ListFilter) ([]Entry, shared.Pagination, error) {
	selectSQL := `SELECT id, tipo, referencia_id, descripcion, detalle, usuario_id, creado_en FROM log_transacciones WHERE 1=1`
	countSQL := `SELECT COUNT(*) FROM log_transacciones WHERE 1=1`
	var args []any
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		selectSQL += ` AND tipo = $1`
		countSQL += ` AND tipo = $1`
	}
	if filter.ActorID != 0 {
		args = append(args, filter.ActorID)
		cond := ` AND usuario_id = $` + strconv.Itoa(len(args))
		selectSQL += cond
		countSQL += cond
	}
	selectSQL += ` ORDER BY creado_en DESC, id DESC`

	return shared.QueryPaged(ctx, q, selectSQL, countSQL, args, filter.Page, filter.PerPage, scanEntry)
}

func scanEntry(rows pgx.Rows) (Entry, error) {
	var (
		e   Entry
		typ string
		raw []byte
	)
	if err := rows.Scan(&e.ID, &typ, &e.ReferenceID, &e.Description, &raw, &e.ActorID, &e.CreatedAt); err != nil {
		return Entry{}, err
	}
	e.Type = EntryType(typ)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &e.Payload); err != nil {
			return Entry{}, err
		}
	}
	return e, nil
}
