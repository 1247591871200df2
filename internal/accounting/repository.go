package accounting

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solvia-erp/solvia-erp/internal/platform/db"
	"github.com/solvia-erp/solvia-erp/internal/shared"
	"github.com/solvia-erp/solvia-erp/internal/txlog"
)

// Repository persists journal entries in PostgreSQL.
type Repository struct {
	pool     *pgxpool.Pool
	recorder *txlog.Recorder
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool, logRec *txlog.Recorder) *Repository {
	return &Repository{pool: pool, recorder: logRec}
}

type txRepo struct {
	tx       pgx.Tx
	recorder *txlog.Recorder
}

// WithTx executes fn inside one transaction scope.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx, recorder: r.recorder})
	})
}

func (t *txRepo) InsertEntryHeader(ctx context.Context, entry JournalEntry) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO asientos_contables (fecha, diario, descripcion, total_debe, total_haber)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		entry.Date, entry.JournalCode, entry.Description, entry.TotalDebit, entry.TotalCredit,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("accounting: insert header: %w", err)
	}
	return id, nil
}

func (t *txRepo) InsertEntryLine(ctx context.Context, entryID int64, line JournalLine) error {
	var costCenter *int64
	if line.CostCenterID != 0 {
		costCenter = &line.CostCenterID
	}
	_, err := t.tx.Exec(ctx,
		`INSERT INTO detalle_asientos (asiento_id, cuenta_id, centro_costo_id, debe, haber, referencia_documento)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))`,
		entryID, line.AccountID, costCenter, line.Debit, line.Credit, line.DocumentRef,
	)
	if err != nil {
		return fmt.Errorf("accounting: insert line: %w", err)
	}
	return nil
}

func (t *txRepo) AppendLog(ctx context.Context, entry txlog.Entry) (int64, error) {
	return t.recorder.Record(ctx, t.tx, entry)
}

// GetEntry loads one entry header plus its lines.
func (r *Repository) GetEntry(ctx context.Context, id int64) (JournalEntry, error) {
	var entry JournalEntry
	err := r.pool.QueryRow(ctx,
		`SELECT id, fecha, diario, COALESCE(descripcion, ''), total_debe, total_haber
		 FROM asientos_contables WHERE id = $1`, id,
	).Scan(&entry.ID, &entry.Date, &entry.JournalCode, &entry.Description, &entry.TotalDebit, &entry.TotalCredit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, ErrNotFound
		}
		return JournalEntry{}, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT cuenta_id, COALESCE(centro_costo_id, 0), debe, haber, COALESCE(referencia_documento, '')
		 FROM detalle_asientos WHERE asiento_id = $1 ORDER BY id`, id)
	if err != nil {
		return JournalEntry{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line JournalLine
		if err := rows.Scan(&line.AccountID, &line.CostCenterID, &line.Debit, &line.Credit, &line.DocumentRef); err != nil {
			return JournalEntry{}, err
		}
		entry.Lines = append(entry.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return JournalEntry{}, err
	}
	return entry, nil
}

// ListEntries pages through entry headers matching the filter.
func (r *Repository) ListEntries(ctx context.Context, filter ListFilter) ([]JournalEntry, shared.Pagination, error) {
	where := ""
	var args []any
	appendCond := func(cond string, value any) {
		args = append(args, value)
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += fmt.Sprintf(cond, len(args))
	}
	if filter.JournalCode != "" {
		appendCond("diario = $%d", filter.JournalCode)
	}
	if !filter.From.IsZero() {
		appendCond("fecha >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		appendCond("fecha <= $%d", filter.To)
	}

	selectSQL := `SELECT id, fecha, diario, COALESCE(descripcion, ''), total_debe, total_haber
		 FROM asientos_contables` + where + ` ORDER BY fecha DESC, id DESC`
	countSQL := `SELECT COUNT(*) FROM asientos_contables` + where

	return shared.QueryPaged(ctx, r.pool, selectSQL, countSQL, args, filter.Page, filter.PerPage,
		func(rows pgx.Rows) (JournalEntry, error) {
			var entry JournalEntry
			err := rows.Scan(&entry.ID, &entry.Date, &entry.JournalCode, &entry.Description, &entry.TotalDebit, &entry.TotalCredit)
			return entry, err
		})
}
