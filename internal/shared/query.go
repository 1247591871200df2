package shared

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Querier is the subset of pgx used by read paths. Both *pgxpool.Pool and
// pgx.Tx satisfy it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QueryPaged runs the COUNT statement followed by the SELECT with LIMIT/OFFSET
// appended, scanning each row through scan. Both statements receive the same
// args; the SELECT additionally gets the limit and offset as trailing
// positional parameters.
func QueryPaged[T any](ctx context.Context, q Querier, selectSQL, countSQL string, args []any, page, perPage int, scan func(pgx.Rows) (T, error)) ([]T, Pagination, error) {
	var total int
	if err := q.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, Pagination{}, fmt.Errorf("shared: count: %w", err)
	}

	p := NewPagination(page, perPage, total)

	n := len(args)
	paged := fmt.Sprintf("%s LIMIT $%d OFFSET $%d", selectSQL, n+1, n+2)
	rows, err := q.Query(ctx, paged, append(args, p.PerPage, p.Offset())...)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("shared: query: %w", err)
	}
	defer rows.Close()

	var items []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, Pagination{}, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, Pagination{}, err
	}
	return items, p, nil
}
