package masterdata

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solvia-erp/solvia-erp/internal/procurement"
)

// SupplierAdapter exposes the supplier catalog to the purchasing quick flow.
type SupplierAdapter struct {
	pool *pgxpool.Pool
}

// NewSupplierAdapter constructs SupplierAdapter.
func NewSupplierAdapter(pool *pgxpool.Pool) *SupplierAdapter {
	return &SupplierAdapter{pool: pool}
}

// FindByName resolves a supplier by case-insensitive exact name match,
// preferring the most recently updated record when names collide.
func (a *SupplierAdapter) FindByName(ctx context.Context, name string) (procurement.Supplier, error) {
	var s procurement.Supplier
	err := a.pool.QueryRow(ctx,
		`SELECT id, nombre, ruc, actualizado_en
		 FROM proveedores WHERE nombre ILIKE $1
		 ORDER BY actualizado_en DESC LIMIT 1`, name,
	).Scan(&s.ID, &s.Name, &s.TaxID, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return procurement.Supplier{}, procurement.ErrSupplierNotFound
		}
		return procurement.Supplier{}, err
	}
	return s, nil
}

// Create inserts a placeholder supplier for the quick flow.
func (a *SupplierAdapter) Create(ctx context.Context, s procurement.Supplier) (procurement.Supplier, error) {
	err := a.pool.QueryRow(ctx,
		`INSERT INTO proveedores (nombre, ruc, creado_en, actualizado_en)
		 VALUES ($1, $2, now(), now())
		 RETURNING id, actualizado_en`,
		s.Name, s.TaxID,
	).Scan(&s.ID, &s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return procurement.Supplier{}, ErrDuplicate
		}
		return procurement.Supplier{}, err
	}
	return s, nil
}
