package masterdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solvia-erp/solvia-erp/internal/shared"
)

// Repository reads and writes the catalog tables.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListFilter narrows catalog listings by a case-insensitive name search.
type ListFilter struct {
	Search  string
	Page    int
	PerPage int
}

func searchClause(filter ListFilter, column string) (string, []any) {
	if filter.Search == "" {
		return "", nil
	}
	return fmt.Sprintf(" WHERE %s ILIKE $1", column), []any{"%" + filter.Search + "%"}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ListSuppliers pages through proveedores.
func (r *Repository) ListSuppliers(ctx context.Context, filter ListFilter) ([]Supplier, shared.Pagination, error) {
	where, args := searchClause(filter, "nombre")
	selectSQL := `SELECT id, nombre, ruc, COALESCE(direccion, ''), COALESCE(email, ''), COALESCE(telefono, ''), creado_en, actualizado_en
		 FROM proveedores` + where + ` ORDER BY nombre ASC`
	countSQL := `SELECT COUNT(*) FROM proveedores` + where

	return shared.QueryPaged(ctx, r.pool, selectSQL, countSQL, args, filter.Page, filter.PerPage,
		func(rows pgx.Rows) (Supplier, error) {
			var s Supplier
			err := rows.Scan(&s.ID, &s.Name, &s.TaxID, &s.Address, &s.Email, &s.Phone, &s.CreatedAt, &s.UpdatedAt)
			return s, err
		})
}

// GetSupplier loads one supplier.
func (r *Repository) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	var s Supplier
	err := r.pool.QueryRow(ctx,
		`SELECT id, nombre, ruc, COALESCE(direccion, ''), COALESCE(email, ''), COALESCE(telefono, ''), creado_en, actualizado_en
		 FROM proveedores WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.TaxID, &s.Address, &s.Email, &s.Phone, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Supplier{}, ErrNotFound
	}
	return s, err
}

// CreateSupplier inserts a supplier, mapping tax-id conflicts to ErrDuplicate.
func (r *Repository) CreateSupplier(ctx context.Context, s Supplier) (Supplier, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO proveedores (nombre, ruc, direccion, email, telefono, creado_en, actualizado_en)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6, $6)
		 RETURNING id`,
		s.Name, s.TaxID, s.Address, s.Email, s.Phone, now,
	).Scan(&s.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return Supplier{}, ErrDuplicate
		}
		return Supplier{}, err
	}
	s.CreatedAt = now
	s.UpdatedAt = now
	return s, nil
}

// UpdateSupplier rewrites a supplier record.
func (r *Repository) UpdateSupplier(ctx context.Context, id int64, s Supplier) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE proveedores SET nombre = $1, ruc = $2, direccion = NULLIF($3, ''),
		 email = NULLIF($4, ''), telefono = NULLIF($5, ''), actualizado_en = $6
		 WHERE id = $7`,
		s.Name, s.TaxID, s.Address, s.Email, s.Phone, time.Now(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListClients pages through clientes.
func (r *Repository) ListClients(ctx context.Context, filter ListFilter) ([]Client, shared.Pagination, error) {
	where, args := searchClause(filter, "nombre")
	selectSQL := `SELECT id, nombre, ruc, COALESCE(direccion, ''), COALESCE(email, ''), COALESCE(telefono, ''), creado_en, actualizado_en
		 FROM clientes` + where + ` ORDER BY nombre ASC`
	countSQL := `SELECT COUNT(*) FROM clientes` + where

	return shared.QueryPaged(ctx, r.pool, selectSQL, countSQL, args, filter.Page, filter.PerPage,
		func(rows pgx.Rows) (Client, error) {
			var c Client
			err := rows.Scan(&c.ID, &c.Name, &c.TaxID, &c.Address, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
			return c, err
		})
}

// GetClient loads one client.
func (r *Repository) GetClient(ctx context.Context, id int64) (Client, error) {
	var c Client
	err := r.pool.QueryRow(ctx,
		`SELECT id, nombre, ruc, COALESCE(direccion, ''), COALESCE(email, ''), COALESCE(telefono, ''), creado_en, actualizado_en
		 FROM clientes WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.TaxID, &c.Address, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, ErrNotFound
	}
	return c, err
}

// CreateClient inserts a client.
func (r *Repository) CreateClient(ctx context.Context, c Client) (Client, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO clientes (nombre, ruc, direccion, email, telefono, creado_en, actualizado_en)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6, $6)
		 RETURNING id`,
		c.Name, c.TaxID, c.Address, c.Email, c.Phone, now,
	).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return Client{}, ErrDuplicate
		}
		return Client{}, err
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	return c, nil
}

// ListProducts pages through productos.
func (r *Repository) ListProducts(ctx context.Context, filter ListFilter) ([]Product, shared.Pagination, error) {
	where, args := searchClause(filter, "nombre")
	selectSQL := `SELECT id, sku, nombre, unidad, activo, creado_en, actualizado_en
		 FROM productos` + where + ` ORDER BY nombre ASC`
	countSQL := `SELECT COUNT(*) FROM productos` + where

	return shared.QueryPaged(ctx, r.pool, selectSQL, countSQL, args, filter.Page, filter.PerPage,
		func(rows pgx.Rows) (Product, error) {
			var p Product
			err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Unit, &p.Active, &p.CreatedAt, &p.UpdatedAt)
			return p, err
		})
}

// GetProduct loads one product.
func (r *Repository) GetProduct(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := r.pool.QueryRow(ctx,
		`SELECT id, sku, nombre, unidad, activo, creado_en, actualizado_en
		 FROM productos WHERE id = $1`, id,
	).Scan(&p.ID, &p.SKU, &p.Name, &p.Unit, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

// CreateProduct inserts a product, mapping SKU conflicts to ErrDuplicate.
func (r *Repository) CreateProduct(ctx context.Context, p Product) (Product, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO productos (sku, nombre, unidad, activo, creado_en, actualizado_en)
		 VALUES ($1, $2, $3, $4, $5, $5)
		 RETURNING id`,
		p.SKU, p.Name, p.Unit, p.Active, now,
	).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return Product{}, ErrDuplicate
		}
		return Product{}, err
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return p, nil
}

// ListWarehouses pages through almacenes.
func (r *Repository) ListWarehouses(ctx context.Context, filter ListFilter) ([]Warehouse, shared.Pagination, error) {
	where, args := searchClause(filter, "nombre")
	selectSQL := `SELECT id, codigo, nombre, COALESCE(direccion, ''), creado_en
		 FROM almacenes` + where + ` ORDER BY codigo ASC`
	countSQL := `SELECT COUNT(*) FROM almacenes` + where

	return shared.QueryPaged(ctx, r.pool, selectSQL, countSQL, args, filter.Page, filter.PerPage,
		func(rows pgx.Rows) (Warehouse, error) {
			var w Warehouse
			err := rows.Scan(&w.ID, &w.Code, &w.Name, &w.Address, &w.CreatedAt)
			return w, err
		})
}

// CreateWarehouse inserts a warehouse, mapping code conflicts to ErrDuplicate.
func (r *Repository) CreateWarehouse(ctx context.Context, w Warehouse) (Warehouse, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO almacenes (codigo, nombre, direccion, creado_en)
		 VALUES ($1, $2, NULLIF($3, ''), $4)
		 RETURNING id`,
		w.Code, w.Name, w.Address, now,
	).Scan(&w.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return Warehouse{}, ErrDuplicate
		}
		return Warehouse{}, err
	}
	w.CreatedAt = now
	return w, nil
}
