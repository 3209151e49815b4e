package products

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/autostock/backend/internal/models"
)

// Repository handles product persistence. Every query is tenant-scoped: a
// product id from another business behaves exactly like a nonexistent one.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a products repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const columns = `id, business_id, code, name, category, price, quantity, supplier, created_at`

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.BusinessID, &p.Code, &p.Name, &p.Category, &p.Price, &p.Quantity, &p.Supplier, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a product into the business catalog.
func (r *Repository) Create(ctx context.Context, businessID uuid.UUID, code, name, category string, price float64, quantity int, supplier string) (*models.Product, error) {
	const q = `INSERT INTO products (business_id, code, name, category, price, quantity, supplier)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + columns
	return scanProduct(r.pool.QueryRow(ctx, q, businessID, code, name, category, price, quantity, supplier))
}

// GetByID returns a product within the business, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Product, error) {
	const q = `SELECT ` + columns + ` FROM products WHERE id = $1 AND business_id = $2`
	return scanProduct(r.pool.QueryRow(ctx, q, id, businessID))
}

// GetByCode returns a product by its per-business code, or nil when absent.
func (r *Repository) GetByCode(ctx context.Context, businessID uuid.UUID, code string) (*models.Product, error) {
	const q = `SELECT ` + columns + ` FROM products WHERE business_id = $1 AND code = $2`
	return scanProduct(r.pool.QueryRow(ctx, q, businessID, code))
}

// List returns the business catalog ordered by name.
func (r *Repository) List(ctx context.Context, businessID uuid.UUID) ([]models.Product, error) {
	const q = `SELECT ` + columns + ` FROM products WHERE business_id = $1 ORDER BY name, code`
	rows, err := r.pool.Query(ctx, q, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.BusinessID, &p.Code, &p.Name, &p.Category, &p.Price, &p.Quantity, &p.Supplier, &p.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Update overwrites a product's fields. Returns false when the product is
// absent from the business.
func (r *Repository) Update(ctx context.Context, businessID, id uuid.UUID, code, name, category string, price float64, quantity int, supplier string) (bool, error) {
	const q = `UPDATE products SET code = $3, name = $4, category = $5, price = $6, quantity = $7, supplier = $8
		WHERE id = $1 AND business_id = $2`
	tag, err := r.pool.Exec(ctx, q, id, businessID, code, name, category, price, quantity, supplier)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Delete removes a product from the business catalog.
func (r *Repository) Delete(ctx context.Context, businessID, id uuid.UUID) (bool, error) {
	const q = `DELETE FROM products WHERE id = $1 AND business_id = $2`
	tag, err := r.pool.Exec(ctx, q, id, businessID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
