package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/autostock/backend/internal/models"
	"github.com/autostock/backend/pkg/apperr"
)

// Repository handles sale persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a sales repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const columns = `id, business_id, product_id, seller_id, quantity, total, created_at`

// Register decrements stock and records the sale in one transaction. The
// stock check and decrement are a single conditional update, so two sellers
// racing over the last units cannot both win. Returns the sale and the
// product as it was sold.
func (r *Repository) Register(ctx context.Context, businessID, sellerID, productID uuid.UUID, quantity int) (*models.Sale, *models.Product, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	var p models.Product
	const productQ = `SELECT id, business_id, code, name, category, price, quantity, supplier, created_at
		FROM products WHERE id = $1 AND business_id = $2`
	err = tx.QueryRow(ctx, productQ, productID, businessID).
		Scan(&p.ID, &p.BusinessID, &p.Code, &p.Name, &p.Category, &p.Price, &p.Quantity, &p.Supplier, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, fmt.Errorf("%w: product not found", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, nil, err
	}

	const decrementQ = `UPDATE products SET quantity = quantity - $3
		WHERE id = $1 AND business_id = $2 AND quantity >= $3`
	tag, err := tx.Exec(ctx, decrementQ, productID, businessID, quantity)
	if err != nil {
		return nil, nil, err
	}
	if tag.RowsAffected() != 1 {
		return nil, nil, fmt.Errorf("%w: insufficient stock", apperr.ErrConflict)
	}

	var s models.Sale
	const insertQ = `INSERT INTO sales (business_id, product_id, seller_id, quantity, total)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + columns
	err = tx.QueryRow(ctx, insertQ, businessID, productID, sellerID, quantity, p.Price*float64(quantity)).
		Scan(&s.ID, &s.BusinessID, &s.ProductID, &s.SellerID, &s.Quantity, &s.Total, &s.CreatedAt)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return &s, &p, nil
}

// ListByBusiness returns a business's sales, newest first.
func (r *Repository) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]models.Sale, error) {
	const q = `SELECT ` + columns + ` FROM sales WHERE business_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, q, businessID)
}

// ListBySeller returns one seller's sales within a business, newest first.
func (r *Repository) ListBySeller(ctx context.Context, businessID, sellerID uuid.UUID) ([]models.Sale, error) {
	const q = `SELECT ` + columns + ` FROM sales WHERE business_id = $1 AND seller_id = $2 ORDER BY created_at DESC`
	return r.list(ctx, q, businessID, sellerID)
}

func (r *Repository) list(ctx context.Context, q string, args ...any) ([]models.Sale, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sales []models.Sale
	for rows.Next() {
		var s models.Sale
		if err := rows.Scan(&s.ID, &s.BusinessID, &s.ProductID, &s.SellerID, &s.Quantity, &s.Total, &s.CreatedAt); err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}
