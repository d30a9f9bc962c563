package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Backoffice-api/internal/domain"
	"github.com/jhoicas/Backoffice-api/internal/domain/entity"
	"github.com/jhoicas/Backoffice-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, owner_id, sku, name, category, description, current_stock,
		min_stock_level, cost_price, selling_price, supplier, location, is_active, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, owner_id, sku, name, category, description, current_stock,
			min_stock_level, cost_price, selling_price, supplier, location, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.OwnerID, product.SKU, product.Name, product.Category, product.Description,
		product.CurrentStock, product.MinStockLevel, product.CostPrice, product.SellingPrice,
		product.Supplier, product.Location, product.IsActive, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepo) scanOne(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.SKU, &p.Name, &p.Category, &p.Description, &p.CurrentStock,
		&p.MinStockLevel, &p.CostPrice, &p.SellingPrice, &p.Supplier, &p.Location,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &p, nil
}

// GetByID obtiene un producto del owner.
func (r *ProductRepo) GetByID(ctx context.Context, ownerID, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND owner_id = $2`
	return r.scanOne(r.q.QueryRow(ctx, query, id, ownerID))
}

// GetForUpdate obtiene el producto y bloquea la fila para update (SELECT FOR UPDATE).
// Las mutaciones concurrentes sobre el mismo producto se serializan en este lock.
func (r *ProductRepo) GetForUpdate(ctx context.Context, ownerID, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND owner_id = $2 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(ctx, query, id, ownerID))
}

// UpdateStock fija current_stock. Usar únicamente bajo el lock de GetForUpdate.
func (r *ProductRepo) UpdateStock(ctx context.Context, id string, newStock int64) error {
	query := `UPDATE products SET current_stock = $1, updated_at = now() WHERE id = $2`
	_, err := r.q.Exec(ctx, query, newStock, id)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	return nil
}

// Update actualiza metadatos y precios (no toca current_stock).
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products
		SET sku = $1, name = $2, category = $3, description = $4, min_stock_level = $5,
			cost_price = $6, selling_price = $7, supplier = $8, location = $9, updated_at = $10
		WHERE id = $11 AND owner_id = $12`
	_, err := r.q.Exec(ctx, query,
		product.SKU, product.Name, product.Category, product.Description, product.MinStockLevel,
		product.CostPrice, product.SellingPrice, product.Supplier, product.Location, product.UpdatedAt,
		product.ID, product.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// Deactivate marca el producto como inactivo.
func (r *ProductRepo) Deactivate(ctx context.Context, ownerID, id string) error {
	query := `UPDATE products SET is_active = FALSE, updated_at = now() WHERE id = $1 AND owner_id = $2`
	tag, err := r.q.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListActive lista los productos activos del owner ordenados por nombre.
func (r *ProductRepo) ListActive(ctx context.Context, ownerID string) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE owner_id = $1 AND is_active = TRUE ORDER BY name`
	return r.list(ctx, query, ownerID)
}

// ListLowStock lista productos activos con stock en o por debajo de su nivel mínimo
// (o del umbral por defecto si no tienen), ordenados por current_stock ascendente.
func (r *ProductRepo) ListLowStock(ctx context.Context, ownerID string, threshold int64) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE owner_id = $1
		  AND is_active = TRUE
		  AND current_stock <= COALESCE(min_stock_level, $2)
		ORDER BY current_stock ASC`
	return r.list(ctx, query, ownerID, threshold)
}

func (r *ProductRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(
			&p.ID, &p.OwnerID, &p.SKU, &p.Name, &p.Category, &p.Description, &p.CurrentStock,
			&p.MinStockLevel, &p.CostPrice, &p.SellingPrice, &p.Supplier, &p.Location,
			&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
