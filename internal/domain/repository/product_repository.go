package repository

import (
	"context"

	"github.com/jhoicas/Backoffice-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para productos.
// Todas las lecturas/escrituras están acotadas al owner.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, ownerID, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE).
	// Solo tiene sentido dentro de una transacción.
	GetForUpdate(ctx context.Context, ownerID, id string) (*entity.Product, error)
	// UpdateStock fija current_stock; usar únicamente bajo el lock de GetForUpdate.
	UpdateStock(ctx context.Context, id string, newStock int64) error
	Update(ctx context.Context, product *entity.Product) error
	Deactivate(ctx context.Context, ownerID, id string) error
	ListActive(ctx context.Context, ownerID string) ([]*entity.Product, error)
	// ListLowStock devuelve productos activos con current_stock <= COALESCE(min_stock_level, threshold),
	// ordenados por current_stock ascendente.
	ListLowStock(ctx context.Context, ownerID string, threshold int64) ([]*entity.Product, error)
}
