package repository

import (
	"context"

	"github.com/jhoicas/Backoffice-api/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia del ledger de movimientos.
// El log es append-only: no hay Update ni Delete.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByProduct(ctx context.Context, ownerID, productID string, limit, offset int) ([]*entity.StockMovement, error)
	// SumDeltasByProduct suma los deltas confirmados de un producto; sirve para
	// reconciliar contra current_stock (deben coincidir siempre).
	SumDeltasByProduct(ctx context.Context, ownerID, productID string) (int64, error)
}
