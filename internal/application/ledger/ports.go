package ledger

import (
	"context"

	"github.com/jhoicas/Backoffice-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Es la unidad atómica del ledger: actualizar current_stock y
// agregar el movimiento ocurren juntos o no ocurren.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
	) error) error
}
