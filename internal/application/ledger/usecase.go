package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Backoffice-api/internal/domain"
	"github.com/jhoicas/Backoffice-api/internal/domain/entity"
	"github.com/jhoicas/Backoffice-api/internal/domain/repository"
	"github.com/jhoicas/Backoffice-api/pkg/logger"
)

// StockLedger muta cantidades de stock de forma atómica con bloqueo de fila
// (SELECT FOR UPDATE) y deja un rastro append-only de movimientos. Es el único
// camino de escritura de current_stock: el invariante stock >= 0 se garantiza
// aquí, bajo el lock, nunca en los pre-chequeos.
type StockLedger struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	log         *logger.Logger
}

// NewStockLedger construye el ledger.
func NewStockLedger(txRunner TxRunner, productRepo repository.ProductRepository, log *logger.Logger) *StockLedger {
	return &StockLedger{txRunner: txRunner, productRepo: productRepo, log: log}
}

// ApplyDeltaInput entrada para aplicar un delta de stock.
type ApplyDeltaInput struct {
	OwnerID   string
	ProductID string
	Delta     int64  // con signo: negativo para salidas
	Type      string // tipo de movimiento del catálogo
	Reference string // número de documento que origina el cambio (opcional)
	Notes     string
}

// ApplyDelta bloquea la fila del producto, verifica el piso (current + delta >= 0),
// actualiza current_stock y agrega exactamente un movimiento, todo en la misma
// transacción. Un rechazo no deja ningún efecto: ni stock ni movimiento.
func (l *StockLedger) ApplyDelta(ctx context.Context, input ApplyDeltaInput) error {
	if input.OwnerID == "" || input.ProductID == "" || input.Delta == 0 {
		return domain.ErrInvalidInput
	}
	if !entity.IsValidMovementType(input.Type) {
		return domain.ErrInvalidInput
	}
	// Coherencia tipo/signo: los tipos de salida restan, los de entrada suman.
	if entity.IsOutgoingType(input.Type) && input.Delta > 0 {
		return domain.ErrInvalidInput
	}
	if entity.IsIncomingType(input.Type) && input.Delta < 0 {
		return domain.ErrInvalidInput
	}

	return l.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
	) error {
		// Bloquea la fila en products (SELECT FOR UPDATE): las mutaciones sobre el
		// mismo producto se serializan aquí.
		product, err := productRepo.GetForUpdate(ctx, input.OwnerID, input.ProductID)
		if err != nil {
			return err
		}
		if product == nil || !product.IsActive {
			return domain.ErrNotFound
		}

		newStock := product.CurrentStock + input.Delta
		if newStock < 0 {
			return &domain.InsufficientStockError{
				ProductName: product.Name,
				Available:   product.CurrentStock,
				Requested:   -input.Delta,
			}
		}

		if err := productRepo.UpdateStock(ctx, product.ID, newStock); err != nil {
			return err
		}
		mov := &entity.StockMovement{
			ID:            uuid.New().String(),
			OwnerID:       input.OwnerID,
			ProductID:     product.ID,
			Type:          input.Type,
			QuantityDelta: input.Delta,
			Reference:     input.Reference,
			Notes:         input.Notes,
			CreatedAt:     time.Now(),
		}
		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}
		l.log.Debug().
			Str("owner_id", input.OwnerID).
			Str("product_id", product.ID).
			Str("type", input.Type).
			Int64("delta", input.Delta).
			Int64("new_stock", newStock).
			Msg("movimiento de stock aplicado")
		return nil
	})
}

// SetStock ajusta el stock a una cantidad objetivo: el delta (objetivo - actual)
// se calcula dentro del mismo lock, puede ser positivo o negativo, y sigue sujeto
// al piso. Si el objetivo es igual al stock actual no se escribe nada.
func (l *StockLedger) SetStock(ctx context.Context, ownerID, productID string, target int64, reference, notes string) error {
	if ownerID == "" || productID == "" || target < 0 {
		return domain.ErrInvalidInput
	}
	return l.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
	) error {
		product, err := productRepo.GetForUpdate(ctx, ownerID, productID)
		if err != nil {
			return err
		}
		if product == nil || !product.IsActive {
			return domain.ErrNotFound
		}
		delta := target - product.CurrentStock
		if delta == 0 {
			return nil
		}
		if err := productRepo.UpdateStock(ctx, product.ID, target); err != nil {
			return err
		}
		mov := &entity.StockMovement{
			ID:            uuid.New().String(),
			OwnerID:       ownerID,
			ProductID:     product.ID,
			Type:          entity.MovementTypeAdjustment,
			QuantityDelta: delta,
			Reference:     reference,
			Notes:         notes,
			CreatedAt:     time.Now(),
		}
		return movRepo.Create(ctx, mov)
	})
}

// AvailabilityItem una línea a verificar en el pre-chequeo de disponibilidad.
type AvailabilityItem struct {
	ProductID string
	Quantity  int64
}

// ValidateAvailability pre-chequeo consultivo sin locks sobre varios productos,
// para fallar rápido con un mensaje legible antes de arrancar un flujo mutador.
// Puede competir con mutaciones concurrentes: el chequeo autoritativo es siempre
// el de ApplyDelta bajo lock; un pre-chequeo aprobado NO es garantía.
func (l *StockLedger) ValidateAvailability(ctx context.Context, ownerID string, items []AvailabilityItem) (bool, string) {
	for _, item := range items {
		if item.ProductID == "" {
			continue
		}
		product, err := l.productRepo.GetByID(ctx, ownerID, item.ProductID)
		if err != nil {
			l.log.Error().Err(err).Str("product_id", item.ProductID).Msg("error validando disponibilidad")
			return false, fmt.Sprintf("Stock validation error: %v", err)
		}
		if product == nil || !product.IsActive {
			return false, fmt.Sprintf("Product ID %s not found in inventory", item.ProductID)
		}
		if product.CurrentStock < item.Quantity {
			return false, fmt.Sprintf("Insufficient stock for '%s'. Available: %d, Required: %d",
				product.Name, product.CurrentStock, item.Quantity)
		}
	}
	return true, ""
}
