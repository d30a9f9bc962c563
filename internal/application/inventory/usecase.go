package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Backoffice-api/internal/application/dto"
	"github.com/jhoicas/Backoffice-api/internal/application/ledger"
	"github.com/jhoicas/Backoffice-api/internal/domain"
	"github.com/jhoicas/Backoffice-api/internal/domain/entity"
	"github.com/jhoicas/Backoffice-api/internal/domain/repository"
	"github.com/jhoicas/Backoffice-api/pkg/logger"
)

// ProductUseCase administra el catálogo de productos. El campo current_stock
// nunca se escribe directo desde aquí: todo cambio de cantidad pasa por el
// ledger para conservar el rastro de movimientos.
type ProductUseCase struct {
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	stock        *ledger.StockLedger
	log          *logger.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	stock *ledger.StockLedger,
	log *logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo:  productRepo,
		movementRepo: movementRepo,
		stock:        stock,
		log:          log,
	}
}

// AddProduct da de alta un producto. Si trae stock inicial, el producto se crea
// en cero y la cantidad entra como un movimiento 'initial' vía ledger, para que
// current_stock siempre sea la suma de sus movimientos.
func (uc *ProductUseCase) AddProduct(ctx context.Context, ownerID string, in dto.CreateProductRequest) (*entity.Product, error) {
	if ownerID == "" || strings.TrimSpace(in.Name) == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.CurrentStock < 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		OwnerID:       ownerID,
		SKU:           in.SKU,
		Name:          strings.TrimSpace(in.Name),
		Category:      in.Category,
		Description:   in.Description,
		CurrentStock:  0,
		MinStockLevel: in.MinStockLevel,
		CostPrice:     in.CostPrice,
		SellingPrice:  in.SellingPrice,
		Supplier:      in.Supplier,
		Location:      in.Location,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	if in.CurrentStock > 0 {
		if err := uc.stock.ApplyDelta(ctx, ledger.ApplyDeltaInput{
			OwnerID:   ownerID,
			ProductID: product.ID,
			Delta:     in.CurrentStock,
			Type:      entity.MovementTypeInitial,
			Notes:     "Initial stock",
		}); err != nil {
			return nil, err
		}
		product.CurrentStock = in.CurrentStock
	}
	uc.log.Info().Str("owner_id", ownerID).Str("product_id", product.ID).Str("name", product.Name).Msg("producto creado")
	return product, nil
}

// UpdateProduct edita metadatos y precios. Un current_stock distinto al actual se
// ajusta vía SetStock (movimiento 'adjustment'), nunca con un UPDATE directo.
func (uc *ProductUseCase) UpdateProduct(ctx context.Context, ownerID, productID string, in dto.UpdateProductRequest) error {
	product, err := uc.productRepo.GetByID(ctx, ownerID, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	if strings.TrimSpace(in.Name) != "" {
		product.Name = strings.TrimSpace(in.Name)
	}
	product.SKU = in.SKU
	product.Category = in.Category
	product.Description = in.Description
	product.MinStockLevel = in.MinStockLevel
	product.CostPrice = in.CostPrice
	product.SellingPrice = in.SellingPrice
	product.Supplier = in.Supplier
	product.Location = in.Location
	product.UpdatedAt = time.Now()
	if err := uc.productRepo.Update(ctx, product); err != nil {
		return err
	}
	if in.CurrentStock != nil && *in.CurrentStock != product.CurrentStock {
		return uc.stock.SetStock(ctx, ownerID, productID, *in.CurrentStock, "", "Manual stock adjustment")
	}
	return nil
}

// AdjustStock aplica un ajuste manual de inventario mapeando el tipo de ajuste a
// su tipo de movimiento: add_stock/found_stock suman, remove_stock/damaged
// restan (sujetos al piso), y set_stock ajusta a la cantidad objetivo.
// Si el ajuste trae precios nuevos, se actualizan después de aplicar el stock.
func (uc *ProductUseCase) AdjustStock(ctx context.Context, ownerID string, in dto.AdjustStockRequest) error {
	if in.ProductID == "" {
		return domain.ErrInvalidInput
	}
	notes := strings.TrimSpace(strings.TrimSuffix(fmt.Sprintf("%s: %s", in.Reason, in.Notes), ": "))
	reference := fmt.Sprintf("ADJ-%d", time.Now().Unix())

	var err error
	switch in.AdjustmentType {
	case dto.AdjustmentAddStock:
		err = uc.applySigned(ctx, ownerID, in, entity.MovementTypeStockIn, in.Quantity, reference, notes)
	case dto.AdjustmentRemoveStock:
		err = uc.applySigned(ctx, ownerID, in, entity.MovementTypeStockOut, -in.Quantity, reference, notes)
	case dto.AdjustmentDamaged:
		err = uc.applySigned(ctx, ownerID, in, entity.MovementTypeDamaged, -in.Quantity, reference, notes)
	case dto.AdjustmentFoundStock:
		err = uc.applySigned(ctx, ownerID, in, entity.MovementTypeFound, in.Quantity, reference, notes)
	case dto.AdjustmentSetStock:
		err = uc.stock.SetStock(ctx, ownerID, in.ProductID, in.Quantity, reference, notes)
	default:
		return domain.ErrInvalidInput
	}
	if err != nil {
		return err
	}

	if in.NewCostPrice != nil || in.NewSellingPrice != nil {
		product, err := uc.productRepo.GetByID(ctx, ownerID, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if in.NewCostPrice != nil {
			product.CostPrice = *in.NewCostPrice
		}
		if in.NewSellingPrice != nil {
			product.SellingPrice = *in.NewSellingPrice
		}
		product.UpdatedAt = time.Now()
		return uc.productRepo.Update(ctx, product)
	}
	return nil
}

func (uc *ProductUseCase) applySigned(ctx context.Context, ownerID string, in dto.AdjustStockRequest, movementType string, delta int64, reference, notes string) error {
	if in.Quantity <= 0 {
		return domain.ErrInvalidInput
	}
	return uc.stock.ApplyDelta(ctx, ledger.ApplyDeltaInput{
		OwnerID:   ownerID,
		ProductID: in.ProductID,
		Delta:     delta,
		Type:      movementType,
		Reference: reference,
		Notes:     notes,
	})
}

// DeactivateProduct marca el producto como inactivo (no se borra).
func (uc *ProductUseCase) DeactivateProduct(ctx context.Context, ownerID, productID string) error {
	return uc.productRepo.Deactivate(ctx, ownerID, productID)
}

// GetProduct obtiene un producto del owner.
func (uc *ProductUseCase) GetProduct(ctx context.Context, ownerID, productID string) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(ctx, ownerID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

// ListProducts lista los productos activos del owner.
func (uc *ProductUseCase) ListProducts(ctx context.Context, ownerID string) ([]*entity.Product, error) {
	return uc.productRepo.ListActive(ctx, ownerID)
}

// ProductHistory devuelve el rastro de movimientos de un producto, del más
// reciente al más antiguo, para reconciliación.
func (uc *ProductUseCase) ProductHistory(ctx context.Context, ownerID, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	if limit <= 0 {
		limit = 50
	}
	return uc.movementRepo.ListByProduct(ctx, ownerID, productID, limit, offset)
}
