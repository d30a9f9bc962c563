package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/Backoffice-api/internal/application/ledger"
	"github.com/jhoicas/Backoffice-api/internal/domain"
	"github.com/jhoicas/Backoffice-api/internal/domain/entity"
)

// ReceiveDocument marca una orden de compra como recibida (GRN): convierte las
// cantidades planeadas de la orden en incrementos reales de stock. Es una
// operación separada y posterior a la creación de la orden, con guarda de
// idempotencia: recibir dos veces la misma orden es un no-op.
//
// La corrección del stock y la del estado se llevan por separado: el estado pasa
// a received aunque alguna línea haya fallado al sumar stock; esos fallos
// regresan como warnings junto a las unidades que sí entraron.
func (c *TransactionCoordinator) ReceiveDocument(ctx context.Context, ownerID, number string) (int64, []string, error) {
	doc, err := c.docRepo.GetByNumber(ctx, ownerID, entity.DocumentKindPurchaseOrder, number)
	if err != nil {
		return 0, nil, err
	}
	if doc == nil {
		return 0, nil, domain.ErrNotFound
	}
	if doc.Status == entity.DocumentStatusReceived {
		return 0, nil, domain.ErrAlreadyReceived
	}
	if !entity.CanTransitionStatus(doc.Status, entity.DocumentStatusReceived) {
		// p. ej. recibir una orden cancelada
		return 0, nil, domain.ErrInvalidTransition
	}

	items, err := c.docRepo.GetItems(ctx, doc.ID)
	if err != nil {
		return 0, nil, err
	}

	var addedUnits int64
	var warnings []string
	for _, item := range items {
		if item.ProductID == "" || item.Quantity <= 0 {
			continue
		}
		applyErr := c.stock.ApplyDelta(ctx, ledger.ApplyDeltaInput{
			OwnerID:   ownerID,
			ProductID: item.ProductID,
			Delta:     item.Quantity,
			Type:      entity.MovementTypePurchaseReceive,
			Reference: number,
			Notes:     fmt.Sprintf("Goods received via PO %s", number),
		})
		if applyErr != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to add stock for %s: %v", item.Name, applyErr))
			continue
		}
		addedUnits += item.Quantity
	}

	if err := c.docRepo.UpdateStatus(ctx, doc.ID, entity.DocumentStatusReceived); err != nil {
		// El stock ya entró; no se revierte. Se reporta la discrepancia.
		c.log.Error().Err(err).Str("number", number).Msg("stock recibido pero fallo actualizando el estado de la orden")
		warnings = append(warnings, "Stock added, but status update failed")
		return addedUnits, warnings, nil
	}

	c.log.Info().
		Str("owner_id", ownerID).
		Str("number", number).
		Int64("added_units", addedUnits).
		Int("warnings", len(warnings)).
		Msg("orden de compra recibida")
	return addedUnits, warnings, nil
}

// CancelDocument marca un documento como cancelado a través de la máquina de
// estados. Nunca borra: el documento queda con su número y sus líneas.
func (c *TransactionCoordinator) CancelDocument(ctx context.Context, ownerID, kind, number string) error {
	doc, err := c.docRepo.GetByNumber(ctx, ownerID, kind, number)
	if err != nil {
		return err
	}
	if doc == nil {
		return domain.ErrNotFound
	}
	if !entity.CanTransitionStatus(doc.Status, entity.DocumentStatusCancelled) {
		return domain.ErrInvalidTransition
	}
	return c.docRepo.UpdateStatus(ctx, doc.ID, entity.DocumentStatusCancelled)
}

// MarkInvoicePaid transiciona una factura pendiente a pagada.
func (c *TransactionCoordinator) MarkInvoicePaid(ctx context.Context, ownerID, number string) error {
	doc, err := c.docRepo.GetByNumber(ctx, ownerID, entity.DocumentKindInvoice, number)
	if err != nil {
		return err
	}
	if doc == nil {
		return domain.ErrNotFound
	}
	if !entity.CanTransitionStatus(doc.Status, entity.DocumentStatusPaid) {
		return domain.ErrInvalidTransition
	}
	return c.docRepo.UpdateStatus(ctx, doc.ID, entity.DocumentStatusPaid)
}
