package billing

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Backoffice-api/internal/application/dto"
	"github.com/jhoicas/Backoffice-api/internal/application/ledger"
	"github.com/jhoicas/Backoffice-api/internal/application/numbering"
	"github.com/jhoicas/Backoffice-api/internal/domain"
	"github.com/jhoicas/Backoffice-api/internal/domain/entity"
	"github.com/jhoicas/Backoffice-api/internal/domain/repository"
	"github.com/jhoicas/Backoffice-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// TransactionCoordinator orquesta el flujo de creación de documentos:
// validación estructural -> pre-chequeo de disponibilidad (solo ventas) ->
// asignación de consecutivo -> cálculo de totales -> persistencia ->
// aplicación de stock línea por línea. También maneja la recepción de órdenes
// de compra (GRN) y las transiciones de estado posteriores.
//
// Si parte de las líneas falla al aplicar stock, el documento NO se revierte:
// queda persistido y los fallos regresan como warnings. El sesgo deliberado es
// "la transacción ya ocurrió en el mundo físico: se registra y se marca la
// discrepancia", no atomicidad todo-o-nada entre productos.
type TransactionCoordinator struct {
	txRunner  BillingTxRunner
	stock     *ledger.StockLedger
	allocator *numbering.Allocator
	docRepo   repository.DocumentRepository
	log       *logger.Logger
}

// NewTransactionCoordinator construye el coordinador.
func NewTransactionCoordinator(
	txRunner BillingTxRunner,
	stock *ledger.StockLedger,
	allocator *numbering.Allocator,
	docRepo repository.DocumentRepository,
	log *logger.Logger,
) *TransactionCoordinator {
	return &TransactionCoordinator{
		txRunner:  txRunner,
		stock:     stock,
		allocator: allocator,
		docRepo:   docRepo,
		log:       log,
	}
}

// parsedLine es una fila ya validada y convertida.
type parsedLine struct {
	ProductID string
	Name      string
	Quantity  int64
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// parseLineItems valida las filas crudas: filas totalmente vacías se descartan en
// silencio; el nombre es obligatorio; cantidad y precio deben venir juntos o
// ninguno. Devuelve las líneas válidas y los mensajes por fila.
func parseLineItems(items []dto.RawLineItem) ([]parsedLine, []string) {
	var lines []parsedLine
	var msgs []string
	for i, raw := range items {
		name := strings.TrimSpace(raw.Name)
		qtyStr := strings.TrimSpace(raw.Qty)
		priceStr := strings.TrimSpace(raw.Price)
		productID := strings.TrimSpace(raw.ProductID)

		if name == "" && qtyStr == "" && priceStr == "" && productID == "" {
			continue // fila vacía del formulario
		}
		row := i + 1
		if name == "" {
			msgs = append(msgs, fmt.Sprintf("Row %d: item name is required", row))
			continue
		}
		if (qtyStr == "") != (priceStr == "") {
			msgs = append(msgs, fmt.Sprintf("Row %d: quantity and price must both be provided", row))
			continue
		}

		var qty int64
		price := decimal.Zero
		if qtyStr != "" {
			q, err := strconv.ParseInt(qtyStr, 10, 64)
			if err != nil || q < 0 {
				msgs = append(msgs, fmt.Sprintf("Row %d: invalid quantity %q", row, qtyStr))
				continue
			}
			p, err := decimal.NewFromString(priceStr)
			if err != nil || p.IsNegative() {
				msgs = append(msgs, fmt.Sprintf("Row %d: invalid price %q", row, priceStr))
				continue
			}
			qty = q
			price = p
		}

		lines = append(lines, parsedLine{
			ProductID: productID,
			Name:      name,
			Quantity:  qty,
			UnitPrice: price,
			Total:     price.Mul(decimal.NewFromInt(qty)),
		})
	}
	return lines, msgs
}

// computeTotals aplica la aritmética de precios del documento:
// descuento sobre el subtotal, impuesto sobre la base gravable, y flete/seguro
// solo para órdenes de compra. Las facturas de exportación (tipo E) fuerzan
// tarifa de impuesto 0.
func computeTotals(kind, invoiceType string, lines []parsedLine, pricing dto.PricingParams) (subtotal, discountAmount, taxRate, taxAmount, grandTotal decimal.Decimal) {
	hundred := decimal.NewFromInt(100)

	for _, line := range lines {
		subtotal = subtotal.Add(line.Total)
	}
	taxRate = pricing.TaxRate
	if invoiceType == "E" {
		taxRate = decimal.Zero
	}
	discountAmount = subtotal.Mul(pricing.DiscountRate).Div(hundred).Round(2)
	taxable := subtotal.Sub(discountAmount)
	taxAmount = taxable.Mul(taxRate).Div(hundred).Round(2)
	grandTotal = taxable.Add(taxAmount)
	if kind == entity.DocumentKindPurchaseOrder {
		grandTotal = grandTotal.Add(pricing.Shipping).Add(pricing.Insurance)
	}
	return subtotal, discountAmount, taxRate, taxAmount, grandTotal.Round(2)
}

// CreateDocument crea una factura u orden de compra. Las fallas de validación y
// de disponibilidad abortan ANTES de asignar número: un intento rechazado nunca
// consume un valor de la secuencia. Las fallas por línea en la aplicación de
// stock (p. ej. una carrera dejó sin stock entre el pre-chequeo y el apply) se
// devuelven como warnings junto al documento ya persistido.
func (c *TransactionCoordinator) CreateDocument(ctx context.Context, ownerID, kind string, req dto.CreateDocumentRequest) (*dto.DocumentResponse, []string, error) {
	if ownerID == "" {
		return nil, nil, domain.ErrInvalidInput
	}
	if kind != entity.DocumentKindInvoice && kind != entity.DocumentKindPurchaseOrder {
		return nil, nil, domain.ErrInvalidInput
	}

	// 1) Validación estructural por fila
	lines, msgs := parseLineItems(req.Items)
	if len(msgs) > 0 {
		return nil, nil, &domain.ValidationError{Messages: msgs}
	}
	if len(lines) == 0 {
		return nil, nil, &domain.ValidationError{Messages: []string{"Document must have at least one item"}}
	}

	// 2) Pre-chequeo de disponibilidad: solo documentos de venta. La creación de
	// una orden de compra no mueve stock todavía, así que no valida nada.
	if kind == entity.DocumentKindInvoice {
		var checks []ledger.AvailabilityItem
		for _, line := range lines {
			if line.ProductID != "" && line.Quantity > 0 {
				checks = append(checks, ledger.AvailabilityItem{ProductID: line.ProductID, Quantity: line.Quantity})
			}
		}
		if ok, msg := c.stock.ValidateAvailability(ctx, ownerID, checks); !ok {
			return nil, nil, fmt.Errorf("%w: %s", domain.ErrInsufficientStock, msg)
		}
	}

	// 3) Asignación de consecutivo
	number := c.allocator.NextNumber(ctx, ownerID, kind)

	// 4) Totales
	subtotal, discountAmount, taxRate, taxAmount, grandTotal := computeTotals(kind, req.InvoiceType, lines, req.Pricing)

	now := time.Now()
	docDate := req.DocumentDate
	if docDate.IsZero() {
		docDate = now
	}
	doc := &entity.Document{
		ID:               uuid.New().String(),
		OwnerID:          ownerID,
		Kind:             kind,
		Number:           number,
		Status:           entity.DocumentStatusPending,
		CounterpartyName: req.CounterpartyName,
		InvoiceType:      req.InvoiceType,
		DocumentDate:     docDate,
		DeliveryDate:     req.DeliveryDate,
		Subtotal:         subtotal,
		DiscountRate:     req.Pricing.DiscountRate,
		DiscountAmount:   discountAmount,
		TaxRate:          taxRate,
		TaxAmount:        taxAmount,
		Shipping:         req.Pricing.Shipping,
		Insurance:        req.Pricing.Insurance,
		GrandTotal:       grandTotal,
		Notes:            req.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	items := make([]*entity.DocumentItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, &entity.DocumentItem{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			ProductID:  line.ProductID,
			Name:       line.Name,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			Total:      line.Total,
		})
	}

	// 5) Persistencia de cabecera + líneas en una sola transacción
	err := c.txRunner.RunBilling(ctx, func(docRepo repository.DocumentRepository) error {
		if err := docRepo.Create(ctx, doc); err != nil {
			return err
		}
		for _, item := range items {
			if err := docRepo.CreateItem(ctx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.log.Error().Err(err).Str("number", number).Msg("error persistiendo documento")
		return nil, nil, err
	}

	// 6) Aplicación de stock línea por línea. Las ventas restan; la creación de
	// una orden de compra no mueve stock (eso pasa solo en la recepción).
	// Cada línea corre en su propia transacción: un fallo no revierte el
	// documento ni las líneas ya aplicadas.
	var warnings []string
	if kind == entity.DocumentKindInvoice {
		for _, line := range lines {
			if line.ProductID == "" || line.Quantity == 0 {
				continue
			}
			applyErr := c.stock.ApplyDelta(ctx, ledger.ApplyDeltaInput{
				OwnerID:   ownerID,
				ProductID: line.ProductID,
				Delta:     -line.Quantity,
				Type:      entity.MovementTypeSale,
				Reference: number,
				Notes:     fmt.Sprintf("Sold %d units via Invoice: %s", line.Quantity, number),
			})
			if applyErr != nil {
				c.log.Warn().Err(applyErr).
					Str("number", number).
					Str("product_id", line.ProductID).
					Msg("fallo aplicando stock para una línea")
				warnings = append(warnings, fmt.Sprintf("Stock update failed for %s: %v", line.Name, applyErr))
			}
		}
	}

	c.log.Info().
		Str("owner_id", ownerID).
		Str("kind", kind).
		Str("number", number).
		Int("items", len(items)).
		Int("warnings", len(warnings)).
		Msg("documento creado")

	resp := toDocumentResponse(doc, items)
	resp.Warnings = warnings
	return resp, warnings, nil
}

func toDocumentResponse(doc *entity.Document, items []*entity.DocumentItem) *dto.DocumentResponse {
	resp := &dto.DocumentResponse{
		ID:               doc.ID,
		OwnerID:          doc.OwnerID,
		Kind:             doc.Kind,
		Number:           doc.Number,
		Status:           doc.Status,
		CounterpartyName: doc.CounterpartyName,
		InvoiceType:      doc.InvoiceType,
		DocumentDate:     doc.DocumentDate.Format("2006-01-02"),
		Subtotal:         doc.Subtotal,
		DiscountRate:     doc.DiscountRate,
		DiscountAmount:   doc.DiscountAmount,
		TaxRate:          doc.TaxRate,
		TaxAmount:        doc.TaxAmount,
		Shipping:         doc.Shipping,
		Insurance:        doc.Insurance,
		GrandTotal:       doc.GrandTotal,
		Items:            make([]dto.DocumentItemResponse, 0, len(items)),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, dto.DocumentItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     item.Total,
		})
	}
	return resp
}

// GetDocument obtiene un documento por número con sus líneas.
func (c *TransactionCoordinator) GetDocument(ctx context.Context, ownerID, kind, number string) (*dto.DocumentResponse, error) {
	doc, err := c.docRepo.GetByNumber(ctx, ownerID, kind, number)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	items, err := c.docRepo.GetItems(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	return toDocumentResponse(doc, items), nil
}
