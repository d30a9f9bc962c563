package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de documento.
const (
	DocumentKindInvoice       = "invoice"
	DocumentKindPurchaseOrder = "purchase_order"
)

// Estados del ciclo de vida de un documento.
// Los documentos nunca se borran: se marcan cancelled.
const (
	DocumentStatusDraft     = "draft"
	DocumentStatusPending   = "pending"
	DocumentStatusPaid      = "paid"      // solo facturas
	DocumentStatusReceived  = "received"  // solo órdenes de compra
	DocumentStatusCancelled = "cancelled"
	DocumentStatusCompleted = "completed" // factura pagada y cerrada
)

// allowedTransitions modela la máquina de estados de forma explícita, en lugar de
// comparaciones de strings dispersas en los call sites. Estados no listados son terminales.
var allowedTransitions = map[string][]string{
	DocumentStatusDraft:   {DocumentStatusPending, DocumentStatusCancelled},
	DocumentStatusPending: {DocumentStatusPaid, DocumentStatusReceived, DocumentStatusCancelled},
	DocumentStatusPaid:    {DocumentStatusCompleted},
}

// CanTransitionStatus indica si el paso from -> to es un cambio de estado válido.
func CanTransitionStatus(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Document representa la cabecera de una factura u orden de compra.
// Number es único dentro de (owner, kind); dos owners distintos pueden repetir número.
type Document struct {
	ID               string
	OwnerID          string
	Kind             string // invoice | purchase_order
	Number           string // INV-00001 / PO-00001
	Status           string
	CounterpartyName string // cliente (factura) o proveedor (orden de compra)
	InvoiceType      string // S = estándar, P = compra, E = exportación
	DocumentDate     time.Time
	DeliveryDate     *time.Time // solo órdenes de compra
	Subtotal         decimal.Decimal
	DiscountRate     decimal.Decimal // porcentaje (0-100)
	DiscountAmount   decimal.Decimal
	TaxRate          decimal.Decimal // porcentaje (0-100)
	TaxAmount        decimal.Decimal
	Shipping         decimal.Decimal // solo órdenes de compra
	Insurance        decimal.Decimal // solo órdenes de compra
	GrandTotal       decimal.Decimal
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DocumentItem representa una línea de un documento. ProductID puede estar vacío
// para líneas manuales que no mueven inventario.
type DocumentItem struct {
	ID         string
	DocumentID string
	ProductID  string
	Name       string
	Quantity   int64
	UnitPrice  decimal.Decimal
	Total      decimal.Decimal
}
