package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawLineItem es una fila de documento tal como llega del formulario: strings sin
// parsear. El coordinador valida y convierte; filas totalmente vacías se descartan
// en silencio.
type RawLineItem struct {
	ProductID string
	Name      string
	Qty       string
	Price     string
}

// PricingParams agrupa los parámetros de cálculo del documento.
// Shipping e Insurance solo aplican a órdenes de compra.
type PricingParams struct {
	TaxRate      decimal.Decimal // porcentaje (0-100)
	DiscountRate decimal.Decimal // porcentaje (0-100)
	Shipping     decimal.Decimal
	Insurance    decimal.Decimal
}

// CreateDocumentRequest entrada para crear una factura u orden de compra.
type CreateDocumentRequest struct {
	CounterpartyName string
	InvoiceType      string // S = estándar, P = compra, E = exportación
	DocumentDate     time.Time
	DeliveryDate     *time.Time
	Items            []RawLineItem
	Pricing          PricingParams
	Notes            string
}

// DocumentItemResponse línea de un documento ya persistido.
type DocumentItemResponse struct {
	ID        string
	ProductID string
	Name      string
	Quantity  int64
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// DocumentResponse documento persistido con sus totales calculados.
// Warnings lleva los fallos por línea de la aplicación de stock: el documento
// quedó guardado aunque alguna línea no haya podido descontar inventario.
type DocumentResponse struct {
	ID               string
	OwnerID          string
	Kind             string
	Number           string
	Status           string
	CounterpartyName string
	InvoiceType      string
	DocumentDate     string
	Subtotal         decimal.Decimal
	DiscountRate     decimal.Decimal
	DiscountAmount   decimal.Decimal
	TaxRate          decimal.Decimal
	TaxAmount        decimal.Decimal
	Shipping         decimal.Decimal
	Insurance        decimal.Decimal
	GrandTotal       decimal.Decimal
	Items            []DocumentItemResponse
	Warnings         []string
}
