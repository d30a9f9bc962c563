package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del inventario, siempre acotado a un owner (tenant).
// CurrentStock es entero y nunca negativo; se muta únicamente a través del ledger
// de movimientos para que el stock sea siempre reconstruible desde el historial.
type Product struct {
	ID            string
	OwnerID       string
	SKU           string // código único por owner
	Name          string
	Category      string
	Description   string
	CurrentStock  int64           // invariante: >= 0
	MinStockLevel *int64          // nil = usa el umbral por defecto en alertas
	CostPrice     decimal.Decimal // costo de compra
	SellingPrice  decimal.Decimal // precio de venta
	Supplier      string
	Location      string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EffectiveMinLevel devuelve el nivel mínimo propio, o el umbral por defecto si no tiene.
func (p *Product) EffectiveMinLevel(defaultThreshold int64) int64 {
	if p.MinStockLevel != nil {
		return *p.MinStockLevel
	}
	return defaultThreshold
}
