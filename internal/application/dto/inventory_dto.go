package dto

import "github.com/shopspring/decimal"

// Tipos de ajuste directo de stock (mapean a tipos de movimiento del ledger).
const (
	AdjustmentAddStock    = "add_stock"   // -> stock_in (+)
	AdjustmentRemoveStock = "remove_stock" // -> stock_out (-)
	AdjustmentDamaged     = "damaged"      // -> damaged (-)
	AdjustmentFoundStock  = "found_stock"  // -> found (+)
	AdjustmentSetStock    = "set_stock"    // -> adjustment (delta = objetivo - actual)
)

// AdjustStockRequest entrada para un ajuste manual de inventario.
// Quantity es la cantidad del ajuste; para set_stock es la cantidad objetivo.
type AdjustStockRequest struct {
	ProductID       string
	AdjustmentType  string
	Quantity        int64
	NewCostPrice    *decimal.Decimal
	NewSellingPrice *decimal.Decimal
	Reason          string
	Notes           string
}

// CreateProductRequest entrada para dar de alta un producto.
type CreateProductRequest struct {
	SKU           string
	Name          string
	Category      string
	Description   string
	CurrentStock  int64
	MinStockLevel *int64
	CostPrice     decimal.Decimal
	SellingPrice  decimal.Decimal
	Supplier      string
	Location      string
}

// UpdateProductRequest entrada para editar un producto. CurrentStock distinto
// al actual genera un movimiento de ajuste vía ledger, nunca un UPDATE directo.
type UpdateProductRequest struct {
	Name          string
	SKU           string
	Category      string
	Description   string
	CurrentStock  *int64
	MinStockLevel *int64
	CostPrice     decimal.Decimal
	SellingPrice  decimal.Decimal
	Supplier      string
	Location      string
}

// LowStockAlertDTO una fila del reporte de stock bajo.
type LowStockAlertDTO struct {
	ProductID          string
	Name               string
	SKU                string
	CurrentStock       int64
	EffectiveThreshold int64
}
