package entity

import "time"

// Tipos de movimiento de stock (catálogo cerrado).
const (
	MovementTypeInitial         = "initial"          // stock inicial al crear el producto
	MovementTypeSale            = "sale"             // venta vía factura
	MovementTypePurchase        = "purchase"         // compra directa
	MovementTypePurchaseReceive = "purchase_receive" // recepción de orden de compra (GRN)
	MovementTypeAdjustment      = "adjustment"       // ajuste a cantidad objetivo
	MovementTypeStockIn         = "stock_in"         // entrada manual
	MovementTypeStockOut        = "stock_out"        // salida manual
	MovementTypeDamaged         = "damaged"          // baja por daño
	MovementTypeFound           = "found"            // stock encontrado en conteo
)

// StockMovement es una entrada inmutable del ledger: un cambio de cantidad con signo,
// su causa y una referencia opcional al documento que lo originó. Nunca se actualiza
// ni se borra; las correcciones son movimientos compensatorios nuevos.
type StockMovement struct {
	ID            string
	OwnerID       string
	ProductID     string
	Type          string
	QuantityDelta int64  // positivo entrada, negativo salida
	Reference     string // número de documento (INV-00001, PO-00001) o vacío
	Notes         string
	CreatedAt     time.Time
}

// IsOutgoingType indica si el tipo es de salida (su delta debe ser negativo).
func IsOutgoingType(movementType string) bool {
	switch movementType {
	case MovementTypeSale, MovementTypeStockOut, MovementTypeDamaged:
		return true
	}
	return false
}

// IsIncomingType indica si el tipo es de entrada (su delta debe ser no negativo).
func IsIncomingType(movementType string) bool {
	switch movementType {
	case MovementTypeInitial, MovementTypePurchase, MovementTypePurchaseReceive,
		MovementTypeStockIn, MovementTypeFound:
		return true
	}
	return false
}

// IsValidMovementType valida contra el catálogo.
func IsValidMovementType(movementType string) bool {
	return IsOutgoingType(movementType) || IsIncomingType(movementType) ||
		movementType == MovementTypeAdjustment
}
