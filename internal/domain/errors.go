package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrAlreadyReceived   = errors.New("la orden de compra ya fue recibida")
	ErrInvalidTransition = errors.New("transición de estado inválida")
)

// InsufficientStockError distingue "producto no encontrado" de "cantidad excedida":
// lleva el nombre del producto y la cantidad disponible al momento del rechazo.
// Envuelve ErrInsufficientStock para que errors.Is siga funcionando.
type InsufficientStockError struct {
	ProductName string
	Available   int64
	Requested   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Only %d units available for '%s'", e.Available, e.ProductName)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// ValidationError agrupa los mensajes por fila de una entrada rechazada.
// Aborta antes de cualquier efecto: no consume consecutivos ni escribe movimientos.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 1 {
		return e.Messages[0]
	}
	return fmt.Sprintf("%d errores de validación", len(e.Messages))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
