package billing

import (
	"context"

	"github.com/jhoicas/Backoffice-api/internal/domain/repository"
)

// BillingTxRunner ejecuta una función dentro de una transacción para persistir
// cabecera y líneas de un documento como una sola unidad.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(docRepo repository.DocumentRepository) error) error
}
