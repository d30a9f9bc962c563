package numbering

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Backoffice-api/internal/domain/entity"
	"github.com/jhoicas/Backoffice-api/internal/domain/repository"
	"github.com/jhoicas/Backoffice-api/pkg/logger"
)

// Prefijos de numeración por tipo de documento.
const (
	PrefixInvoice       = "INV"
	PrefixPurchaseOrder = "PO"
)

// PrefixFor devuelve el prefijo del tipo de documento.
func PrefixFor(kind string) string {
	if kind == entity.DocumentKindPurchaseOrder {
		return PrefixPurchaseOrder
	}
	return PrefixInvoice
}

// Allocator genera números consecutivos de documento por (owner, kind):
// INV-00001, INV-00002, ... Las secuencias son independientes: la numeración de
// facturas y órdenes de compra nunca se interfiere, y dos owners distintos pueden
// repetir el mismo número formateado sin conflicto.
type Allocator struct {
	seqRepo repository.DocumentSequenceRepository
	log     *logger.Logger
}

// NewAllocator construye el asignador de números.
func NewAllocator(seqRepo repository.DocumentSequenceRepository, log *logger.Logger) *Allocator {
	return &Allocator{seqRepo: seqRepo, log: log}
}

// NextNumber incrementa el contador atómico de (owner, kind) y formatea el número
// con cero-padding a 5 dígitos. Si el data store falla, degrada a un número
// derivado del timestamp para que la creación de documentos nunca se bloquee:
// esto cambia consecutividad estricta por disponibilidad (garantía relajada,
// pueden quedar huecos).
func (a *Allocator) NextNumber(ctx context.Context, ownerID, kind string) string {
	prefix := PrefixFor(kind)
	n, err := a.seqRepo.Next(ctx, ownerID, kind)
	if err != nil {
		a.log.Warn().Err(err).
			Str("owner_id", ownerID).
			Str("kind", kind).
			Msg("fallo asignando consecutivo; usando fallback por timestamp")
		return fmt.Sprintf("%s-%05d", prefix, time.Now().Unix()%100000)
	}
	return fmt.Sprintf("%s-%05d", prefix, n)
}
