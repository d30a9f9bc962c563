package numbering_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Backoffice-api/internal/application/numbering"
	"github.com/jhoicas/Backoffice-api/internal/domain/entity"
	"github.com/jhoicas/Backoffice-api/internal/infrastructure/memory"
	"github.com/jhoicas/Backoffice-api/pkg/logger"
)

const testOwner = "owner-1"

func newAllocator(store *memory.Store) *numbering.Allocator {
	return numbering.NewAllocator(memory.NewDocumentSequenceRepository(store), logger.Nop())
}

// Formato y consecutividad: INV-00001, INV-00002, ...
func TestNextNumber_Consecutivo(t *testing.T) {
	store := memory.NewStore()
	a := newAllocator(store)
	ctx := context.Background()

	assert.Equal(t, "INV-00001", a.NextNumber(ctx, testOwner, entity.DocumentKindInvoice))
	assert.Equal(t, "INV-00002", a.NextNumber(ctx, testOwner, entity.DocumentKindInvoice),
		"el segundo número debe seguir al primero")
	assert.Equal(t, "INV-00003", a.NextNumber(ctx, testOwner, entity.DocumentKindInvoice))
}

// Las secuencias son independientes por (owner, kind): facturas y órdenes no se
// interfieren, y dos owners pueden repetir el mismo número formateado.
func TestNextNumber_IndependenciaPorOwnerYKind(t *testing.T) {
	store := memory.NewStore()
	a := newAllocator(store)
	ctx := context.Background()

	assert.Equal(t, "INV-00001", a.NextNumber(ctx, testOwner, entity.DocumentKindInvoice))
	assert.Equal(t, "PO-00001", a.NextNumber(ctx, testOwner, entity.DocumentKindPurchaseOrder),
		"la secuencia de órdenes no debe avanzar por las facturas")
	assert.Equal(t, "INV-00001", a.NextNumber(ctx, "owner-2", entity.DocumentKindInvoice),
		"otro owner arranca su propia secuencia desde 1")
	assert.Equal(t, "INV-00002", a.NextNumber(ctx, testOwner, entity.DocumentKindInvoice))
}

// Con documentos preexistentes, el contador se siembra desde el sufijo numérico
// más alto: tras INV-00042 el siguiente es INV-00043.
func TestNextNumber_SiembraDesdeDocumentosExistentes(t *testing.T) {
	store := memory.NewStore()
	docRepo := memory.NewDocumentRepository(store)
	ctx := context.Background()
	for _, number := range []string{"INV-00007", "INV-00042", "INV-00013"} {
		require.NoError(t, docRepo.Create(ctx, &entity.Document{
			ID:        "doc-" + number,
			OwnerID:   testOwner,
			Kind:      entity.DocumentKindInvoice,
			Number:    number,
			Status:    entity.DocumentStatusPending,
			CreatedAt: time.Now(),
		}))
	}

	a := newAllocator(store)
	assert.Equal(t, "INV-00043", a.NextNumber(ctx, testOwner, entity.DocumentKindInvoice),
		"el contador debe sembrarse con el máximo existente")
	assert.Equal(t, "INV-00044", a.NextNumber(ctx, testOwner, entity.DocumentKindInvoice))
}

// Si el data store falla, el asignador degrada a un número por timestamp con el
// mismo formato, en vez de bloquear la creación del documento.
func TestNextNumber_FallbackPorTimestamp(t *testing.T) {
	store := memory.NewStore()
	store.SequenceErr = errors.New("conexión perdida")
	a := newAllocator(store)

	number := a.NextNumber(context.Background(), testOwner, entity.DocumentKindInvoice)
	assert.Regexp(t, regexp.MustCompile(`^INV-\d{5}$`), number,
		"el fallback debe conservar el formato PREFIJO-NNNNN")
}
