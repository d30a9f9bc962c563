package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Backoffice-api/internal/application/ledger"
	"github.com/jhoicas/Backoffice-api/internal/domain"
	"github.com/jhoicas/Backoffice-api/internal/domain/entity"
	"github.com/jhoicas/Backoffice-api/internal/infrastructure/memory"
	"github.com/jhoicas/Backoffice-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testOwner = "owner-1"

func newLedger(store *memory.Store) *ledger.StockLedger {
	return ledger.NewStockLedger(store, memory.NewProductRepository(store), logger.Nop())
}

// seedProduct crea un producto con stock dado y su movimiento initial, para que
// la suma de deltas arranque cuadrada con current_stock.
func seedProduct(t *testing.T, store *memory.Store, ownerID, id, name string, stock int64) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, memory.NewProductRepository(store).Create(ctx, &entity.Product{
		ID:           id,
		OwnerID:      ownerID,
		Name:         name,
		CurrentStock: stock,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}), "debe poder sembrarse el producto")
	if stock != 0 {
		require.NoError(t, memory.NewStockMovementRepository(store).Create(ctx, &entity.StockMovement{
			OwnerID:       ownerID,
			ProductID:     id,
			Type:          entity.MovementTypeInitial,
			QuantityDelta: stock,
			CreatedAt:     now,
		}))
	}
}

func currentStock(t *testing.T, store *memory.Store, ownerID, id string) int64 {
	t.Helper()
	p, err := memory.NewProductRepository(store).GetByID(context.Background(), ownerID, id)
	require.NoError(t, err)
	require.NotNil(t, p, "el producto debe existir")
	return p.CurrentStock
}

func sumDeltas(t *testing.T, store *memory.Store, ownerID, id string) int64 {
	t.Helper()
	sum, err := memory.NewStockMovementRepository(store).SumDeltasByProduct(context.Background(), ownerID, id)
	require.NoError(t, err)
	return sum
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests ApplyDelta
// ──────────────────────────────────────────────────────────────────────────────

// Venta normal: el stock baja y queda exactamente un movimiento con el delta.
func TestApplyDelta_VentaDescuentaStock(t *testing.T) {
	store := memory.NewStore()
	l := newLedger(store)
	seedProduct(t, store, testOwner, "wid-1", "Widget", 10)

	err := l.ApplyDelta(context.Background(), ledger.ApplyDeltaInput{
		OwnerID:   testOwner,
		ProductID: "wid-1",
		Delta:     -5,
		Type:      entity.MovementTypeSale,
		Reference: "INV-00001",
	})
	require.NoError(t, err, "la venta con stock suficiente debe aplicarse")

	assert.Equal(t, int64(5), currentStock(t, store, testOwner, "wid-1"),
		"el stock debe quedar en 5 tras vender 5 de 10")

	movs, err := memory.NewStockMovementRepository(store).ListByProduct(context.Background(), testOwner, "wid-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, movs, 2, "debe haber el movimiento initial y la venta")
	assert.Equal(t, entity.MovementTypeSale, movs[0].Type, "el movimiento más reciente debe ser la venta")
	assert.Equal(t, int64(-5), movs[0].QuantityDelta, "el delta de la venta debe ser -5")
	assert.Equal(t, "INV-00001", movs[0].Reference, "la venta debe referenciar la factura")
}

// Rechazo por piso: con stock 3 una venta de 5 falla con el error tipado y
// no deja NINGÚN efecto (ni stock ni movimiento).
func TestApplyDelta_RechazoPorPisoNoDejaEfectos(t *testing.T) {
	store := memory.NewStore()
	l := newLedger(store)
	seedProduct(t, store, testOwner, "pen-1", "Blue Pens", 3)

	err := l.ApplyDelta(context.Background(), ledger.ApplyDeltaInput{
		OwnerID:   testOwner,
		ProductID: "pen-1",
		Delta:     -5,
		Type:      entity.MovementTypeSale,
	})
	require.Error(t, err, "vender 5 con stock 3 debe rechazarse")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var insErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &insErr, "el error debe ser el tipado de stock insuficiente")
	assert.Equal(t, "Only 3 units available for 'Blue Pens'", insErr.Error(),
		"el mensaje debe llevar nombre y disponibilidad")
	assert.Equal(t, int64(3), insErr.Available)
	assert.Equal(t, int64(5), insErr.Requested)

	assert.Equal(t, int64(3), currentStock(t, store, testOwner, "pen-1"),
		"un rechazo no debe tocar el stock")
	assert.Equal(t, int64(3), sumDeltas(t, store, testOwner, "pen-1"),
		"un rechazo no debe dejar movimiento")
}

// Invariante del ledger: después de cualquier secuencia de operaciones,
// current_stock == suma de los deltas del producto.
func TestApplyDelta_SumaDeDeltasIgualAStock(t *testing.T) {
	store := memory.NewStore()
	l := newLedger(store)
	ctx := context.Background()
	seedProduct(t, store, testOwner, "caja-1", "Cajas", 20)

	ops := []ledger.ApplyDeltaInput{
		{OwnerID: testOwner, ProductID: "caja-1", Delta: -4, Type: entity.MovementTypeSale},
		{OwnerID: testOwner, ProductID: "caja-1", Delta: 12, Type: entity.MovementTypePurchaseReceive},
		{OwnerID: testOwner, ProductID: "caja-1", Delta: -2, Type: entity.MovementTypeDamaged},
		{OwnerID: testOwner, ProductID: "caja-1", Delta: 3, Type: entity.MovementTypeFound},
	}
	for _, op := range ops {
		require.NoError(t, l.ApplyDelta(ctx, op))
	}
	// y un rechazo en medio, que no debe descuadrar nada
	require.Error(t, l.ApplyDelta(ctx, ledger.ApplyDeltaInput{
		OwnerID: testOwner, ProductID: "caja-1", Delta: -1000, Type: entity.MovementTypeSale,
	}))

	stock := currentStock(t, store, testOwner, "caja-1")
	assert.Equal(t, int64(29), stock, "20 - 4 + 12 - 2 + 3 = 29")
	assert.Equal(t, stock, sumDeltas(t, store, testOwner, "caja-1"),
		"current_stock debe ser igual a la suma de deltas")
}

// Producto inexistente, inactivo o de otro owner → ErrNotFound.
func TestApplyDelta_ProductoNoVisible(t *testing.T) {
	store := memory.NewStore()
	l := newLedger(store)
	ctx := context.Background()
	seedProduct(t, store, testOwner, "act-1", "Activo", 10)
	seedProduct(t, store, "otro-owner", "ajeno-1", "Ajeno", 10)
	require.NoError(t, memory.NewProductRepository(store).Deactivate(ctx, testOwner, "act-1"))

	in := ledger.ApplyDeltaInput{OwnerID: testOwner, Delta: -1, Type: entity.MovementTypeSale}

	in.ProductID = "no-existe"
	assert.ErrorIs(t, l.ApplyDelta(ctx, in), domain.ErrNotFound, "producto inexistente")

	in.ProductID = "act-1"
	assert.ErrorIs(t, l.ApplyDelta(ctx, in), domain.ErrNotFound, "producto inactivo")

	in.ProductID = "ajeno-1"
	assert.ErrorIs(t, l.ApplyDelta(ctx, in), domain.ErrNotFound,
		"el producto de otro owner no debe ser visible")
}

// Coherencia tipo/signo y entradas imposibles.
func TestApplyDelta_ValidacionDeEntrada(t *testing.T) {
	store := memory.NewStore()
	l := newLedger(store)
	ctx := context.Background()
	seedProduct(t, store, testOwner, "val-1", "Validado", 10)

	cases := []struct {
		name string
		in   ledger.ApplyDeltaInput
	}{
		{"delta cero", ledger.ApplyDeltaInput{OwnerID: testOwner, ProductID: "val-1", Delta: 0, Type: entity.MovementTypeSale}},
		{"tipo desconocido", ledger.ApplyDeltaInput{OwnerID: testOwner, ProductID: "val-1", Delta: -1, Type: "teleport"}},
		{"venta con delta positivo", ledger.ApplyDeltaInput{OwnerID: testOwner, ProductID: "val-1", Delta: 5, Type: entity.MovementTypeSale}},
		{"compra con delta negativo", ledger.ApplyDeltaInput{OwnerID: testOwner, ProductID: "val-1", Delta: -5, Type: entity.MovementTypePurchase}},
		{"sin owner", ledger.ApplyDeltaInput{ProductID: "val-1", Delta: -1, Type: entity.MovementTypeSale}},
		{"sin producto", ledger.ApplyDeltaInput{OwnerID: testOwner, Delta: -1, Type: entity.MovementTypeSale}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, l.ApplyDelta(ctx, tc.in), domain.ErrInvalidInput)
		})
	}
	assert.Equal(t, int64(10), currentStock(t, store, testOwner, "val-1"),
		"ninguna entrada inválida debe tocar el stock")
}

// Concurrencia: 8 ventas simultáneas de 1 unidad con stock 3. Deben ganar
// exactamente 3; las demás reciben stock insuficiente y el ledger queda cuadrado.
func TestApplyDelta_ConcurrenciaRespetaElPiso(t *testing.T) {
	store := memory.NewStore()
	l := newLedger(store)
	seedProduct(t, store, testOwner, "conc-1", "Concurrente", 3)

	const intentos = 8
	var wg sync.WaitGroup
	errs := make([]error, intentos)
	for i := 0; i < intentos; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = l.ApplyDelta(context.Background(), ledger.ApplyDeltaInput{
				OwnerID:   testOwner,
				ProductID: "conc-1",
				Delta:     -1,
				Type:      entity.MovementTypeSale,
			})
		}(i)
	}
	wg.Wait()

	exitos := 0
	for _, err := range errs {
		if err == nil {
			exitos++
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficientStock,
				"los intentos perdedores deben fallar por stock insuficiente")
		}
	}
	assert.Equal(t, 3, exitos, "con stock 3 deben ganar exactamente 3 ventas")
	assert.Equal(t, int64(0), currentStock(t, store, testOwner, "conc-1"))
	assert.Equal(t, int64(0), sumDeltas(t, store, testOwner, "conc-1"),
		"la suma de deltas debe seguir cuadrada tras la carrera")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests SetStock
// ──────────────────────────────────────────────────────────────────────────────

func TestSetStock_AjustaAObjetivo(t *testing.T) {
	store := memory.NewStore()
	l := newLedger(store)
	ctx := context.Background()
	seedProduct(t, store, testOwner, "adj-1", "Ajustable", 10)

	require.NoError(t, l.SetStock(ctx, testOwner, "adj-1", 4, "", "conteo físico"))
	assert.Equal(t, int64(4), currentStock(t, store, testOwner, "adj-1"))

	movs, err := memory.NewStockMovementRepository(store).ListByProduct(ctx, testOwner, "adj-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementTypeAdjustment, movs[0].Type)
	assert.Equal(t, int64(-6), movs[0].QuantityDelta, "el delta del ajuste es objetivo - actual")
	assert.Equal(t, int64(4), sumDeltas(t, store, testOwner, "adj-1"))
}

// Ajustar al mismo valor no debe escribir nada.
func TestSetStock_ObjetivoIgualEsNoOp(t *testing.T) {
	store := memory.NewStore()
	l := newLedger(store)
	ctx := context.Background()
	seedProduct(t, store, testOwner, "adj-2", "SinCambio", 7)

	require.NoError(t, l.SetStock(ctx, testOwner, "adj-2", 7, "", ""))

	movs, err := memory.NewStockMovementRepository(store).ListByProduct(ctx, testOwner, "adj-2", 10, 0)
	require.NoError(t, err)
	assert.Len(t, movs, 1, "no debe agregarse movimiento si el objetivo es el stock actual")
}

func TestSetStock_ObjetivoNegativoInvalido(t *testing.T) {
	store := memory.NewStore()
	l := newLedger(store)
	seedProduct(t, store, testOwner, "adj-3", "Negativo", 5)

	assert.ErrorIs(t, l.SetStock(context.Background(), testOwner, "adj-3", -1, "", ""), domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests ValidateAvailability
// ──────────────────────────────────────────────────────────────────────────────

func TestValidateAvailability(t *testing.T) {
	store := memory.NewStore()
	l := newLedger(store)
	ctx := context.Background()
	seedProduct(t, store, testOwner, "disp-1", "Disponible", 10)

	ok, msg := l.ValidateAvailability(ctx, testOwner, []ledger.AvailabilityItem{
		{ProductID: "disp-1", Quantity: 10},
		{ProductID: "", Quantity: 99}, // línea manual sin producto: se ignora
	})
	assert.True(t, ok, "pedir exactamente el stock disponible debe pasar")
	assert.Empty(t, msg)

	ok, msg = l.ValidateAvailability(ctx, testOwner, []ledger.AvailabilityItem{
		{ProductID: "disp-1", Quantity: 11},
	})
	assert.False(t, ok)
	assert.Equal(t, "Insufficient stock for 'Disponible'. Available: 10, Required: 11", msg)

	ok, msg = l.ValidateAvailability(ctx, testOwner, []ledger.AvailabilityItem{
		{ProductID: "fantasma", Quantity: 1},
	})
	assert.False(t, ok)
	assert.Equal(t, "Product ID fantasma not found in inventory", msg)
}

// El pre-chequeo es consultivo: su aprobación no impide que el apply bajo lock
// rechace después. Verifica que el chequeo autoritativo sigue siendo ApplyDelta.
func TestValidateAvailability_NoEsGarantia(t *testing.T) {
	store := memory.NewStore()
	l := newLedger(store)
	ctx := context.Background()
	seedProduct(t, store, testOwner, "carr-1", "Carrera", 5)

	ok, _ := l.ValidateAvailability(ctx, testOwner, []ledger.AvailabilityItem{{ProductID: "carr-1", Quantity: 5}})
	require.True(t, ok)

	// Otra venta se cuela entre el pre-chequeo y el apply.
	require.NoError(t, l.ApplyDelta(ctx, ledger.ApplyDeltaInput{
		OwnerID: testOwner, ProductID: "carr-1", Delta: -3, Type: entity.MovementTypeSale,
	}))

	err := l.ApplyDelta(ctx, ledger.ApplyDeltaInput{
		OwnerID: testOwner, ProductID: "carr-1", Delta: -5, Type: entity.MovementTypeSale,
	})
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock),
		"el apply bajo lock debe rechazar aunque el pre-chequeo haya pasado")
}
