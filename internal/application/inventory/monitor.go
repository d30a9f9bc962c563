package inventory

import (
	"context"

	"github.com/jhoicas/Backoffice-api/internal/application/dto"
	"github.com/jhoicas/Backoffice-api/internal/domain/repository"
)

// DefaultLowStockThreshold umbral por defecto cuando el producto no define
// min_stock_level y el caller no pasa uno.
const DefaultLowStockThreshold = 10

// LowStockMonitor es una vista derivada de solo lectura sobre la tabla de
// productos: nunca toma locks, nunca muta, y es seguro consultarla a cualquier
// frecuencia sin bloquear el camino de escritura del ledger.
type LowStockMonitor struct {
	productRepo      repository.ProductRepository
	defaultThreshold int64
}

// NewLowStockMonitor construye el monitor. defaultThreshold viene de la
// configuración (STOCK_DEFAULT_MIN_LEVEL); <= 0 usa el valor de fábrica.
func NewLowStockMonitor(productRepo repository.ProductRepository, defaultThreshold int64) *LowStockMonitor {
	if defaultThreshold <= 0 {
		defaultThreshold = DefaultLowStockThreshold
	}
	return &LowStockMonitor{productRepo: productRepo, defaultThreshold: defaultThreshold}
}

// LowStockAlerts devuelve los productos activos con current_stock por debajo o
// igual a su propio min_stock_level (o del umbral por defecto si no tienen),
// ordenados por current_stock ascendente. threshold <= 0 usa el umbral configurado.
func (m *LowStockMonitor) LowStockAlerts(ctx context.Context, ownerID string, threshold int64) ([]dto.LowStockAlertDTO, error) {
	if threshold <= 0 {
		threshold = m.defaultThreshold
	}
	products, err := m.productRepo.ListLowStock(ctx, ownerID, threshold)
	if err != nil {
		return nil, err
	}
	alerts := make([]dto.LowStockAlertDTO, 0, len(products))
	for _, p := range products {
		alerts = append(alerts, dto.LowStockAlertDTO{
			ProductID:          p.ID,
			Name:               p.Name,
			SKU:                p.SKU,
			CurrentStock:       p.CurrentStock,
			EffectiveThreshold: p.EffectiveMinLevel(threshold),
		})
	}
	return alerts, nil
}
