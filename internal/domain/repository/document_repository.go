package repository

import (
	"context"

	"github.com/jhoicas/Backoffice-api/internal/domain/entity"
)

// DocumentRepository define el puerto de persistencia para facturas y órdenes de compra.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	CreateItem(ctx context.Context, item *entity.DocumentItem) error
	GetByNumber(ctx context.Context, ownerID, kind, number string) (*entity.Document, error)
	GetItems(ctx context.Context, documentID string) ([]*entity.DocumentItem, error)
	UpdateStatus(ctx context.Context, documentID, status string) error
	List(ctx context.Context, ownerID, kind string, limit, offset int) ([]*entity.Document, error)
}

// DocumentSequenceRepository define el puerto del contador de consecutivos.
type DocumentSequenceRepository interface {
	// Next incrementa y devuelve el contador de (owner, kind) en una sola operación
	// atómica. Si el contador no existe aún, se siembra a partir del sufijo numérico
	// más alto de los documentos existentes de ese owner+kind.
	Next(ctx context.Context, ownerID, kind string) (int64, error)
}
