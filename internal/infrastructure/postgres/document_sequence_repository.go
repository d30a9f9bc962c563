package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Backoffice-api/internal/domain/repository"
)

var _ repository.DocumentSequenceRepository = (*DocumentSequenceRepo)(nil)

// DocumentSequenceRepo contador de consecutivos sobre PostgreSQL. El incremento
// es un solo statement atómico, así que dos envíos concurrentes del mismo owner
// nunca reciben el mismo valor (a diferencia del viejo "leer el máximo y sumarle
// uno", que podía duplicar bajo concurrencia).
type DocumentSequenceRepo struct {
	q Querier
}

// NewDocumentSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentSequenceRepository(q Querier) *DocumentSequenceRepo {
	return &DocumentSequenceRepo{q: q}
}

// Next incrementa y devuelve el contador de (owner, kind). Si el contador no
// existe todavía, se siembra con el sufijo numérico más alto de los documentos
// ya guardados de ese owner+kind (cero si no hay, o si ninguno parsea).
func (r *DocumentSequenceRepo) Next(ctx context.Context, ownerID, kind string) (int64, error) {
	query := `
		INSERT INTO document_sequences (owner_id, kind, value, updated_at)
		VALUES ($1, $2, COALESCE((
			SELECT MAX(CAST(SUBSTRING(number FROM '[0-9]+$') AS BIGINT))
			FROM documents
			WHERE owner_id = $1 AND kind = $2
		), 0) + 1, now())
		ON CONFLICT (owner_id, kind)
		DO UPDATE SET value = document_sequences.value + 1, updated_at = now()
		RETURNING value`
	var value int64
	if err := r.q.QueryRow(ctx, query, ownerID, kind).Scan(&value); err != nil {
		return 0, fmt.Errorf("next sequence value: %w", err)
	}
	return value, nil
}
