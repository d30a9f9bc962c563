package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Backoffice-api/internal/domain"
	"github.com/jhoicas/Backoffice-api/internal/domain/entity"
	"github.com/jhoicas/Backoffice-api/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

const documentColumns = `id, owner_id, kind, number, status, counterparty_name, invoice_type,
		document_date, delivery_date, subtotal, discount_rate, discount_amount, tax_rate, tax_amount,
		shipping, insurance, grand_total, notes, created_at, updated_at`

// DocumentRepo implementación del puerto DocumentRepository sobre PostgreSQL (usable con pool o tx).
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

// Create persiste la cabecera de un documento. El número es único por (owner, kind).
func (r *DocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	query := `
		INSERT INTO documents (id, owner_id, kind, number, status, counterparty_name, invoice_type,
			document_date, delivery_date, subtotal, discount_rate, discount_amount, tax_rate, tax_amount,
			shipping, insurance, grand_total, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(ctx, query,
		doc.ID, doc.OwnerID, doc.Kind, doc.Number, doc.Status, doc.CounterpartyName, doc.InvoiceType,
		doc.DocumentDate, doc.DeliveryDate, doc.Subtotal, doc.DiscountRate, doc.DiscountAmount,
		doc.TaxRate, doc.TaxAmount, doc.Shipping, doc.Insurance, doc.GrandTotal, doc.Notes,
		doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// CreateItem persiste una línea del documento.
func (r *DocumentRepo) CreateItem(ctx context.Context, item *entity.DocumentItem) error {
	query := `
		INSERT INTO document_items (id, document_id, product_id, name, quantity, unit_price, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	productID := (*string)(nil)
	if item.ProductID != "" {
		productID = &item.ProductID
	}
	_, err := r.q.Exec(ctx, query,
		item.ID, item.DocumentID, productID, item.Name, item.Quantity, item.UnitPrice, item.Total,
	)
	if err != nil {
		return fmt.Errorf("insert document item: %w", err)
	}
	return nil
}

// GetByNumber obtiene un documento del owner por tipo y número.
func (r *DocumentRepo) GetByNumber(ctx context.Context, ownerID, kind, number string) (*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE owner_id = $1 AND kind = $2 AND number = $3`
	var d entity.Document
	err := r.q.QueryRow(ctx, query, ownerID, kind, number).Scan(
		&d.ID, &d.OwnerID, &d.Kind, &d.Number, &d.Status, &d.CounterpartyName, &d.InvoiceType,
		&d.DocumentDate, &d.DeliveryDate, &d.Subtotal, &d.DiscountRate, &d.DiscountAmount,
		&d.TaxRate, &d.TaxAmount, &d.Shipping, &d.Insurance, &d.GrandTotal, &d.Notes,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &d, nil
}

// GetItems lista las líneas de un documento.
func (r *DocumentRepo) GetItems(ctx context.Context, documentID string) ([]*entity.DocumentItem, error) {
	query := `
		SELECT id, document_id, product_id, name, quantity, unit_price, total
		FROM document_items WHERE document_id = $1`
	rows, err := r.q.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list document items: %w", err)
	}
	defer rows.Close()
	var list []*entity.DocumentItem
	for rows.Next() {
		var item entity.DocumentItem
		var productID *string
		if err := rows.Scan(&item.ID, &item.DocumentID, &productID, &item.Name,
			&item.Quantity, &item.UnitPrice, &item.Total); err != nil {
			return nil, fmt.Errorf("scan document item: %w", err)
		}
		if productID != nil {
			item.ProductID = *productID
		}
		list = append(list, &item)
	}
	return list, rows.Err()
}

// UpdateStatus cambia el estado del documento. La validez de la transición la
// garantiza el coordinador con la máquina de estados, antes de llegar aquí.
func (r *DocumentRepo) UpdateStatus(ctx context.Context, documentID, status string) error {
	query := `UPDATE documents SET status = $1, updated_at = now() WHERE id = $2`
	tag, err := r.q.Exec(ctx, query, status, documentID)
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista documentos del owner por tipo, del más reciente al más antiguo.
func (r *DocumentRepo) List(ctx context.Context, ownerID, kind string, limit, offset int) ([]*entity.Document, error) {
	query := `SELECT ` + documentColumns + `
		FROM documents WHERE owner_id = $1 AND kind = $2
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, ownerID, kind, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	var list []*entity.Document
	for rows.Next() {
		var d entity.Document
		if err := rows.Scan(
			&d.ID, &d.OwnerID, &d.Kind, &d.Number, &d.Status, &d.CounterpartyName, &d.InvoiceType,
			&d.DocumentDate, &d.DeliveryDate, &d.Subtotal, &d.DiscountRate, &d.DiscountAmount,
			&d.TaxRate, &d.TaxAmount, &d.Shipping, &d.Insurance, &d.GrandTotal, &d.Notes,
			&d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}
