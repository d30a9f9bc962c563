package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Backoffice-api/internal/domain"
	"github.com/jhoicas/Backoffice-api/internal/domain/entity"
	"github.com/jhoicas/Backoffice-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)
var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)
var _ repository.DocumentRepository = (*DocumentRepo)(nil)
var _ repository.DocumentSequenceRepository = (*DocumentSequenceRepo)(nil)

// lock toma el mutex salvo que la operación venga de dentro de una transacción,
// donde el lock ya está tomado. Devuelve la función de unlock a diferir.
func (s *Store) lock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// ProductRepo implementación en memoria del puerto ProductRepository.
type ProductRepo struct {
	s    *Store
	inTx bool
}

// NewProductRepository construye el repo sobre el store, para uso fuera de transacción.
func NewProductRepository(s *Store) *ProductRepo {
	return &ProductRepo{s: s}
}

func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	defer r.s.lock(r.inTx)()
	if _, ok := r.s.products[product.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, p := range r.s.products {
		if p.OwnerID == product.OwnerID && p.SKU != "" && p.SKU == product.SKU {
			return domain.ErrDuplicate
		}
	}
	r.s.products[product.ID] = cloneProduct(product)
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, ownerID, id string) (*entity.Product, error) {
	defer r.s.lock(r.inTx)()
	return r.get(ownerID, id), nil
}

// GetForUpdate equivale a GetByID: la serialización la da el mutex del store.
func (r *ProductRepo) GetForUpdate(ctx context.Context, ownerID, id string) (*entity.Product, error) {
	defer r.s.lock(r.inTx)()
	return r.get(ownerID, id), nil
}

func (r *ProductRepo) get(ownerID, id string) *entity.Product {
	p, ok := r.s.products[id]
	if !ok || p.OwnerID != ownerID {
		return nil
	}
	return cloneProduct(p)
}

func (r *ProductRepo) UpdateStock(ctx context.Context, id string, newStock int64) error {
	defer r.s.lock(r.inTx)()
	if r.s.StockErr != nil && r.s.StockErrFor == id {
		return r.s.StockErr
	}
	if p, ok := r.s.products[id]; ok {
		p.CurrentStock = newStock
		p.UpdatedAt = time.Now()
	}
	return nil
}

func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	defer r.s.lock(r.inTx)()
	p, ok := r.s.products[product.ID]
	if !ok || p.OwnerID != product.OwnerID {
		return nil
	}
	stock := p.CurrentStock // Update no toca current_stock
	updated := cloneProduct(product)
	updated.CurrentStock = stock
	updated.IsActive = p.IsActive
	r.s.products[product.ID] = updated
	return nil
}

func (r *ProductRepo) Deactivate(ctx context.Context, ownerID, id string) error {
	defer r.s.lock(r.inTx)()
	p, ok := r.s.products[id]
	if !ok || p.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	p.IsActive = false
	p.UpdatedAt = time.Now()
	return nil
}

func (r *ProductRepo) ListActive(ctx context.Context, ownerID string) ([]*entity.Product, error) {
	defer r.s.lock(r.inTx)()
	var list []*entity.Product
	for _, p := range r.s.products {
		if p.OwnerID == ownerID && p.IsActive {
			list = append(list, cloneProduct(p))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (r *ProductRepo) ListLowStock(ctx context.Context, ownerID string, threshold int64) ([]*entity.Product, error) {
	defer r.s.lock(r.inTx)()
	var list []*entity.Product
	for _, p := range r.s.products {
		if p.OwnerID == ownerID && p.IsActive && p.CurrentStock <= p.EffectiveMinLevel(threshold) {
			list = append(list, cloneProduct(p))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CurrentStock < list[j].CurrentStock })
	return list, nil
}

// StockMovementRepo implementación en memoria del ledger append-only.
type StockMovementRepo struct {
	s    *Store
	inTx bool
}

// NewStockMovementRepository construye el repo sobre el store, para uso fuera de transacción.
func NewStockMovementRepository(s *Store) *StockMovementRepo {
	return &StockMovementRepo{s: s}
}

func (r *StockMovementRepo) Create(ctx context.Context, movement *entity.StockMovement) error {
	defer r.s.lock(r.inTx)()
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	stored := *movement
	r.s.movements = append(r.s.movements, &stored)
	return nil
}

// ListByProduct devuelve los movimientos del más reciente al más antiguo. El slice
// interno está en orden de inserción, así que se recorre al revés.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, ownerID, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	defer r.s.lock(r.inTx)()
	var list []*entity.StockMovement
	skipped := 0
	for i := len(r.s.movements) - 1; i >= 0 && len(list) < limit; i-- {
		m := r.s.movements[i]
		if m.OwnerID != ownerID || m.ProductID != productID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		copied := *m
		list = append(list, &copied)
	}
	return list, nil
}

func (r *StockMovementRepo) SumDeltasByProduct(ctx context.Context, ownerID, productID string) (int64, error) {
	defer r.s.lock(r.inTx)()
	var sum int64
	for _, m := range r.s.movements {
		if m.OwnerID == ownerID && m.ProductID == productID {
			sum += m.QuantityDelta
		}
	}
	return sum, nil
}

// DocumentRepo implementación en memoria del puerto DocumentRepository.
type DocumentRepo struct {
	s    *Store
	inTx bool
}

// NewDocumentRepository construye el repo sobre el store, para uso fuera de transacción.
func NewDocumentRepository(s *Store) *DocumentRepo {
	return &DocumentRepo{s: s}
}

func (r *DocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	defer r.s.lock(r.inTx)()
	if _, ok := r.s.documents[doc.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, d := range r.s.documents {
		if d.OwnerID == doc.OwnerID && d.Kind == doc.Kind && d.Number == doc.Number {
			return domain.ErrDuplicate
		}
	}
	r.s.documents[doc.ID] = cloneDocument(doc)
	return nil
}

func (r *DocumentRepo) CreateItem(ctx context.Context, item *entity.DocumentItem) error {
	defer r.s.lock(r.inTx)()
	stored := *item
	r.s.items[item.DocumentID] = append(r.s.items[item.DocumentID], &stored)
	return nil
}

func (r *DocumentRepo) GetByNumber(ctx context.Context, ownerID, kind, number string) (*entity.Document, error) {
	defer r.s.lock(r.inTx)()
	for _, d := range r.s.documents {
		if d.OwnerID == ownerID && d.Kind == kind && d.Number == number {
			return cloneDocument(d), nil
		}
	}
	return nil, nil
}

func (r *DocumentRepo) GetItems(ctx context.Context, documentID string) ([]*entity.DocumentItem, error) {
	defer r.s.lock(r.inTx)()
	var list []*entity.DocumentItem
	for _, item := range r.s.items[documentID] {
		copied := *item
		list = append(list, &copied)
	}
	return list, nil
}

func (r *DocumentRepo) UpdateStatus(ctx context.Context, documentID, status string) error {
	defer r.s.lock(r.inTx)()
	if r.s.UpdateStatusErr != nil {
		return r.s.UpdateStatusErr
	}
	d, ok := r.s.documents[documentID]
	if !ok {
		return domain.ErrNotFound
	}
	d.Status = status
	d.UpdatedAt = time.Now()
	return nil
}

func (r *DocumentRepo) List(ctx context.Context, ownerID, kind string, limit, offset int) ([]*entity.Document, error) {
	defer r.s.lock(r.inTx)()
	var list []*entity.Document
	for _, d := range r.s.documents {
		if d.OwnerID == ownerID && d.Kind == kind {
			list = append(list, cloneDocument(d))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

// DocumentSequenceRepo contador de consecutivos en memoria.
type DocumentSequenceRepo struct {
	s *Store
}

// NewDocumentSequenceRepository construye el contador sobre el store.
func NewDocumentSequenceRepository(s *Store) *DocumentSequenceRepo {
	return &DocumentSequenceRepo{s: s}
}

// Next incrementa y devuelve el contador de (owner, kind). Si no existe aún, se
// siembra con el sufijo numérico más alto de los documentos ya guardados.
func (r *DocumentSequenceRepo) Next(ctx context.Context, ownerID, kind string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.SequenceErr != nil {
		return 0, r.s.SequenceErr
	}
	key := ownerID + "|" + kind
	value, ok := r.s.sequences[key]
	if !ok {
		value = r.maxNumericSuffix(ownerID, kind)
	}
	value++
	r.s.sequences[key] = value
	return value, nil
}

func (r *DocumentSequenceRepo) maxNumericSuffix(ownerID, kind string) int64 {
	var max int64
	for _, d := range r.s.documents {
		if d.OwnerID != ownerID || d.Kind != kind {
			continue
		}
		idx := strings.LastIndex(d.Number, "-")
		if idx < 0 {
			continue
		}
		n, err := strconv.ParseInt(d.Number[idx+1:], 10, 64)
		if err == nil && n > max {
			max = n
		}
	}
	return max
}
