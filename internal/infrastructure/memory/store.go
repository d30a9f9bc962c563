// Package memory implementa los puertos de persistencia en memoria. Respalda las
// pruebas de los casos de uso y sirve como backend efímero cuando no hay PostgreSQL.
// Un solo mutex serializa las transacciones, emulando el bloqueo de fila de la BD.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Backoffice-api/internal/application/billing"
	"github.com/jhoicas/Backoffice-api/internal/application/ledger"
	"github.com/jhoicas/Backoffice-api/internal/domain/entity"
	"github.com/jhoicas/Backoffice-api/internal/domain/repository"
)

var _ ledger.TxRunner = (*Store)(nil)
var _ billing.BillingTxRunner = (*Store)(nil)

// Store guarda todo el estado bajo un mutex. Los repositorios que entrega fuera
// de transacción toman el lock por operación; los que entrega dentro de Run /
// RunBilling operan con el lock ya tomado.
type Store struct {
	mu        sync.Mutex
	products  map[string]*entity.Product
	movements []*entity.StockMovement
	documents map[string]*entity.Document
	items     map[string][]*entity.DocumentItem
	sequences map[string]int64 // clave: owner|kind

	// Fallos inyectables para pruebas de caminos degradados.
	SequenceErr     error // Next del contador devuelve esto si no es nil
	UpdateStatusErr error // UpdateStatus del documento devuelve esto si no es nil
	StockErrFor     string // UpdateStock falla para este product ID
	StockErr        error
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{
		products:  make(map[string]*entity.Product),
		documents: make(map[string]*entity.Document),
		items:     make(map[string][]*entity.DocumentItem),
		sequences: make(map[string]int64),
	}
}

type snapshot struct {
	products  map[string]*entity.Product
	movLen    int
	documents map[string]*entity.Document
	items     map[string][]*entity.DocumentItem
	sequences map[string]int64
}

// take copia el estado mutable. Los movimientos son append-only, así que basta
// recordar el largo del slice.
func (s *Store) take() snapshot {
	snap := snapshot{
		products:  make(map[string]*entity.Product, len(s.products)),
		movLen:    len(s.movements),
		documents: make(map[string]*entity.Document, len(s.documents)),
		items:     make(map[string][]*entity.DocumentItem, len(s.items)),
		sequences: make(map[string]int64, len(s.sequences)),
	}
	for id, p := range s.products {
		snap.products[id] = cloneProduct(p)
	}
	for id, d := range s.documents {
		snap.documents[id] = cloneDocument(d)
	}
	for id, list := range s.items {
		snap.items[id] = append([]*entity.DocumentItem(nil), list...)
	}
	for k, v := range s.sequences {
		snap.sequences[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.products = snap.products
	s.movements = s.movements[:snap.movLen]
	s.documents = snap.documents
	s.items = snap.items
	s.sequences = snap.sequences
}

// Run ejecuta fn bajo el lock con repos atados a la "transacción". Si fn falla,
// el estado vuelve al snapshot previo, igual que un rollback de BD.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.take()
	if err := fn(&StockMovementRepo{s: s, inTx: true}, &ProductRepo{s: s, inTx: true}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// RunBilling ejecuta fn bajo el lock con el repo de documentos; rollback si fn falla.
func (s *Store) RunBilling(ctx context.Context, fn func(docRepo repository.DocumentRepository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.take()
	if err := fn(&DocumentRepo{s: s, inTx: true}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func cloneProduct(p *entity.Product) *entity.Product {
	cp := *p
	if p.MinStockLevel != nil {
		level := *p.MinStockLevel
		cp.MinStockLevel = &level
	}
	return &cp
}

func cloneDocument(d *entity.Document) *entity.Document {
	cd := *d
	if d.DeliveryDate != nil {
		date := *d.DeliveryDate
		cd.DeliveryDate = &date
	}
	return &cd
}
