package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/erp-documentos/internal/application/documents"
	"github.com/jhoicas/erp-documentos/internal/domain/entity"
	"github.com/jhoicas/erp-documentos/internal/domain/repository"
)

var _ documents.TxRunner = (*Store)(nil)

// Store almacén en memoria para desarrollo y tests. Las transacciones se serializan con un
// único mutex y se deshacen restaurando una copia del estado.
type Store struct {
	mu sync.Mutex

	docs      map[string]*entity.Document
	numbers   map[string]string // empresa|tipo|número -> id
	sequences map[entity.SequenceScope]int64
	audits    []*entity.DocumentAudit
	parties   map[string]*entity.Party
	terms     map[string]*entity.PaymentTerm
	series    map[string]*entity.NumberingSeries // empresa|código
	prices    []*entity.PurchasePrice
}

// NewStore devuelve un almacén vacío.
func NewStore() *Store {
	return &Store{
		docs:      map[string]*entity.Document{},
		numbers:   map[string]string{},
		sequences: map[entity.SequenceScope]int64{},
		parties:   map[string]*entity.Party{},
		terms:     map[string]*entity.PaymentTerm{},
		series:    map[string]*entity.NumberingSeries{},
	}
}

// RunDocuments ejecuta fn en exclusión mutua; si fn falla el estado vuelve al anterior.
func (s *Store) RunDocuments(ctx context.Context, fn func(r documents.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.snapshot()
	r := documents.Repos{
		Documents:    &documentRepo{s: s},
		Sequences:    &sequenceRepo{s: s},
		Audit:        &auditRepo{s: s},
		Parties:      &partyRepo{s: s},
		PaymentTerms: &paymentTermRepo{s: s},
		Series:       &seriesRepo{s: s},
	}
	if err := fn(r); err != nil {
		s.restore(backup)
		return err
	}
	return nil
}

// PurchasePrices repositorio del histórico de precios (fuera de las transacciones de documentos).
func (s *Store) PurchasePrices() repository.PurchasePriceRepository {
	return &purchasePriceRepo{s: s}
}

type state struct {
	docs      map[string]*entity.Document
	numbers   map[string]string
	sequences map[entity.SequenceScope]int64
	audits    []*entity.DocumentAudit
	parties   map[string]*entity.Party
	terms     map[string]*entity.PaymentTerm
	series    map[string]*entity.NumberingSeries
}

// snapshot copia lo que una transacción de documentos puede modificar. Los documentos se
// guardan siempre como copias, así que basta con copiar los mapas.
func (s *Store) snapshot() state {
	st := state{
		docs:      make(map[string]*entity.Document, len(s.docs)),
		numbers:   make(map[string]string, len(s.numbers)),
		sequences: make(map[entity.SequenceScope]int64, len(s.sequences)),
		audits:    append([]*entity.DocumentAudit(nil), s.audits...),
		parties:   make(map[string]*entity.Party, len(s.parties)),
		terms:     make(map[string]*entity.PaymentTerm, len(s.terms)),
		series:    make(map[string]*entity.NumberingSeries, len(s.series)),
	}
	for k, v := range s.docs {
		st.docs[k] = v
	}
	for k, v := range s.numbers {
		st.numbers[k] = v
	}
	for k, v := range s.sequences {
		st.sequences[k] = v
	}
	for k, v := range s.parties {
		st.parties[k] = v
	}
	for k, v := range s.terms {
		st.terms[k] = v
	}
	for k, v := range s.series {
		st.series[k] = v
	}
	return st
}

func (s *Store) restore(st state) {
	s.docs = st.docs
	s.numbers = st.numbers
	s.sequences = st.sequences
	s.audits = st.audits
	s.parties = st.parties
	s.terms = st.terms
	s.series = st.series
}

func numberKey(d *entity.Document) string {
	return d.CompanyID + "|" + string(d.Type) + "|" + d.Number
}

func seriesKey(companyID, code string) string { return companyID + "|" + code }

func sortByDate(list []*entity.Document) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.After(list[j].Date)
		}
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}

func sortByCreation(list []*entity.Document) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if a.Installment != b.Installment {
			return a.Installment < b.Installment
		}
		return a.ID < b.ID
	})
}

func now() time.Time { return time.Now().UTC() }
