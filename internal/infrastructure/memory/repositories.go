package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/erp-documentos/internal/domain"
	"github.com/jhoicas/erp-documentos/internal/domain/entity"
	"github.com/jhoicas/erp-documentos/internal/domain/repository"
)

var (
	_ repository.SequenceRepository      = (*sequenceRepo)(nil)
	_ repository.AuditRepository         = (*auditRepo)(nil)
	_ repository.PartyRepository         = (*partyRepo)(nil)
	_ repository.PaymentTermRepository   = (*paymentTermRepo)(nil)
	_ repository.SeriesRepository        = (*seriesRepo)(nil)
	_ repository.PurchasePriceRepository = (*purchasePriceRepo)(nil)
)

type sequenceRepo struct{ s *Store }

func (r *sequenceRepo) Next(_ context.Context, scope entity.SequenceScope) (int64, error) {
	r.s.sequences[scope]++
	return r.s.sequences[scope], nil
}

type auditRepo struct{ s *Store }

func (r *auditRepo) Create(_ context.Context, a *entity.DocumentAudit) error {
	c := *a
	r.s.audits = append(r.s.audits, &c)
	return nil
}

func (r *auditRepo) ListByDocument(_ context.Context, documentID string) ([]*entity.DocumentAudit, error) {
	var out []*entity.DocumentAudit
	for _, a := range r.s.audits {
		if a.DocumentID == documentID {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

type partyRepo struct{ s *Store }

func (r *partyRepo) Create(_ context.Context, p *entity.Party) error {
	if _, ok := r.s.parties[p.ID]; ok {
		return fmt.Errorf("parte %s: %w", p.ID, domain.ErrDuplicate)
	}
	c := *p
	r.s.parties[p.ID] = &c
	return nil
}

func (r *partyRepo) GetByID(_ context.Context, id string) (*entity.Party, error) {
	p, ok := r.s.parties[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

type paymentTermRepo struct{ s *Store }

func (r *paymentTermRepo) Create(_ context.Context, pt *entity.PaymentTerm) error {
	if !pt.Valid() {
		return domain.NewValidationError("tramos", "los porcentajes deben sumar 100")
	}
	c := *pt
	c.Tramos = append([]entity.Tramo(nil), pt.Tramos...)
	r.s.terms[pt.ID] = &c
	return nil
}

func (r *paymentTermRepo) GetByID(_ context.Context, id string) (*entity.PaymentTerm, error) {
	pt, ok := r.s.terms[id]
	if !ok {
		return nil, nil
	}
	c := *pt
	c.Tramos = append([]entity.Tramo(nil), pt.Tramos...)
	return &c, nil
}

type seriesRepo struct{ s *Store }

func (r *seriesRepo) Create(_ context.Context, sr *entity.NumberingSeries) error {
	c := *sr
	r.s.series[seriesKey(sr.CompanyID, sr.Code)] = &c
	return nil
}

func (r *seriesRepo) GetByCode(_ context.Context, companyID, code string) (*entity.NumberingSeries, error) {
	sr, ok := r.s.series[seriesKey(companyID, code)]
	if !ok {
		return nil, nil
	}
	c := *sr
	return &c, nil
}

// purchasePriceRepo toma el mutex por su cuenta: se usa fuera de RunDocuments.
type purchasePriceRepo struct{ s *Store }

func (r *purchasePriceRepo) Create(_ context.Context, p *entity.PurchasePrice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *p
	if c.RecordedAt.IsZero() {
		c.RecordedAt = now()
	}
	r.s.prices = append(r.s.prices, &c)
	return nil
}

func (r *purchasePriceRepo) ListByProduct(_ context.Context, companyID, productID string) ([]*entity.PurchasePrice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.PurchasePrice
	for _, p := range r.s.prices {
		if p.CompanyID == companyID && p.ProductID == productID {
			c := *p
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	return out, nil
}
