package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/erp-documentos/internal/domain"
	"github.com/jhoicas/erp-documentos/internal/domain/entity"
	"github.com/jhoicas/erp-documentos/internal/domain/repository"
)

var _ repository.DocumentRepository = (*documentRepo)(nil)

// documentRepo opera con el mutex del Store ya tomado por RunDocuments.
type documentRepo struct {
	s *Store
}

func (r *documentRepo) Create(_ context.Context, doc *entity.Document) error {
	if _, ok := r.s.docs[doc.ID]; ok {
		return fmt.Errorf("documento %s: %w", doc.ID, domain.ErrDuplicate)
	}
	if err := r.claimNumber(doc); err != nil {
		return err
	}
	r.s.docs[doc.ID] = doc.Clone()
	return nil
}

func (r *documentRepo) Update(_ context.Context, doc *entity.Document) error {
	prev, ok := r.s.docs[doc.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if prev.Number != doc.Number {
		if err := r.claimNumber(doc); err != nil {
			return err
		}
		if prev.Number != "" {
			delete(r.s.numbers, numberKey(prev))
		}
	}
	r.s.docs[doc.ID] = doc.Clone()
	return nil
}

// claimNumber equivalente a la restricción única (empresa, tipo, número).
func (r *documentRepo) claimNumber(doc *entity.Document) error {
	if doc.Number == "" {
		return nil
	}
	key := numberKey(doc)
	if owner, ok := r.s.numbers[key]; ok && owner != doc.ID {
		return fmt.Errorf("número %s ya usado: %w", doc.Number, domain.ErrNumberingConflict)
	}
	r.s.numbers[key] = doc.ID
	return nil
}

func (r *documentRepo) Delete(_ context.Context, id string) error {
	doc, ok := r.s.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	if doc.Number != "" {
		delete(r.s.numbers, numberKey(doc))
	}
	delete(r.s.docs, id)
	return nil
}

func (r *documentRepo) GetByID(_ context.Context, id string) (*entity.Document, error) {
	doc, ok := r.s.docs[id]
	if !ok {
		return nil, nil
	}
	return doc.Clone(), nil
}

func (r *documentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Document, error) {
	return r.GetByID(ctx, id)
}

func (r *documentRepo) GetRefs(_ context.Context, ids []string) ([]entity.DocumentRef, error) {
	refs := make([]entity.DocumentRef, 0, len(ids))
	for _, id := range ids {
		doc, ok := r.s.docs[id]
		if !ok {
			// origen borrado: se conserva la referencia sin datos
			refs = append(refs, entity.DocumentRef{ID: id})
			continue
		}
		refs = append(refs, doc.Ref())
	}
	return refs, nil
}

func (r *documentRepo) ListDerived(_ context.Context, id string) ([]entity.DocumentRef, error) {
	var list []*entity.Document
	for _, doc := range r.s.docs {
		for _, o := range doc.Origins() {
			if o == id {
				list = append(list, doc)
				break
			}
		}
	}
	sortByCreation(list)
	refs := make([]entity.DocumentRef, 0, len(list))
	for _, doc := range list {
		refs = append(refs, doc.Ref())
	}
	return refs, nil
}

func (r *documentRepo) List(_ context.Context, companyID string, f entity.DocumentFilter) ([]*entity.Document, error) {
	var list []*entity.Document
	for _, doc := range r.s.docs {
		if doc.CompanyID != companyID {
			continue
		}
		if f.Type != "" && doc.Type != f.Type {
			continue
		}
		if f.Status != "" && doc.Status != f.Status {
			continue
		}
		list = append(list, doc)
	}
	sortByDate(list)
	if f.Offset >= len(list) {
		return []*entity.Document{}, nil
	}
	list = list[f.Offset:]
	if f.Limit > 0 && len(list) > f.Limit {
		list = list[:f.Limit]
	}
	out := make([]*entity.Document, 0, len(list))
	for _, doc := range list {
		out = append(out, doc.Clone())
	}
	return out, nil
}
