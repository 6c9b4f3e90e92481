package documents_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/erp-documentos/internal/application/documents"
	"github.com/jhoicas/erp-documentos/internal/domain/entity"
	"github.com/jhoicas/erp-documentos/internal/domain/tax"
	"github.com/jhoicas/erp-documentos/internal/infrastructure/memory"
	"github.com/jhoicas/erp-documentos/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	company      = "c1"
	otherCompany = "c2"
	customer     = "cli-1"
	surchargeCli = "cli-re"
	supplier     = "prov-1"
	term3060     = "pt-30-60"
)

var docDate = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func line(qty, price, disc, rate string) documents.LineInput {
	return documents.LineInput{
		ProductID:   "prod-1",
		Description: "artículo",
		Quantity:    d(qty),
		UnitPrice:   d(price),
		DiscountPct: d(disc),
		TaxRate:     d(rate),
	}
}

func defaultSettings() documents.Settings {
	return documents.Settings{
		DefaultSeries:    "A",
		SurchargeTable:   tax.DefaultSurchargeTable(),
		NumberingRetries: 3,
	}
}

type fixture struct {
	ctx   context.Context
	store *memory.Store
	uc    *documents.UseCase
}

func newFixture(t *testing.T, settings documents.Settings, observers ...documents.LineObserver) *fixture {
	t.Helper()
	store := memory.NewStore()
	seed(t, store)
	return &fixture{
		ctx:   context.Background(),
		store: store,
		uc:    documents.NewUseCase(store, settings, logger.Nop().Component("documents"), observers...),
	}
}

func seed(t *testing.T, store *memory.Store) {
	t.Helper()
	err := store.RunDocuments(context.Background(), func(r documents.Repos) error {
		ctx := context.Background()
		for _, p := range []*entity.Party{
			{ID: customer, CompanyID: company, Name: "Cliente"},
			{ID: surchargeCli, CompanyID: company, Name: "Minorista", SurchargeApplies: true},
			{ID: supplier, CompanyID: company, Name: "Proveedor"},
			{ID: "cli-x", CompanyID: otherCompany, Name: "Ajeno"},
		} {
			if err := r.Parties.Create(ctx, p); err != nil {
				return err
			}
		}
		for _, s := range []*entity.NumberingSeries{
			{CompanyID: company, Code: "A", Active: true},
			{CompanyID: company, Code: "R", Active: true, DefaultWithholdingRate: d("15")},
			{CompanyID: company, Code: "OLD", Active: false},
			{CompanyID: otherCompany, Code: "A", Active: true},
		} {
			if err := r.Series.Create(ctx, s); err != nil {
				return err
			}
		}
		return r.PaymentTerms.Create(ctx, &entity.PaymentTerm{
			ID: term3060, CompanyID: company, Name: "30/60",
			Tramos: []entity.Tramo{{Days: 30, Percentage: d("50")}, {Days: 60, Percentage: d("50")}},
		})
	})
	require.NoError(t, err)
}

func (f *fixture) draft(t *testing.T, typ entity.DocumentType, party string, lines ...documents.LineInput) *entity.Document {
	t.Helper()
	doc, err := f.uc.CreateDraft(f.ctx, documents.DraftInput{CompanyID: company, Type: typ, PartyID: party, Date: docDate})
	require.NoError(t, err)
	for _, l := range lines {
		doc, err = f.uc.AddLine(f.ctx, company, doc.ID, l)
		require.NoError(t, err)
	}
	return doc
}

func (f *fixture) confirmed(t *testing.T, typ entity.DocumentType, lines ...documents.LineInput) *entity.Document {
	t.Helper()
	doc := f.draft(t, typ, customer, lines...)
	doc, err := f.uc.Confirm(f.ctx, company, doc.ID)
	require.NoError(t, err)
	return doc
}

// recordingObserver guarda los eventos recibidos; err se devuelve en cada llamada.
type recordingObserver struct {
	mu     sync.Mutex
	events []documents.LineEvent
	err    error
}

func (o *recordingObserver) LineChanged(_ context.Context, ev documents.LineEvent) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, ev)
	return o.err
}
