package documents_test

import (
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/jhoicas/erp-documentos/internal/application/documents"
	"github.com/jhoicas/erp-documentos/internal/domain"
	"github.com/jhoicas/erp-documentos/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDraft_ValoresPorDefecto(t *testing.T) {
	f := newFixture(t, defaultSettings())

	doc, err := f.uc.CreateDraft(f.ctx, documents.DraftInput{
		CompanyID: company, Type: entity.SalesInvoice, PartyID: surchargeCli, PaymentTermID: term3060, Date: docDate,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDraft, doc.Status)
	assert.Empty(t, doc.Number)
	assert.Equal(t, "A", doc.Series)
	assert.True(t, doc.SurchargeApplies)
	assert.Equal(t, "2026-05-09", doc.DueDate.Format("2006-01-02"))

	tests := []struct {
		name string
		in   documents.DraftInput
		want error
	}{
		{"tipo desconocido", documents.DraftInput{CompanyID: company, Type: "sales_ticket", PartyID: customer}, domain.ErrValidation},
		{"sin parte", documents.DraftInput{CompanyID: company, Type: entity.SalesQuote}, domain.ErrValidation},
		{"parte inexistente", documents.DraftInput{CompanyID: company, Type: entity.SalesQuote, PartyID: "nadie"}, domain.ErrValidation},
		{"parte de otra empresa", documents.DraftInput{CompanyID: company, Type: entity.SalesQuote, PartyID: "cli-x"}, domain.ErrForbidden},
		{"serie inactiva", documents.DraftInput{CompanyID: company, Type: entity.SalesQuote, PartyID: customer, Series: "OLD"}, domain.ErrValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.CreateDraft(f.ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLines_RecalculaEnCadaCambio(t *testing.T) {
	f := newFixture(t, defaultSettings())
	doc := f.draft(t, entity.SalesOrder, customer, line("2", "100", "10", "21"))

	assert.Equal(t, "180.00", doc.Subtotal.StringFixed(2))
	assert.Equal(t, "37.80", doc.TaxTotal.StringFixed(2))
	assert.Equal(t, "217.80", doc.GrandTotal.StringFixed(2))

	doc, err := f.uc.AddLine(f.ctx, company, doc.ID, line("1", "50", "0", "10"))
	require.NoError(t, err)
	assert.Equal(t, "272.80", doc.GrandTotal.StringFixed(2))

	second := doc.Lines[1].ID
	doc, err = f.uc.UpdateLine(f.ctx, company, doc.ID, second, line("2", "50", "0", "10"))
	require.NoError(t, err)
	assert.Equal(t, "327.80", doc.GrandTotal.StringFixed(2))

	doc, err = f.uc.RemoveLine(f.ctx, company, doc.ID, second)
	require.NoError(t, err)
	assert.Equal(t, "217.80", doc.GrandTotal.StringFixed(2))
	require.Len(t, doc.Lines, 1)

	_, err = f.uc.UpdateLine(f.ctx, company, doc.ID, "no-existe", line("1", "1", "0", "21"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.AddLine(f.ctx, company, doc.ID, line("1", "10", "120", "21"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLines_RechazaMasDeCuatroDecimales(t *testing.T) {
	f := newFixture(t, defaultSettings())
	doc := f.draft(t, entity.SalesOrder, customer, line("1", "10", "0", "21"))

	cases := []struct {
		name  string
		in    documents.LineInput
		field string
	}{
		{"precio", line("1", "0.00005", "0", "21"), "unit_price"},
		{"cantidad", line("1.23456", "10", "0", "21"), "quantity"},
		{"descuento", line("1", "10", "2.50001", "21"), "discount_pct"},
		{"iva", line("1", "10", "0", "21.00001"), "tax_rate"},
		{"precio desbordado", line("1", "10000000000", "0", "21"), "unit_price"},
		{"iva desbordado", line("1", "10", "0", "1000"), "tax_rate"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.AddLine(f.ctx, company, doc.ID, tc.in)
			require.ErrorIs(t, err, domain.ErrValidation)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}

	// Con 4 decimales el total guardado cuadra con la línea guardada.
	doc, err := f.uc.AddLine(f.ctx, company, doc.ID, line("1.5", "0.3333", "0", "21"))
	require.NoError(t, err)
	require.Len(t, doc.Lines, 2)
	assert.Equal(t, "0.50", doc.Lines[1].Subtotal.StringFixed(2))
	assert.Equal(t, "10.50", doc.Subtotal.StringFixed(2))
}

func TestLines_ConfirmadoConservaLineaFacturable(t *testing.T) {
	f := newFixture(t, defaultSettings())
	order := f.confirmed(t, entity.SalesOrder, line("1", "10", "0", "21"))

	_, err := f.uc.RemoveLine(f.ctx, company, order.ID, order.Lines[0].ID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	in, err := f.uc.Get(f.ctx, company, order.ID)
	require.NoError(t, err)
	assert.Len(t, in.Document.Lines, 1)
}

func TestConfirm_NumeraPorAmbito(t *testing.T) {
	f := newFixture(t, defaultSettings())

	inv1 := f.confirmed(t, entity.SalesInvoice, line("1", "10", "0", "21"))
	inv2 := f.confirmed(t, entity.SalesInvoice, line("1", "10", "0", "21"))
	order := f.confirmed(t, entity.SalesOrder, line("1", "10", "0", "21"))

	assert.Equal(t, "A2026-000001", inv1.Number)
	assert.Equal(t, "A2026-000002", inv2.Number)
	assert.Equal(t, "A2026-000001", order.Number)
	assert.Equal(t, entity.StatusConfirmed, inv1.Status)

	_, err := f.uc.Confirm(f.ctx, company, inv1.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestConfirm_RequiereLineaFacturable(t *testing.T) {
	f := newFixture(t, defaultSettings())
	doc := f.draft(t, entity.SalesInvoice, customer, line("0", "10", "0", "21"))

	_, err := f.uc.Confirm(f.ctx, company, doc.ID)
	require.ErrorIs(t, err, domain.ErrValidation)

	in, err := f.uc.Get(f.ctx, company, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDraft, in.Document.Status)
	assert.Empty(t, in.Document.Number)
}

func TestConfirm_ConcurrentesObtienenNumerosDistintos(t *testing.T) {
	f := newFixture(t, defaultSettings())
	const n = 20
	ids := make([]string, n)
	for i := range ids {
		ids[i] = f.draft(t, entity.SalesInvoice, customer, line("1", "10", "0", "21")).ID
	}

	var wg sync.WaitGroup
	numbers := make([]string, n)
	errs := make([]error, n)
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			doc, err := f.uc.Confirm(f.ctx, company, id)
			errs[i] = err
			if err == nil {
				numbers[i] = doc.Number
			}
		}(i, id)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	sort.Strings(numbers)
	for i, num := range numbers {
		assert.Equal(t, fmt.Sprintf("A2026-%06d", i+1), num)
	}
}

func TestConvert_CadenaPresupuestoPedidoAlbaran(t *testing.T) {
	f := newFixture(t, defaultSettings())
	quote := f.draft(t, entity.SalesQuote, customer, line("2", "100", "10", "21"))

	order, err := f.uc.ConvertTo(f.ctx, documents.ConvertInput{CompanyID: company, SourceIDs: []string{quote.ID}, TargetType: entity.SalesOrder, Date: docDate})
	require.NoError(t, err)
	assert.Equal(t, quote.ID, order.OriginID)
	assert.Equal(t, entity.StatusDraft, order.Status)
	assert.Equal(t, "217.80", order.GrandTotal.StringFixed(2))
	require.Len(t, order.Lines, 1)
	assert.NotEqual(t, quote.Lines[0].ID, order.Lines[0].ID)

	// el presupuesto tiene un derivado; el pedido procede de presupuesto y sigue editable
	_, err = f.uc.AddLine(f.ctx, company, quote.ID, line("1", "1", "0", "21"))
	assert.ErrorIs(t, err, domain.ErrLocked)
	_, err = f.uc.AddLine(f.ctx, company, order.ID, line("1", "10", "0", "21"))
	require.NoError(t, err)

	note, err := f.uc.ConvertTo(f.ctx, documents.ConvertInput{CompanyID: company, SourceIDs: []string{order.ID}, TargetType: entity.SalesDeliveryNote, Date: docDate})
	require.NoError(t, err)

	_, err = f.uc.AddLine(f.ctx, company, order.ID, line("1", "1", "0", "21"))
	assert.ErrorIs(t, err, domain.ErrLocked)

	orderView, err := f.uc.Get(f.ctx, company, order.ID)
	require.NoError(t, err)
	assert.False(t, orderView.CanEdit)
	assert.False(t, orderView.CanDelete)
	assert.NotEmpty(t, orderView.LockReason)
	require.Len(t, orderView.Derived, 1)
	assert.Equal(t, note.ID, orderView.Derived[0].ID)

	noteView, err := f.uc.Get(f.ctx, company, note.ID)
	require.NoError(t, err)
	assert.False(t, noteView.CanEdit)
	assert.True(t, noteView.CanDelete)

	require.NoError(t, f.uc.Delete(f.ctx, company, note.ID))
	canEdit, err := f.uc.CanEdit(f.ctx, company, order.ID)
	require.NoError(t, err)
	assert.True(t, canEdit)

	err = f.uc.Delete(f.ctx, company, quote.ID)
	assert.ErrorIs(t, err, domain.ErrLocked)
}

func TestConvert_AlbaranesAgrupadosEnFactura(t *testing.T) {
	f := newFixture(t, defaultSettings())
	n1 := f.draft(t, entity.SalesDeliveryNote, customer, line("1", "100", "0", "21"))
	n2 := f.draft(t, entity.SalesDeliveryNote, customer, line("1", "50", "0", "10"))

	inv, err := f.uc.ConvertTo(f.ctx, documents.ConvertInput{CompanyID: company, SourceIDs: []string{n1.ID, n2.ID}, TargetType: entity.SalesInvoice, Date: docDate})
	require.NoError(t, err)
	assert.Equal(t, []string{n1.ID, n2.ID}, inv.OriginIDs)
	assert.Empty(t, inv.OriginID)
	assert.Equal(t, "176.00", inv.GrandTotal.StringFixed(2))

	view, err := f.uc.Get(f.ctx, company, inv.ID)
	require.NoError(t, err)
	assert.True(t, view.CanEdit)
	require.Len(t, view.Origins, 2)
	require.Len(t, view.Breakdown.Groups, 2)

	for _, id := range []string{n1.ID, n2.ID} {
		ok, err := f.uc.CanDelete(f.ctx, company, id)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestConvert_Rechazos(t *testing.T) {
	f := newFixture(t, defaultSettings())
	quote := f.draft(t, entity.SalesQuote, customer, line("1", "10", "0", "21"))
	note := f.draft(t, entity.SalesDeliveryNote, customer, line("1", "10", "0", "21"))
	other := f.draft(t, entity.SalesDeliveryNote, supplier, line("1", "10", "0", "21"))

	tests := []struct {
		name string
		in   documents.ConvertInput
		want error
	}{
		{"arista ilegal", documents.ConvertInput{SourceIDs: []string{quote.ID}, TargetType: entity.SalesInvoice}, domain.ErrValidation},
		{"cambio de lado", documents.ConvertInput{SourceIDs: []string{quote.ID}, TargetType: entity.PurchaseOrder}, domain.ErrValidation},
		{"partes distintas", documents.ConvertInput{SourceIDs: []string{note.ID, other.ID}, TargetType: entity.SalesInvoice}, domain.ErrValidation},
		{"sin orígenes", documents.ConvertInput{TargetType: entity.SalesInvoice}, domain.ErrValidation},
		{"origen inexistente", documents.ConvertInput{SourceIDs: []string{"nada"}, TargetType: entity.SalesOrder}, domain.ErrNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.in.CompanyID = company
			_, err := f.uc.ConvertTo(f.ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	// ninguna conversión fallida deja derivados
	view, err := f.uc.Get(f.ctx, company, quote.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Derived)
	assert.True(t, view.CanEdit)
}

func TestFacturaNumerada_Inmutable(t *testing.T) {
	f := newFixture(t, defaultSettings())
	inv := f.confirmed(t, entity.SalesInvoice, line("1", "10", "0", "21"))

	_, err := f.uc.AddLine(f.ctx, company, inv.ID, line("1", "1", "0", "21"))
	assert.ErrorIs(t, err, domain.ErrLocked)
	_, err = f.uc.Cancel(f.ctx, company, inv.ID)
	assert.ErrorIs(t, err, domain.ErrLocked)
	assert.ErrorIs(t, f.uc.Delete(f.ctx, company, inv.ID), domain.ErrLocked)

	reason, err := f.uc.LockReason(f.ctx, company, inv.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, reason)
}

func TestCancel_ConservaNumeroYLineas(t *testing.T) {
	f := newFixture(t, defaultSettings())
	order := f.confirmed(t, entity.SalesOrder, line("1", "10", "0", "21"))

	got, err := f.uc.Cancel(f.ctx, company, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCancelled, got.Status)
	assert.Equal(t, order.Number, got.Number)
	assert.Len(t, got.Lines, 1)

	_, err = f.uc.Cancel(f.ctx, company, order.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.uc.Confirm(f.ctx, company, order.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateDraft_RetencionDeLaSerie(t *testing.T) {
	f := newFixture(t, defaultSettings())
	doc, err := f.uc.CreateDraft(f.ctx, documents.DraftInput{CompanyID: company, Type: entity.SalesInvoice, PartyID: customer, Series: "R", Date: docDate})
	require.NoError(t, err)
	doc, err = f.uc.AddLine(f.ctx, company, doc.ID, line("1", "1000", "0", "21"))
	require.NoError(t, err)

	assert.Equal(t, "1210.00", doc.GrandTotal.StringFixed(2))
	assert.Equal(t, "150.00", doc.WithholdingTotal.StringFixed(2))
	assert.Equal(t, "1060.00", doc.PayableTotal.StringFixed(2))
}

func TestCreateDraft_RecargoDelTercero(t *testing.T) {
	f := newFixture(t, defaultSettings())
	doc := f.draft(t, entity.SalesInvoice, surchargeCli, line("1", "100", "0", "21"))

	assert.Equal(t, "5.20", doc.SurchargeTotal.StringFixed(2))
	assert.Equal(t, "126.20", doc.GrandTotal.StringFixed(2))
	assert.Equal(t, "5.2", doc.Lines[0].SurchargeRate.String())
}

func TestUseCase_AisladoPorEmpresa(t *testing.T) {
	f := newFixture(t, defaultSettings())
	doc := f.draft(t, entity.SalesQuote, customer, line("1", "10", "0", "21"))

	_, err := f.uc.Get(f.ctx, otherCompany, doc.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.uc.AddLine(f.ctx, otherCompany, doc.ID, line("1", "1", "0", "21"))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	list, err := f.uc.List(f.ctx, otherCompany, entity.DocumentFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestList_FiltraYPagina(t *testing.T) {
	f := newFixture(t, defaultSettings())
	for i := 0; i < 3; i++ {
		f.draft(t, entity.SalesQuote, customer, line("1", "10", "0", "21"))
	}
	f.confirmed(t, entity.SalesOrder, line("1", "10", "0", "21"))

	quotes, err := f.uc.List(f.ctx, company, entity.DocumentFilter{Type: entity.SalesQuote})
	require.NoError(t, err)
	assert.Len(t, quotes, 3)

	confirmed, err := f.uc.List(f.ctx, company, entity.DocumentFilter{Status: entity.StatusConfirmed})
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, entity.SalesOrder, confirmed[0].Type)

	page, err := f.uc.List(f.ctx, company, entity.DocumentFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)
}

func TestGet_CorrigeTotalesDivergentes(t *testing.T) {
	f := newFixture(t, defaultSettings())
	doc := f.draft(t, entity.SalesOrder, customer, line("2", "100", "10", "21"))

	require.NoError(t, f.store.RunDocuments(f.ctx, func(r documents.Repos) error {
		stored, err := r.Documents.GetByID(f.ctx, doc.ID)
		if err != nil {
			return err
		}
		stored.GrandTotal = d("999.99")
		return r.Documents.Update(f.ctx, stored)
	}))

	view, err := f.uc.Get(f.ctx, company, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "217.80", view.Document.GrandTotal.StringFixed(2))
}

func TestTaxBreakdown_VistaPrevia(t *testing.T) {
	f := newFixture(t, defaultSettings())

	b, err := f.uc.TaxBreakdown([]documents.LineInput{line("1", "100", "0", "21"), line("1", "50", "0", "10")}, false)
	require.NoError(t, err)
	require.Len(t, b.Groups, 2)
	assert.Equal(t, "121.00", b.Groups[0].Total.StringFixed(2))
	assert.Equal(t, "55.00", b.Groups[1].Total.StringFixed(2))
	assert.Equal(t, "176.00", b.Total.StringFixed(2))

	_, err = f.uc.TaxBreakdown([]documents.LineInput{line("-1", "100", "0", "21")}, false)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLineObservers_NotificadosTrasCommit(t *testing.T) {
	failing := &recordingObserver{err: fmt.Errorf("analítica caída")}
	rec := &recordingObserver{}
	f := newFixture(t, defaultSettings(), failing, rec)

	doc := f.draft(t, entity.PurchaseOrder, supplier, line("3", "12.50", "0", "21"))
	doc, err := f.uc.RemoveLine(f.ctx, company, doc.ID, doc.Lines[0].ID)
	require.NoError(t, err)
	assert.Empty(t, doc.Lines)

	require.Len(t, rec.events, 2)
	assert.Equal(t, documents.LineCreated, rec.events[0].Kind)
	assert.Equal(t, entity.PurchaseOrder, rec.events[0].DocType)
	assert.Equal(t, supplier, rec.events[0].PartyID)
	assert.Equal(t, "37.50", rec.events[0].Line.Subtotal.StringFixed(2))
	assert.Equal(t, documents.LineRemoved, rec.events[1].Kind)
	assert.Len(t, failing.events, 2)

	// un cambio rechazado no notifica
	_, err = f.uc.AddLine(f.ctx, company, doc.ID, line("1", "10", "200", "21"))
	require.Error(t, err)
	assert.Len(t, rec.events, 2)
}
