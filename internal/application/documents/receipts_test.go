package documents_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/jhoicas/erp-documentos/internal/application/documents"
	"github.com/jhoicas/erp-documentos/internal/domain"
	"github.com/jhoicas/erp-documentos/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) invoiceWithTerm(t *testing.T, lines ...documents.LineInput) *entity.Document {
	t.Helper()
	doc, err := f.uc.CreateDraft(f.ctx, documents.DraftInput{
		CompanyID: company, Type: entity.SalesInvoice, PartyID: customer, PaymentTermID: term3060, Date: docDate,
	})
	require.NoError(t, err)
	for _, l := range lines {
		doc, err = f.uc.AddLine(f.ctx, company, doc.ID, l)
		require.NoError(t, err)
	}
	doc, err = f.uc.Confirm(f.ctx, company, doc.ID)
	require.NoError(t, err)
	return doc
}

func TestGenerateReceipts_UnoPorTramo(t *testing.T) {
	f := newFixture(t, defaultSettings())
	inv := f.invoiceWithTerm(t, line("2", "100", "10", "21"))

	receipts, err := f.uc.GenerateReceipts(f.ctx, company, inv.ID)
	require.NoError(t, err)
	require.Len(t, receipts, 2)

	for i, rec := range receipts {
		assert.Equal(t, entity.SalesReceipt, rec.Type)
		assert.Equal(t, entity.StatusConfirmed, rec.Status)
		assert.Equal(t, inv.ID, rec.OriginID)
		assert.Equal(t, fmt.Sprintf("%s/%d", inv.Number, i+1), rec.Number)
		assert.Equal(t, "108.90", rec.GrandTotal.StringFixed(2))
	}
	assert.Equal(t, "2026-04-09", receipts[0].DueDate.Format("2006-01-02"))
	assert.Equal(t, "2026-05-09", receipts[1].DueDate.Format("2006-01-02"))

	_, err = f.uc.GenerateReceipts(f.ctx, company, inv.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGenerateReceipts_ElUltimoAbsorbeRedondeo(t *testing.T) {
	f := newFixture(t, defaultSettings())
	inv := f.invoiceWithTerm(t, line("1", "100.01", "0", "0"))

	receipts, err := f.uc.GenerateReceipts(f.ctx, company, inv.ID)
	require.NoError(t, err)
	require.Len(t, receipts, 2)
	assert.Equal(t, "50.01", receipts[0].GrandTotal.StringFixed(2))
	assert.Equal(t, "50.00", receipts[1].GrandTotal.StringFixed(2))
}

func TestGenerateReceipts_ContadoSinFormaDePago(t *testing.T) {
	f := newFixture(t, defaultSettings())
	inv := f.confirmed(t, entity.SalesInvoice, line("1", "10", "0", "21"))

	receipts, err := f.uc.GenerateReceipts(f.ctx, company, inv.ID)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.Equal(t, "12.10", receipts[0].GrandTotal.StringFixed(2))
	assert.True(t, receipts[0].DueDate.Equal(inv.Date))
}

func TestGenerateReceipts_RequiereFacturaConfirmada(t *testing.T) {
	f := newFixture(t, defaultSettings())
	draft := f.draft(t, entity.SalesInvoice, customer, line("1", "10", "0", "21"))
	order := f.confirmed(t, entity.SalesOrder, line("1", "10", "0", "21"))

	_, err := f.uc.GenerateReceipts(f.ctx, company, draft.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.uc.GenerateReceipts(f.ctx, company, order.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestConfirm_RecibosAutomaticos(t *testing.T) {
	settings := defaultSettings()
	settings.AutoReceipts = true
	f := newFixture(t, settings)
	inv := f.invoiceWithTerm(t, line("1", "100", "0", "21"))

	view, err := f.uc.Get(f.ctx, company, inv.ID)
	require.NoError(t, err)
	require.Len(t, view.Derived, 2)
	assert.Equal(t, entity.SalesReceipt, view.Derived[0].Type)
	assert.Equal(t, inv.Number+"/1", view.Derived[0].Number)
}

func TestMarkReceiptPaid_SincronizaFactura(t *testing.T) {
	f := newFixture(t, defaultSettings())
	inv := f.invoiceWithTerm(t, line("1", "100", "0", "21"))
	receipts, err := f.uc.GenerateReceipts(f.ctx, company, inv.ID)
	require.NoError(t, err)

	invoiceStatus := func() entity.DocumentStatus {
		view, err := f.uc.Get(f.ctx, company, inv.ID)
		require.NoError(t, err)
		return view.Document.Status
	}

	rec, err := f.uc.MarkReceiptPaid(f.ctx, company, receipts[0].ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPaid, rec.Status)
	assert.Equal(t, entity.StatusConfirmed, invoiceStatus())

	_, err = f.uc.MarkReceiptPaid(f.ctx, company, receipts[1].ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPaid, invoiceStatus())

	_, err = f.uc.MarkReceiptPaid(f.ctx, company, receipts[1].ID)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.uc.MarkReceiptPaid(f.ctx, company, inv.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, f.uc.SyncInvoiceStatus(f.ctx, company, inv.ID))
	assert.Equal(t, entity.StatusPaid, invoiceStatus())
}

func TestVoid_AnulaFactura(t *testing.T) {
	f := newFixture(t, defaultSettings())
	inv := f.invoiceWithTerm(t, line("1", "100", "0", "21"))
	receipts, err := f.uc.GenerateReceipts(f.ctx, company, inv.ID)
	require.NoError(t, err)

	_, err = f.uc.Void(f.ctx, company, inv.ID, "u1", "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	voided, err := f.uc.Void(f.ctx, company, inv.ID, "u1", "emitida al cliente equivocado")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCancelled, voided.Status)
	assert.Equal(t, inv.Number, voided.Number)

	for _, r := range receipts {
		view, err := f.uc.Get(f.ctx, company, r.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusCancelled, view.Document.Status)
	}

	var audits []*entity.DocumentAudit
	require.NoError(t, f.store.RunDocuments(context.Background(), func(r documents.Repos) error {
		var err error
		audits, err = r.Audit.ListByDocument(context.Background(), inv.ID)
		return err
	}))
	require.Len(t, audits, 1)
	assert.Equal(t, entity.AuditActionVoid, audits[0].Action)
	assert.Equal(t, "u1", audits[0].UserID)
}

func TestVoid_RechazaRecibosCobrados(t *testing.T) {
	f := newFixture(t, defaultSettings())
	inv := f.invoiceWithTerm(t, line("1", "100", "0", "21"))
	receipts, err := f.uc.GenerateReceipts(f.ctx, company, inv.ID)
	require.NoError(t, err)
	_, err = f.uc.MarkReceiptPaid(f.ctx, company, receipts[0].ID)
	require.NoError(t, err)

	_, err = f.uc.Void(f.ctx, company, inv.ID, "u1", "error")
	assert.ErrorIs(t, err, domain.ErrValidation)

	view, err := f.uc.Get(f.ctx, company, receipts[1].ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusConfirmed, view.Document.Status)
}

func TestVoid_SoloFacturasNumeradas(t *testing.T) {
	f := newFixture(t, defaultSettings())
	order := f.confirmed(t, entity.SalesOrder, line("1", "10", "0", "21"))

	_, err := f.uc.Void(f.ctx, company, order.ID, "u1", "motivo")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestConvert_FacturaARecibo(t *testing.T) {
	f := newFixture(t, defaultSettings())
	draftInv := f.draft(t, entity.SalesInvoice, customer, line("1", "10", "0", "21"))

	_, err := f.uc.ConvertTo(f.ctx, documents.ConvertInput{CompanyID: company, SourceIDs: []string{draftInv.ID}, TargetType: entity.SalesReceipt})
	assert.ErrorIs(t, err, domain.ErrValidation)

	inv, err := f.uc.Confirm(f.ctx, company, draftInv.ID)
	require.NoError(t, err)
	rec, err := f.uc.ConvertTo(f.ctx, documents.ConvertInput{CompanyID: company, SourceIDs: []string{inv.ID}, TargetType: entity.SalesReceipt, Date: docDate})
	require.NoError(t, err)
	assert.Empty(t, rec.Number)

	rec, err = f.uc.Confirm(f.ctx, company, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.Number+"/1", rec.Number)
}
