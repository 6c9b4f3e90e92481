package document_test

import (
	"errors"
	"testing"

	"github.com/jhoicas/erp-documentos/internal/domain"
	"github.com/jhoicas/erp-documentos/internal/domain/document"
	"github.com/jhoicas/erp-documentos/internal/domain/entity"
	"github.com/jhoicas/erp-documentos/internal/domain/tax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecalculate_LineasYTotales(t *testing.T) {
	calc := tax.NewCalculator(tax.DefaultSurchargeTable())
	doc := withLine(newDoc("d1", entity.SalesInvoice), "2", "100", "10", "21")

	document.Recalculate(doc, calc)

	l := doc.Lines[0]
	assert.Equal(t, 1, l.Position)
	assert.True(t, d("180").Equal(l.Subtotal))
	assert.True(t, d("37.80").Equal(l.TaxAmount))
	assert.True(t, d("217.80").Equal(l.Total))
	assert.True(t, d("180").Equal(doc.Subtotal))
	assert.True(t, d("37.80").Equal(doc.TaxTotal))
	assert.True(t, d("217.80").Equal(doc.GrandTotal))
	assert.True(t, d("217.80").Equal(doc.PayableTotal))
}

func TestRecalculate_RecargoYRetencion(t *testing.T) {
	calc := tax.NewCalculator(tax.DefaultSurchargeTable())
	doc := withLine(newDoc("d1", entity.SalesInvoice), "1", "100", "0", "21")
	doc.SurchargeApplies = true
	doc.WithholdingRate = d("15")

	document.Recalculate(doc, calc)

	assert.True(t, d("5.2").Equal(doc.Lines[0].SurchargeRate))
	assert.True(t, d("5.20").Equal(doc.SurchargeTotal))
	assert.True(t, d("126.20").Equal(doc.GrandTotal))
	assert.True(t, d("15").Equal(doc.WithholdingTotal))
	assert.True(t, d("111.20").Equal(doc.PayableTotal))
}

func TestRecalculate_Idempotente(t *testing.T) {
	calc := tax.NewCalculator(tax.DefaultSurchargeTable())
	doc := withLine(newDoc("d1", entity.SalesOrder), "3", "19.99", "5", "21")
	withLine(doc, "1", "7.45", "0", "10")

	document.Recalculate(doc, calc)
	first := doc.Clone()
	document.Recalculate(doc, calc)

	assert.Equal(t, first, doc)
}

func TestVerify_DetectaDivergencia(t *testing.T) {
	calc := tax.NewCalculator(tax.DefaultSurchargeTable())
	doc := withLine(newDoc("d1", entity.SalesOrder), "1", "10", "0", "21")
	document.Recalculate(doc, calc)
	require.NoError(t, document.Verify(doc, calc))

	doc.GrandTotal = d("999")
	err := document.Verify(doc, calc)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConsistency))
	var ce *domain.ConsistencyError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "12.10", ce.Computed)
	assert.True(t, d("999").Equal(doc.GrandTotal), "Verify no debe corregir el documento")
}
