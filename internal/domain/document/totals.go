// Package document contiene la lógica pura del documento comercial: totales, máquina de estados,
// conversiones entre tipos y política de bloqueo. No hace E/S.
package document

import (
	"github.com/jhoicas/erp-documentos/internal/domain"
	"github.com/jhoicas/erp-documentos/internal/domain/entity"
	"github.com/jhoicas/erp-documentos/internal/domain/tax"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Recalculate normaliza el recargo de cada línea según la tabla, recalcula los importes de línea
// y deja los totales de cabecera como función de las líneas actuales. Es idempotente.
func Recalculate(doc *entity.Document, calc tax.Calculator) tax.Breakdown {
	for i := range doc.Lines {
		l := doc.Lines[i]
		l.DocumentID = doc.ID
		l.Position = i + 1
		l.SurchargeRate = calc.SurchargeRate(l.TaxRate, doc.SurchargeApplies)
		doc.Lines[i] = l.Computed()
	}
	b := calc.Calculate(doc.Lines, doc.SurchargeApplies)
	doc.Subtotal = b.Base
	doc.TaxTotal = b.TaxTotal
	doc.SurchargeTotal = b.SurchargeTotal
	doc.GrandTotal = b.Total
	doc.WithholdingTotal = b.Base.Mul(doc.WithholdingRate).Div(hundred).Round(2)
	doc.PayableTotal = doc.GrandTotal.Sub(doc.WithholdingTotal)
	return b
}

// Verify compara los totales guardados con los recalculados sin modificar doc.
func Verify(doc *entity.Document, calc tax.Calculator) error {
	c := doc.Clone()
	Recalculate(c, calc)
	same := c.Subtotal.Equal(doc.Subtotal) &&
		c.TaxTotal.Equal(doc.TaxTotal) &&
		c.SurchargeTotal.Equal(doc.SurchargeTotal) &&
		c.GrandTotal.Equal(doc.GrandTotal) &&
		c.WithholdingTotal.Equal(doc.WithholdingTotal) &&
		c.PayableTotal.Equal(doc.PayableTotal)
	if same {
		return nil
	}
	return &domain.ConsistencyError{
		DocumentID: doc.ID,
		Stored:     doc.GrandTotal.StringFixed(2),
		Computed:   c.GrandTotal.StringFixed(2),
	}
}

// HasBillableLine indica si hay al menos una línea con subtotal positivo.
func HasBillableLine(doc *entity.Document) bool {
	for _, l := range doc.Lines {
		if l.RawSubtotal().IsPositive() {
			return true
		}
	}
	return false
}
