package document_test

import (
	"fmt"
	"time"

	"github.com/jhoicas/erp-documentos/internal/domain/entity"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newDoc(id string, t entity.DocumentType) *entity.Document {
	return &entity.Document{
		ID:        id,
		CompanyID: "c1",
		Type:      t,
		Status:    entity.StatusDraft,
		Series:    "A",
		Date:      time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		PartyID:   "p1",
	}
}

func withLine(doc *entity.Document, qty, price, disc, rate string) *entity.Document {
	doc.Lines = append(doc.Lines, entity.DocumentLine{
		ID:          fmt.Sprintf("%s-l%d", doc.ID, len(doc.Lines)+1),
		DocumentID:  doc.ID,
		Quantity:    d(qty),
		UnitPrice:   d(price),
		DiscountPct: d(disc),
		TaxRate:     d(rate),
	})
	return doc
}

func idGen(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}
