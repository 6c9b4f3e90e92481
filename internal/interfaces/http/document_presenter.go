package http

import (
	"github.com/jhoicas/erp-documentos/internal/application/documents"
	"github.com/jhoicas/erp-documentos/internal/application/dto"
	"github.com/jhoicas/erp-documentos/internal/domain/entity"
	"github.com/jhoicas/erp-documentos/internal/domain/tax"
	"github.com/jhoicas/erp-documentos/pkg/money"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

func amount(d decimal.Decimal) string { return d.StringFixed(2) }

func toDocumentResponse(doc *entity.Document, f *money.Formatter) dto.DocumentResponse {
	out := dto.DocumentResponse{
		ID:               doc.ID,
		Type:             string(doc.Type),
		Status:           string(doc.Status),
		Series:           doc.Series,
		Number:           doc.Number,
		Date:             doc.Date.Format(dateLayout),
		DueDate:          doc.DueDate.Format(dateLayout),
		PartyID:          doc.PartyID,
		PaymentTermID:    doc.PaymentTermID,
		OriginID:         doc.OriginID,
		OriginIDs:        doc.OriginIDs,
		SurchargeApplies: doc.SurchargeApplies,
		Subtotal:         amount(doc.Subtotal),
		TaxTotal:         amount(doc.TaxTotal),
		SurchargeTotal:   amount(doc.SurchargeTotal),
		GrandTotal:       amount(doc.GrandTotal),
		WithholdingTotal: amount(doc.WithholdingTotal),
		PayableTotal:     amount(doc.PayableTotal),
	}
	if f != nil {
		out.Display = &dto.TotalsDisplay{
			Currency:     f.Currency(),
			GrandTotal:   f.Format(doc.GrandTotal),
			PayableTotal: f.Format(doc.PayableTotal),
		}
	}
	for _, l := range doc.Lines {
		out.Lines = append(out.Lines, dto.DocumentLineResponse{
			ID:              l.ID,
			Position:        l.Position,
			ProductID:       l.ProductID,
			Description:     l.Description,
			Quantity:        l.Quantity.String(),
			UnitPrice:       l.UnitPrice.String(),
			DiscountPct:     l.DiscountPct.String(),
			TaxRate:         l.TaxRate.String(),
			SurchargeRate:   l.SurchargeRate.String(),
			Subtotal:        amount(l.Subtotal),
			TaxAmount:       amount(l.TaxAmount),
			SurchargeAmount: amount(l.SurchargeAmount),
			Total:           amount(l.Total),
		})
	}
	return out
}

func toRefs(refs []entity.DocumentRef) []dto.DocumentRefResponse {
	out := make([]dto.DocumentRefResponse, 0, len(refs))
	for _, r := range refs {
		out = append(out, dto.DocumentRefResponse{ID: r.ID, Type: string(r.Type), Status: string(r.Status), Number: r.Number})
	}
	return out
}

func toBreakdown(b tax.Breakdown) dto.BreakdownResponse {
	out := dto.BreakdownResponse{
		Groups:         make([]dto.TaxGroupResponse, 0, len(b.Groups)),
		Base:           amount(b.Base),
		TaxTotal:       amount(b.TaxTotal),
		SurchargeTotal: amount(b.SurchargeTotal),
		Total:          amount(b.Total),
	}
	for _, g := range b.Groups {
		out.Groups = append(out.Groups, dto.TaxGroupResponse{
			TaxRate:         g.TaxRate.String(),
			SurchargeRate:   g.SurchargeRate.String(),
			Base:            amount(g.Base),
			TaxAmount:       amount(g.TaxAmount),
			SurchargeAmount: amount(g.SurchargeAmount),
			Total:           amount(g.Total),
		})
	}
	return out
}

func toDetail(in *documents.Inspection, f *money.Formatter) dto.DocumentDetailResponse {
	return dto.DocumentDetailResponse{
		Document:   toDocumentResponse(in.Document, f),
		Origins:    toRefs(in.Origins),
		Derived:    toRefs(in.Derived),
		CanEdit:    in.CanEdit,
		CanDelete:  in.CanDelete,
		LockReason: in.LockReason,
		Breakdown:  toBreakdown(in.Breakdown),
	}
}

func toLineInput(r dto.LineRequest) documents.LineInput {
	return documents.LineInput{
		ProductID:   r.ProductID,
		Description: r.Description,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		DiscountPct: r.DiscountPct,
		TaxRate:     r.TaxRate,
	}
}
