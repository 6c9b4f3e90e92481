package documents

import (
	"context"

	"github.com/jhoicas/erp-documentos/internal/domain"
	"github.com/jhoicas/erp-documentos/internal/domain/document"
	"github.com/jhoicas/erp-documentos/internal/domain/entity"
	"github.com/jhoicas/erp-documentos/internal/domain/tax"
	"github.com/shopspring/decimal"
)

// LineInput datos editables de una línea.
type LineInput struct {
	ProductID   string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	DiscountPct decimal.Decimal
	TaxRate     decimal.Decimal
}

func (in LineInput) toLine() (entity.DocumentLine, error) {
	l := entity.DocumentLine{
		ProductID:   in.ProductID,
		Description: in.Description,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		DiscountPct: in.DiscountPct,
		TaxRate:     in.TaxRate,
	}
	if field, reason, ok := l.Validate(); !ok {
		return l, domain.NewValidationError(field, reason)
	}
	return l, nil
}

// AddLine añade una línea y recalcula los totales en la misma transacción.
func (uc *UseCase) AddLine(ctx context.Context, companyID, docID string, in LineInput) (*entity.Document, error) {
	line, err := in.toLine()
	if err != nil {
		return nil, err
	}
	return uc.mutateLines(ctx, companyID, docID, func(doc *entity.Document) (LineEvent, error) {
		line.ID = uc.newID()
		line.DocumentID = doc.ID
		doc.Lines = append(doc.Lines, line)
		return LineEvent{Kind: LineCreated, Line: line}, nil
	})
}

// UpdateLine reemplaza los datos de una línea existente.
func (uc *UseCase) UpdateLine(ctx context.Context, companyID, docID, lineID string, in LineInput) (*entity.Document, error) {
	line, err := in.toLine()
	if err != nil {
		return nil, err
	}
	return uc.mutateLines(ctx, companyID, docID, func(doc *entity.Document) (LineEvent, error) {
		i, _ := doc.Line(lineID)
		if i < 0 {
			return LineEvent{}, domain.ErrNotFound
		}
		line.ID = lineID
		line.DocumentID = doc.ID
		doc.Lines[i] = line
		return LineEvent{Kind: LineUpdated, Line: line}, nil
	})
}

// RemoveLine elimina una línea. Un documento confirmado no puede quedarse sin líneas facturables.
func (uc *UseCase) RemoveLine(ctx context.Context, companyID, docID, lineID string) (*entity.Document, error) {
	return uc.mutateLines(ctx, companyID, docID, func(doc *entity.Document) (LineEvent, error) {
		i, l := doc.Line(lineID)
		if i < 0 {
			return LineEvent{}, domain.ErrNotFound
		}
		removed := *l
		doc.Lines = append(doc.Lines[:i], doc.Lines[i+1:]...)
		if doc.Status != entity.StatusDraft && !document.HasBillableLine(doc) {
			return LineEvent{}, domain.NewValidationError("lines", "un documento confirmado necesita al menos una línea")
		}
		return LineEvent{Kind: LineRemoved, Line: removed}, nil
	})
}

// mutateLines aplica fn sobre el documento bloqueado, recalcula y persiste cabecera y líneas
// juntas. Las notificaciones salen después del commit.
func (uc *UseCase) mutateLines(ctx context.Context, companyID, docID string, fn func(doc *entity.Document) (LineEvent, error)) (*entity.Document, error) {
	var doc *entity.Document
	var ev LineEvent
	err := uc.tx.RunDocuments(ctx, func(r Repos) error {
		snap, err := uc.load(ctx, r, companyID, docID, true)
		if err != nil {
			return err
		}
		if lock := document.EditLock(snap); lock != nil {
			return lock
		}
		doc = snap.Doc
		if doc.Status != entity.StatusDraft && doc.Status != entity.StatusConfirmed {
			return domain.NewValidationError("status", "no se pueden modificar líneas en estado "+string(doc.Status))
		}
		ev, err = fn(doc)
		if err != nil {
			return err
		}
		document.Recalculate(doc, uc.calc)
		if _, l := doc.Line(ev.Line.ID); l != nil {
			ev.Line = *l
		}
		doc.UpdatedAt = uc.now()
		return r.Documents.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	ev.CompanyID = doc.CompanyID
	ev.DocumentID = doc.ID
	ev.DocType = doc.Type
	ev.PartyID = doc.PartyID
	ev.At = doc.UpdatedAt
	uc.notify(ctx, ev)
	return doc, nil
}

func (uc *UseCase) notify(ctx context.Context, ev LineEvent) {
	for _, o := range uc.observers {
		if err := o.LineChanged(ctx, ev); err != nil {
			uc.log.Error().Err(err).Str("document_id", ev.DocumentID).Str("line_id", ev.Line.ID).Msg("observador de líneas")
		}
	}
}

// TaxBreakdown desglose de impuestos sin persistencia (vista previa en vivo).
func (uc *UseCase) TaxBreakdown(lines []LineInput, surchargeApplies bool) (tax.Breakdown, error) {
	out := make([]entity.DocumentLine, 0, len(lines))
	for _, in := range lines {
		l, err := in.toLine()
		if err != nil {
			return tax.Breakdown{}, err
		}
		out = append(out, l)
	}
	return uc.calc.Calculate(out, surchargeApplies), nil
}
