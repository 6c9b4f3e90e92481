package documents

import (
	"context"
	"fmt"

	"github.com/jhoicas/erp-documentos/internal/domain"
	"github.com/jhoicas/erp-documentos/internal/domain/document"
	"github.com/jhoicas/erp-documentos/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// GenerateReceipts crea un recibo confirmado por cada tramo de la forma de pago de la factura.
// Sin forma de pago (o sin tramos) se genera un único recibo al contado. El último recibo
// absorbe el redondeo para que la suma coincida con el total a pagar.
func (uc *UseCase) GenerateReceipts(ctx context.Context, companyID, invoiceID string) ([]*entity.Document, error) {
	var receipts []*entity.Document
	err := uc.tx.RunDocuments(ctx, func(r Repos) error {
		snap, err := uc.load(ctx, r, companyID, invoiceID, true)
		if err != nil {
			return err
		}
		inv := snap.Doc
		if !inv.Type.IsInvoice() {
			return domain.NewValidationError("type", "solo las facturas generan recibos")
		}
		if !inv.IsNumbered() || inv.Status != entity.StatusConfirmed {
			return domain.NewValidationError("status", "la factura debe estar confirmada")
		}
		for _, ref := range snap.Derived {
			if ref.Type.IsReceipt() && ref.Status != entity.StatusCancelled {
				return domain.NewValidationError("receipts", "la factura ya tiene recibos")
			}
		}

		tramos := []entity.Tramo{{Days: 0, Percentage: hundred}}
		if inv.PaymentTermID != "" {
			term, err := r.PaymentTerms.GetByID(ctx, inv.PaymentTermID)
			if err != nil {
				return err
			}
			if term != nil && len(term.Tramos) > 0 {
				tramos = term.Tramos
			}
		}

		total := inv.PayableTotal
		assigned := decimal.Zero
		now := uc.now()
		receiptType := entity.NewDocumentType(inv.Type.Side(), entity.KindReceipt)
		for i, tr := range tramos {
			amount := total.Mul(tr.Percentage).Div(hundred).Round(2)
			if i == len(tramos)-1 {
				amount = total.Sub(assigned)
			}
			assigned = assigned.Add(amount)

			installment, err := uc.sequencer.NextInstallment(ctx, r, inv)
			if err != nil {
				return err
			}

			rec := &entity.Document{
				ID:            uc.newID(),
				CompanyID:     inv.CompanyID,
				Type:          receiptType,
				Status:        entity.StatusConfirmed,
				Series:        inv.Series,
				Year:          inv.Year,
				Installment:   installment,
				Number:        entity.FormatReceiptNumber(inv.Number, installment),
				Date:          inv.Date,
				DueDate:       inv.Date.AddDate(0, 0, tr.Days),
				PartyID:       inv.PartyID,
				PaymentTermID: inv.PaymentTermID,
				OriginID:      inv.ID,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			rec.Lines = []entity.DocumentLine{{
				ID:          uc.newID(),
				DocumentID:  rec.ID,
				Description: fmt.Sprintf("Vencimiento %d/%d de %s", i+1, len(tramos), inv.Number),
				Quantity:    decimal.NewFromInt(1),
				UnitPrice:   amount,
			}}
			document.Recalculate(rec, uc.calc)
			if err := r.Documents.Create(ctx, rec); err != nil {
				return err
			}
			receipts = append(receipts, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("document_id", invoiceID).Int("receipts", len(receipts)).Msg("recibos generados")
	return receipts, nil
}

// MarkReceiptPaid marca un recibo como pagado y sincroniza el estado de su factura.
func (uc *UseCase) MarkReceiptPaid(ctx context.Context, companyID, receiptID string) (*entity.Document, error) {
	var rec *entity.Document
	err := uc.tx.RunDocuments(ctx, func(r Repos) error {
		snap, err := uc.load(ctx, r, companyID, receiptID, true)
		if err != nil {
			return err
		}
		out, err := document.Transition(snap, document.EventPay)
		if err != nil {
			return err
		}
		rec = snap.Doc
		rec.Status = out.To
		rec.UpdatedAt = uc.now()
		if err := r.Documents.Update(ctx, rec); err != nil {
			return err
		}
		if out.Has(document.EffectSyncInvoice) && rec.OriginID != "" {
			return uc.syncInvoice(ctx, r, rec.OriginID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("document_id", rec.ID).Str("number", rec.Number).Msg("recibo pagado")
	return rec, nil
}

// SyncInvoiceStatus recalcula el estado pagado de una factura a partir de sus recibos.
func (uc *UseCase) SyncInvoiceStatus(ctx context.Context, companyID, invoiceID string) error {
	return uc.tx.RunDocuments(ctx, func(r Repos) error {
		if _, err := uc.load(ctx, r, companyID, invoiceID, true); err != nil {
			return err
		}
		return uc.syncInvoice(ctx, r, invoiceID)
	})
}

// syncInvoice la factura pasa a pagada si todos sus recibos vigentes están pagados y vuelve
// a confirmada en caso contrario.
func (uc *UseCase) syncInvoice(ctx context.Context, r Repos, invoiceID string) error {
	inv, err := r.Documents.GetForUpdate(ctx, invoiceID)
	if err != nil {
		return err
	}
	if inv == nil || !inv.Type.IsInvoice() {
		return nil
	}
	if inv.Status != entity.StatusConfirmed && inv.Status != entity.StatusPaid {
		return nil
	}
	derived, err := r.Documents.ListDerived(ctx, inv.ID)
	if err != nil {
		return err
	}
	total, paid := 0, 0
	for _, ref := range derived {
		if !ref.Type.IsReceipt() || ref.Status == entity.StatusCancelled {
			continue
		}
		total++
		if ref.Status == entity.StatusPaid {
			paid++
		}
	}
	ev := document.EventReopen
	if total > 0 && paid == total {
		ev = document.EventSettle
	}
	out, err := document.Transition(document.Snapshot{Doc: inv, Derived: derived}, ev)
	if err != nil {
		return err
	}
	if !out.Changed() {
		return nil
	}
	inv.Status = out.To
	inv.UpdatedAt = uc.now()
	if err := r.Documents.Update(ctx, inv); err != nil {
		return err
	}
	uc.log.Info().Str("document_id", inv.ID).Str("status", string(inv.Status)).Msg("estado de factura sincronizado")
	return nil
}
