package observer

import (
	"context"

	"github.com/google/uuid"
	"github.com/jhoicas/erp-documentos/internal/application/documents"
	"github.com/jhoicas/erp-documentos/internal/domain/entity"
	"github.com/jhoicas/erp-documentos/internal/domain/repository"
)

var _ documents.LineObserver = (*PurchasePriceObserver)(nil)

// PurchasePriceObserver guarda en el histórico el precio de cada línea de compra con producto.
type PurchasePriceObserver struct {
	prices repository.PurchasePriceRepository
}

func NewPurchasePriceObserver(prices repository.PurchasePriceRepository) *PurchasePriceObserver {
	return &PurchasePriceObserver{prices: prices}
}

func (o *PurchasePriceObserver) LineChanged(ctx context.Context, ev documents.LineEvent) error {
	if ev.Kind == documents.LineRemoved || ev.DocType.Side() != entity.SidePurchase || ev.Line.ProductID == "" {
		return nil
	}
	if ev.DocType.IsReceipt() {
		return nil
	}
	return o.prices.Create(ctx, &entity.PurchasePrice{
		ID:          uuid.New().String(),
		CompanyID:   ev.CompanyID,
		PartyID:     ev.PartyID,
		ProductID:   ev.Line.ProductID,
		DocumentID:  ev.DocumentID,
		UnitPrice:   ev.Line.UnitPrice,
		DiscountPct: ev.Line.DiscountPct,
		RecordedAt:  ev.At,
	})
}
