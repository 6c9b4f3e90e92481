package observer

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/erp-documentos/internal/application/documents"
	"github.com/jhoicas/erp-documentos/internal/domain/entity"
	"github.com/jhoicas/erp-documentos/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineEvent(kind documents.LineEventKind, typ entity.DocumentType, product string) documents.LineEvent {
	return documents.LineEvent{
		Kind:       kind,
		CompanyID:  "c1",
		DocumentID: "d1",
		DocType:    typ,
		PartyID:    "prov1",
		Line: entity.DocumentLine{
			ID:          "l1",
			ProductID:   product,
			Quantity:    decimal.NewFromInt(2),
			UnitPrice:   decimal.RequireFromString("12.50"),
			DiscountPct: decimal.NewFromInt(5),
		},
		At: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestPurchasePriceObserver_GuardaLineasDeCompra(t *testing.T) {
	store := memory.NewStore()
	obs := NewPurchasePriceObserver(store.PurchasePrices())
	ctx := context.Background()

	require.NoError(t, obs.LineChanged(ctx, lineEvent(documents.LineCreated, entity.PurchaseOrder, "p-1")))
	require.NoError(t, obs.LineChanged(ctx, lineEvent(documents.LineUpdated, entity.PurchaseInvoice, "p-1")))

	list, err := store.PurchasePrices().ListByProduct(ctx, "c1", "p-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].UnitPrice.Equal(decimal.RequireFromString("12.50")))
	assert.Equal(t, "prov1", list[0].PartyID)
}

func TestPurchasePriceObserver_IgnoraOtrosEventos(t *testing.T) {
	store := memory.NewStore()
	obs := NewPurchasePriceObserver(store.PurchasePrices())
	ctx := context.Background()

	require.NoError(t, obs.LineChanged(ctx, lineEvent(documents.LineCreated, entity.SalesInvoice, "p-1")))
	require.NoError(t, obs.LineChanged(ctx, lineEvent(documents.LineRemoved, entity.PurchaseOrder, "p-1")))
	require.NoError(t, obs.LineChanged(ctx, lineEvent(documents.LineCreated, entity.PurchaseOrder, "")))
	require.NoError(t, obs.LineChanged(ctx, lineEvent(documents.LineCreated, entity.PurchaseReceipt, "p-1")))

	list, err := store.PurchasePrices().ListByProduct(ctx, "c1", "p-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}
