package repository

import (
	"context"

	"github.com/jhoicas/erp-documentos/internal/domain/entity"
)

// PartyRepository clientes y proveedores (solo lectura para el núcleo; Create para la carga inicial).
type PartyRepository interface {
	Create(ctx context.Context, p *entity.Party) error
	GetByID(ctx context.Context, id string) (*entity.Party, error)
}

// PaymentTermRepository formas de pago con sus tramos.
type PaymentTermRepository interface {
	Create(ctx context.Context, pt *entity.PaymentTerm) error
	GetByID(ctx context.Context, id string) (*entity.PaymentTerm, error)
}

// SeriesRepository series de numeración.
type SeriesRepository interface {
	Create(ctx context.Context, s *entity.NumberingSeries) error
	GetByCode(ctx context.Context, companyID, code string) (*entity.NumberingSeries, error)
}

// PurchasePriceRepository histórico de precios de compra.
type PurchasePriceRepository interface {
	Create(ctx context.Context, p *entity.PurchasePrice) error
	ListByProduct(ctx context.Context, companyID, productID string) ([]*entity.PurchasePrice, error)
}
