package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/erp-documentos/internal/domain/entity"
	"github.com/jhoicas/erp-documentos/internal/domain/repository"
)

var _ repository.PurchasePriceRepository = (*PurchasePriceRepo)(nil)

// PurchasePriceRepo histórico de precios de compra (escrito por el observador de líneas).
type PurchasePriceRepo struct {
	q Querier
}

func NewPurchasePriceRepository(q Querier) *PurchasePriceRepo {
	return &PurchasePriceRepo{q: q}
}

func (r *PurchasePriceRepo) Create(ctx context.Context, p *entity.PurchasePrice) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchase_prices (id, company_id, party_id, product_id, document_id, unit_price, discount_pct, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.CompanyID, p.PartyID, p.ProductID, p.DocumentID, p.UnitPrice, p.DiscountPct, p.RecordedAt)
	if err != nil {
		return fmt.Errorf("insert purchase price: %w", err)
	}
	return nil
}

func (r *PurchasePriceRepo) ListByProduct(ctx context.Context, companyID, productID string) ([]*entity.PurchasePrice, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, company_id, party_id, product_id, document_id, unit_price, discount_pct, recorded_at
		FROM purchase_prices WHERE company_id = $1 AND product_id = $2
		ORDER BY recorded_at DESC`, companyID, productID)
	if err != nil {
		return nil, fmt.Errorf("list purchase prices: %w", err)
	}
	defer rows.Close()
	var out []*entity.PurchasePrice
	for rows.Next() {
		var p entity.PurchasePrice
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.PartyID, &p.ProductID, &p.DocumentID,
			&p.UnitPrice, &p.DiscountPct, &p.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan purchase price: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
