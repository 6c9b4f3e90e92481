package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/erp-documentos/internal/domain"
	"github.com/jhoicas/erp-documentos/internal/domain/entity"
	"github.com/jhoicas/erp-documentos/internal/domain/repository"
)

var (
	_ repository.PartyRepository       = (*PartyRepo)(nil)
	_ repository.PaymentTermRepository = (*PaymentTermRepo)(nil)
	_ repository.SeriesRepository      = (*SeriesRepo)(nil)
)

// PartyRepo clientes y proveedores.
type PartyRepo struct {
	q Querier
}

func NewPartyRepository(q Querier) *PartyRepo {
	return &PartyRepo{q: q}
}

func (r *PartyRepo) Create(ctx context.Context, p *entity.Party) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO parties (id, company_id, name, tax_id, surcharge_applies, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.CompanyID, p.Name, p.TaxID, p.SurchargeApplies, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return mapWriteError("insert party", err)
	}
	return nil
}

func (r *PartyRepo) GetByID(ctx context.Context, id string) (*entity.Party, error) {
	var p entity.Party
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, name, tax_id, surcharge_applies, created_at, updated_at
		FROM parties WHERE id = $1`, id).Scan(
		&p.ID, &p.CompanyID, &p.Name, &p.TaxID, &p.SurchargeApplies, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get party: %w", err)
	}
	return &p, nil
}

// PaymentTermRepo formas de pago; los tramos viven en su propia tabla.
type PaymentTermRepo struct {
	q Querier
}

func NewPaymentTermRepository(q Querier) *PaymentTermRepo {
	return &PaymentTermRepo{q: q}
}

func (r *PaymentTermRepo) Create(ctx context.Context, pt *entity.PaymentTerm) error {
	if !pt.Valid() {
		return domain.NewValidationError("tramos", "los porcentajes deben sumar 100")
	}
	if _, err := r.q.Exec(ctx, `INSERT INTO payment_terms (id, company_id, name) VALUES ($1, $2, $3)`,
		pt.ID, pt.CompanyID, pt.Name); err != nil {
		return mapWriteError("insert payment term", err)
	}
	b := &pgx.Batch{}
	for i, t := range pt.Tramos {
		b.Queue(`INSERT INTO payment_term_tramos (payment_term_id, position, days, percentage) VALUES ($1, $2, $3, $4)`,
			pt.ID, i, t.Days, t.Percentage)
	}
	if err := r.q.SendBatch(ctx, b).Close(); err != nil {
		return fmt.Errorf("insert payment term tramos: %w", err)
	}
	return nil
}

func (r *PaymentTermRepo) GetByID(ctx context.Context, id string) (*entity.PaymentTerm, error) {
	var pt entity.PaymentTerm
	err := r.q.QueryRow(ctx, `SELECT id, company_id, name FROM payment_terms WHERE id = $1`, id).
		Scan(&pt.ID, &pt.CompanyID, &pt.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment term: %w", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT days, percentage FROM payment_term_tramos
		WHERE payment_term_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("list payment term tramos: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t entity.Tramo
		if err := rows.Scan(&t.Days, &t.Percentage); err != nil {
			return nil, fmt.Errorf("scan tramo: %w", err)
		}
		pt.Tramos = append(pt.Tramos, t)
	}
	return &pt, rows.Err()
}

// SeriesRepo series de numeración por empresa.
type SeriesRepo struct {
	q Querier
}

func NewSeriesRepository(q Querier) *SeriesRepo {
	return &SeriesRepo{q: q}
}

func (r *SeriesRepo) Create(ctx context.Context, s *entity.NumberingSeries) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO numbering_series (company_id, code, name, active, default_tax_rate, default_withholding_rate)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (company_id, code) DO UPDATE
		SET name = EXCLUDED.name, active = EXCLUDED.active,
		    default_tax_rate = EXCLUDED.default_tax_rate,
		    default_withholding_rate = EXCLUDED.default_withholding_rate`,
		s.CompanyID, s.Code, s.Name, s.Active, s.DefaultTaxRate, s.DefaultWithholdingRate)
	if err != nil {
		return fmt.Errorf("upsert series: %w", err)
	}
	return nil
}

func (r *SeriesRepo) GetByCode(ctx context.Context, companyID, code string) (*entity.NumberingSeries, error) {
	var s entity.NumberingSeries
	err := r.q.QueryRow(ctx, `
		SELECT company_id, code, name, active, default_tax_rate, default_withholding_rate
		FROM numbering_series WHERE company_id = $1 AND code = $2`, companyID, code).Scan(
		&s.CompanyID, &s.Code, &s.Name, &s.Active, &s.DefaultTaxRate, &s.DefaultWithholdingRate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get series: %w", err)
	}
	return &s, nil
}
