package postgres

import (
	"context"

	"github.com/jhoicas/erp-documentos/internal/domain/entity"
	"github.com/jhoicas/erp-documentos/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo contador por (empresa, serie, tipo, año).
type SequenceRepo struct {
	q Querier
}

func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa el contador. El upsert deja la fila bloqueada hasta el commit, así que dos
// confirmaciones del mismo ámbito se serializan y nunca obtienen el mismo valor.
func (r *SequenceRepo) Next(ctx context.Context, scope entity.SequenceScope) (int64, error) {
	query := `
		INSERT INTO document_sequences (company_id, series, type, year, last_value)
		VALUES ($1, $2, $3, $4, 1)
		ON CONFLICT (company_id, series, type, year)
		DO UPDATE SET last_value = document_sequences.last_value + 1
		RETURNING last_value`
	var next int64
	if err := r.q.QueryRow(ctx, query, scope.CompanyID, scope.Series, scope.Type, scope.Year).Scan(&next); err != nil {
		return 0, mapWriteError("next sequence "+scope.String(), err)
	}
	return next, nil
}
