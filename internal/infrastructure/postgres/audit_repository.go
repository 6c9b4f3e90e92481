package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/erp-documentos/internal/domain/entity"
	"github.com/jhoicas/erp-documentos/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

type AuditRepo struct {
	q Querier
}

func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

func (r *AuditRepo) Create(ctx context.Context, a *entity.DocumentAudit) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO document_audit (id, document_id, action, reason, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.DocumentID, a.Action, a.Reason, a.UserID, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert document audit: %w", err)
	}
	return nil
}

func (r *AuditRepo) ListByDocument(ctx context.Context, documentID string) ([]*entity.DocumentAudit, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, document_id, action, reason, user_id, created_at
		FROM document_audit WHERE document_id = $1 ORDER BY created_at`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list document audit: %w", err)
	}
	defer rows.Close()
	var out []*entity.DocumentAudit
	for rows.Next() {
		var a entity.DocumentAudit
		if err := rows.Scan(&a.ID, &a.DocumentID, &a.Action, &a.Reason, &a.UserID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document audit: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
