package repository

import (
	"context"

	"github.com/jhoicas/erp-documentos/internal/domain/entity"
)

// DocumentRepository define el puerto de persistencia del agregado documento (cabecera + líneas + orígenes).
type DocumentRepository interface {
	// Create inserta cabecera, líneas y enlaces de origen agrupado.
	Create(ctx context.Context, doc *entity.Document) error
	// Update reescribe la cabecera y reemplaza las líneas.
	Update(ctx context.Context, doc *entity.Document) error
	// Delete borra el documento; las líneas y enlaces caen en cascada.
	Delete(ctx context.Context, id string) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Document, error)
	// GetForUpdate como GetByID pero bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Document, error)
	// GetRefs devuelve las referencias de los IDs indicados, en el mismo orden.
	GetRefs(ctx context.Context, ids []string) ([]entity.DocumentRef, error)
	// ListDerived documentos que tienen a id como origen simple o agrupado.
	ListDerived(ctx context.Context, id string) ([]entity.DocumentRef, error)
	List(ctx context.Context, companyID string, f entity.DocumentFilter) ([]*entity.Document, error)
}

// SequenceRepository contador por ámbito (serie, tipo, año).
type SequenceRepository interface {
	// Next incrementa y devuelve el siguiente valor; bloquea el contador hasta el fin de la transacción.
	Next(ctx context.Context, scope entity.SequenceScope) (int64, error)
}

// AuditRepository registro de operaciones excepcionales.
type AuditRepository interface {
	Create(ctx context.Context, a *entity.DocumentAudit) error
	ListByDocument(ctx context.Context, documentID string) ([]*entity.DocumentAudit, error)
}
