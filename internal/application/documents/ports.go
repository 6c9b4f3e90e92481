package documents

import (
	"context"
	"time"

	"github.com/jhoicas/erp-documentos/internal/domain/entity"
	"github.com/jhoicas/erp-documentos/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Documents    repository.DocumentRepository
	Sequences    repository.SequenceRepository
	Audit        repository.AuditRepository
	Parties      repository.PartyRepository
	PaymentTerms repository.PaymentTermRepository
	Series       repository.SeriesRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn devuelve nil, Rollback en otro caso.
type TxRunner interface {
	RunDocuments(ctx context.Context, fn func(r Repos) error) error
}

// LineEventKind tipo de cambio en una línea.
type LineEventKind string

const (
	LineCreated LineEventKind = "created"
	LineUpdated LineEventKind = "updated"
	LineRemoved LineEventKind = "removed"
)

// LineEvent notificación de cambio de línea, emitida tras el commit.
type LineEvent struct {
	Kind       LineEventKind
	CompanyID  string
	DocumentID string
	DocType    entity.DocumentType
	PartyID    string
	Line       entity.DocumentLine
	At         time.Time
}

// LineObserver colaborador externo que reacciona a cambios de línea (histórico de precios, analítica).
// Un error del observador se registra pero no deshace la operación.
type LineObserver interface {
	LineChanged(ctx context.Context, ev LineEvent) error
}
