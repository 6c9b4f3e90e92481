package documents

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/erp-documentos/internal/domain"
	"github.com/jhoicas/erp-documentos/internal/domain/entity"
	"github.com/rs/zerolog"
)

// Sequencer asigna el número definitivo al confirmar. La serialización la da el contador por
// ámbito (fila bloqueada hasta el commit); si aun así choca con la restricción única, la
// confirmación completa se reintenta un número acotado de veces.
type Sequencer struct {
	retries int
	log     zerolog.Logger
}

// NewSequencer construye el secuenciador; retries < 1 se trata como 1.
func NewSequencer(retries int, log zerolog.Logger) *Sequencer {
	if retries < 1 {
		retries = 1
	}
	return &Sequencer{retries: retries, log: log.With().Str("component", "sequencer").Logger()}
}

// Assign fija Year, Sequence y Number del documento. Solo se llama con Number vacío.
func (s *Sequencer) Assign(ctx context.Context, r Repos, doc *entity.Document) error {
	if doc.IsNumbered() {
		return fmt.Errorf("documento %s ya numerado", doc.ID)
	}
	if !doc.Type.UsesSequence() {
		return s.assignReceipt(ctx, r, doc)
	}
	scope := entity.SequenceScope{
		CompanyID: doc.CompanyID,
		Series:    doc.Series,
		Type:      doc.Type,
		Year:      doc.Date.Year(),
	}
	seq, err := r.Sequences.Next(ctx, scope)
	if err != nil {
		return fmt.Errorf("siguiente número %s: %w", scope, err)
	}
	doc.Year = scope.Year
	doc.Sequence = seq
	doc.Number = entity.FormatNumber(doc.Series, scope.Year, seq)
	return nil
}

// assignReceipt numera un recibo a partir de su factura: número de factura + vencimiento.
func (s *Sequencer) assignReceipt(ctx context.Context, r Repos, doc *entity.Document) error {
	if doc.OriginID == "" {
		return domain.NewValidationError("origin_id", "el recibo debe proceder de una factura")
	}
	inv, err := r.Documents.GetForUpdate(ctx, doc.OriginID)
	if err != nil {
		return err
	}
	if inv == nil || !inv.IsNumbered() {
		return domain.NewValidationError("origin_id", "la factura del recibo no está numerada")
	}
	installment, err := s.NextInstallment(ctx, r, inv)
	if err != nil {
		return err
	}
	doc.Installment = installment
	doc.Year = inv.Year
	doc.Number = entity.FormatReceiptNumber(inv.Number, doc.Installment)
	return nil
}

// NextInstallment siguiente vencimiento de la factura. Sale del contador persistente de la
// factura, no del número de recibos vivos: borrar un recibo no libera su número.
func (s *Sequencer) NextInstallment(ctx context.Context, r Repos, inv *entity.Document) (int, error) {
	scope := entity.ReceiptScope(inv)
	n, err := r.Sequences.Next(ctx, scope)
	if err != nil {
		return 0, fmt.Errorf("siguiente vencimiento %s: %w", scope, err)
	}
	return int(n), nil
}

// Retry ejecuta fn hasta que no devuelva un conflicto de numeración o se agoten los intentos.
func (s *Sequencer) Retry(ctx context.Context, scope string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= s.retries; attempt++ {
		err = fn()
		if !errors.Is(err, domain.ErrNumberingConflict) {
			return err
		}
		var final *domain.NumberingConflictError
		if errors.As(err, &final) {
			return err
		}
		s.log.Warn().Err(err).Str("scope", scope).Int("attempt", attempt).Msg("conflicto de numeración, reintentando")
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return &domain.NumberingConflictError{Scope: scope, Attempts: s.retries}
}
