package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/erp-documentos/internal/domain"
	"github.com/jhoicas/erp-documentos/internal/domain/document"
	"github.com/jhoicas/erp-documentos/internal/domain/entity"
	"github.com/jhoicas/erp-documentos/internal/domain/tax"
	"github.com/rs/zerolog"
)

// Settings configuración explícita del núcleo (nunca se lee de estado global).
type Settings struct {
	DefaultSeries    string
	SurchargeTable   tax.SurchargeTable
	NumberingRetries int
	AutoReceipts     bool
}

// NewSettings construye la configuración; surchargeRates vacío usa la tabla de recargo por defecto.
func NewSettings(defaultSeries, surchargeRates string, retries int, autoReceipts bool) (Settings, error) {
	table := tax.DefaultSurchargeTable()
	if strings.TrimSpace(surchargeRates) != "" {
		var err error
		if table, err = tax.ParseSurchargeTable(surchargeRates); err != nil {
			return Settings{}, fmt.Errorf("tabla de recargo: %w", err)
		}
	}
	return Settings{
		DefaultSeries:    defaultSeries,
		SurchargeTable:   table,
		NumberingRetries: retries,
		AutoReceipts:     autoReceipts,
	}, nil
}

// UseCase operaciones sobre documentos comerciales. Cada operación es una única transacción:
// o se aplica completa o el estado anterior queda intacto.
type UseCase struct {
	tx        TxRunner
	calc      tax.Calculator
	settings  Settings
	sequencer *Sequencer
	observers []LineObserver
	log       zerolog.Logger
	now       func() time.Time
	newID     func() string
}

// NewUseCase construye el caso de uso.
func NewUseCase(tx TxRunner, settings Settings, log zerolog.Logger, observers ...LineObserver) *UseCase {
	log = log.With().Str("component", "documents").Logger()
	return &UseCase{
		tx:        tx,
		calc:      tax.NewCalculator(settings.SurchargeTable),
		settings:  settings,
		sequencer: NewSequencer(settings.NumberingRetries, log),
		observers: observers,
		log:       log,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// DraftInput datos para crear un borrador.
type DraftInput struct {
	CompanyID     string
	Type          entity.DocumentType
	PartyID       string
	PaymentTermID string
	Series        string // vacío = serie por defecto
	Date          time.Time
}

// Inspection documento con sus vecinos en la cadena y la política de bloqueo evaluada.
type Inspection struct {
	Document   *entity.Document
	Origins    []entity.DocumentRef
	Derived    []entity.DocumentRef
	CanEdit    bool
	CanDelete  bool
	LockReason string
	Breakdown  tax.Breakdown
}

// CreateDraft crea un borrador sin número con los valores por defecto de la parte y la serie.
func (uc *UseCase) CreateDraft(ctx context.Context, in DraftInput) (*entity.Document, error) {
	if !in.Type.Valid() {
		return nil, domain.NewValidationError("type", fmt.Sprintf("tipo desconocido %q", in.Type))
	}
	if in.CompanyID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.PartyID == "" {
		return nil, domain.NewValidationError("party_id", "requerido")
	}
	seriesCode := strings.TrimSpace(in.Series)
	if seriesCode == "" {
		seriesCode = uc.settings.DefaultSeries
	}
	date := in.Date
	if date.IsZero() {
		date = uc.now()
	}

	var doc *entity.Document
	err := uc.tx.RunDocuments(ctx, func(r Repos) error {
		party, err := r.Parties.GetByID(ctx, in.PartyID)
		if err != nil {
			return err
		}
		if party == nil {
			return domain.NewValidationError("party_id", "no existe")
		}
		if party.CompanyID != in.CompanyID {
			return domain.ErrForbidden
		}
		series, err := r.Series.GetByCode(ctx, in.CompanyID, seriesCode)
		if err != nil {
			return err
		}
		if series == nil || !series.Active {
			return domain.NewValidationError("series", fmt.Sprintf("serie %q inexistente o inactiva", seriesCode))
		}
		dueDate := date
		if in.PaymentTermID != "" {
			term, err := r.PaymentTerms.GetByID(ctx, in.PaymentTermID)
			if err != nil {
				return err
			}
			if term == nil || term.CompanyID != in.CompanyID {
				return domain.NewValidationError("payment_term_id", "no existe")
			}
			dueDate = term.DueDate(date)
		}

		now := uc.now()
		doc = &entity.Document{
			ID:               uc.newID(),
			CompanyID:        in.CompanyID,
			Type:             in.Type,
			Status:           entity.StatusDraft,
			Series:           series.Code,
			Year:             date.Year(),
			Date:             date,
			DueDate:          dueDate,
			PartyID:          party.ID,
			PaymentTermID:    in.PaymentTermID,
			SurchargeApplies: party.SurchargeApplies,
			WithholdingRate:  series.DefaultWithholdingRate,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		document.Recalculate(doc, uc.calc)
		return r.Documents.Create(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("document_id", doc.ID).Str("type", string(doc.Type)).Msg("borrador creado")
	return doc, nil
}

// Get devuelve el documento con su cadena y la evaluación de bloqueo.
func (uc *UseCase) Get(ctx context.Context, companyID, id string) (*Inspection, error) {
	var out *Inspection
	err := uc.tx.RunDocuments(ctx, func(r Repos) error {
		snap, err := uc.load(ctx, r, companyID, id, false)
		if err != nil {
			return err
		}
		out = &Inspection{
			Document:   snap.Doc,
			Origins:    snap.Origins,
			Derived:    snap.Derived,
			CanEdit:    document.CanEdit(snap),
			CanDelete:  document.CanDelete(snap),
			LockReason: document.LockReason(snap),
			Breakdown:  uc.calc.Calculate(snap.Doc.Lines, snap.Doc.SurchargeApplies),
		}
		return nil
	})
	return out, err
}

// CanEdit indica si el documento admite cambios.
func (uc *UseCase) CanEdit(ctx context.Context, companyID, id string) (bool, error) {
	in, err := uc.Get(ctx, companyID, id)
	if err != nil {
		return false, err
	}
	return in.CanEdit, nil
}

// CanDelete indica si el documento se puede borrar.
func (uc *UseCase) CanDelete(ctx context.Context, companyID, id string) (bool, error) {
	in, err := uc.Get(ctx, companyID, id)
	if err != nil {
		return false, err
	}
	return in.CanDelete, nil
}

// LockReason explicación del bloqueo (vacía si el documento es editable).
func (uc *UseCase) LockReason(ctx context.Context, companyID, id string) (string, error) {
	in, err := uc.Get(ctx, companyID, id)
	if err != nil {
		return "", err
	}
	return in.LockReason, nil
}

// List lista documentos de la empresa.
func (uc *UseCase) List(ctx context.Context, companyID string, f entity.DocumentFilter) ([]*entity.Document, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	var list []*entity.Document
	err := uc.tx.RunDocuments(ctx, func(r Repos) error {
		var err error
		list, err = r.Documents.List(ctx, companyID, f)
		return err
	})
	return list, err
}

// Confirm numera el documento y lo pasa a confirmado. Los conflictos de numeración se
// reintentan dentro del secuenciador antes de devolverse al llamador.
func (uc *UseCase) Confirm(ctx context.Context, companyID, id string) (*entity.Document, error) {
	var doc *entity.Document
	var outcome document.Outcome
	err := uc.sequencer.Retry(ctx, id, func() error {
		return uc.tx.RunDocuments(ctx, func(r Repos) error {
			snap, err := uc.load(ctx, r, companyID, id, true)
			if err != nil {
				return err
			}
			outcome, err = document.Transition(snap, document.EventConfirm)
			if err != nil {
				return err
			}
			doc = snap.Doc
			if outcome.Has(document.EffectRecalculate) {
				document.Recalculate(doc, uc.calc)
			}
			if doc.PaymentTermID != "" {
				term, err := r.PaymentTerms.GetByID(ctx, doc.PaymentTermID)
				if err != nil {
					return err
				}
				doc.DueDate = term.DueDate(doc.Date)
			}
			if outcome.Has(document.EffectAssignNumber) {
				if err := uc.sequencer.Assign(ctx, r, doc); err != nil {
					return err
				}
			}
			doc.Status = outcome.To
			doc.UpdatedAt = uc.now()
			return r.Documents.Update(ctx, doc)
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("document_id", doc.ID).Str("type", string(doc.Type)).Str("number", doc.Number).Msg("documento confirmado")

	if outcome.Has(document.EffectGenerateReceipts) && uc.settings.AutoReceipts {
		if _, err := uc.GenerateReceipts(ctx, companyID, doc.ID); err != nil {
			uc.log.Error().Err(err).Str("document_id", doc.ID).Msg("generación de recibos tras confirmar")
		}
	}
	return doc, nil
}

// Cancel cancela un documento (borrador o confirmado) conservando número y líneas.
// Las facturas numeradas solo se anulan por Void.
func (uc *UseCase) Cancel(ctx context.Context, companyID, id string) (*entity.Document, error) {
	var doc *entity.Document
	err := uc.tx.RunDocuments(ctx, func(r Repos) error {
		snap, err := uc.load(ctx, r, companyID, id, true)
		if err != nil {
			return err
		}
		out, err := document.Transition(snap, document.EventCancel)
		if err != nil {
			return err
		}
		doc = snap.Doc
		doc.Status = out.To
		doc.UpdatedAt = uc.now()
		return r.Documents.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("document_id", doc.ID).Str("number", doc.Number).Msg("documento cancelado")
	return doc, nil
}

// Void anula una factura numerada por la vía excepcional auditada. Exige motivo, rechaza
// facturas con recibos cobrados y cancela los recibos pendientes.
func (uc *UseCase) Void(ctx context.Context, companyID, id, userID, reason string) (*entity.Document, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.NewValidationError("reason", "la anulación requiere motivo")
	}
	var doc *entity.Document
	err := uc.tx.RunDocuments(ctx, func(r Repos) error {
		snap, err := uc.load(ctx, r, companyID, id, true)
		if err != nil {
			return err
		}
		out, err := document.Transition(snap, document.EventVoid)
		if err != nil {
			return err
		}
		for _, ref := range snap.Derived {
			if ref.Type.IsReceipt() && ref.Status == entity.StatusPaid {
				return domain.NewValidationError("receipts", "la factura tiene recibos cobrados ("+ref.Number+")")
			}
		}
		now := uc.now()
		for _, ref := range snap.Derived {
			if !ref.Type.IsReceipt() || ref.Status != entity.StatusConfirmed {
				continue
			}
			rec, err := r.Documents.GetForUpdate(ctx, ref.ID)
			if err != nil {
				return err
			}
			rec.Status = entity.StatusCancelled
			rec.UpdatedAt = now
			if err := r.Documents.Update(ctx, rec); err != nil {
				return err
			}
		}
		doc = snap.Doc
		doc.Status = out.To
		doc.UpdatedAt = now
		if err := r.Documents.Update(ctx, doc); err != nil {
			return err
		}
		return r.Audit.Create(ctx, &entity.DocumentAudit{
			ID:         uc.newID(),
			DocumentID: doc.ID,
			Action:     entity.AuditActionVoid,
			Reason:     reason,
			UserID:     userID,
			CreatedAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Warn().Str("document_id", doc.ID).Str("number", doc.Number).Str("user_id", userID).Str("reason", reason).Msg("factura anulada")
	return doc, nil
}

// Delete borra el documento si la política de bloqueo lo permite.
func (uc *UseCase) Delete(ctx context.Context, companyID, id string) error {
	err := uc.tx.RunDocuments(ctx, func(r Repos) error {
		snap, err := uc.load(ctx, r, companyID, id, true)
		if err != nil {
			return err
		}
		if lock := document.DeleteLock(snap); lock != nil {
			return lock
		}
		return r.Documents.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("document_id", id).Msg("documento borrado")
	return nil
}

// ConvertInput orígenes y tipo destino de una conversión.
type ConvertInput struct {
	CompanyID  string
	SourceIDs  []string
	TargetType entity.DocumentType
	Date       time.Time
}

// ConvertTo crea un borrador de TargetType a partir de uno (origen simple) o varios
// documentos (origen agrupado). Los orígenes quedan bloqueados por tener un derivado.
func (uc *UseCase) ConvertTo(ctx context.Context, in ConvertInput) (*entity.Document, error) {
	if len(in.SourceIDs) == 0 {
		return nil, domain.NewValidationError("source_ids", "se necesita al menos un documento origen")
	}
	date := in.Date
	if date.IsZero() {
		date = uc.now()
	}
	var doc *entity.Document
	err := uc.tx.RunDocuments(ctx, func(r Repos) error {
		sources := make([]*entity.Document, 0, len(in.SourceIDs))
		for _, id := range in.SourceIDs {
			snap, err := uc.load(ctx, r, in.CompanyID, id, true)
			if err != nil {
				return err
			}
			sources = append(sources, snap.Doc)
		}
		var err error
		doc, err = document.Convert(document.ConvertInput{
			Sources: sources,
			Target:  in.TargetType,
			Date:    date,
			NewID:   uc.newID,
		})
		if err != nil {
			return err
		}
		if doc.PaymentTermID != "" {
			term, err := r.PaymentTerms.GetByID(ctx, doc.PaymentTermID)
			if err != nil {
				return err
			}
			doc.DueDate = term.DueDate(doc.Date)
		}
		now := uc.now()
		doc.CreatedAt, doc.UpdatedAt = now, now
		document.Recalculate(doc, uc.calc)
		return r.Documents.Create(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("document_id", doc.ID).
		Str("type", string(doc.Type)).
		Strs("origins", in.SourceIDs).
		Msg("documento convertido")
	return doc, nil
}

// load carga el documento con sus vecinos en la cadena. Si los totales guardados divergen
// del recálculo se registra el error y se trabaja con los totales corregidos.
func (uc *UseCase) load(ctx context.Context, r Repos, companyID, id string, forUpdate bool) (document.Snapshot, error) {
	var doc *entity.Document
	var err error
	if forUpdate {
		doc, err = r.Documents.GetForUpdate(ctx, id)
	} else {
		doc, err = r.Documents.GetByID(ctx, id)
	}
	if err != nil {
		return document.Snapshot{}, err
	}
	if doc == nil {
		return document.Snapshot{}, domain.ErrNotFound
	}
	if doc.CompanyID != companyID {
		return document.Snapshot{}, domain.ErrForbidden
	}
	if err := document.Verify(doc, uc.calc); err != nil {
		var ce *domain.ConsistencyError
		if errors.As(err, &ce) {
			uc.log.Error().Err(err).Str("document_id", doc.ID).Msg("totales divergentes, se recalculan")
		}
		document.Recalculate(doc, uc.calc)
	}
	origins, err := r.Documents.GetRefs(ctx, doc.Origins())
	if err != nil {
		return document.Snapshot{}, err
	}
	derived, err := r.Documents.ListDerived(ctx, doc.ID)
	if err != nil {
		return document.Snapshot{}, err
	}
	return document.Snapshot{Doc: doc, Origins: origins, Derived: derived}, nil
}
