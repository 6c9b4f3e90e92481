package document

import (
	"fmt"

	"github.com/jhoicas/erp-documentos/internal/domain"
	"github.com/jhoicas/erp-documentos/internal/domain/entity"
)

// Event suceso que solicita un cambio de estado.
type Event string

const (
	EventConfirm Event = "confirm"
	EventCancel  Event = "cancel"
	EventPay     Event = "pay"    // cobro/pago de un recibo
	EventSettle  Event = "settle" // todos los recibos de la factura pagados
	EventReopen  Event = "reopen" // algún recibo de la factura vuelve a estar pendiente
	EventVoid    Event = "void"   // anulación auditada de una factura numerada
)

// Effect trabajo que el llamador debe ejecutar tras aplicar la transición.
type Effect string

const (
	EffectRecalculate      Effect = "recalculate"
	EffectAssignNumber     Effect = "assign_number"
	EffectGenerateReceipts Effect = "generate_receipts"
	EffectSyncInvoice      Effect = "sync_invoice"
	EffectAudit            Effect = "audit"
)

// Outcome resultado de una transición. From == To indica que no hay cambio (sin efectos).
type Outcome struct {
	From    entity.DocumentStatus
	To      entity.DocumentStatus
	Effects []Effect
}

// Has indica si la transición pide el efecto e.
func (o Outcome) Has(e Effect) bool {
	for _, x := range o.Effects {
		if x == e {
			return true
		}
	}
	return false
}

// Changed indica si hay cambio de estado.
func (o Outcome) Changed() bool { return o.From != o.To }

// Transition calcula el nuevo estado y los efectos de aplicar ev sobre el snapshot.
// Función pura: no modifica s.Doc.
func Transition(s Snapshot, ev Event) (Outcome, error) {
	doc := s.Doc
	from := doc.Status
	switch ev {
	case EventConfirm:
		if from != entity.StatusDraft {
			return Outcome{}, illegal(from, ev)
		}
		if doc.PartyID == "" {
			return Outcome{}, domain.NewValidationError("party_id", "requerido para confirmar")
		}
		if doc.Date.IsZero() {
			return Outcome{}, domain.NewValidationError("date", "requerida para confirmar")
		}
		if !HasBillableLine(doc) {
			return Outcome{}, domain.NewValidationError("lines", "se necesita al menos una línea con subtotal positivo")
		}
		out := Outcome{From: from, To: entity.StatusConfirmed, Effects: []Effect{EffectRecalculate}}
		if !doc.IsNumbered() {
			out.Effects = append(out.Effects, EffectAssignNumber)
		}
		if doc.Type.IsInvoice() {
			out.Effects = append(out.Effects, EffectGenerateReceipts)
		}
		return out, nil

	case EventCancel:
		if from != entity.StatusDraft && from != entity.StatusConfirmed {
			return Outcome{}, illegal(from, ev)
		}
		if lock := EditLock(s); lock != nil {
			return Outcome{}, lock
		}
		return Outcome{From: from, To: entity.StatusCancelled}, nil

	case EventPay:
		if !doc.Type.IsReceipt() {
			return Outcome{}, domain.NewValidationError("type", "solo los recibos se marcan como pagados")
		}
		if from != entity.StatusConfirmed {
			return Outcome{}, illegal(from, ev)
		}
		return Outcome{From: from, To: entity.StatusPaid, Effects: []Effect{EffectSyncInvoice}}, nil

	case EventSettle, EventReopen:
		if !doc.Type.IsInvoice() {
			return Outcome{}, domain.NewValidationError("type", "la sincronización de cobros solo aplica a facturas")
		}
		if from != entity.StatusConfirmed && from != entity.StatusPaid {
			return Outcome{}, illegal(from, ev)
		}
		to := entity.StatusPaid
		if ev == EventReopen {
			to = entity.StatusConfirmed
		}
		return Outcome{From: from, To: to}, nil

	case EventVoid:
		if !doc.Type.IsInvoice() || !doc.IsNumbered() {
			return Outcome{}, domain.NewValidationError("type", "solo se anulan facturas numeradas; use cancelar")
		}
		if from != entity.StatusConfirmed {
			return Outcome{}, illegal(from, ev)
		}
		return Outcome{From: from, To: entity.StatusCancelled, Effects: []Effect{EffectAudit}}, nil
	}
	return Outcome{}, domain.NewValidationError("event", fmt.Sprintf("evento desconocido %q", ev))
}

func illegal(from entity.DocumentStatus, ev Event) error {
	return domain.NewValidationError("status", fmt.Sprintf("no se puede aplicar %s desde %s", ev, from))
}
