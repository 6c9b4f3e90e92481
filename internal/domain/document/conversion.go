package document

import (
	"fmt"
	"time"

	"github.com/jhoicas/erp-documentos/internal/domain"
	"github.com/jhoicas/erp-documentos/internal/domain/entity"
)

// nextKind grafo de conversiones legales (mismo lado comercial).
var nextKind = map[entity.DocumentKind]entity.DocumentKind{
	entity.KindQuote:        entity.KindOrder,
	entity.KindOrder:        entity.KindDeliveryNote,
	entity.KindDeliveryNote: entity.KindInvoice,
	entity.KindInvoice:      entity.KindReceipt,
}

// CanConvert indica si existe la arista from → to.
func CanConvert(from, to entity.DocumentType) bool {
	if !from.Valid() || !to.Valid() || from.Side() != to.Side() {
		return false
	}
	next, ok := nextKind[from.Kind()]
	return ok && next == to.Kind()
}

// Targets tipos a los que se puede convertir t.
func Targets(t entity.DocumentType) []entity.DocumentType {
	next, ok := nextKind[t.Kind()]
	if !ok {
		return nil
	}
	return []entity.DocumentType{entity.NewDocumentType(t.Side(), next)}
}

// ConvertInput datos para crear el documento derivado. NewID genera IDs para documento y líneas.
type ConvertInput struct {
	Sources []*entity.Document
	Target  entity.DocumentType
	Date    time.Time
	NewID   func() string
}

// Convert crea un borrador de tipo Target copiando parte, forma de pago y líneas (copias nuevas)
// de los orígenes y enlazando el origen simple o agrupado. No modifica los orígenes.
func Convert(in ConvertInput) (*entity.Document, error) {
	if len(in.Sources) == 0 {
		return nil, domain.NewValidationError("sources", "se necesita al menos un documento origen")
	}
	first := in.Sources[0]
	if !CanConvert(first.Type, in.Target) {
		return nil, domain.NewValidationError("target_type",
			fmt.Sprintf("conversión no permitida: %s → %s", first.Type, in.Target))
	}
	seen := make(map[string]struct{}, len(in.Sources))
	for _, src := range in.Sources {
		if _, dup := seen[src.ID]; dup {
			return nil, domain.NewValidationError("sources", "documento origen repetido "+src.ID)
		}
		seen[src.ID] = struct{}{}
		if src.CompanyID != first.CompanyID {
			return nil, domain.ErrForbidden
		}
		if src.Type != first.Type {
			return nil, domain.NewValidationError("sources", "todos los orígenes deben ser del mismo tipo")
		}
		if src.PartyID != first.PartyID {
			return nil, domain.NewValidationError("sources", "todos los orígenes deben ser del mismo cliente/proveedor")
		}
		if src.Status == entity.StatusCancelled {
			return nil, domain.NewValidationError("sources", "el origen "+src.ID+" está cancelado")
		}
		if in.Target.IsReceipt() && !src.IsNumbered() {
			return nil, domain.NewValidationError("sources", "la factura debe estar confirmada para generar recibos")
		}
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}
	doc := &entity.Document{
		ID:               in.NewID(),
		CompanyID:        first.CompanyID,
		Type:             in.Target,
		Status:           entity.StatusDraft,
		Series:           first.Series,
		Year:             date.Year(),
		Date:             date,
		DueDate:          date,
		PartyID:          first.PartyID,
		PaymentTermID:    first.PaymentTermID,
		SurchargeApplies: first.SurchargeApplies,
		WithholdingRate:  first.WithholdingRate,
	}
	if len(in.Sources) == 1 {
		doc.OriginID = first.ID
	} else {
		doc.OriginIDs = make([]string, 0, len(in.Sources))
		for _, src := range in.Sources {
			doc.OriginIDs = append(doc.OriginIDs, src.ID)
		}
	}
	for _, src := range in.Sources {
		for _, l := range src.Lines {
			cp := l
			cp.ID = in.NewID()
			cp.DocumentID = doc.ID
			doc.Lines = append(doc.Lines, cp)
		}
	}
	return doc, nil
}
