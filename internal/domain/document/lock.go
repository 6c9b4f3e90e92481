package document

import (
	"github.com/jhoicas/erp-documentos/internal/domain"
	"github.com/jhoicas/erp-documentos/internal/domain/entity"
)

// Snapshot documento junto con sus vecinos en la cadena. Los derivados se obtienen por consulta.
type Snapshot struct {
	Doc     *entity.Document
	Origins []entity.DocumentRef
	Derived []entity.DocumentRef
}

// CanEdit indica si se pueden modificar líneas o cabecera del documento.
func CanEdit(s Snapshot) bool { return EditLock(s) == nil }

// CanDelete indica si el documento se puede borrar.
func CanDelete(s Snapshot) bool { return DeleteLock(s) == nil }

// EditLock devuelve el motivo del bloqueo de edición o nil si el documento es editable.
func EditLock(s Snapshot) *domain.LockedDocumentError {
	if err := numberedInvoiceLock(s); err != nil {
		return err
	}
	if err := derivedLock(s); err != nil {
		return err
	}
	doc := s.Doc
	switch {
	case len(doc.Origins()) == 0:
		return nil
	case doc.HasMultipleOrigins():
		return nil
	case doc.Type.Kind() == entity.KindOrder && len(s.Origins) == 1 && s.Origins[0].Type.Kind() == entity.KindQuote:
		return nil
	}
	return &domain.LockedDocumentError{
		DocumentID: doc.ID,
		Message:    "generado a partir de otro documento",
		Blockers:   blockers(s.Origins),
	}
}

// DeleteLock devuelve el motivo del bloqueo de borrado o nil. Un documento con origen simple
// se puede borrar: deshacer la conversión deja la cadena coherente.
func DeleteLock(s Snapshot) *domain.LockedDocumentError {
	if err := numberedInvoiceLock(s); err != nil {
		return err
	}
	return derivedLock(s)
}

// LockReason texto legible del bloqueo de edición; vacío si es editable.
func LockReason(s Snapshot) string {
	if err := EditLock(s); err != nil {
		return err.Error()
	}
	return ""
}

func numberedInvoiceLock(s Snapshot) *domain.LockedDocumentError {
	if s.Doc.Type.IsInvoice() && s.Doc.IsNumbered() {
		return &domain.LockedDocumentError{
			DocumentID: s.Doc.ID,
			Message:    "factura numerada " + s.Doc.Number,
		}
	}
	return nil
}

func derivedLock(s Snapshot) *domain.LockedDocumentError {
	if len(s.Derived) == 0 {
		return nil
	}
	return &domain.LockedDocumentError{
		DocumentID: s.Doc.ID,
		Message:    "tiene documentos derivados",
		Blockers:   blockers(s.Derived),
	}
}

func blockers(refs []entity.DocumentRef) []domain.Blocker {
	out := make([]domain.Blocker, 0, len(refs))
	for _, r := range refs {
		out = append(out, domain.Blocker{ID: r.ID, Type: string(r.Type), Number: r.Number})
	}
	return out
}
