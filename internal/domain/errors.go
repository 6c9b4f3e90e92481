package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	ErrValidation        = errors.New("validación fallida")
	ErrLocked            = errors.New("documento bloqueado")
	ErrNumberingConflict = errors.New("conflicto de numeración")
	ErrConsistency       = errors.New("totales inconsistentes")
)

// ValidationError precondición no cumplida. Field indica el campo o regla afectada.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validación: " + e.Reason
	}
	return fmt.Sprintf("validación: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Blocker documento que impide editar o borrar a otro (tipo y número visibles para el usuario).
type Blocker struct {
	ID     string
	Type   string
	Number string
}

func (b Blocker) String() string {
	if b.Number == "" {
		return b.Type + " (borrador)"
	}
	return b.Type + " " + b.Number
}

// LockedDocumentError intento de editar/borrar un documento bloqueado por la cadena o por estar numerado.
type LockedDocumentError struct {
	DocumentID string
	Message    string
	Blockers   []Blocker
}

func (e *LockedDocumentError) Error() string {
	if len(e.Blockers) == 0 {
		return "documento bloqueado: " + e.Message
	}
	parts := make([]string, 0, len(e.Blockers))
	for _, b := range e.Blockers {
		parts = append(parts, b.String())
	}
	return fmt.Sprintf("documento bloqueado: %s (%s)", e.Message, strings.Join(parts, ", "))
}

func (e *LockedDocumentError) Is(target error) bool { return target == ErrLocked }

// NumberingConflictError el secuenciador no pudo reservar un número único tras los reintentos.
// Es reintentable: el cliente puede volver a confirmar.
type NumberingConflictError struct {
	Scope    string
	Attempts int
}

func (e *NumberingConflictError) Error() string {
	return fmt.Sprintf("conflicto de numeración en %s tras %d intentos", e.Scope, e.Attempts)
}

func (e *NumberingConflictError) Is(target error) bool { return target == ErrNumberingConflict }

// ConsistencyError los totales guardados no coinciden con el recálculo de las líneas.
type ConsistencyError struct {
	DocumentID string
	Stored     string
	Computed   string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("documento %s: total guardado %s, recalculado %s", e.DocumentID, e.Stored, e.Computed)
}

func (e *ConsistencyError) Is(target error) bool { return target == ErrConsistency }
