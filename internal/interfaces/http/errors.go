package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/erp-documentos/internal/application/dto"
	"github.com/jhoicas/erp-documentos/internal/domain"
	"github.com/rs/zerolog"
)

// requestError cuerpo o parámetros mal formados (antes de llegar al caso de uso).
type requestError struct {
	code string
	msg  string
}

func (e *requestError) Error() string { return e.msg }

// writeError traduce los errores de dominio a códigos HTTP con cuerpo dto.ErrorResponse.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: reqErr.code, Message: reqErr.msg})
	}
	var locked *domain.LockedDocumentError
	if errors.As(err, &locked) {
		body := dto.LockedErrorResponse{ErrorResponse: dto.ErrorResponse{Code: "LOCKED", Message: locked.Error()}}
		for _, b := range locked.Blockers {
			body.Blockers = append(body.Blockers, dto.DocumentRefResponse{ID: b.ID, Type: b.Type, Number: b.Number})
		}
		return c.Status(fiber.StatusConflict).JSON(body)
	}
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		body := dto.ErrorResponse{Code: "VALIDATION", Message: verr.Error()}
		if verr.Field != "" {
			body.Details = map[string]string{"field": verr.Field, "reason": verr.Reason}
		}
		return c.Status(fiber.StatusBadRequest).JSON(body)
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "documento no encontrado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"})
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrNumberingConflict):
		c.Set(fiber.HeaderRetryAfter, "1")
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "NUMBERING_CONFLICT", Message: err.Error()})
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}
