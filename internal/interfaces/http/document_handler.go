package http

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/erp-documentos/internal/application/documents"
	"github.com/jhoicas/erp-documentos/internal/application/dto"
	"github.com/jhoicas/erp-documentos/internal/domain/entity"
	"github.com/jhoicas/erp-documentos/pkg/money"
	"github.com/rs/zerolog"
)

// DocumentHandler maneja las peticiones HTTP de documentos comerciales (protegido).
type DocumentHandler struct {
	uc       *documents.UseCase
	validate *validator.Validate
	money    *money.Formatter
	log      zerolog.Logger
}

// NewDocumentHandler construye el handler. formatter puede ser nil (sin importes formateados).
func NewDocumentHandler(uc *documents.UseCase, formatter *money.Formatter, log zerolog.Logger) *DocumentHandler {
	return &DocumentHandler{
		uc:       uc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		money:    formatter,
		log:      log.With().Str("component", "http").Logger(),
	}
}

// bind parsea el cuerpo JSON y lo valida.
func (h *DocumentHandler) bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return &requestError{code: "INVALID_BODY", msg: "cuerpo inválido"}
	}
	if err := h.validate.Struct(out); err != nil {
		return &requestError{code: "VALIDATION", msg: err.Error()}
	}
	return nil
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(dateLayout, s) // formato ya validado
	return t
}

// Create crea un borrador.
// POST /api/documents
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDocumentRequest
	if err := h.bind(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	doc, err := h.uc.CreateDraft(c.UserContext(), documents.DraftInput{
		CompanyID:     GetCompanyID(c),
		Type:          entity.DocumentType(in.Type),
		PartyID:       in.PartyID,
		PaymentTermID: in.PaymentTermID,
		Series:        in.Series,
		Date:          parseDate(in.Date),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toDocumentResponse(doc, h.money))
}

// List listado paginado con filtros de tipo y estado.
// GET /api/documents
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	var q dto.ListDocumentsQuery
	if err := c.QueryParser(&q); err != nil {
		return writeError(c, h.log, &requestError{code: "INVALID_QUERY", msg: "parámetros inválidos"})
	}
	if err := h.validate.Struct(q); err != nil {
		return writeError(c, h.log, &requestError{code: "VALIDATION", msg: err.Error()})
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}
	list, err := h.uc.List(c.UserContext(), GetCompanyID(c), entity.DocumentFilter{
		Type:   entity.DocumentType(q.Type),
		Status: entity.DocumentStatus(q.Status),
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.DocumentListResponse{
		Items: make([]dto.DocumentResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset},
	}
	for _, doc := range list {
		out.Items = append(out.Items, toDocumentResponse(doc, h.money))
	}
	return c.JSON(out)
}

// GetByID documento con cadena, desglose y estado de bloqueo.
// GET /api/documents/:id
func (h *DocumentHandler) GetByID(c *fiber.Ctx) error {
	in, err := h.uc.Get(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toDetail(in, h.money))
}

// Delete borra el documento si la política de bloqueo lo permite.
// DELETE /api/documents/:id
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetCompanyID(c), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddLine POST /api/documents/:id/lines
func (h *DocumentHandler) AddLine(c *fiber.Ctx) error {
	var in dto.LineRequest
	if err := h.bind(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	doc, err := h.uc.AddLine(c.UserContext(), GetCompanyID(c), c.Params("id"), toLineInput(in))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toDocumentResponse(doc, h.money))
}

// UpdateLine PUT /api/documents/:id/lines/:lineId
func (h *DocumentHandler) UpdateLine(c *fiber.Ctx) error {
	var in dto.LineRequest
	if err := h.bind(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	doc, err := h.uc.UpdateLine(c.UserContext(), GetCompanyID(c), c.Params("id"), c.Params("lineId"), toLineInput(in))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toDocumentResponse(doc, h.money))
}

// RemoveLine DELETE /api/documents/:id/lines/:lineId
func (h *DocumentHandler) RemoveLine(c *fiber.Ctx) error {
	doc, err := h.uc.RemoveLine(c.UserContext(), GetCompanyID(c), c.Params("id"), c.Params("lineId"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toDocumentResponse(doc, h.money))
}

// Confirm numera y confirma.
// POST /api/documents/:id/confirm
func (h *DocumentHandler) Confirm(c *fiber.Ctx) error {
	doc, err := h.uc.Confirm(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toDocumentResponse(doc, h.money))
}

// Cancel POST /api/documents/:id/cancel
func (h *DocumentHandler) Cancel(c *fiber.Ctx) error {
	doc, err := h.uc.Cancel(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toDocumentResponse(doc, h.money))
}

// Void anulación auditada de una factura numerada (solo admin).
// POST /api/documents/:id/void
func (h *DocumentHandler) Void(c *fiber.Ctx) error {
	var in dto.VoidRequest
	if err := h.bind(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	doc, err := h.uc.Void(c.UserContext(), GetCompanyID(c), c.Params("id"), GetUserID(c), in.Reason)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toDocumentResponse(doc, h.money))
}

// Pay marca un recibo como pagado.
// POST /api/documents/:id/pay
func (h *DocumentHandler) Pay(c *fiber.Ctx) error {
	doc, err := h.uc.MarkReceiptPaid(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toDocumentResponse(doc, h.money))
}

// GenerateReceipts POST /api/documents/:id/receipts
func (h *DocumentHandler) GenerateReceipts(c *fiber.Ctx) error {
	list, err := h.uc.GenerateReceipts(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.DocumentResponse, 0, len(list))
	for _, doc := range list {
		out = append(out, toDocumentResponse(doc, h.money))
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Convert crea un documento derivado de uno o varios orígenes.
// POST /api/documents/convert
func (h *DocumentHandler) Convert(c *fiber.Ctx) error {
	var in dto.ConvertRequest
	if err := h.bind(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	doc, err := h.uc.ConvertTo(c.UserContext(), documents.ConvertInput{
		CompanyID:  GetCompanyID(c),
		SourceIDs:  in.SourceIDs,
		TargetType: entity.DocumentType(in.TargetType),
		Date:       parseDate(in.Date),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toDocumentResponse(doc, h.money))
}

// Preview desglose de impuestos sin persistir.
// POST /api/documents/preview
func (h *DocumentHandler) Preview(c *fiber.Ctx) error {
	var in dto.PreviewRequest
	if err := h.bind(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	lines := make([]documents.LineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, toLineInput(l))
	}
	b, err := h.uc.TaxBreakdown(lines, in.SurchargeApplies)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toBreakdown(b))
}
