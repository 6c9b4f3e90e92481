package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/erp-documentos/internal/application/documents"
	"github.com/jhoicas/erp-documentos/pkg/jwt"
	"github.com/jhoicas/erp-documentos/pkg/money"
	"github.com/rs/zerolog"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Documents *documents.UseCase
	Money     *money.Formatter
	JWTSecret string
	Log       zerolog.Logger
}

// Router registra las rutas de la API. Todas requieren Bearer Token; la empresa sale del token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	h := NewDocumentHandler(deps.Documents, deps.Money, deps.Log)

	docs := api.Group("/documents")
	docs.Get("/", h.List)
	docs.Post("/", h.Create)
	docs.Post("/convert", h.Convert)
	docs.Post("/preview", h.Preview)
	docs.Get("/:id", h.GetByID)
	docs.Delete("/:id", h.Delete)

	docs.Post("/:id/lines", h.AddLine)
	docs.Put("/:id/lines/:lineId", h.UpdateLine)
	docs.Delete("/:id/lines/:lineId", h.RemoveLine)

	docs.Post("/:id/confirm", h.Confirm)
	docs.Post("/:id/cancel", h.Cancel)
	docs.Post("/:id/receipts", RequireRole(jwt.RoleAdmin, jwt.RoleAccountant), h.GenerateReceipts)
	docs.Post("/:id/pay", RequireRole(jwt.RoleAdmin, jwt.RoleAccountant), h.Pay)
	docs.Post("/:id/void", RequireRole(jwt.RoleAdmin), h.Void)
}
