package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Acciones registradas en la auditoría de documentos.
const (
	AuditActionVoid = "void"
)

// DocumentAudit registro de una operación excepcional sobre un documento.
type DocumentAudit struct {
	ID         string
	DocumentID string
	Action     string
	Reason     string
	UserID     string
	CreatedAt  time.Time
}

// PurchasePrice histórico de precios de compra por proveedor y producto.
type PurchasePrice struct {
	ID          string
	CompanyID   string
	PartyID     string
	ProductID   string
	DocumentID  string
	UnitPrice   decimal.Decimal
	DiscountPct decimal.Decimal
	RecordedAt  time.Time
}
