package dto

import "github.com/shopspring/decimal"

// CreateDocumentRequest body para POST /api/documents.
type CreateDocumentRequest struct {
	Type          string `json:"type" validate:"required"`
	PartyID       string `json:"party_id" validate:"required"`
	PaymentTermID string `json:"payment_term_id,omitempty"`
	Series        string `json:"series,omitempty" validate:"omitempty,max=10"`
	Date          string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// LineRequest línea de documento (alta, modificación o vista previa).
type LineRequest struct {
	ProductID   string          `json:"product_id,omitempty"`
	Description string          `json:"description" validate:"max=500"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

// ConvertRequest body para POST /api/documents/convert.
type ConvertRequest struct {
	SourceIDs  []string `json:"source_ids" validate:"required,min=1,dive,required"`
	TargetType string   `json:"target_type" validate:"required"`
	Date       string   `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// VoidRequest body para POST /api/documents/:id/void.
type VoidRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// PreviewRequest body para POST /api/documents/preview.
type PreviewRequest struct {
	SurchargeApplies bool          `json:"surcharge_applies"`
	Lines            []LineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ListDocumentsQuery filtros de GET /api/documents.
type ListDocumentsQuery struct {
	Limit  int    `query:"limit" validate:"min=0,max=100"`
	Offset int    `query:"offset" validate:"min=0"`
	Type   string `query:"type"`
	Status string `query:"status" validate:"omitempty,oneof=draft confirmed paid cancelled"`
}

// DocumentLineResponse línea con importes calculados.
type DocumentLineResponse struct {
	ID              string `json:"id"`
	Position        int    `json:"position"`
	ProductID       string `json:"product_id,omitempty"`
	Description     string `json:"description"`
	Quantity        string `json:"quantity"`
	UnitPrice       string `json:"unit_price"`
	DiscountPct     string `json:"discount_pct"`
	TaxRate         string `json:"tax_rate"`
	SurchargeRate   string `json:"surcharge_rate"`
	Subtotal        string `json:"subtotal"`
	TaxAmount       string `json:"tax_amount"`
	SurchargeAmount string `json:"surcharge_amount"`
	Total           string `json:"total"`
}

// DocumentResponse documento en respuestas. Los importes van como texto con dos decimales.
type DocumentResponse struct {
	ID               string                 `json:"id"`
	Type             string                 `json:"type"`
	Status           string                 `json:"status"`
	Series           string                 `json:"series"`
	Number           string                 `json:"number,omitempty"`
	Date             string                 `json:"date"`
	DueDate          string                 `json:"due_date"`
	PartyID          string                 `json:"party_id"`
	PaymentTermID    string                 `json:"payment_term_id,omitempty"`
	OriginID         string                 `json:"origin_id,omitempty"`
	OriginIDs        []string               `json:"origin_ids,omitempty"`
	SurchargeApplies bool                   `json:"surcharge_applies"`
	Subtotal         string                 `json:"subtotal"`
	TaxTotal         string                 `json:"tax_total"`
	SurchargeTotal   string                 `json:"surcharge_total"`
	GrandTotal       string                 `json:"grand_total"`
	WithholdingTotal string                 `json:"withholding_total"`
	PayableTotal     string                 `json:"payable_total"`
	Display          *TotalsDisplay         `json:"display,omitempty"`
	Lines            []DocumentLineResponse `json:"lines,omitempty"`
}

// TotalsDisplay importes formateados según el idioma configurado.
type TotalsDisplay struct {
	Currency     string `json:"currency"`
	GrandTotal   string `json:"grand_total"`
	PayableTotal string `json:"payable_total"`
}

// DocumentRefResponse vecino en la cadena documental.
type DocumentRefResponse struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Status string `json:"status,omitempty"`
	Number string `json:"number,omitempty"`
}

// TaxGroupResponse grupo del desglose de impuestos.
type TaxGroupResponse struct {
	TaxRate         string `json:"tax_rate"`
	SurchargeRate   string `json:"surcharge_rate"`
	Base            string `json:"base"`
	TaxAmount       string `json:"tax_amount"`
	SurchargeAmount string `json:"surcharge_amount"`
	Total           string `json:"total"`
}

// BreakdownResponse desglose completo.
type BreakdownResponse struct {
	Groups         []TaxGroupResponse `json:"groups"`
	Base           string             `json:"base"`
	TaxTotal       string             `json:"tax_total"`
	SurchargeTotal string             `json:"surcharge_total"`
	Total          string             `json:"total"`
}

// DocumentDetailResponse GET /api/documents/:id.
type DocumentDetailResponse struct {
	Document   DocumentResponse      `json:"document"`
	Origins    []DocumentRefResponse `json:"origins"`
	Derived    []DocumentRefResponse `json:"derived"`
	CanEdit    bool                  `json:"can_edit"`
	CanDelete  bool                  `json:"can_delete"`
	LockReason string                `json:"lock_reason,omitempty"`
	Breakdown  BreakdownResponse     `json:"breakdown"`
}

// DocumentListResponse listado paginado.
type DocumentListResponse struct {
	Items []DocumentResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// LockedErrorResponse 409 con los documentos que bloquean la operación.
type LockedErrorResponse struct {
	ErrorResponse
	Blockers []DocumentRefResponse `json:"blockers,omitempty"`
}
