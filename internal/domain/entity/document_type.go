package entity

import "strings"

// Side lado comercial del documento.
type Side string

const (
	SideSales    Side = "sales"
	SidePurchase Side = "purchase"
)

// DocumentKind clase de documento dentro de la cadena comercial.
type DocumentKind string

const (
	KindQuote        DocumentKind = "quote"
	KindOrder        DocumentKind = "order"
	KindDeliveryNote DocumentKind = "delivery_note"
	KindInvoice      DocumentKind = "invoice"
	KindReceipt      DocumentKind = "receipt"
)

// DocumentType combina lado y clase: "sales_invoice", "purchase_delivery_note", ...
type DocumentType string

const (
	SalesQuote           DocumentType = "sales_quote"
	SalesOrder           DocumentType = "sales_order"
	SalesDeliveryNote    DocumentType = "sales_delivery_note"
	SalesInvoice         DocumentType = "sales_invoice"
	SalesReceipt         DocumentType = "sales_receipt"
	PurchaseQuote        DocumentType = "purchase_quote"
	PurchaseOrder        DocumentType = "purchase_order"
	PurchaseDeliveryNote DocumentType = "purchase_delivery_note"
	PurchaseInvoice      DocumentType = "purchase_invoice"
	PurchaseReceipt      DocumentType = "purchase_receipt"
)

// NewDocumentType construye el tipo a partir de lado y clase.
func NewDocumentType(side Side, kind DocumentKind) DocumentType {
	return DocumentType(string(side) + "_" + string(kind))
}

// Side devuelve el lado (ventas o compras).
func (t DocumentType) Side() Side {
	s, _, _ := strings.Cut(string(t), "_")
	return Side(s)
}

// Kind devuelve la clase del documento.
func (t DocumentType) Kind() DocumentKind {
	_, k, _ := strings.Cut(string(t), "_")
	return DocumentKind(k)
}

// Valid indica si el tipo es uno de los diez conocidos.
func (t DocumentType) Valid() bool {
	switch t.Side() {
	case SideSales, SidePurchase:
	default:
		return false
	}
	switch t.Kind() {
	case KindQuote, KindOrder, KindDeliveryNote, KindInvoice, KindReceipt:
		return true
	}
	return false
}

// UsesSequence indica si el documento recibe número del secuenciador de serie.
// Los recibos se numeran a partir de la factura de la que cuelgan.
func (t DocumentType) UsesSequence() bool {
	return t.Kind() != KindReceipt
}

func (t DocumentType) IsInvoice() bool { return t.Kind() == KindInvoice }
func (t DocumentType) IsReceipt() bool { return t.Kind() == KindReceipt }

// DocumentStatus estado del ciclo de vida.
type DocumentStatus string

const (
	StatusDraft     DocumentStatus = "draft"
	StatusConfirmed DocumentStatus = "confirmed"
	StatusPaid      DocumentStatus = "paid"
	StatusCancelled DocumentStatus = "cancelled"
)

func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusConfirmed, StatusPaid, StatusCancelled:
		return true
	}
	return false
}
