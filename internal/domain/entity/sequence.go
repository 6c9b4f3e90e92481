package entity

import "fmt"

// SequenceScope ámbito en el que la secuencia es estrictamente creciente. Type es el tipo
// completo (sales_invoice, purchase_order...), más estrecho que la familia venta/compra: cada
// clase de documento lleva su propio contador.
type SequenceScope struct {
	CompanyID string
	Series    string
	Type      DocumentType
	Year      int
}

func (s SequenceScope) String() string {
	return fmt.Sprintf("%s/%s/%d", s.Series, s.Type, s.Year)
}

// ReceiptScope contador de vencimientos de una factura. Series lleva el número de la factura,
// de modo que cada factura numera sus recibos de forma independiente y nunca reutiliza un valor.
func ReceiptScope(invoice *Document) SequenceScope {
	return SequenceScope{
		CompanyID: invoice.CompanyID,
		Series:    invoice.Number,
		Type:      NewDocumentType(invoice.Type.Side(), KindReceipt),
		Year:      invoice.Year,
	}
}

// FormatNumber número visible: serie + año + secuencia con relleno.
func FormatNumber(series string, year int, seq int64) string {
	return fmt.Sprintf("%s%d-%06d", series, year, seq)
}

// FormatReceiptNumber número de un recibo: número de la factura y vencimiento.
func FormatReceiptNumber(invoiceNumber string, installment int) string {
	return fmt.Sprintf("%s/%d", invoiceNumber, installment)
}
