package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Document cabecera de un documento comercial (presupuesto, pedido, albarán, factura o recibo)
// con sus líneas. Los totales se derivan siempre de las líneas.
type Document struct {
	ID          string
	CompanyID   string
	Type        DocumentType
	Status      DocumentStatus
	Series      string
	Year        int
	Sequence    int64  // 0 hasta la confirmación
	Number      string // vacío = borrador sin numerar
	Installment int    // solo recibos: número de vencimiento dentro de la factura
	Date        time.Time
	DueDate     time.Time

	PartyID       string
	PaymentTermID string // opcional

	// OriginID origen simple; OriginIDs origen agrupado (varios documentos → uno).
	// Nunca se rellenan ambos. Los documentos derivados no se guardan: se consultan.
	OriginID  string
	OriginIDs []string

	SurchargeApplies bool
	WithholdingRate  decimal.Decimal

	Subtotal         decimal.Decimal
	TaxTotal         decimal.Decimal
	SurchargeTotal   decimal.Decimal
	GrandTotal       decimal.Decimal
	WithholdingTotal decimal.Decimal
	PayableTotal     decimal.Decimal

	Lines []DocumentLine

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsNumbered indica si el documento ya tiene número asignado.
func (d *Document) IsNumbered() bool { return d.Number != "" }

// Origins devuelve los IDs de los documentos de los que procede.
func (d *Document) Origins() []string {
	if len(d.OriginIDs) > 0 {
		return d.OriginIDs
	}
	if d.OriginID != "" {
		return []string{d.OriginID}
	}
	return nil
}

// HasMultipleOrigins indica una conversión agrupada.
func (d *Document) HasMultipleOrigins() bool { return len(d.OriginIDs) > 1 }

// Line busca una línea por ID.
func (d *Document) Line(id string) (int, *DocumentLine) {
	for i := range d.Lines {
		if d.Lines[i].ID == id {
			return i, &d.Lines[i]
		}
	}
	return -1, nil
}

// Clone copia profunda (líneas y orígenes incluidos).
func (d *Document) Clone() *Document {
	c := *d
	if d.OriginIDs != nil {
		c.OriginIDs = append([]string(nil), d.OriginIDs...)
	}
	if d.Lines != nil {
		c.Lines = append([]DocumentLine(nil), d.Lines...)
	}
	return &c
}

// Ref referencia ligera del documento.
func (d *Document) Ref() DocumentRef {
	return DocumentRef{ID: d.ID, Type: d.Type, Status: d.Status, Number: d.Number}
}

// DocumentRef vista mínima de un documento vecino en la cadena.
type DocumentRef struct {
	ID     string
	Type   DocumentType
	Status DocumentStatus
	Number string
}

// DocumentFilter filtros del listado.
type DocumentFilter struct {
	Type   DocumentType
	Status DocumentStatus
	Limit  int
	Offset int
}
