package entity

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// DocumentLine línea de un documento. Los importes calculados se guardan redondeados a 2 decimales.
type DocumentLine struct {
	ID          string
	DocumentID  string
	Position    int
	ProductID   string // vacío = línea manual
	Description string

	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	DiscountPct   decimal.Decimal
	TaxRate       decimal.Decimal
	SurchargeRate decimal.Decimal

	Subtotal        decimal.Decimal
	TaxAmount       decimal.Decimal
	SurchargeAmount decimal.Decimal
	Total           decimal.Decimal
}

// RawSubtotal cantidad × precio × (1 − descuento/100), sin redondear.
func (l DocumentLine) RawSubtotal() decimal.Decimal {
	factor := hundred.Sub(l.DiscountPct).Div(hundred)
	return l.Quantity.Mul(l.UnitPrice).Mul(factor)
}

// Computed devuelve la línea con subtotal, impuesto, recargo y total calculados.
func (l DocumentLine) Computed() DocumentLine {
	sub := l.RawSubtotal()
	tax := sub.Mul(l.TaxRate).Div(hundred)
	sur := sub.Mul(l.SurchargeRate).Div(hundred)
	l.Subtotal = sub.Round(2)
	l.TaxAmount = tax.Round(2)
	l.SurchargeAmount = sur.Round(2)
	l.Total = sub.Add(tax).Add(sur).Round(2)
	return l
}

// LineScale decimales que admiten cantidad, precio y porcentajes de una línea.
const LineScale = 4

var (
	maxAmount = decimal.RequireFromString("9999999999.9999") // NUMERIC(14,4)
	maxRate   = decimal.RequireFromString("999.9999")        // NUMERIC(7,4)
)

// Validate comprueba rangos y escala de los datos de entrada. Devuelve el campo erróneo y el motivo.
func (l DocumentLine) Validate() (field, reason string, ok bool) {
	checks := []struct {
		field string
		value decimal.Decimal
		max   decimal.Decimal
	}{
		{"quantity", l.Quantity, maxAmount},
		{"unit_price", l.UnitPrice, maxAmount},
		{"discount_pct", l.DiscountPct, hundred},
		{"tax_rate", l.TaxRate, maxRate},
		{"surcharge_rate", l.SurchargeRate, maxRate},
	}
	for _, c := range checks {
		switch {
		case c.value.IsNegative() || c.value.GreaterThan(c.max):
			return c.field, "fuera de rango", false
		case !c.value.Equal(c.value.Truncate(LineScale)):
			return c.field, "admite como máximo 4 decimales", false
		}
	}
	return "", "", true
}
