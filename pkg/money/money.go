package money

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter presenta importes según el idioma configurado. Solo presentación: los cálculos
// trabajan siempre con decimal.
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
}

// NewFormatter valida locale (BCP 47) y moneda (ISO 4217).
func NewFormatter(locale, iso string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(iso)
	if err != nil {
		return nil, fmt.Errorf("moneda %q: %w", iso, err)
	}
	return &Formatter{printer: message.NewPrinter(tag), unit: unit}, nil
}

// Format importe con dos decimales y separadores del idioma, seguido del código de moneda.
func (f *Formatter) Format(d decimal.Decimal) string {
	return f.printer.Sprintf("%v %s", f.Number(d), f.unit)
}

// Number importe con dos decimales sin moneda (porcentajes, cantidades).
func (f *Formatter) Number(d decimal.Decimal) string {
	v, _ := d.Round(2).Float64()
	return f.printer.Sprint(number.Decimal(v, number.Scale(2)))
}

// Currency código ISO de la moneda.
func (f *Formatter) Currency() string { return f.unit.String() }
