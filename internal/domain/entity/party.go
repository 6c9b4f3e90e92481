package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Party cliente o proveedor. SurchargeApplies: sujeto a recargo de equivalencia.
type Party struct {
	ID               string
	CompanyID        string
	Name             string
	TaxID            string
	SurchargeApplies bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Tramo vencimiento de una forma de pago: días desde la fecha del documento y porcentaje del total.
type Tramo struct {
	Days       int
	Percentage decimal.Decimal
}

// PaymentTerm forma de pago con sus tramos ordenados.
type PaymentTerm struct {
	ID        string
	CompanyID string
	Name      string
	Tramos    []Tramo
}

// DueDate fecha de vencimiento final: fecha + mayor desplazamiento de los tramos.
func (p *PaymentTerm) DueDate(date time.Time) time.Time {
	if p == nil {
		return date
	}
	maxDays := 0
	for _, t := range p.Tramos {
		if t.Days > maxDays {
			maxDays = t.Days
		}
	}
	return date.AddDate(0, 0, maxDays)
}

// Valid los porcentajes deben sumar 100 y los días no ser negativos.
func (p *PaymentTerm) Valid() bool {
	sum := decimal.Zero
	for _, t := range p.Tramos {
		if t.Days < 0 || !t.Percentage.IsPositive() {
			return false
		}
		sum = sum.Add(t.Percentage)
	}
	return len(p.Tramos) == 0 || sum.Equal(hundred)
}

// NumberingSeries serie de numeración ("A", "R", ...).
type NumberingSeries struct {
	CompanyID              string
	Code                   string
	Name                   string
	Active                 bool
	DefaultTaxRate         decimal.Decimal
	DefaultWithholdingRate decimal.Decimal
}
