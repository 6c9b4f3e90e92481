// Package tax calcula el desglose de impuestos de un conjunto de líneas agrupando por
// tipo de IVA y recargo de equivalencia.
package tax

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/erp-documentos/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// SurchargeTable tipo de recargo de equivalencia por tipo de IVA.
type SurchargeTable struct {
	rates map[string]decimal.Decimal
}

// DefaultSurchargeTable tabla vigente: 21→5,2; 10→1,4; 5→0,62; 4→0,5.
func DefaultSurchargeTable() SurchargeTable {
	return NewSurchargeTable(map[string]string{
		"21": "5.2",
		"10": "1.4",
		"5":  "0.62",
		"4":  "0.5",
	})
}

// NewSurchargeTable construye la tabla desde pares tipo→recargo en texto. Ignora entradas no numéricas.
func NewSurchargeTable(pairs map[string]string) SurchargeTable {
	t := SurchargeTable{rates: make(map[string]decimal.Decimal, len(pairs))}
	for k, v := range pairs {
		rate, err1 := decimal.NewFromString(strings.TrimSpace(k))
		sur, err2 := decimal.NewFromString(strings.TrimSpace(v))
		if err1 != nil || err2 != nil {
			continue
		}
		t.rates[rate.String()] = sur
	}
	return t
}

// ParseSurchargeTable interpreta "21:5.2,10:1.4,4:0.5".
func ParseSurchargeTable(s string) (SurchargeTable, error) {
	pairs := make(map[string]string)
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		k, v, ok := strings.Cut(item, ":")
		if !ok {
			return SurchargeTable{}, fmt.Errorf("tabla de recargos: entrada %q sin ':'", item)
		}
		if _, err := decimal.NewFromString(strings.TrimSpace(k)); err != nil {
			return SurchargeTable{}, fmt.Errorf("tabla de recargos: tipo %q: %w", k, err)
		}
		r, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return SurchargeTable{}, fmt.Errorf("tabla de recargos: recargo %q: %w", v, err)
		}
		if !r.Equal(r.Truncate(4)) {
			return SurchargeTable{}, fmt.Errorf("tabla de recargos: recargo %q con más de 4 decimales", v)
		}
		pairs[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return NewSurchargeTable(pairs), nil
}

// Lookup devuelve el recargo asociado al tipo de IVA (cero si no está en la tabla).
func (t SurchargeTable) Lookup(taxRate decimal.Decimal) decimal.Decimal {
	if r, ok := t.rates[taxRate.String()]; ok {
		return r
	}
	return decimal.Zero
}

// Group desglose de un tipo de IVA/recargo.
type Group struct {
	TaxRate         decimal.Decimal
	SurchargeRate   decimal.Decimal
	Base            decimal.Decimal
	TaxAmount       decimal.Decimal
	SurchargeAmount decimal.Decimal
	Total           decimal.Decimal
}

// Breakdown resultado del cálculo: grupos ordenados por tipo descendente y totales.
type Breakdown struct {
	Groups         []Group
	Base           decimal.Decimal
	TaxTotal       decimal.Decimal
	SurchargeTotal decimal.Decimal
	Total          decimal.Decimal
}

// Calculator calculadora pura; no guarda estado entre llamadas.
type Calculator struct {
	table SurchargeTable
}

// NewCalculator construye la calculadora con la tabla de recargos indicada.
func NewCalculator(table SurchargeTable) Calculator {
	return Calculator{table: table}
}

// SurchargeRate recargo efectivo de una línea: cero si la parte no está sujeta.
func (c Calculator) SurchargeRate(taxRate decimal.Decimal, surchargeApplies bool) decimal.Decimal {
	if !surchargeApplies {
		return decimal.Zero
	}
	return c.table.Lookup(taxRate)
}

type groupKey struct {
	tax, surcharge string
}

type accumulator struct {
	taxRate, surchargeRate decimal.Decimal
	base                   decimal.Decimal
}

// Calculate agrupa las líneas con subtotal positivo por (IVA, recargo). Cada grupo suma las bases
// sin redondear y redondea una sola vez; los totales del documento suman los grupos redondeados.
func (c Calculator) Calculate(lines []entity.DocumentLine, surchargeApplies bool) Breakdown {
	groups := make(map[groupKey]*accumulator)
	for _, l := range lines {
		sub := l.RawSubtotal()
		if !sub.IsPositive() {
			continue
		}
		sr := c.SurchargeRate(l.TaxRate, surchargeApplies)
		key := groupKey{tax: l.TaxRate.String(), surcharge: sr.String()}
		acc, ok := groups[key]
		if !ok {
			acc = &accumulator{taxRate: l.TaxRate, surchargeRate: sr, base: decimal.Zero}
			groups[key] = acc
		}
		acc.base = acc.base.Add(sub)
	}

	out := Breakdown{
		Groups:         make([]Group, 0, len(groups)),
		Base:           decimal.Zero,
		TaxTotal:       decimal.Zero,
		SurchargeTotal: decimal.Zero,
		Total:          decimal.Zero,
	}
	for _, acc := range groups {
		base := acc.base.Round(2)
		taxAmount := acc.base.Mul(acc.taxRate).Div(hundred).Round(2)
		surAmount := acc.base.Mul(acc.surchargeRate).Div(hundred).Round(2)
		g := Group{
			TaxRate:         acc.taxRate,
			SurchargeRate:   acc.surchargeRate,
			Base:            base,
			TaxAmount:       taxAmount,
			SurchargeAmount: surAmount,
			Total:           base.Add(taxAmount).Add(surAmount),
		}
		out.Groups = append(out.Groups, g)
	}
	sort.Slice(out.Groups, func(i, j int) bool {
		a, b := out.Groups[i], out.Groups[j]
		if !a.TaxRate.Equal(b.TaxRate) {
			return a.TaxRate.GreaterThan(b.TaxRate)
		}
		return a.SurchargeRate.GreaterThan(b.SurchargeRate)
	})
	for _, g := range out.Groups {
		out.Base = out.Base.Add(g.Base)
		out.TaxTotal = out.TaxTotal.Add(g.TaxAmount)
		out.SurchargeTotal = out.SurchargeTotal.Add(g.SurchargeAmount)
		out.Total = out.Total.Add(g.Total)
	}
	return out
}
