package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TributeRecord is a single collection line in a cuenta de recaudación
// (one tribute, one fiscal year, one pair of claves).
type TributeRecord struct {
	Ejercicio         int    // fiscal year the right belongs to
	Concepto          string // concept as delivered (name or code)
	ClaveContabilidad string // accounting key axis
	ClaveRecaudacion  string // collection key axis
	Cargo             decimal.Decimal
	Datas             decimal.Decimal
	Voluntaria        decimal.Decimal
	Ejecutiva         decimal.Decimal
	Pendiente         decimal.Decimal
}

// Liquido returns the settled amount, always voluntaria + ejecutiva.
// It is derived on demand and never stored.
func (r TributeRecord) Liquido() decimal.Decimal {
	return r.Voluntaria.Add(r.Ejecutiva)
}

// FormatAmount renders a decimal in the report display form used across
// exports and CLI tables: two fixed decimals, comma thousands separators.
// "1234567.8" -> "1,234,567.80"
func FormatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + fracPart
	if neg {
		return "-" + out
	}
	return out
}
