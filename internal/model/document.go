package model

import (
	"sort"

	"github.com/shopspring/decimal"
)

// DocumentTotals are the declared whole-document amounts, supplied by the
// extraction boundary and used only for reconciliation.
type DocumentTotals struct {
	Cargo      decimal.Decimal
	Datas      decimal.Decimal
	Voluntaria decimal.Decimal
	Ejecutiva  decimal.Decimal
	Pendiente  decimal.Decimal
}

// Liquido returns the declared settled amount.
func (t DocumentTotals) Liquido() decimal.Decimal {
	return t.Voluntaria.Add(t.Ejecutiva)
}

// YearTotals is one declared per-year summary row of the document.
type YearTotals struct {
	Ejercicio  int
	Registros  int // number of contributing records
	Cargo      decimal.Decimal
	Datas      decimal.Decimal
	Voluntaria decimal.Decimal
	Ejecutiva  decimal.Decimal
	Pendiente  decimal.Decimal
}

// Liquido returns the declared settled amount for the year.
func (t YearTotals) Liquido() decimal.Decimal {
	return t.Voluntaria.Add(t.Ejecutiva)
}

// Document is one complete cuenta de recaudación as handed over by an
// extractor: immutable records plus the declared summary rows and totals.
type Document struct {
	EntidadCodigo     string // "026"
	EntidadNombre     string // "Entidad 026"
	Ejercicio         int    // settlement year of the account
	NumeroLiquidacion string // settlement number, may be empty
	MandamientoPago   string // payment order number, may be empty
	Records           []TributeRecord
	Ejercicios        []YearTotals // declared, ascending by year
	Totales           DocumentTotals
}

// TotalsOf sums a record set into document-level totals.
func TotalsOf(records []TributeRecord) DocumentTotals {
	var t DocumentTotals
	for _, r := range records {
		t.Cargo = t.Cargo.Add(r.Cargo)
		t.Datas = t.Datas.Add(r.Datas)
		t.Voluntaria = t.Voluntaria.Add(r.Voluntaria)
		t.Ejecutiva = t.Ejecutiva.Add(r.Ejecutiva)
		t.Pendiente = t.Pendiente.Add(r.Pendiente)
	}
	return t
}

// YearTotalsOf sums a record set into per-year rows, ascending by year.
func YearTotalsOf(records []TributeRecord) []YearTotals {
	byYear := make(map[int]*YearTotals)
	for _, r := range records {
		t, ok := byYear[r.Ejercicio]
		if !ok {
			t = &YearTotals{Ejercicio: r.Ejercicio}
			byYear[r.Ejercicio] = t
		}
		t.Registros++
		t.Cargo = t.Cargo.Add(r.Cargo)
		t.Datas = t.Datas.Add(r.Datas)
		t.Voluntaria = t.Voluntaria.Add(r.Voluntaria)
		t.Ejecutiva = t.Ejecutiva.Add(r.Ejecutiva)
		t.Pendiente = t.Pendiente.Add(r.Pendiente)
	}
	years := make([]YearTotals, 0, len(byYear))
	for _, t := range byYear {
		years = append(years, *t)
	}
	sort.Slice(years, func(i, j int) bool { return years[i].Ejercicio < years[j].Ejercicio })
	return years
}

// MaxEjercicio returns the highest fiscal year present in the record set,
// which is the settlement year when the source does not declare one.
// Zero for an empty set.
func MaxEjercicio(records []TributeRecord) int {
	max := 0
	for _, r := range records {
		if r.Ejercicio > max {
			max = r.Ejercicio
		}
	}
	return max
}
