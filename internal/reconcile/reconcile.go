// Package reconcile cross-checks computed aggregates against declared
// totals. Every check reports within an absolute tolerance of one cent;
// discrepancies are warnings for the caller, never fatal.
package reconcile

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/recauda-dev/recauda/internal/aggregate"
	"github.com/recauda-dev/recauda/internal/model"
)

// Tolerance is the currency minor-unit rounding budget: deltas up to and
// including one cent pass, anything beyond warns.
var Tolerance = decimal.New(1, -2)

// Scope identifies which check raised a discrepancy.
type Scope string

const (
	ScopeGlobal Scope = "total"
	ScopeYear   Scope = "ejercicio"
)

// Discrepancy describes one reconciliation mismatch: the column, both
// compared values and where they were compared.
type Discrepancy struct {
	Scope      Scope
	Ejercicio  int // zero for global scope
	Column     string
	Declared   decimal.Decimal
	Calculated decimal.Decimal
}

// Delta returns the signed difference calculated - declared.
func (d Discrepancy) Delta() decimal.Decimal {
	return d.Calculated.Sub(d.Declared)
}

func (d Discrepancy) Error() string {
	where := string(ScopeGlobal)
	if d.Scope == ScopeYear {
		where = fmt.Sprintf("%s %d", ScopeYear, d.Ejercicio)
	}
	return fmt.Sprintf("%s: %s calculated %s != declared %s (delta %s)",
		where, d.Column, d.Calculated.StringFixed(2), d.Declared.StringFixed(2), d.Delta().StringFixed(2))
}

// Check reconciles a document against one aggregation pass:
//   - global: computed sums of every amount column vs the declared
//     document totals,
//   - per-year declared: every computed year vs the document's declared
//     summary row for that year,
//   - per-year self-consistency: every year aggregate's reported sums vs
//     an independent recomputation from the raw records.
//
// Processing never stops on a mismatch; all discrepancies come back in
// one list, globals first, then years ascending.
func Check(doc *model.Document, res *aggregate.Result) []Discrepancy {
	var out []Discrepancy

	out = append(out, checkGlobal(doc.Totales, res.Totals())...)
	out = append(out, checkDeclaredYears(doc.Ejercicios, res.Years)...)
	out = append(out, checkYearConsistency(doc.Records, res.Years)...)

	return out
}

func checkGlobal(declared, calculated model.DocumentTotals) []Discrepancy {
	var out []Discrepancy
	for _, c := range []struct {
		column     string
		declared   decimal.Decimal
		calculated decimal.Decimal
	}{
		{"cargo", declared.Cargo, calculated.Cargo},
		{"datas", declared.Datas, calculated.Datas},
		{"voluntaria", declared.Voluntaria, calculated.Voluntaria},
		{"ejecutiva", declared.Ejecutiva, calculated.Ejecutiva},
		{"pendiente", declared.Pendiente, calculated.Pendiente},
		{"liquido", declared.Liquido(), calculated.Liquido()},
	} {
		if exceedsTolerance(c.declared, c.calculated) {
			out = append(out, Discrepancy{Scope: ScopeGlobal, Column: c.column, Declared: c.declared, Calculated: c.calculated})
		}
	}
	return out
}

func checkDeclaredYears(declared []model.YearTotals, calculated []model.YearTotals) []Discrepancy {
	if len(declared) == 0 {
		// The source declared no per-year rows; there is nothing to hold
		// the computed years against.
		return nil
	}
	declaredBy := make(map[int]model.YearTotals, len(declared))
	for _, d := range declared {
		declaredBy[d.Ejercicio] = d
	}
	calculatedBy := make(map[int]model.YearTotals, len(calculated))
	for _, c := range calculated {
		calculatedBy[c.Ejercicio] = c
	}

	var out []Discrepancy
	for _, c := range calculated {
		d, ok := declaredBy[c.Ejercicio]
		if !ok {
			out = append(out, Discrepancy{
				Scope: ScopeYear, Ejercicio: c.Ejercicio, Column: "registros",
				Calculated: decimal.NewFromInt(int64(c.Registros)),
			})
			continue
		}
		out = append(out, compareYears(d, c)...)
	}
	// Declared summary rows for years with no records at all.
	for _, d := range declared {
		if _, ok := calculatedBy[d.Ejercicio]; !ok {
			out = append(out, Discrepancy{
				Scope: ScopeYear, Ejercicio: d.Ejercicio, Column: "registros",
				Declared: decimal.NewFromInt(int64(d.Registros)),
			})
		}
	}
	return out
}

// checkYearConsistency recomputes every year from the raw records through
// an independent path and compares it with the aggregate's own figures.
// This catches aggregation bugs regardless of what the document declares.
func checkYearConsistency(records []model.TributeRecord, years []model.YearTotals) []Discrepancy {
	recomputed := model.YearTotalsOf(records)
	recomputedBy := make(map[int]model.YearTotals, len(recomputed))
	for _, y := range recomputed {
		recomputedBy[y.Ejercicio] = y
	}

	var out []Discrepancy
	for _, y := range years {
		r, ok := recomputedBy[y.Ejercicio]
		if !ok {
			out = append(out, Discrepancy{
				Scope: ScopeYear, Ejercicio: y.Ejercicio, Column: "registros",
				Calculated: decimal.NewFromInt(int64(y.Registros)),
			})
			continue
		}
		// Declared = the recomputation, calculated = the aggregate view.
		out = append(out, compareYears(r, y)...)
	}
	return out
}

func compareYears(declared, calculated model.YearTotals) []Discrepancy {
	var out []Discrepancy
	for _, c := range []struct {
		column     string
		declared   decimal.Decimal
		calculated decimal.Decimal
	}{
		{"registros", decimal.NewFromInt(int64(declared.Registros)), decimal.NewFromInt(int64(calculated.Registros))},
		{"cargo", declared.Cargo, calculated.Cargo},
		{"datas", declared.Datas, calculated.Datas},
		{"voluntaria", declared.Voluntaria, calculated.Voluntaria},
		{"ejecutiva", declared.Ejecutiva, calculated.Ejecutiva},
		{"pendiente", declared.Pendiente, calculated.Pendiente},
		{"liquido", declared.Liquido(), calculated.Liquido()},
	} {
		if exceedsTolerance(c.declared, c.calculated) {
			out = append(out, Discrepancy{
				Scope: ScopeYear, Ejercicio: calculated.Ejercicio, Column: c.column,
				Declared: c.declared, Calculated: c.calculated,
			})
		}
	}
	return out
}

func exceedsTolerance(declared, calculated decimal.Decimal) bool {
	return calculated.Sub(declared).Abs().GreaterThan(Tolerance)
}
