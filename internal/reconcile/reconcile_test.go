package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recauda-dev/recauda/internal/aggregate"
	"github.com/recauda-dev/recauda/internal/grouping"
	"github.com/recauda-dev/recauda/internal/model"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testRecords() []model.TributeRecord {
	return []model.TributeRecord{
		{Ejercicio: 2013, Concepto: "IBI URBANA", Cargo: dec("600.00"), Ejecutiva: dec("553.61"), Pendiente: dec("46.39")},
		{Ejercicio: 2014, Concepto: "IBI URBANA", Cargo: dec("100.00"), Pendiente: dec("100.00")},
		{Ejercicio: 2014, Concepto: "BASURA", Cargo: dec("80.00"), Voluntaria: dec("60.00"), Datas: dec("20.00")},
	}
}

// cleanDocument builds a document whose declared figures match its records.
func cleanDocument() *model.Document {
	records := testRecords()
	return &model.Document{
		EntidadCodigo: "026",
		Ejercicio:     model.MaxEjercicio(records),
		Records:       records,
		Ejercicios:    model.YearTotalsOf(records),
		Totales:       model.TotalsOf(records),
	}
}

func run(doc *model.Document) ([]Discrepancy, *aggregate.Result) {
	res := aggregate.Aggregate(doc.Records, grouping.NewMapper(grouping.DefaultConfig()))
	return Check(doc, res), res
}

func TestCheck_CleanDocument(t *testing.T) {
	got, _ := run(cleanDocument())
	assert.Empty(t, got)
}

func TestCheck_ToleranceBoundary(t *testing.T) {
	// One cent of drift is inside the rounding budget.
	doc := cleanDocument()
	doc.Totales.Cargo = doc.Totales.Cargo.Add(dec("0.01"))
	got, _ := run(doc)
	assert.Empty(t, got)

	// One tenth of a cent beyond it is not.
	doc = cleanDocument()
	doc.Totales.Cargo = doc.Totales.Cargo.Add(dec("0.011"))
	got, _ = run(doc)
	require.Len(t, got, 1)
	assert.Equal(t, ScopeGlobal, got[0].Scope)
	assert.Equal(t, "cargo", got[0].Column)
	assert.True(t, dec("-0.011").Equal(got[0].Delta()))
}

func TestCheck_GlobalVoluntariaAlsoShiftsLiquido(t *testing.T) {
	doc := cleanDocument()
	doc.Totales.Voluntaria = doc.Totales.Voluntaria.Add(dec("5.00"))
	got, _ := run(doc)

	require.Len(t, got, 2)
	assert.Equal(t, "voluntaria", got[0].Column)
	assert.Equal(t, "liquido", got[1].Column)
	for _, d := range got {
		assert.Equal(t, ScopeGlobal, d.Scope)
		assert.True(t, dec("-5.00").Equal(d.Delta()))
	}
}

func TestCheck_DeclaredYearMismatch(t *testing.T) {
	doc := cleanDocument()
	for i := range doc.Ejercicios {
		if doc.Ejercicios[i].Ejercicio == 2014 {
			doc.Ejercicios[i].Datas = doc.Ejercicios[i].Datas.Add(dec("2.00"))
		}
	}
	got, _ := run(doc)

	require.Len(t, got, 1)
	assert.Equal(t, ScopeYear, got[0].Scope)
	assert.Equal(t, 2014, got[0].Ejercicio)
	assert.Equal(t, "datas", got[0].Column)
	assert.True(t, dec("-2.00").Equal(got[0].Delta()))
}

func TestCheck_MissingDeclaredYear(t *testing.T) {
	doc := cleanDocument()
	var kept []model.YearTotals
	for _, y := range doc.Ejercicios {
		if y.Ejercicio != 2014 {
			kept = append(kept, y)
		}
	}
	doc.Ejercicios = kept
	got, _ := run(doc)

	require.Len(t, got, 1)
	assert.Equal(t, ScopeYear, got[0].Scope)
	assert.Equal(t, 2014, got[0].Ejercicio)
	assert.Equal(t, "registros", got[0].Column)
	assert.True(t, got[0].Declared.IsZero())
	assert.True(t, dec("2").Equal(got[0].Calculated))
}

func TestCheck_ExtraDeclaredYear(t *testing.T) {
	doc := cleanDocument()
	doc.Ejercicios = append(doc.Ejercicios, model.YearTotals{Ejercicio: 2015, Registros: 3})
	got, _ := run(doc)

	require.Len(t, got, 1)
	assert.Equal(t, 2015, got[0].Ejercicio)
	assert.Equal(t, "registros", got[0].Column)
	assert.True(t, dec("3").Equal(got[0].Declared))
	assert.True(t, got[0].Calculated.IsZero())
}

func TestCheck_SelfConsistencyCatchesTamperedAggregate(t *testing.T) {
	doc := cleanDocument()
	doc.Ejercicios = nil // isolate the self-consistency check
	res := aggregate.Aggregate(doc.Records, grouping.NewMapper(grouping.DefaultConfig()))
	res.Years[0].Voluntaria = res.Years[0].Voluntaria.Add(dec("10.00"))

	got := Check(doc, res)
	// The tampering surfaces twice: the global totals derive from the
	// tampered years, and the per-year recomputation disagrees with the
	// aggregate's own figure. Both flag voluntaria plus the liquido it feeds.
	require.Len(t, got, 4)
	globalColumns := map[string]bool{}
	yearColumns := map[string]bool{}
	for _, d := range got {
		assert.True(t, dec("10.00").Equal(d.Delta()), "delta of %s", d.Error())
		if d.Scope == ScopeGlobal {
			globalColumns[d.Column] = true
			continue
		}
		assert.Equal(t, 2013, d.Ejercicio)
		yearColumns[d.Column] = true
	}
	assert.True(t, globalColumns["voluntaria"])
	assert.True(t, globalColumns["liquido"])
	assert.True(t, yearColumns["voluntaria"])
	assert.True(t, yearColumns["liquido"])
}

func TestDiscrepancyError(t *testing.T) {
	d := Discrepancy{Scope: ScopeGlobal, Column: "cargo", Declared: dec("5.00"), Calculated: dec("10.00")}
	assert.Equal(t, "total: cargo calculated 10.00 != declared 5.00 (delta 5.00)", d.Error())

	d = Discrepancy{Scope: ScopeYear, Ejercicio: 2021, Column: "liquido", Declared: dec("553.61"), Calculated: dec("0.00")}
	assert.Equal(t, "ejercicio 2021: liquido calculated 0.00 != declared 553.61 (delta -553.61)", d.Error())
}
