// Package aggregate builds the derived views of a record set: per-year
// totals, per-concept aggregates, and per-group aggregates with an
// explicit SIN AGRUPAR bucket for unmapped concepts. Aggregation is a
// pure function of (records, mapper); identical input always produces
// identical output.
package aggregate

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/recauda-dev/recauda/internal/grouping"
	"github.com/recauda-dev/recauda/internal/model"
)

// ConceptAggregate sums the records of one concept within one year.
type ConceptAggregate struct {
	Ejercicio  int
	Code       string
	Name       string // configured name, else first record's concept field, else the code
	Registros  int
	Cargo      decimal.Decimal
	Datas      decimal.Decimal
	Voluntaria decimal.Decimal
	Ejecutiva  decimal.Decimal
	Pendiente  decimal.Decimal
	Records    []model.TributeRecord
}

// Liquido returns the concept's settled amount.
func (a ConceptAggregate) Liquido() decimal.Decimal {
	return a.Voluntaria.Add(a.Ejecutiva)
}

func (a *ConceptAggregate) add(r model.TributeRecord) {
	a.Registros++
	a.Cargo = a.Cargo.Add(r.Cargo)
	a.Datas = a.Datas.Add(r.Datas)
	a.Voluntaria = a.Voluntaria.Add(r.Voluntaria)
	a.Ejecutiva = a.Ejecutiva.Add(r.Ejecutiva)
	a.Pendiente = a.Pendiente.Add(r.Pendiente)
	a.Records = append(a.Records, r)
}

// GroupAggregate sums the records of one custom group (or the SIN AGRUPAR
// bucket) within one year. The two clave sets are the Code Compactor's
// input for SICAL rendering.
type GroupAggregate struct {
	Ejercicio          int
	Name               string
	Category           string // accounting-category label, may be empty
	Registros          int
	Cargo              decimal.Decimal
	Datas              decimal.Decimal
	Voluntaria         decimal.Decimal
	Ejecutiva          decimal.Decimal
	Pendiente          decimal.Decimal
	Records            []model.TributeRecord
	Concepts           []ConceptAggregate // members, sorted by code
	ClavesContabilidad []string           // distinct, sorted
	ClavesRecaudacion  []string           // distinct, sorted
}

// Liquido returns the group's settled amount.
func (g GroupAggregate) Liquido() decimal.Decimal {
	return g.Voluntaria.Add(g.Ejecutiva)
}

func (g *GroupAggregate) add(r model.TributeRecord) {
	g.Registros++
	g.Cargo = g.Cargo.Add(r.Cargo)
	g.Datas = g.Datas.Add(r.Datas)
	g.Voluntaria = g.Voluntaria.Add(r.Voluntaria)
	g.Ejecutiva = g.Ejecutiva.Add(r.Ejecutiva)
	g.Pendiente = g.Pendiente.Add(r.Pendiente)
	g.Records = append(g.Records, r)
}

// UnmappedCode is the warning raised for records whose concept code
// matches no configured group.
type UnmappedCode struct {
	Ejercicio int
	Code      string
	Registros int
}

func (u UnmappedCode) String() string {
	return fmt.Sprintf("concept %q has no group in %d (%d records)", u.Code, u.Ejercicio, u.Registros)
}

// Result holds every derived view of one aggregation pass.
type Result struct {
	Years    []model.YearTotals // ascending by year
	Concepts []ConceptAggregate // year ascending, then concept code
	Groups   []GroupAggregate   // year ascending, then group declaration order, SIN AGRUPAR last
	Unmapped []UnmappedCode     // year ascending, then code
}

// Totals sums the per-year views into document-level totals.
func (r *Result) Totals() model.DocumentTotals {
	var t model.DocumentTotals
	for _, y := range r.Years {
		t.Cargo = t.Cargo.Add(y.Cargo)
		t.Datas = t.Datas.Add(y.Datas)
		t.Voluntaria = t.Voluntaria.Add(y.Voluntaria)
		t.Ejecutiva = t.Ejecutiva.Add(y.Ejecutiva)
		t.Pendiente = t.Pendiente.Add(y.Pendiente)
	}
	return t
}

// YearGroups returns the group aggregates of one year, in stored order.
func (r *Result) YearGroups(year int) []GroupAggregate {
	var out []GroupAggregate
	for _, g := range r.Groups {
		if g.Ejercicio == year {
			out = append(out, g)
		}
	}
	return out
}

// Aggregate builds every view of the record set. Years are independent
// partitions, so they aggregate concurrently; each goroutine writes only
// its own slot and the merge follows year order, which keeps the output
// identical to a sequential pass.
func Aggregate(records []model.TributeRecord, m *grouping.Mapper) *Result {
	byYear := make(map[int][]model.TributeRecord)
	for _, r := range records {
		byYear[r.Ejercicio] = append(byYear[r.Ejercicio], r)
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	parts := make([]yearPart, len(years))
	var wg sync.WaitGroup
	for i, y := range years {
		wg.Add(1)
		go func(i, year int) {
			defer wg.Done()
			parts[i] = aggregateYear(year, byYear[year], m)
		}(i, y)
	}
	wg.Wait()

	res := &Result{}
	for _, p := range parts {
		res.Years = append(res.Years, p.totals)
		res.Concepts = append(res.Concepts, p.concepts...)
		res.Groups = append(res.Groups, p.groups...)
		res.Unmapped = append(res.Unmapped, p.unmapped...)
	}
	return res
}

type yearPart struct {
	totals   model.YearTotals
	concepts []ConceptAggregate
	groups   []GroupAggregate
	unmapped []UnmappedCode
}

func aggregateYear(year int, records []model.TributeRecord, m *grouping.Mapper) yearPart {
	p := yearPart{totals: model.YearTotals{Ejercicio: year}}
	groupIdx := make(map[string]*GroupAggregate)
	unmappedIdx := make(map[string]*UnmappedCode)

	for _, r := range records {
		p.totals.Registros++
		p.totals.Cargo = p.totals.Cargo.Add(r.Cargo)
		p.totals.Datas = p.totals.Datas.Add(r.Datas)
		p.totals.Voluntaria = p.totals.Voluntaria.Add(r.Voluntaria)
		p.totals.Ejecutiva = p.totals.Ejecutiva.Add(r.Ejecutiva)
		p.totals.Pendiente = p.totals.Pendiente.Add(r.Pendiente)

		code := m.ConceptCode(r)
		name, ok := m.GroupFor(code)
		if !ok {
			name = grouping.Ungrouped
			u, seen := unmappedIdx[code]
			if !seen {
				u = &UnmappedCode{Ejercicio: year, Code: code}
				unmappedIdx[code] = u
			}
			u.Registros++
		}
		g, seen := groupIdx[name]
		if !seen {
			g = &GroupAggregate{Ejercicio: year, Name: name, Category: m.Category(name)}
			groupIdx[name] = g
		}
		g.add(r)
	}

	p.concepts = conceptsOf(year, records, m)

	for _, g := range groupIdx {
		g.Concepts = conceptsOf(year, g.Records, m)
		g.ClavesContabilidad = distinctClaves(g.Records, func(r model.TributeRecord) string { return r.ClaveContabilidad })
		g.ClavesRecaudacion = distinctClaves(g.Records, func(r model.TributeRecord) string { return r.ClaveRecaudacion })
		p.groups = append(p.groups, *g)
	}
	sort.Slice(p.groups, func(i, j int) bool {
		oi, oj := m.GroupOrder(p.groups[i].Name), m.GroupOrder(p.groups[j].Name)
		if oi != oj {
			return oi < oj
		}
		return p.groups[i].Name < p.groups[j].Name
	})

	for _, u := range unmappedIdx {
		p.unmapped = append(p.unmapped, *u)
	}
	sort.Slice(p.unmapped, func(i, j int) bool { return p.unmapped[i].Code < p.unmapped[j].Code })

	return p
}

// conceptsOf partitions records by concept code, sorted by code.
func conceptsOf(year int, records []model.TributeRecord, m *grouping.Mapper) []ConceptAggregate {
	idx := make(map[string]*ConceptAggregate)
	for _, r := range records {
		code := m.ConceptCode(r)
		c, ok := idx[code]
		if !ok {
			name := m.ConceptName(code)
			if name == "" {
				name = r.Concepto
			}
			if name == "" {
				name = code
			}
			c = &ConceptAggregate{Ejercicio: year, Code: code, Name: name}
			idx[code] = c
		}
		c.add(r)
	}
	out := make([]ConceptAggregate, 0, len(idx))
	for _, c := range idx {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func distinctClaves(records []model.TributeRecord, key func(model.TributeRecord) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		k := key(r)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
