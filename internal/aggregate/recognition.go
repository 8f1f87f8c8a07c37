package aggregate

import (
	"fmt"
	"sort"

	"github.com/recauda-dev/recauda/internal/grouping"
	"github.com/recauda-dev/recauda/internal/model"
)

// RecognitionGroups rebuilds the grouped view keyed by recognition year:
// for agency-managed concepts the year carried in the clave de
// contabilidad replaces the record's own ejercicio, and managed records
// whose two claves disagree on the year split into "(Rec. YYYY)"
// subgroups after their parent group. Settlements of managed tributes
// span several recognition years, and SICAL entries book each one
// against its own year.
func RecognitionGroups(records []model.TributeRecord, m *grouping.Mapper) []GroupAggregate {
	byYear := make(map[int][]model.TributeRecord)
	for _, r := range records {
		y := recognitionYear(r, m)
		byYear[y] = append(byYear[y], r)
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	var out []GroupAggregate
	for _, y := range years {
		part := aggregateYear(y, byYear[y], m)
		out = append(out, splitMixed(y, part.groups, m)...)
	}
	return out
}

// splitMixed separates each group's mixed-year managed records into
// per-recognition-year subgroups, keeping the parent group first.
func splitMixed(year int, groups []GroupAggregate, m *grouping.Mapper) []GroupAggregate {
	layout := m.Layout()
	var out []GroupAggregate
	for _, g := range groups {
		var normal, mixed []model.TributeRecord
		for _, r := range g.Records {
			if m.IsManaged(m.ConceptCode(r)) && layout.YearString(r.ClaveRecaudacion) != layout.YearString(r.ClaveContabilidad) {
				mixed = append(mixed, r)
			} else {
				normal = append(normal, r)
			}
		}
		if len(normal) > 0 {
			out = append(out, buildGroup(year, g.Name, g.Category, normal, m))
		}
		if len(mixed) == 0 {
			continue
		}
		byCont := make(map[string][]model.TributeRecord)
		for _, r := range mixed {
			cy := layout.YearString(r.ClaveContabilidad)
			byCont[cy] = append(byCont[cy], r)
		}
		contYears := make([]string, 0, len(byCont))
		for cy := range byCont {
			contYears = append(contYears, cy)
		}
		sort.Strings(contYears)
		for _, cy := range contYears {
			name := fmt.Sprintf("%s (Rec. %s)", g.Name, cy)
			out = append(out, buildGroup(year, name, g.Category, byCont[cy], m))
		}
	}
	return out
}

func buildGroup(year int, name, category string, records []model.TributeRecord, m *grouping.Mapper) GroupAggregate {
	g := GroupAggregate{Ejercicio: year, Name: name, Category: category}
	for _, r := range records {
		g.add(r)
	}
	g.Concepts = conceptsOf(year, records, m)
	g.ClavesContabilidad = distinctClaves(records, func(r model.TributeRecord) string { return r.ClaveContabilidad })
	g.ClavesRecaudacion = distinctClaves(records, func(r model.TributeRecord) string { return r.ClaveRecaudacion })
	return g
}

// recognitionYear is the year a record books against: the clave de
// contabilidad year for managed concepts when it parses, the record's
// own ejercicio otherwise.
func recognitionYear(r model.TributeRecord, m *grouping.Mapper) int {
	if m.IsManaged(m.ConceptCode(r)) {
		if y, err := m.Layout().Year(r.ClaveContabilidad); err == nil {
			return y
		}
	}
	return r.Ejercicio
}
