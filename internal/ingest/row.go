package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/recauda-dev/recauda/internal/model"
)

// Header is the canonical column layout of a cuenta de recaudación file.
const Header = "ENT,C_EJERCICIO,C_CONCEPTO,CLAVE_C,CLAVE_R,C_CARGO,C_DATAS,C_VOLUNTARIA,C_EJECUTIVA,C_PENDIENTE"

const (
	numFields     = 10
	colEnt        = 0
	colEjercicio  = 1
	colConcepto   = 2
	colClaveC     = 3
	colClaveR     = 4
	colCargo      = 5
	colDatas      = 6
	colVoluntaria = 7
	colEjecutiva  = 8
	colPendiente  = 9
)

var headerFields = strings.Split(Header, ",")

// columnIndex maps a header row to canonical column positions. Matching
// is by name, case-insensitive, so sources may reorder columns or carry
// extras. Returns false when any required column is missing.
func columnIndex(row []string) ([]int, bool) {
	byName := make(map[string]int, len(row))
	for i, cell := range row {
		byName[strings.ToUpper(strings.TrimSpace(cell))] = i
	}

	idx := make([]int, numFields)
	for col, name := range headerFields {
		i, ok := byName[name]
		if !ok {
			return nil, false
		}
		idx[col] = i
	}
	return idx, true
}

// isHeaderRow reports whether row looks like the column header rather
// than data.
func isHeaderRow(row []string) bool {
	for _, cell := range row {
		if strings.EqualFold(strings.TrimSpace(cell), "C_EJERCICIO") {
			return true
		}
	}
	return false
}

// canonicalRow reorders a source row into canonical column positions.
// Cells beyond the end of row (trimmed trailing blanks in XLSX sheets)
// read as empty.
func canonicalRow(row []string, idx []int) []string {
	rec := make([]string, numFields)
	for col, i := range idx {
		if i < len(row) {
			rec[col] = row[i]
		}
	}
	return rec
}

// parseRow converts a canonical-order row into a record plus the entity
// code it names. The error message is the skip reason shown to users.
func parseRow(rec []string) (model.TributeRecord, string, error) {
	if len(rec) != numFields {
		return model.TributeRecord{}, "", fmt.Errorf("expected %d fields, got %d", numFields, len(rec))
	}

	year, err := strconv.Atoi(strings.TrimSpace(rec[colEjercicio]))
	if err != nil {
		return model.TributeRecord{}, "", fmt.Errorf("parsing C_EJERCICIO %q: %w", rec[colEjercicio], err)
	}
	if year <= 0 {
		return model.TributeRecord{}, "", fmt.Errorf("C_EJERCICIO %d is not a valid year", year)
	}

	concepto := strings.TrimSpace(rec[colConcepto])
	claveC := strings.TrimSpace(rec[colClaveC])
	claveR := strings.TrimSpace(rec[colClaveR])
	if concepto == "" && claveC == "" && claveR == "" {
		return model.TributeRecord{}, "", fmt.Errorf("row has no concepto and no claves")
	}

	r := model.TributeRecord{
		Ejercicio:         year,
		Concepto:          concepto,
		ClaveContabilidad: claveC,
		ClaveRecaudacion:  claveR,
	}

	amounts := []struct {
		name string
		col  int
		dst  *decimal.Decimal
	}{
		{"C_CARGO", colCargo, &r.Cargo},
		{"C_DATAS", colDatas, &r.Datas},
		{"C_VOLUNTARIA", colVoluntaria, &r.Voluntaria},
		{"C_EJECUTIVA", colEjecutiva, &r.Ejecutiva},
		{"C_PENDIENTE", colPendiente, &r.Pendiente},
	}
	for _, a := range amounts {
		d, err := parseAmount(a.name, rec[a.col])
		if err != nil {
			return model.TributeRecord{}, "", err
		}
		*a.dst = d
	}

	return r, strings.TrimSpace(rec[colEnt]), nil
}

// parseAmount parses one money cell. Blank cells are zero; values finer
// than a céntimo are rejected.
func parseAmount(name, s string) (decimal.Decimal, error) {
	s = normalizeAmount(s)
	if s == "" {
		return decimal.Decimal{}, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing %s %q: %w", name, s, err)
	}
	if !d.Equal(d.Round(2)) {
		return decimal.Decimal{}, fmt.Errorf("%s %s has more than 2 decimal places", name, s)
	}
	return d, nil
}

// normalizeAmount rewrites Spanish number formats to the plain decimal
// form NewFromString accepts. When a cell has both separators the
// rightmost one is the decimal mark; a lone comma is a decimal comma; a
// repeated separator can only be grouping thousands.
func normalizeAmount(s string) string {
	s = strings.TrimSpace(s)
	dots := strings.Count(s, ".")
	commas := strings.Count(s, ",")

	switch {
	case dots > 0 && commas > 0:
		if strings.LastIndexByte(s, ',') > strings.LastIndexByte(s, '.') {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case commas > 1:
		s = strings.ReplaceAll(s, ",", "")
	case commas == 1:
		s = strings.Replace(s, ",", ".", 1)
	case dots > 1:
		s = strings.ReplaceAll(s, ".", "")
	}
	return s
}

// MarshalRecord converts a record back to a canonical CSV row.
func MarshalRecord(entidad string, r model.TributeRecord) []string {
	rec := make([]string, numFields)
	rec[colEnt] = entidad
	rec[colEjercicio] = strconv.Itoa(r.Ejercicio)
	rec[colConcepto] = r.Concepto
	rec[colClaveC] = r.ClaveContabilidad
	rec[colClaveR] = r.ClaveRecaudacion
	rec[colCargo] = r.Cargo.StringFixed(2)
	rec[colDatas] = r.Datas.StringFixed(2)
	rec[colVoluntaria] = r.Voluntaria.StringFixed(2)
	rec[colEjecutiva] = r.Ejecutiva.StringFixed(2)
	rec[colPendiente] = r.Pendiente.StringFixed(2)
	return rec
}
