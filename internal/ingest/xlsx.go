package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// headerScanRows is how deep into a sheet the header row may sit; the
// agency's workbooks open with a few title rows.
const headerScanRows = 10

// XLSXExtractor reads cuenta de recaudación workbooks. Only the first
// sheet is read; the header row is located by column name within the
// first few rows.
type XLSXExtractor struct{}

// Format returns the extractor name.
func (e *XLSXExtractor) Format() string { return "xlsx" }

// Extract reads an XLSX source.
func (e *XLSXExtractor) Extract(r io.Reader) (*Extraction, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}

	idx, start := findHeader(rows)
	if idx == nil {
		return nil, fmt.Errorf("sheet %q has no header row with the required columns (want %s)", sheets[0], Header)
	}

	x := &Extraction{}
	for i, row := range rows[start:] {
		line := start + i + 1
		if blankRow(row) {
			continue
		}

		rec, ent, err := parseRow(canonicalRow(row, idx))
		if err != nil {
			x.skip(line, err.Error(), row, ',')
			continue
		}
		if x.Entidad == "" && ent != "" {
			x.Entidad = ent
		}
		x.Records = append(x.Records, rec)
	}
	return x, nil
}

// findHeader scans the leading rows for the header and returns the
// column mapping plus the index of the first data row.
func findHeader(rows [][]string) ([]int, int) {
	limit := len(rows)
	if limit > headerScanRows {
		limit = headerScanRows
	}
	for i := 0; i < limit; i++ {
		if !isHeaderRow(rows[i]) {
			continue
		}
		if idx, ok := columnIndex(rows[i]); ok {
			return idx, i + 1
		}
	}
	return nil, 0
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
