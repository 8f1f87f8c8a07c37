package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/recauda-dev/recauda/internal/model"
)

// CSVExtractor reads cuenta de recaudación CSV exports. Both comma and
// semicolon delimited files are accepted; leave Comma zero to detect
// the delimiter from the first line.
type CSVExtractor struct {
	Comma rune
}

// Format returns the extractor name.
func (e *CSVExtractor) Format() string { return "csv" }

// Extract reads a CSV source. A leading header row is matched by column
// name and may reorder columns or carry extras; without one the
// canonical column order is assumed.
func (e *CSVExtractor) Extract(r io.Reader) (*Extraction, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	comma := e.comma(data)
	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	x := &Extraction{}
	if len(rows) == 0 {
		return x, nil
	}

	idx := identityIndex()
	need := numFields
	start := 0
	if isHeaderRow(rows[0]) {
		m, ok := columnIndex(rows[0])
		if !ok {
			return nil, fmt.Errorf("header row is missing required columns (want %s)", Header)
		}
		idx = m
		need = maxIndex(m) + 1
		start = 1
	}

	for i, row := range rows[start:] {
		line := start + i + 1
		if len(row) < need {
			x.skip(line, fmt.Sprintf("expected %d fields, got %d", need, len(row)), row, comma)
			continue
		}

		rec, ent, err := parseRow(canonicalRow(row, idx))
		if err != nil {
			x.skip(line, err.Error(), row, comma)
			continue
		}
		if x.Entidad == "" && ent != "" {
			x.Entidad = ent
		}
		x.Records = append(x.Records, rec)
	}
	return x, nil
}

func (e *CSVExtractor) comma(data []byte) rune {
	if e.Comma != 0 {
		return e.Comma
	}
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

func identityIndex() []int {
	idx := make([]int, numFields)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func maxIndex(idx []int) int {
	max := 0
	for _, i := range idx {
		if i > max {
			max = i
		}
	}
	return max
}

// WriteRecords writes records as a canonical CSV (including header).
func WriteRecords(w io.Writer, entidad string, records []model.TributeRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(headerFields); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, r := range records {
		if err := cw.Write(MarshalRecord(entidad, r)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
