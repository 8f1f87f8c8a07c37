package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// SkippedRow records one source row that could not be ingested.
type SkippedRow struct {
	Line   int
	Reason string
	Raw    string
}

func (s SkippedRow) String() string {
	return fmt.Sprintf("line %d: %s", s.Line, s.Reason)
}

func (x *Extraction) skip(line int, reason string, row []string, comma rune) {
	x.Skipped = append(x.Skipped, SkippedRow{
		Line:   line,
		Reason: reason,
		Raw:    strings.Join(row, string(comma)),
	})
}

// SkippedHeader is the CSV header for the skipped-rows report.
const SkippedHeader = "timestamp,source,line,reason,raw"

const (
	skippedNumFields = 5
	colTimestamp     = 0
	colSource        = 1
	colLine          = 2
	colReason        = 3
	colRaw           = 4
)

func marshalSkipped(at time.Time, source string, s SkippedRow) []string {
	row := make([]string, skippedNumFields)
	row[colTimestamp] = at.Format(time.RFC3339)
	row[colSource] = source
	row[colLine] = strconv.Itoa(s.Line)
	row[colReason] = s.Reason
	row[colRaw] = s.Raw
	return row
}

// AppendSkipped writes skipped rows to a CSV report at path, creating
// the file and header if needed. Source names the file the rows came
// from.
func AppendSkipped(path, source string, rows []SkippedRow) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report dir: %w", err)
		}
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening skipped report: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)

	if needsHeader {
		if err := cw.Write(strings.Split(SkippedHeader, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	at := time.Now().UTC()
	for i, s := range rows {
		if err := cw.Write(marshalSkipped(at, source, s)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
