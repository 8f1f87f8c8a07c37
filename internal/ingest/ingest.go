// Package ingest extracts tribute records from cuenta de recaudación
// files. Extractors are registered per file extension; CSV and XLSX
// sources are built in. Rows that cannot be parsed never abort an
// extraction: they are collected as SkippedRows with a line number and
// reason.
package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/recauda-dev/recauda/internal/model"
)

// Extractor converts one source file into an Extraction.
type Extractor interface {
	Extract(r io.Reader) (*Extraction, error)
	Format() string
}

// Extraction is the outcome of reading one source file: the accepted
// records, the issuing entity code, and the rows that were skipped.
type Extraction struct {
	Entidad string
	Records []model.TributeRecord
	Skipped []SkippedRow
}

// Document assembles the canonical document for the extraction. The
// agency's files carry no separate totals sheet, so the declared year
// rows and document totals are computed from the accepted records.
func (x *Extraction) Document() *model.Document {
	return &model.Document{
		EntidadCodigo: x.Entidad,
		Ejercicio:     model.MaxEjercicio(x.Records),
		Records:       x.Records,
		Ejercicios:    model.YearTotalsOf(x.Records),
		Totales:       model.TotalsOf(x.Records),
	}
}

// Registry holds extractors keyed by format (file extension).
type Registry struct {
	extractors map[string]Extractor
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{extractors: make(map[string]Extractor)}
}

// Register adds an extractor. Panics on duplicate format.
func (r *Registry) Register(e Extractor) {
	key := strings.ToLower(e.Format())
	if _, ok := r.extractors[key]; ok {
		panic("duplicate extractor format: " + key)
	}
	r.extractors[key] = e
}

// Get returns the extractor for format, or nil.
func (r *Registry) Get(format string) Extractor {
	return r.extractors[strings.ToLower(format)]
}

// ForPath returns the extractor for the path's extension, or nil.
func (r *Registry) ForPath(path string) Extractor {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return nil
	}
	return r.Get(ext)
}

// DefaultRegistry returns a registry with all built-in extractors.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&CSVExtractor{})
	r.Register(&XLSXExtractor{})
	return r
}

// ExtractFile extracts records from path using the extractor registered
// for its extension.
func ExtractFile(path string) (*Extraction, error) {
	e := DefaultRegistry().ForPath(path)
	if e == nil {
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	x, err := e.Extract(f)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", filepath.Base(path), err)
	}
	return x, nil
}
