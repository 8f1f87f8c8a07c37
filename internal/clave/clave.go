// Package clave parses the structured hierarchical keys used on both code
// axes of a cuenta de recaudación (clave de contabilidad, clave de
// recaudación), e.g. "026/2021/58/064/573" or "2021.102.00".
package clave

import (
	"fmt"
	"strconv"
	"strings"
)

// Defaults describe the slash-form layout delivered by the collection
// agency: entity / year / concept / book / entry.
const (
	DefaultDelimiter      = "/"
	DefaultYearSegment    = 1
	DefaultConceptSegment = 2
)

// Layout describes how to read a clave: the segment delimiter and the
// zero-based positions of the fiscal-year and concept-code segments.
type Layout struct {
	Delimiter      string
	YearSegment    int
	ConceptSegment int
}

// DefaultLayout returns the slash-form layout.
func DefaultLayout() Layout {
	return Layout{
		Delimiter:      DefaultDelimiter,
		YearSegment:    DefaultYearSegment,
		ConceptSegment: DefaultConceptSegment,
	}
}

// Segments splits a clave into its ordered segments. Empty input yields nil.
func (l Layout) Segments(clave string) []string {
	if clave == "" {
		return nil
	}
	return strings.Split(clave, l.Delimiter)
}

// Year extracts the fiscal year carried in the clave.
// "026/2021/58/064/573" -> 2021 under the default layout.
func (l Layout) Year(clave string) (int, error) {
	segs := l.Segments(clave)
	if l.YearSegment < 0 || l.YearSegment >= len(segs) {
		return 0, fmt.Errorf("clave %q has no year segment at position %d", clave, l.YearSegment)
	}
	year, err := strconv.Atoi(segs[l.YearSegment])
	if err != nil {
		return 0, fmt.Errorf("invalid year in clave %q: %w", clave, err)
	}
	if year < 0 {
		return 0, fmt.Errorf("negative year in clave %q", clave)
	}
	return year, nil
}

// YearString returns the raw year segment without parsing it, or "" when
// the clave is too short to carry one. Recognition-year comparisons work
// on the raw segments so that non-numeric keys still compare stable.
func (l Layout) YearString(clave string) string {
	segs := l.Segments(clave)
	if l.YearSegment < 0 || l.YearSegment >= len(segs) {
		return ""
	}
	return segs[l.YearSegment]
}

// ConceptCode extracts the concept-code segment, or "" when the clave is
// too short to carry one. Callers fall back to the record's concept field.
func (l Layout) ConceptCode(clave string) string {
	segs := l.Segments(clave)
	if l.ConceptSegment < 0 || l.ConceptSegment >= len(segs) {
		return ""
	}
	return segs[l.ConceptSegment]
}
