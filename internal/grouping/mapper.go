package grouping

import (
	"fmt"

	"github.com/recauda-dev/recauda/internal/clave"
	"github.com/recauda-dev/recauda/internal/model"
)

// Overlap reports a concept code claimed by more than one group. The
// first group in declaration order keeps the code.
type Overlap struct {
	Code     string
	Kept     string
	Shadowed string
}

func (o Overlap) String() string {
	return fmt.Sprintf("concept %s already in group %q, ignored in group %q", o.Code, o.Kept, o.Shadowed)
}

// Mapper provides in-memory concept lookups over a Config. Mapping is
// first match in group declaration order; no match is reported by the
// caller, never silently dropped.
type Mapper struct {
	cfg      *Config
	layout   clave.Layout
	byCode   map[string]string
	order    map[string]int
	names    map[string]string
	managed  map[string]struct{}
	overlaps []Overlap
}

// NewMapper builds the lookup tables from a Config.
func NewMapper(cfg *Config) *Mapper {
	m := &Mapper{
		cfg:     cfg,
		layout:  cfg.Claves.Layout(),
		byCode:  make(map[string]string),
		order:   make(map[string]int, len(cfg.Groups)),
		names:   make(map[string]string, len(cfg.ConceptNames)),
		managed: make(map[string]struct{}, len(cfg.ManagedCodes)),
	}
	for i, g := range cfg.Groups {
		if _, ok := m.order[g.Name]; !ok {
			m.order[g.Name] = i
		}
		for _, code := range g.Codes {
			if kept, ok := m.byCode[code]; ok {
				m.overlaps = append(m.overlaps, Overlap{Code: code, Kept: kept, Shadowed: g.Name})
				continue
			}
			m.byCode[code] = g.Name
		}
	}
	for code, name := range cfg.ConceptNames {
		m.names[code] = name
	}
	for _, code := range cfg.ManagedCodes {
		m.managed[code] = struct{}{}
	}
	return m
}

// Layout returns the clave layout in effect.
func (m *Mapper) Layout() clave.Layout {
	return m.layout
}

// ConceptCode derives a record's concept code: the concept segment of
// its clave de recaudación, falling back to the raw concept field when
// the clave carries none.
func (m *Mapper) ConceptCode(r model.TributeRecord) string {
	if code := m.layout.ConceptCode(r.ClaveRecaudacion); code != "" {
		return code
	}
	return r.Concepto
}

// GroupFor returns the group a concept code maps to.
func (m *Mapper) GroupFor(code string) (string, bool) {
	name, ok := m.byCode[code]
	return name, ok
}

// GroupOrder returns a group's declared position. Ungrouped and unknown
// names sort after all configured groups.
func (m *Mapper) GroupOrder(name string) int {
	if i, ok := m.order[name]; ok {
		return i
	}
	return len(m.cfg.Groups)
}

// Category returns the accounting-category label of a group, or "".
func (m *Mapper) Category(groupName string) string {
	for _, g := range m.cfg.Groups {
		if g.Name == groupName {
			return g.Category
		}
	}
	return ""
}

// ConceptName returns the configured display name for a concept code, or "".
func (m *Mapper) ConceptName(code string) string {
	return m.names[code]
}

// IsManaged reports whether a concept code is agency-managed, which
// enables recognition-year subgrouping for its records.
func (m *Mapper) IsManaged(code string) bool {
	_, ok := m.managed[code]
	return ok
}

// Overlaps lists codes claimed by more than one group, in declaration
// order of the shadowed group.
func (m *Mapper) Overlaps() []Overlap {
	return m.overlaps
}
