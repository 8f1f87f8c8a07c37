package grouping

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/recauda-dev/recauda/internal/clave"
)

// Ungrouped is the sentinel group that collects records whose concept code
// matches no configured group. It always sorts after every configured group.
const Ungrouped = "SIN AGRUPAR"

// Config represents a grouping.yaml configuration: the concept-group
// mapping table plus view flags and the clave layout. It is read-only
// after load; lookups go through a Mapper built from it.
type Config struct {
	GroupByYear    bool              `yaml:"group_by_year"`
	GroupByConcept bool              `yaml:"group_by_concept"`
	GroupByCustom  bool              `yaml:"group_by_custom"`
	Groups         []Group           `yaml:"groups,omitempty"`
	ConceptNames   map[string]string `yaml:"concept_names,omitempty"`
	ManagedCodes   []string          `yaml:"managed_codes,omitempty"`
	Claves         KeyLayout         `yaml:"claves"`
}

// Group is one custom concept group: the concepts it subsumes and an
// optional accounting-category label. Declaration order is display order
// and mapping priority.
type Group struct {
	Name     string   `yaml:"name"`
	Category string   `yaml:"category,omitempty"`
	Codes    []string `yaml:"codes"`
}

// KeyLayout configures clave parsing. An empty delimiter selects the
// default slash layout in full.
type KeyLayout struct {
	Delimiter      string `yaml:"delimiter"`
	YearSegment    int    `yaml:"year_segment"`
	ConceptSegment int    `yaml:"concept_segment"`
}

// Layout resolves the configured clave layout.
func (k KeyLayout) Layout() clave.Layout {
	if k.Delimiter == "" {
		return clave.DefaultLayout()
	}
	return clave.Layout{
		Delimiter:      k.Delimiter,
		YearSegment:    k.YearSegment,
		ConceptSegment: k.ConceptSegment,
	}
}

// Load reads a grouping.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading grouping config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing grouping config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling grouping config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing grouping config: %w", err)
	}
	return nil
}
