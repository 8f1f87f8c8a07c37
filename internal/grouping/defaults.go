package grouping

// DefaultConfig returns the grouping table shipped with the binary: the
// concept groups and agency-managed codes of a standard OPAEF cuenta,
// slash-form claves, all views enabled. Municipalities adjust it in
// grouping.yaml to match their own settlement.
func DefaultConfig() *Config {
	return &Config{
		GroupByYear:    true,
		GroupByConcept: true,
		GroupByCustom:  true,
		Groups: []Group{
			{Name: "IBI", Category: "113", Codes: []string{"102", "103"}},
			{Name: "VEHICULOS", Category: "115", Codes: []string{"204"}},
			{Name: "IAE", Category: "130", Codes: []string{"205", "206"}},
			{Name: "BASURA", Category: "302", Codes: []string{"208", "213"}},
			{Name: "EJECUTIVA", Category: "392", Codes: []string{"218", "501"}},
			{Name: "MULTAS", Category: "391", Codes: []string{"700", "777"}},
		},
		ConceptNames: map[string]string{
			"102": "IBI URBANA",
			"103": "IBI RUSTICA",
			"204": "IVTM",
			"205": "IAE NACIONAL",
			"206": "IAE PROVINCIAL",
			"208": "BASURA DOMICILIARIA",
			"213": "BASURA INDUSTRIAL",
			"218": "COSTAS EJECUTIVA",
			"501": "RECARGO EJECUTIVA",
			"700": "MULTAS TRAFICO",
			"777": "SANCIONES",
		},
		ManagedCodes: []string{"102", "204", "205", "206", "208", "213", "218", "501", "700", "777"},
		Claves: KeyLayout{
			Delimiter:      "/",
			YearSegment:    1,
			ConceptSegment: 2,
		},
	}
}
