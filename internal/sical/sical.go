// Package sical renders the standardized description strings used for
// SICAL accounting entries. Rendering is pure template substitution over
// a group aggregate; the same group always yields the same string.
package sical

import (
	"fmt"
	"strings"

	"github.com/recauda-dev/recauda/internal/aggregate"
	"github.com/recauda-dev/recauda/internal/compact"
)

// Meta carries the document-level fields interpolated into every line.
type Meta struct {
	Ejercicio         int    // settlement year of the account
	NumeroLiquidacion string // omitted from the text when empty
	MandamientoPago   string // omitted from the text when empty
	Delimiter         string // clave segment delimiter for compaction
}

// Render produces the settlement description for one group:
//
//	CTA. OPAEF/2021, IBI LIQUIDACION Nº 44/2021 MANDAMIENTO PAGO Nº 210 026/2021/{58,64}/... 026/2021/...
//
// Empty fields disappear together with their label; the compacted clave
// sets close the line, collection axis first.
func Render(meta Meta, g aggregate.GroupAggregate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CTA. OPAEF/%d, %s", meta.Ejercicio, g.Name)
	if meta.NumeroLiquidacion != "" {
		fmt.Fprintf(&b, " LIQUIDACION Nº %s", meta.NumeroLiquidacion)
	}
	if meta.MandamientoPago != "" {
		fmt.Fprintf(&b, " MANDAMIENTO PAGO Nº %s", meta.MandamientoPago)
	}
	writeClaves(&b, meta, g)
	return b.String()
}

// RenderDatas produces the cancellation variant used by the datas report:
//
//	CTA. OPAEF/2021, IBI ANULACION DERECHOS {claves rec} {claves cont}
func RenderDatas(meta Meta, g aggregate.GroupAggregate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CTA. OPAEF/%d, %s ANULACION DERECHOS", meta.Ejercicio, g.Name)
	writeClaves(&b, meta, g)
	return b.String()
}

func writeClaves(b *strings.Builder, meta Meta, g aggregate.GroupAggregate) {
	if rec := ClavesText(g.ClavesRecaudacion, meta.Delimiter); rec != "" {
		b.WriteString(" " + rec)
	}
	if cont := ClavesText(g.ClavesContabilidad, meta.Delimiter); cont != "" {
		b.WriteString(" " + cont)
	}
}

// ClavesText compacts one clave axis into its display form: compacted
// families joined by single spaces, malformed codes literal at the end.
func ClavesText(claves []string, delimiter string) string {
	return strings.Join(compact.Codes(claves, delimiter).Strings(), " ")
}
