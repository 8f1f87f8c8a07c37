package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recauda-dev/recauda/internal/aggregate"
	"github.com/recauda-dev/recauda/internal/sical"
)

func testParams(t *testing.T) Params {
	t.Helper()
	doc, _, m := testSetup(t)
	return Params{
		Doc:    doc,
		Groups: aggregate.RecognitionGroups(doc.Records, m),
		Meta: sical.Meta{
			Ejercicio:         doc.Ejercicio,
			NumeroLiquidacion: doc.NumeroLiquidacion,
			MandamientoPago:   doc.MandamientoPago,
			Delimiter:         "/",
		},
		GeneratedAt: time.Date(2022, 3, 15, 10, 30, 0, 0, time.UTC),
	}
}

func TestGroupedHTML(t *testing.T) {
	p := testParams(t)

	var buf bytes.Buffer
	require.NoError(t, GroupedHTML(&buf, p))
	html := buf.String()

	assert.Contains(t, html, "<h1>Cuenta de Recaudación</h1>")
	assert.Contains(t, html, "Entidad 026")
	assert.Contains(t, html, "Liquidación Nº 44/2021")
	assert.Contains(t, html, "Generado: 15/03/2022 10:30")

	// One section per group plus the closing totals section.
	assert.Equal(t, len(p.Groups)+1, strings.Count(html, "<section>"))

	// The SICAL line is rendered against the document year, whatever the
	// group's own year.
	assert.Contains(t, html, "CTA. OPAEF/2021, IBI LIQUIDACION Nº 44/2021 MANDAMIENTO PAGO Nº 210 026/2013/102/064/573 026/2013/102/064/573")
	assert.Contains(t, html, "data-text=", "SICAL lines carry a copy button")
	assert.Contains(t, html, "(concepto 113)")
	assert.Contains(t, html, "— Ejercicio 2013")
	assert.Contains(t, html, "VEHICULOS")
	assert.Contains(t, html, "@media print")

	// Grand total: cargo across every group.
	assert.Contains(t, html, "1,128.61")
}

func TestGroupedHTML_Deterministic(t *testing.T) {
	p := testParams(t)

	var first bytes.Buffer
	require.NoError(t, GroupedHTML(&first, p))
	for i := 0; i < 5; i++ {
		var again bytes.Buffer
		require.NoError(t, GroupedHTML(&again, p))
		require.Equal(t, first.String(), again.String(), "run %d", i)
	}
}

func TestDatasHTML(t *testing.T) {
	p := testParams(t)

	var buf bytes.Buffer
	require.NoError(t, DatasHTML(&buf, p))
	html := buf.String()

	assert.Contains(t, html, "Anulación de Derechos")
	assert.Contains(t, html, "ANULACION DERECHOS")

	// Only the 2021 IBI group carries datas; its section shows just the
	// cancelled record.
	assert.Equal(t, 2, strings.Count(html, "<section>"), "one datas group plus the totals section")
	assert.NotContains(t, html, "VEHICULOS")
	assert.NotContains(t, html, "026/2013/102/064/573", "datas claves cover only cancelled rows")
	assert.Contains(t, html, "026/2021/102/064/573")
	assert.Contains(t, html, "CTA. OPAEF/2021, IBI ANULACION DERECHOS 026/2021/102/064/573 026/2021/102/064/573")
}

func TestDatasHTML_NoCancellations(t *testing.T) {
	p := testParams(t)
	p.Groups = p.Groups[:1] // just the 2013 IBI group, which has no datas

	var buf bytes.Buffer
	require.NoError(t, DatasHTML(&buf, p))
	assert.Equal(t, 1, strings.Count(buf.String(), "<section>"), "only the totals section remains")
}
