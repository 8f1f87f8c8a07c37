package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recauda-dev/recauda/internal/aggregate"
	"github.com/recauda-dev/recauda/internal/grouping"
	"github.com/recauda-dev/recauda/internal/model"
	"github.com/recauda-dev/recauda/internal/reconcile"
)

var reportAt = time.Date(2022, 3, 15, 10, 30, 0, 0, time.UTC)

func TestValidationReport_Clean(t *testing.T) {
	doc, res, _ := testSetup(t)
	discs := reconcile.Check(doc, res)
	require.Empty(t, discs)

	md := ValidationReport(doc, res, discs, reportAt)

	assert.Contains(t, md, "# Cuenta de Recaudación — Entidad 026")
	assert.Contains(t, md, "Generado: 15/03/2022 10:30")
	assert.Contains(t, md, "| Liquidación | 44/2021 |")
	assert.Contains(t, md, "| 2013 | 1 | 553.61 | 0.00 | 0.00 | 0.00 | 0.00 | 553.61 |")
	assert.Contains(t, md, "| **TOTAL** | 3 | 1,128.61 |")
	assert.Contains(t, md, "Sin discrepancias")
	assert.NotContains(t, md, "Conceptos sin agrupar")
}

func TestValidationReport_DiscrepanciesAndUnmapped(t *testing.T) {
	doc, _, m := testSetup(t)

	// An extra record with an unknown concept, not reflected in the
	// declared totals.
	doc.Records = append(doc.Records, model.TributeRecord{
		Ejercicio: 2021, Concepto: "999",
		ClaveContabilidad: "026/2021/999/001/001", ClaveRecaudacion: "026/2021/999/001/001",
		Cargo: dec("10.00"), Pendiente: dec("10.00"),
	})
	res := aggregate.Aggregate(doc.Records, m)
	discs := reconcile.Check(doc, res)
	require.NotEmpty(t, discs)

	md := ValidationReport(doc, res, discs, reportAt)

	assert.Contains(t, md, "discrepancia")
	assert.Contains(t, md, "- total: cargo calculated")
	assert.Contains(t, md, "## Conceptos sin agrupar")
	assert.Contains(t, md, `concept "999" has no group in 2021 (1 records)`)
}

func TestReportHTML(t *testing.T) {
	doc, res, _ := testSetup(t)
	md := ValidationReport(doc, res, nil, reportAt)

	html, err := ReportHTML(md)
	require.NoError(t, err)
	page := string(html)

	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.True(t, strings.HasSuffix(page, "</html>\n"))
	assert.Contains(t, page, "<h1>Cuenta de Recaudación")
	assert.Contains(t, page, "<table>", "GFM tables render as HTML tables")
	assert.Contains(t, page, "553.61</td>")
}
