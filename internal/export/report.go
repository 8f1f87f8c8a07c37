package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/recauda-dev/recauda/internal/aggregate"
	"github.com/recauda-dev/recauda/internal/model"
	"github.com/recauda-dev/recauda/internal/reconcile"
)

// ValidationReport builds the markdown validation report: document
// summary, per-year table, the discrepancy list and unmapped-code
// warnings.
func ValidationReport(doc *model.Document, res *aggregate.Result, discs []reconcile.Discrepancy, at time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Cuenta de Recaudación — %s\n\n", entityLabel(doc))
	fmt.Fprintf(&b, "Generado: %s\n\n", at.Format("02/01/2006 15:04"))

	b.WriteString("## Documento\n\n")
	b.WriteString("| Campo | Valor |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Ejercicio | %d |\n", doc.Ejercicio)
	if doc.NumeroLiquidacion != "" {
		fmt.Fprintf(&b, "| Liquidación | %s |\n", doc.NumeroLiquidacion)
	}
	if doc.MandamientoPago != "" {
		fmt.Fprintf(&b, "| Mandamiento de pago | %s |\n", doc.MandamientoPago)
	}
	fmt.Fprintf(&b, "| Registros | %d |\n", len(doc.Records))
	fmt.Fprintf(&b, "| Cargo | %s |\n", model.FormatAmount(doc.Totales.Cargo))
	fmt.Fprintf(&b, "| Datas | %s |\n", model.FormatAmount(doc.Totales.Datas))
	fmt.Fprintf(&b, "| Voluntaria | %s |\n", model.FormatAmount(doc.Totales.Voluntaria))
	fmt.Fprintf(&b, "| Ejecutiva | %s |\n", model.FormatAmount(doc.Totales.Ejecutiva))
	fmt.Fprintf(&b, "| Líquido | %s |\n", model.FormatAmount(doc.Totales.Liquido()))
	fmt.Fprintf(&b, "| Pendiente | %s |\n", model.FormatAmount(doc.Totales.Pendiente))

	b.WriteString("\n## Ejercicios\n\n")
	b.WriteString("| Ejercicio | Registros | Cargo | Datas | Voluntaria | Ejecutiva | Líquido | Pendiente |\n")
	b.WriteString("|---:|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, y := range res.Years {
		fmt.Fprintf(&b, "| %d | %d | %s | %s | %s | %s | %s | %s |\n",
			y.Ejercicio, y.Registros,
			model.FormatAmount(y.Cargo), model.FormatAmount(y.Datas),
			model.FormatAmount(y.Voluntaria), model.FormatAmount(y.Ejecutiva),
			model.FormatAmount(y.Liquido()), model.FormatAmount(y.Pendiente))
	}
	registros := 0
	for _, y := range res.Years {
		registros += y.Registros
	}
	totals := res.Totals()
	fmt.Fprintf(&b, "| **TOTAL** | %d | %s | %s | %s | %s | %s | %s |\n",
		registros,
		model.FormatAmount(totals.Cargo), model.FormatAmount(totals.Datas),
		model.FormatAmount(totals.Voluntaria), model.FormatAmount(totals.Ejecutiva),
		model.FormatAmount(totals.Liquido()), model.FormatAmount(totals.Pendiente))

	b.WriteString("\n## Validación\n\n")
	switch len(discs) {
	case 0:
		b.WriteString("Sin discrepancias: los totales calculados cuadran con los declarados (tolerancia 0.01).\n")
	case 1:
		b.WriteString("1 discrepancia:\n\n")
	default:
		fmt.Fprintf(&b, "%d discrepancias:\n\n", len(discs))
	}
	for _, d := range discs {
		fmt.Fprintf(&b, "- %s\n", d.Error())
	}

	if len(res.Unmapped) > 0 {
		b.WriteString("\n## Conceptos sin agrupar\n\n")
		for _, u := range res.Unmapped {
			fmt.Fprintf(&b, "- %s\n", u)
		}
	}
	return b.String()
}

var reportMarkdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// ReportHTML renders the markdown validation report as a standalone
// HTML page. GFM gives the tables.
func ReportHTML(md string) ([]byte, error) {
	var body bytes.Buffer
	if err := reportMarkdown.Convert([]byte(md), &body); err != nil {
		return nil, fmt.Errorf("rendering report: %w", err)
	}

	var page bytes.Buffer
	page.WriteString(reportShellHead)
	page.Write(body.Bytes())
	page.WriteString(reportShellFoot)
	return page.Bytes(), nil
}

const reportShellHead = `<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>Informe de validación</title>
<style>
 body { font-family: "Segoe UI", Arial, sans-serif; margin: 2rem auto; max-width: 60rem; color: #1a1a1a; }
 h1, h2 { color: #366092; }
 table { border-collapse: collapse; font-size: .9rem; }
 th, td { border: 1px solid #ccc; padding: .3rem .6rem; }
 thead th { background: #366092; color: #fff; }
</style>
</head>
<body>
`

const reportShellFoot = `</body>
</html>
`
