package export

import (
	"fmt"
	"html/template"
	"io"
	"sort"
	"time"

	"github.com/recauda-dev/recauda/internal/aggregate"
	"github.com/recauda-dev/recauda/internal/model"
	"github.com/recauda-dev/recauda/internal/sical"
)

// Params carries everything the HTML reports render. Groups is the
// grouped view to present, normally the recognition-year split; the
// timestamp comes from the caller so rendering stays pure.
type Params struct {
	Doc         *model.Document
	Groups      []aggregate.GroupAggregate
	Meta        sical.Meta
	GeneratedAt time.Time
}

// GroupedHTML writes the print-ready settlement report: one section per
// group with its SICAL line, clave annotations, record table and
// totals.
func GroupedHTML(w io.Writer, p Params) error {
	page := buildPage("Cuenta de Recaudación", p, false)
	if err := reportTmpl.Execute(w, page); err != nil {
		return fmt.Errorf("rendering grouped report: %w", err)
	}
	return nil
}

// DatasHTML writes the cancellation report: groups and records filtered
// to datas > 0, SICAL lines in the ANULACION DERECHOS variant.
func DatasHTML(w io.Writer, p Params) error {
	p.Groups = datasOnly(p.Groups)
	page := buildPage("Anulación de Derechos (Datas)", p, true)
	if err := reportTmpl.Execute(w, page); err != nil {
		return fmt.Errorf("rendering datas report: %w", err)
	}
	return nil
}

type amountsView struct {
	Cargo      string
	Datas      string
	Voluntaria string
	Ejecutiva  string
	Liquido    string
	Pendiente  string
}

type rowView struct {
	Concepto  string
	ClaveCont string
	ClaveRec  string
	amountsView
}

type groupView struct {
	Ejercicio  int
	Name       string
	Category   string
	Sical      string
	ClavesRec  string
	ClavesCont string
	Registros  int
	Totals     amountsView
	Rows       []rowView
}

type htmlPage struct {
	Title       string
	Entidad     string
	Ejercicio   int
	Liquidacion string
	Mandamiento string
	GeneratedAt string
	Registros   int
	Groups      []groupView
	Totals      amountsView
}

func buildPage(title string, p Params, datas bool) htmlPage {
	page := htmlPage{
		Title:       title,
		Entidad:     entityLabel(p.Doc),
		Ejercicio:   p.Meta.Ejercicio,
		Liquidacion: p.Meta.NumeroLiquidacion,
		Mandamiento: p.Meta.MandamientoPago,
		GeneratedAt: p.GeneratedAt.Format("02/01/2006 15:04"),
	}

	var totals model.DocumentTotals
	for _, g := range p.Groups {
		line := sical.Render(p.Meta, g)
		if datas {
			line = sical.RenderDatas(p.Meta, g)
		}

		gv := groupView{
			Ejercicio:  g.Ejercicio,
			Name:       g.Name,
			Category:   g.Category,
			Sical:      line,
			ClavesRec:  sical.ClavesText(g.ClavesRecaudacion, p.Meta.Delimiter),
			ClavesCont: sical.ClavesText(g.ClavesContabilidad, p.Meta.Delimiter),
			Registros:  g.Registros,
			Totals: amountsView{
				Cargo:      model.FormatAmount(g.Cargo),
				Datas:      model.FormatAmount(g.Datas),
				Voluntaria: model.FormatAmount(g.Voluntaria),
				Ejecutiva:  model.FormatAmount(g.Ejecutiva),
				Liquido:    model.FormatAmount(g.Liquido()),
				Pendiente:  model.FormatAmount(g.Pendiente),
			},
		}
		for _, r := range g.Records {
			gv.Rows = append(gv.Rows, rowView{
				Concepto:  r.Concepto,
				ClaveCont: r.ClaveContabilidad,
				ClaveRec:  r.ClaveRecaudacion,
				amountsView: amountsView{
					Cargo:      model.FormatAmount(r.Cargo),
					Datas:      model.FormatAmount(r.Datas),
					Voluntaria: model.FormatAmount(r.Voluntaria),
					Ejecutiva:  model.FormatAmount(r.Ejecutiva),
					Liquido:    model.FormatAmount(r.Liquido()),
					Pendiente:  model.FormatAmount(r.Pendiente),
				},
			})
		}
		page.Groups = append(page.Groups, gv)

		page.Registros += g.Registros
		totals.Cargo = totals.Cargo.Add(g.Cargo)
		totals.Datas = totals.Datas.Add(g.Datas)
		totals.Voluntaria = totals.Voluntaria.Add(g.Voluntaria)
		totals.Ejecutiva = totals.Ejecutiva.Add(g.Ejecutiva)
		totals.Pendiente = totals.Pendiente.Add(g.Pendiente)
	}

	page.Totals = amountsView{
		Cargo:      model.FormatAmount(totals.Cargo),
		Datas:      model.FormatAmount(totals.Datas),
		Voluntaria: model.FormatAmount(totals.Voluntaria),
		Ejecutiva:  model.FormatAmount(totals.Ejecutiva),
		Liquido:    model.FormatAmount(totals.Liquido()),
		Pendiente:  model.FormatAmount(totals.Pendiente),
	}
	return page
}

// datasOnly rebuilds the grouped view from cancelled records only, so
// the clave sets and totals of the datas report cover exactly the rows
// it prints.
func datasOnly(groups []aggregate.GroupAggregate) []aggregate.GroupAggregate {
	var out []aggregate.GroupAggregate
	for _, g := range groups {
		if !g.Datas.IsPositive() {
			continue
		}

		ng := aggregate.GroupAggregate{Ejercicio: g.Ejercicio, Name: g.Name, Category: g.Category}
		for _, r := range g.Records {
			if !r.Datas.IsPositive() {
				continue
			}
			ng.Registros++
			ng.Cargo = ng.Cargo.Add(r.Cargo)
			ng.Datas = ng.Datas.Add(r.Datas)
			ng.Voluntaria = ng.Voluntaria.Add(r.Voluntaria)
			ng.Ejecutiva = ng.Ejecutiva.Add(r.Ejecutiva)
			ng.Pendiente = ng.Pendiente.Add(r.Pendiente)
			ng.Records = append(ng.Records, r)
		}
		if ng.Registros == 0 {
			continue
		}
		ng.ClavesContabilidad = distinctOf(ng.Records, func(r model.TributeRecord) string { return r.ClaveContabilidad })
		ng.ClavesRecaudacion = distinctOf(ng.Records, func(r model.TributeRecord) string { return r.ClaveRecaudacion })
		out = append(out, ng)
	}
	return out
}

func distinctOf(records []model.TributeRecord, key func(model.TributeRecord) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		k := key(r)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func entityLabel(doc *model.Document) string {
	if doc.EntidadNombre != "" {
		return doc.EntidadNombre
	}
	if doc.EntidadCodigo != "" {
		return "Entidad " + doc.EntidadCodigo
	}
	return "Entidad"
}

var reportTmpl = template.Must(template.New("report").Parse(reportHTML))

const reportHTML = `<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>{{.Title}} — {{.Entidad}} {{.Ejercicio}}</title>
<style>
 body { font-family: "Segoe UI", Arial, sans-serif; margin: 2rem auto; max-width: 70rem; color: #1a1a1a; }
 header { border-bottom: 3px solid #366092; margin-bottom: 1.5rem; padding-bottom: .75rem; }
 h1 { color: #366092; margin: 0 0 .25rem; }
 .meta { color: #555; font-size: .9rem; margin: .2rem 0; }
 section { margin-bottom: 2rem; page-break-inside: avoid; }
 h2 { color: #366092; border-bottom: 1px solid #ccc; padding-bottom: .25rem; }
 .cat { color: #777; font-weight: normal; font-size: .85em; }
 .sical { display: flex; align-items: center; gap: .5rem; background: #f4f6fa; border: 1px solid #d8dee9; padding: .5rem .75rem; margin: .5rem 0; }
 .sical code { flex: 1; font-size: .95em; word-break: break-all; }
 .copy { border: 1px solid #366092; background: #fff; color: #366092; padding: .2rem .6rem; cursor: pointer; }
 .claves { color: #555; font-size: .85rem; margin: .25rem 0; }
 table { border-collapse: collapse; width: 100%; font-size: .85rem; }
 th, td { border: 1px solid #ccc; padding: .3rem .5rem; text-align: left; }
 thead th { background: #366092; color: #fff; }
 td.num, th.num { text-align: right; font-variant-numeric: tabular-nums; }
 tfoot th { background: #eef1f6; }
 @media print {
  body { margin: 0; max-width: none; }
  .copy { display: none; }
 }
</style>
</head>
<body>
<header>
<h1>{{.Title}}</h1>
<p class="meta">{{.Entidad}} — Ejercicio {{.Ejercicio}}{{if .Liquidacion}} — Liquidación Nº {{.Liquidacion}}{{end}}{{if .Mandamiento}} — Mandamiento de pago Nº {{.Mandamiento}}{{end}}</p>
<p class="meta">Generado: {{.GeneratedAt}} — {{.Registros}} registros</p>
</header>
{{range .Groups}}
<section>
<h2>{{.Name}}{{with .Category}} <span class="cat">(concepto {{.}})</span>{{end}} — Ejercicio {{.Ejercicio}}</h2>
<div class="sical"><code>{{.Sical}}</code><button class="copy" data-text="{{.Sical}}" type="button">Copiar</button></div>
{{if .ClavesRec}}<p class="claves">Claves de recaudación: {{.ClavesRec}}</p>{{end}}
{{if .ClavesCont}}<p class="claves">Claves de contabilidad: {{.ClavesCont}}</p>{{end}}
<table>
<thead>
<tr><th>Concepto</th><th>Clave contabilidad</th><th>Clave recaudación</th><th class="num">Cargo</th><th class="num">Datas</th><th class="num">Voluntaria</th><th class="num">Ejecutiva</th><th class="num">Líquido</th><th class="num">Pendiente</th></tr>
</thead>
<tbody>
{{range .Rows}}<tr><td>{{.Concepto}}</td><td>{{.ClaveCont}}</td><td>{{.ClaveRec}}</td><td class="num">{{.Cargo}}</td><td class="num">{{.Datas}}</td><td class="num">{{.Voluntaria}}</td><td class="num">{{.Ejecutiva}}</td><td class="num">{{.Liquido}}</td><td class="num">{{.Pendiente}}</td></tr>
{{end}}</tbody>
<tfoot>
<tr><th colspan="3">Total ({{.Registros}} registros)</th><th class="num">{{.Totals.Cargo}}</th><th class="num">{{.Totals.Datas}}</th><th class="num">{{.Totals.Voluntaria}}</th><th class="num">{{.Totals.Ejecutiva}}</th><th class="num">{{.Totals.Liquido}}</th><th class="num">{{.Totals.Pendiente}}</th></tr>
</tfoot>
</table>
</section>
{{end}}
<section>
<h2>Total general</h2>
<table>
<thead>
<tr><th class="num">Cargo</th><th class="num">Datas</th><th class="num">Voluntaria</th><th class="num">Ejecutiva</th><th class="num">Líquido</th><th class="num">Pendiente</th></tr>
</thead>
<tbody>
<tr><td class="num">{{.Totals.Cargo}}</td><td class="num">{{.Totals.Datas}}</td><td class="num">{{.Totals.Voluntaria}}</td><td class="num">{{.Totals.Ejecutiva}}</td><td class="num">{{.Totals.Liquido}}</td><td class="num">{{.Totals.Pendiente}}</td></tr>
</tbody>
</table>
</section>
<script>
document.querySelectorAll('.copy').forEach(function (btn) {
  btn.addEventListener('click', function () {
    navigator.clipboard.writeText(btn.dataset.text);
  });
});
</script>
</body>
</html>
`
