// Package export renders an aggregated cuenta as external artifacts: an
// XLSX workbook, print-ready HTML reports with SICAL lines, and a
// validation report. Adapters only read their inputs; callers own the
// output streams.
package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/recauda-dev/recauda/internal/aggregate"
	"github.com/recauda-dev/recauda/internal/model"
)

const (
	sheetInfo    = "Información"
	sheetRecords = "Registros"
	sheetYears   = "Resumen por Ejercicio"

	headerFill = "366092"
	moneyFmt   = "#,##0.00"
)

type styles struct {
	header     int
	label      int
	money      int
	totalMoney int
}

// WriteExcel writes the workbook artifact: document metadata, the full
// record table, and the per-year summary closed by a TOTAL row.
func WriteExcel(w io.Writer, doc *model.Document, res *aggregate.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetInfo); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	for _, name := range []string{sheetRecords, sheetYears} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}

	st, err := newStyles(f)
	if err != nil {
		return err
	}
	if err := writeInfoSheet(f, st, doc); err != nil {
		return err
	}
	if err := writeRecordsSheet(f, st, doc.Records); err != nil {
		return err
	}
	if err := writeYearsSheet(f, st, res); err != nil {
		return err
	}

	if idx, err := f.GetSheetIndex(sheetInfo); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error

	st.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
	})
	if err != nil {
		return st, fmt.Errorf("creating header style: %w", err)
	}

	st.label, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return st, fmt.Errorf("creating label style: %w", err)
	}

	numFmt := moneyFmt
	st.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return st, fmt.Errorf("creating money style: %w", err)
	}

	st.totalMoney, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &numFmt})
	if err != nil {
		return st, fmt.Errorf("creating total style: %w", err)
	}
	return st, nil
}

// cellMoney converts an amount for a workbook cell. Sheet cells hold
// IEEE doubles; two-decimal money values stay exact in them.
func cellMoney(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func writeInfoSheet(f *excelize.File, st styles, doc *model.Document) error {
	rows := []struct {
		label string
		value interface{}
	}{
		{"Entidad", entityLabel(doc)},
		{"Ejercicio", doc.Ejercicio},
		{"Nº Liquidación", doc.NumeroLiquidacion},
		{"Mandamiento de pago", doc.MandamientoPago},
		{"Registros", len(doc.Records)},
		{"Cargo", cellMoney(doc.Totales.Cargo)},
		{"Datas", cellMoney(doc.Totales.Datas)},
		{"Voluntaria", cellMoney(doc.Totales.Voluntaria)},
		{"Ejecutiva", cellMoney(doc.Totales.Ejecutiva)},
		{"Líquido", cellMoney(doc.Totales.Liquido())},
		{"Pendiente", cellMoney(doc.Totales.Pendiente)},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("addressing info row %d: %w", i+1, err)
		}
		row := []interface{}{r.label, r.value}
		if err := f.SetSheetRow(sheetInfo, cell, &row); err != nil {
			return fmt.Errorf("writing info row %d: %w", i+1, err)
		}
	}

	if err := f.SetCellStyle(sheetInfo, "A1", fmt.Sprintf("A%d", len(rows)), st.label); err != nil {
		return fmt.Errorf("styling info labels: %w", err)
	}
	if err := f.SetCellStyle(sheetInfo, "B6", fmt.Sprintf("B%d", len(rows)), st.money); err != nil {
		return fmt.Errorf("styling info amounts: %w", err)
	}
	if err := f.SetColWidth(sheetInfo, "A", "B", 24); err != nil {
		return fmt.Errorf("sizing info columns: %w", err)
	}
	return nil
}

var recordsHeader = []interface{}{
	"Ejercicio", "Concepto", "Clave Contabilidad", "Clave Recaudación",
	"Cargo", "Datas", "Voluntaria", "Ejecutiva", "Pendiente", "Líquido",
}

func writeRecordsSheet(f *excelize.File, st styles, records []model.TributeRecord) error {
	if err := f.SetSheetRow(sheetRecords, "A1", &recordsHeader); err != nil {
		return fmt.Errorf("writing records header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("addressing record row %d: %w", i+2, err)
		}
		row := []interface{}{
			r.Ejercicio, r.Concepto, r.ClaveContabilidad, r.ClaveRecaudacion,
			cellMoney(r.Cargo), cellMoney(r.Datas), cellMoney(r.Voluntaria),
			cellMoney(r.Ejecutiva), cellMoney(r.Pendiente), cellMoney(r.Liquido()),
		}
		if err := f.SetSheetRow(sheetRecords, cell, &row); err != nil {
			return fmt.Errorf("writing record row %d: %w", i+2, err)
		}
	}

	if err := f.SetCellStyle(sheetRecords, "A1", "J1", st.header); err != nil {
		return fmt.Errorf("styling records header: %w", err)
	}
	if len(records) > 0 {
		if err := f.SetCellStyle(sheetRecords, "E2", fmt.Sprintf("J%d", len(records)+1), st.money); err != nil {
			return fmt.Errorf("styling record amounts: %w", err)
		}
	}
	if err := f.SetColWidth(sheetRecords, "A", "B", 12); err != nil {
		return fmt.Errorf("sizing record columns: %w", err)
	}
	if err := f.SetColWidth(sheetRecords, "C", "D", 26); err != nil {
		return fmt.Errorf("sizing clave columns: %w", err)
	}
	if err := f.SetColWidth(sheetRecords, "E", "J", 14); err != nil {
		return fmt.Errorf("sizing amount columns: %w", err)
	}

	err := f.SetPanes(sheetRecords, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	if err != nil {
		return fmt.Errorf("freezing records header: %w", err)
	}
	return nil
}

var yearsHeader = []interface{}{
	"Ejercicio", "Registros", "Cargo", "Datas", "Voluntaria", "Ejecutiva", "Líquido", "Pendiente",
}

func writeYearsSheet(f *excelize.File, st styles, res *aggregate.Result) error {
	if err := f.SetSheetRow(sheetYears, "A1", &yearsHeader); err != nil {
		return fmt.Errorf("writing years header: %w", err)
	}

	registros := 0
	for i, y := range res.Years {
		registros += y.Registros
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("addressing year row %d: %w", i+2, err)
		}
		row := []interface{}{
			y.Ejercicio, y.Registros, cellMoney(y.Cargo), cellMoney(y.Datas),
			cellMoney(y.Voluntaria), cellMoney(y.Ejecutiva), cellMoney(y.Liquido()), cellMoney(y.Pendiente),
		}
		if err := f.SetSheetRow(sheetYears, cell, &row); err != nil {
			return fmt.Errorf("writing year row %d: %w", i+2, err)
		}
	}

	totals := res.Totals()
	totalRow := []interface{}{
		"TOTAL", registros, cellMoney(totals.Cargo), cellMoney(totals.Datas),
		cellMoney(totals.Voluntaria), cellMoney(totals.Ejecutiva), cellMoney(totals.Liquido()), cellMoney(totals.Pendiente),
	}
	last := len(res.Years) + 2
	cell, err := excelize.CoordinatesToCellName(1, last)
	if err != nil {
		return fmt.Errorf("addressing total row: %w", err)
	}
	if err := f.SetSheetRow(sheetYears, cell, &totalRow); err != nil {
		return fmt.Errorf("writing total row: %w", err)
	}

	if err := f.SetCellStyle(sheetYears, "A1", "H1", st.header); err != nil {
		return fmt.Errorf("styling years header: %w", err)
	}
	if len(res.Years) > 0 {
		if err := f.SetCellStyle(sheetYears, "C2", fmt.Sprintf("H%d", last-1), st.money); err != nil {
			return fmt.Errorf("styling year amounts: %w", err)
		}
	}
	if err := f.SetCellStyle(sheetYears, fmt.Sprintf("A%d", last), fmt.Sprintf("B%d", last), st.label); err != nil {
		return fmt.Errorf("styling total label: %w", err)
	}
	if err := f.SetCellStyle(sheetYears, fmt.Sprintf("C%d", last), fmt.Sprintf("H%d", last), st.totalMoney); err != nil {
		return fmt.Errorf("styling total amounts: %w", err)
	}
	if err := f.SetColWidth(sheetYears, "A", "H", 14); err != nil {
		return fmt.Errorf("sizing year columns: %w", err)
	}
	return nil
}
