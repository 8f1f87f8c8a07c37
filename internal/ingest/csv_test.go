package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recauda-dev/recauda/internal/model"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func extractCSV(t *testing.T, src string) *Extraction {
	t.Helper()
	x, err := (&CSVExtractor{}).Extract(strings.NewReader(src))
	require.NoError(t, err)
	return x
}

func TestCSVExtract(t *testing.T) {
	src := Header + "\n" +
		"026,2013,102,026/2013/58/064/573,026/2013/58/064/573,553.61,0.00,0.00,0.00,553.61\n" +
		"026,2021,102,026/2021/58/064/573,026/2021/58/068/573,1200.00,100.00,800.00,150.00,150.00\n"

	x := extractCSV(t, src)
	require.Len(t, x.Records, 2)
	assert.Empty(t, x.Skipped)
	assert.Equal(t, "026", x.Entidad)

	r := x.Records[0]
	assert.Equal(t, 2013, r.Ejercicio)
	assert.Equal(t, "102", r.Concepto)
	assert.Equal(t, "026/2013/58/064/573", r.ClaveContabilidad)
	assert.True(t, r.Cargo.Equal(dec("553.61")), "cargo: got %s", r.Cargo)
	assert.True(t, r.Datas.IsZero())
	assert.True(t, r.Pendiente.Equal(dec("553.61")))

	r = x.Records[1]
	assert.Equal(t, "026/2021/58/068/573", r.ClaveRecaudacion)
	assert.True(t, r.Voluntaria.Equal(dec("800.00")))
	assert.True(t, r.Ejecutiva.Equal(dec("150.00")))
}

func TestCSVExtract_SemicolonSpanishDecimals(t *testing.T) {
	// OPAEF exports are semicolon-delimited with decimal commas. The
	// delimiter is detected from the first line.
	src := strings.ReplaceAll(Header, ",", ";") + "\n" +
		"026;2021;102;026/2021/58/064/573;026/2021/58/064/573;1.234,56;0,00;1.000,00;234,56;0,00\n"

	x := extractCSV(t, src)
	require.Len(t, x.Records, 1)
	assert.Empty(t, x.Skipped)

	r := x.Records[0]
	assert.True(t, r.Cargo.Equal(dec("1234.56")), "cargo: got %s", r.Cargo)
	assert.True(t, r.Voluntaria.Equal(dec("1000.00")))
	assert.True(t, r.Ejecutiva.Equal(dec("234.56")))
}

func TestCSVExtract_NoHeaderAssumesCanonicalOrder(t *testing.T) {
	src := "026,2019,204,026/2019/10/100/001,026/2019/10/100/001,75.00,0.00,75.00,0.00,0.00\n"

	x := extractCSV(t, src)
	require.Len(t, x.Records, 1)
	assert.Equal(t, 2019, x.Records[0].Ejercicio)
	assert.Equal(t, "204", x.Records[0].Concepto)
}

func TestCSVExtract_ReorderedHeaderWithExtras(t *testing.T) {
	// Column order follows the header, unknown columns are ignored.
	src := "C_EJERCICIO,ENT,C_CARGO,C_DATAS,C_VOLUNTARIA,C_EJECUTIVA,C_PENDIENTE,C_CONCEPTO,CLAVE_C,CLAVE_R,OBSERVACIONES\n" +
		"2020,041,10.00,0.00,10.00,0.00,0.00,113,041/2020/58/113/001,041/2020/58/113/001,sin incidencias\n"

	x := extractCSV(t, src)
	require.Len(t, x.Records, 1)
	assert.Equal(t, "041", x.Entidad)
	assert.Equal(t, 2020, x.Records[0].Ejercicio)
	assert.Equal(t, "113", x.Records[0].Concepto)
	assert.True(t, x.Records[0].Cargo.Equal(dec("10.00")))
}

func TestCSVExtract_SkipsBadRowsAndKeepsGoing(t *testing.T) {
	src := Header + "\n" +
		"026,2021,102,c1,r1,10.00,0.00,10.00,0.00,0.00\n" + // line 2: good
		"026,20x3,102,c2,r2,10.00,0.00,10.00,0.00,0.00\n" + // line 3: bad year
		"026,-2013,102,c3,r3,10.00,0.00,10.00,0.00,0.00\n" + // line 4: negative year
		"026,2021,102,c4,r4,abc,0.00,10.00,0.00,0.00\n" + // line 5: bad amount
		"026,2021,102,c5,r5,1.005,0.00,10.00,0.00,0.00\n" + // line 6: sub-céntimo
		"026,2021,,,,10.00,0.00,10.00,0.00,0.00\n" + // line 7: no identity
		"026,2021,102,c7,r7,10.00\n" // line 8: short row

	x := extractCSV(t, src)
	require.Len(t, x.Records, 1, "only the good row survives")
	require.Len(t, x.Skipped, 6)

	reasons := map[int]string{
		3: "parsing C_EJERCICIO",
		4: "not a valid year",
		5: "parsing C_CARGO",
		6: "more than 2 decimal places",
		7: "no concepto and no claves",
		8: "expected 10 fields, got 6",
	}
	for i, s := range x.Skipped {
		want, ok := reasons[s.Line]
		require.True(t, ok, "unexpected skipped line %d", s.Line)
		assert.Contains(t, s.Reason, want, "line %d", s.Line)
		assert.NotEmpty(t, s.Raw, "skipped row %d should carry the raw row", i)
	}
}

func TestCSVExtract_BlankAmountsAreZero(t *testing.T) {
	src := Header + "\n" +
		"026,2021,102,c1,r1,553.61,,,,\n"

	x := extractCSV(t, src)
	require.Len(t, x.Records, 1)
	assert.Empty(t, x.Skipped)

	r := x.Records[0]
	assert.True(t, r.Cargo.Equal(dec("553.61")))
	assert.True(t, r.Datas.IsZero())
	assert.True(t, r.Voluntaria.IsZero())
	assert.True(t, r.Ejecutiva.IsZero())
	assert.True(t, r.Pendiente.IsZero())
}

func TestCSVExtract_MissingRequiredColumnFails(t *testing.T) {
	src := "ENT,C_EJERCICIO,C_CONCEPTO,CLAVE_C,CLAVE_R,C_DATAS,C_VOLUNTARIA,C_EJECUTIVA,C_PENDIENTE\n" +
		"026,2021,102,c1,r1,0.00,10.00,0.00,0.00\n"

	_, err := (&CSVExtractor{}).Extract(strings.NewReader(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required columns")
}

func TestCSVExtract_FirstNonEmptyEntityWins(t *testing.T) {
	src := Header + "\n" +
		",2021,102,c1,r1,10.00,0.00,10.00,0.00,0.00\n" +
		"026,2021,102,c2,r2,10.00,0.00,10.00,0.00,0.00\n"

	x := extractCSV(t, src)
	require.Len(t, x.Records, 2)
	assert.Equal(t, "026", x.Entidad)
}

func TestCSVExtract_Empty(t *testing.T) {
	x := extractCSV(t, "")
	assert.Empty(t, x.Records)
	assert.Empty(t, x.Skipped)
}

func TestCSVExtract_HeaderOnly(t *testing.T) {
	x := extractCSV(t, Header+"\n")
	assert.Empty(t, x.Records)
	assert.Empty(t, x.Skipped)
}

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"553.61", "553.61"},
		{"1.234,56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"123,45", "123.45"},
		{"1.234.567", "1234567"},
		{"1,234,567", "1234567"},
		{"-1.234,56", "-1234.56"},
		{" 12 ", "12"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeAmount(tt.input), "input %q", tt.input)
	}
}

func TestWriteRecords_RoundTrip(t *testing.T) {
	records := []model.TributeRecord{
		{
			Ejercicio:         2013,
			Concepto:          "102",
			ClaveContabilidad: "026/2013/58/064/573",
			ClaveRecaudacion:  "026/2013/58/064/573",
			Cargo:             dec("553.61"),
			Pendiente:         dec("553.61"),
		},
		{
			Ejercicio:         2021,
			Concepto:          "204",
			ClaveContabilidad: "026/2021/58/115/001",
			ClaveRecaudacion:  "026/2021/58/115/001",
			Cargo:             dec("75.5"),
			Voluntaria:        dec("75.5"),
		},
	}

	var buf bytes.Buffer
	err := WriteRecords(&buf, "026", records)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), "ENT,"))

	x, err := (&CSVExtractor{}).Extract(&buf)
	require.NoError(t, err)
	require.Len(t, x.Records, 2)
	assert.Equal(t, "026", x.Entidad)

	for i := range records {
		assert.Equal(t, records[i].Ejercicio, x.Records[i].Ejercicio)
		assert.Equal(t, records[i].Concepto, x.Records[i].Concepto)
		assert.Equal(t, records[i].ClaveContabilidad, x.Records[i].ClaveContabilidad)
		assert.Equal(t, records[i].ClaveRecaudacion, x.Records[i].ClaveRecaudacion)
		assert.True(t, records[i].Cargo.Equal(x.Records[i].Cargo), "cargo mismatch row %d", i)
		assert.True(t, records[i].Voluntaria.Equal(x.Records[i].Voluntaria), "voluntaria mismatch row %d", i)
	}
}

func TestMarshalRecord_StringFixed(t *testing.T) {
	r := model.TributeRecord{
		Ejercicio: 2021,
		Concepto:  "102",
		Cargo:     dec("127.5"),
	}

	row := MarshalRecord("026", r)
	assert.Equal(t, "127.50", row[colCargo], "StringFixed(2) should preserve trailing zero")
	assert.Equal(t, "0.00", row[colDatas])
}
