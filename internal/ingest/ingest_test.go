package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()

	assert.Equal(t, "csv", r.Get("CSV").Format(), "lookup is case-insensitive")
	assert.Equal(t, "xlsx", r.Get("xlsx").Format())
	assert.Nil(t, r.Get("pdf"))

	assert.Equal(t, "csv", r.ForPath("/data/cuenta_2021.csv").Format())
	assert.Equal(t, "xlsx", r.ForPath("Cuenta.XLSX").Format())
	assert.Nil(t, r.ForPath("cuenta.txt"))
	assert.Nil(t, r.ForPath("cuenta"))
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(&CSVExtractor{})
	assert.Panics(t, func() { r.Register(&CSVExtractor{}) })
}

func TestExtractFile_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cuenta.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := ExtractFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestExtractFile_Missing(t *testing.T) {
	_, err := ExtractFile(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExtractionDocument(t *testing.T) {
	src := Header + "\n" +
		"026,2013,102,c1,r1,553.61,0.00,0.00,0.00,553.61\n" +
		"026,2021,102,c2,r2,1200.00,100.00,800.00,150.00,150.00\n" +
		"026,2021,204,c3,r3,75.00,0.00,75.00,0.00,0.00\n"

	x, err := (&CSVExtractor{}).Extract(strings.NewReader(src))
	require.NoError(t, err)

	doc := x.Document()
	assert.Equal(t, "026", doc.EntidadCodigo)
	assert.Equal(t, 2021, doc.Ejercicio, "settlement year is the highest fiscal year present")
	require.Len(t, doc.Records, 3)

	require.Len(t, doc.Ejercicios, 2)
	assert.Equal(t, 2013, doc.Ejercicios[0].Ejercicio)
	assert.Equal(t, 1, doc.Ejercicios[0].Registros)
	assert.True(t, doc.Ejercicios[0].Cargo.Equal(dec("553.61")))
	assert.Equal(t, 2021, doc.Ejercicios[1].Ejercicio)
	assert.Equal(t, 2, doc.Ejercicios[1].Registros)
	assert.True(t, doc.Ejercicios[1].Cargo.Equal(dec("1275.00")))

	assert.True(t, doc.Totales.Cargo.Equal(dec("1828.61")))
	assert.True(t, doc.Totales.Liquido().Equal(dec("1025.00")))
}

func TestExtractionDocument_Empty(t *testing.T) {
	x := &Extraction{}
	doc := x.Document()
	assert.Zero(t, doc.Ejercicio)
	assert.Empty(t, doc.Records)
	assert.Empty(t, doc.Ejercicios)
	assert.True(t, doc.Totales.Cargo.IsZero())
}
