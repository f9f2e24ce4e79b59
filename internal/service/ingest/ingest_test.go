package ingest

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/avipredict/internal/domain/models"
)

func parseCSV(t *testing.T, content string) ([]Row, error) {
	t.Helper()
	return NewService(nil).Parse("lote.csv", strings.NewReader(content))
}

func TestParseValidCSV(t *testing.T) {
	rows, err := parseCSV(t, "Sexo,Area,Edad HTS,Edad Granja\n"+
		"Macho,Calidad,35,1000\n"+
		"Hembra,Coccidia,21,450\n")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, models.FeatureRow{AreaCode: 1, SexCode: 1, SlaughterAgeDays: 35, SaleAgeDays: 1000}, rows[0].Features)
	require.Equal(t, models.FeatureRow{AreaCode: 5, SexCode: 0, SlaughterAgeDays: 21, SaleAgeDays: 450}, rows[1].Features)
	require.Equal(t, "Macho", rows[0].Sexo)
	require.Equal(t, "Coccidia", rows[1].Area)
}

func TestParseTrimsHeaderWhitespace(t *testing.T) {
	rows, err := parseCSV(t, " Sexo , Area ,Edad HTS , Edad Granja\n"+
		"Macho,Calidad,35,1000\n")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestParseMissingColumnReportsExactName(t *testing.T) {
	_, err := parseCSV(t, "Area,Edad HTS,Edad Granja\n"+
		"Calidad,35,1000\n")
	require.Error(t, err)

	var missing *models.MissingColumnsError
	require.True(t, errors.As(err, &missing))
	require.Equal(t, []string{models.FieldSexo}, missing.Columns)
}

func TestParseMissingSeveralColumns(t *testing.T) {
	_, err := parseCSV(t, "Sexo,Galpon\nMacho,G1\n")

	var missing *models.MissingColumnsError
	require.True(t, errors.As(err, &missing))
	require.Equal(t, []string{models.FieldArea, models.FieldEdadHTS, models.FieldEdadGranja}, missing.Columns)
}

func TestParseUnrecognizedCategoryFailsFile(t *testing.T) {
	_, err := parseCSV(t, "Sexo,Area,Edad HTS,Edad Granja\n"+
		"Macho,Calidad,35,1000\n"+
		"Ma,Calidad,21,450\n")
	require.Error(t, err)

	var invalid *FileValidationError
	require.True(t, errors.As(err, &invalid))
	require.Len(t, invalid.Errors, 1)

	var catErr *models.UnrecognizedCategoryError
	require.True(t, errors.As(invalid.Errors[0], &catErr))
	require.Equal(t, models.FieldSexo, catErr.Field)
	require.Equal(t, "Ma", catErr.Value)
	require.Equal(t, 1, catErr.Row)
	require.Equal(t, models.SexLabels(), catErr.Valid)
}

func TestParseBadNumberReportsRow(t *testing.T) {
	_, err := parseCSV(t, "Sexo,Area,Edad HTS,Edad Granja\n"+
		"Macho,Calidad,treinta,1000\n")
	require.Error(t, err)

	var invalid *FileValidationError
	require.True(t, errors.As(err, &invalid))

	var rowErr *models.RowError
	require.True(t, errors.As(invalid.Errors[0], &rowErr))
	require.Equal(t, models.FieldEdadHTS, rowErr.Field)
	require.Equal(t, "treinta", rowErr.Value)
	require.Equal(t, 0, rowErr.Row)
}

func TestParseNoAgeBoundsOnFileRows(t *testing.T) {
	// The 14/21/28/35 and [0,5000] limits apply to manual entry only.
	rows, err := parseCSV(t, "Sexo,Area,Edad HTS,Edad Granja\n"+
		"Macho,Calidad,42,9000\n")
	require.NoError(t, err)
	require.Equal(t, 42, rows[0].Features.SlaughterAgeDays)
	require.Equal(t, 9000.0, rows[0].Features.SaleAgeDays)
}

func TestParseDeduplicatesByGalpon(t *testing.T) {
	rows, err := parseCSV(t, "Sexo,Area,Edad HTS,Edad Granja,Galpon\n"+
		"Macho,Calidad,35,1000,G1\n"+
		"Hembra,Coccidia,21,450,G2\n"+
		"Hembra,Calidad,28,600,G1\n"+
		"Macho,Coccidia,14,200,\n"+
		"Hembra,Calidad,35,300,\n")
	require.NoError(t, err)

	// G1 keeps its first occurrence; rows without Galpon are never deduped.
	require.Len(t, rows, 4)
	require.Equal(t, "G1", rows[0].Galpon)
	require.Equal(t, 35, rows[0].Features.SlaughterAgeDays)
	require.Equal(t, "G2", rows[1].Galpon)
}

func TestParseSkipsBlankLines(t *testing.T) {
	rows, err := parseCSV(t, "Sexo,Area,Edad HTS,Edad Granja\n"+
		"Macho,Calidad,35,1000\n"+
		",,,\n")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestParseCSVWithBOM(t *testing.T) {
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Sexo,Area,Edad HTS,Edad Granja\nMacho,Calidad,35,1000\n")...)

	rows, err := NewService(nil).Parse("lote.csv", bytes.NewReader(content))
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestParseRejectsUnknownExtension(t *testing.T) {
	_, err := NewService(nil).Parse("lote.txt", strings.NewReader("x"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported file type")
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetList()[0]
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Sexo", "Area", "Edad HTS", "Edad Granja"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Hembra", "I. Intestinal", 28, 750}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := NewService(nil).Parse("lote.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, models.FeatureRow{AreaCode: 4, SexCode: 0, SlaughterAgeDays: 28, SaleAgeDays: 750}, rows[0].Features)
}

func TestFeaturesPreservesOrder(t *testing.T) {
	rows := []Row{
		{Features: models.FeatureRow{AreaCode: 1}},
		{Features: models.FeatureRow{AreaCode: 2}},
	}
	features := Features(rows)
	require.Equal(t, 1, features[0].AreaCode)
	require.Equal(t, 2, features[1].AreaCode)
}
