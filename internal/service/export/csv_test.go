package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/avipredict/internal/domain/models"
)

func sampleRows() []Row {
	return []Row{
		{
			Sexo: "Macho", Area: "Calidad", EdadHTS: 35, EdadVenta: 1000, Galpon: "G1",
			Nombre: "Ana", Cargo: "Supervisora",
			Result: models.PredictionResult{PrePorcMort: 6.27, PrePorcCon: 103.15, PreICA: 1.63, PrePeProFin: 2.52},
		},
	}
}

func TestWriteCSVHeaderAndRow(t *testing.T) {
	data, err := WriteCSV(sampleRows(), false)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.Equal(t, Header, records[0])
	require.Equal(t, []string{
		"Macho", "Calidad", "35", "1000", "G1",
		"Ana", "Supervisora",
		"6.27", "103.150", "1.63", "2.520",
	}, records[1])
}

func TestWriteCSVWithBOM(t *testing.T) {
	data, err := WriteCSV(sampleRows(), true)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))

	// The BOM variant must stay parseable after stripping the prefix.
	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestWriteCSVWithoutBOMHasNoPrefix(t *testing.T) {
	data, err := WriteCSV(sampleRows(), false)
	require.NoError(t, err)
	require.False(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
}

func TestFilenameStampsTimestamp(t *testing.T) {
	at := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	require.Equal(t, "predicciones_avicolas_20250314_150926.csv", Filename(at))
}
