package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/mamadbah2/avipredict/internal/domain/models"
)

// utf8BOM makes Excel open the file as UTF-8 instead of the locale codepage.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Header lays out the exported columns: the original inputs followed by the
// submitting user and the four predicted metrics.
var Header = []string{
	models.FieldSexo, models.FieldArea, models.FieldEdadHTS, models.FieldEdadGranja, models.FieldGalpon,
	"Nombre Usuario", "Cargo Usuario",
	"prePorcMort", "prePorcCon", "preICA", "prePeProFin",
}

// Row is one exportable line: input labels, provenance and result.
type Row struct {
	Sexo      string
	Area      string
	EdadHTS   int
	EdadVenta float64
	Galpon    string
	Nombre    string
	Cargo     string
	Result    models.PredictionResult
}

// Filename stamps the capture time into the download name.
func Filename(at time.Time) string {
	return fmt.Sprintf("predicciones_avicolas_%s.csv", at.Format("20060102_150405"))
}

// WriteCSV serializes the rows as UTF-8 CSV. When withBOM is set the output
// is prefixed with a UTF-8 byte order mark for Excel compatibility.
func WriteCSV(rows []Row, withBOM bool) ([]byte, error) {
	var buf bytes.Buffer
	if withBOM {
		buf.Write(utf8BOM)
	}

	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.Sexo,
			row.Area,
			strconv.Itoa(row.EdadHTS),
			strconv.FormatFloat(row.EdadVenta, 'f', -1, 64),
			row.Galpon,
			row.Nombre,
			row.Cargo,
			strconv.FormatFloat(row.Result.PrePorcMort, 'f', 2, 64),
			strconv.FormatFloat(row.Result.PrePorcCon, 'f', 3, 64),
			strconv.FormatFloat(row.Result.PreICA, 'f', 2, 64),
			strconv.FormatFloat(row.Result.PrePeProFin, 'f', 3, 64),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
