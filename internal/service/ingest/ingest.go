package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/avipredict/internal/domain/models"
)

// Columns an uploaded file must carry. Names are matched case-sensitively
// after trimming surrounding whitespace.
var RequiredColumns = []string{models.FieldSexo, models.FieldArea, models.FieldEdadHTS, models.FieldEdadGranja}

// Row is one validated file entry: the original labels kept for provenance
// and export, plus the encoded feature row.
type Row struct {
	Index    int // zero-based data row position in the file
	Sexo     string
	Area     string
	Galpon   string
	Features models.FeatureRow
}

// FileValidationError aggregates every row-level problem found in an upload
// so the user can fix the source data in one pass.
type FileValidationError struct {
	Errors []error
}

func (e *FileValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("uploaded file failed validation: %s", strings.Join(msgs, "; "))
}

// Service parses uploaded prediction files into encoded feature batches.
type Service struct {
	logger *zap.Logger
}

// NewService wires a file-ingest service.
func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}
}

// Parse reads an uploaded file (CSV, XLSX or XLSM, dispatched on the file
// extension) and returns the validated, encoded rows in file order. Rows
// sharing a non-empty Galpon value are deduplicated keeping the first
// occurrence. Any missing required column or unmappable value rejects the
// whole file.
func (s *Service) Parse(filename string, r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	var table [][]string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		table, err = readCSV(data)
	case ".xlsx", ".xlsm":
		table, err = readWorkbook(data)
	default:
		return nil, fmt.Errorf("unsupported file type %q, expected .csv, .xlsx or .xlsm", filepath.Ext(filename))
	}
	if err != nil {
		return nil, err
	}

	if len(table) == 0 {
		return nil, fmt.Errorf("uploaded file %s is empty", filename)
	}

	columns, err := mapColumns(table[0])
	if err != nil {
		return nil, err
	}

	rows, err := s.buildRows(table[1:], columns)
	if err != nil {
		return nil, err
	}

	rows = dedupeByGalpon(rows)
	s.logger.Info("upload parsed", zap.String("file", filename), zap.Int("rows", len(rows)))
	return rows, nil
}

func readCSV(data []byte) ([][]string, error) {
	// Tolerate the UTF-8 BOM our own Excel-compatible export prepends.
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	table, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return table, nil
}

func readWorkbook(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// mapColumns resolves header names to column positions, trimming surrounding
// whitespace before matching, and rejects the file listing every missing
// required column.
func mapColumns(header []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := positions[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &models.MissingColumnsError{Columns: missing}
	}
	return positions, nil
}

func (s *Service) buildRows(data [][]string, columns map[string]int) ([]Row, error) {
	var rowErrs []error
	rows := make([]Row, 0, len(data))

	for i, record := range data {
		if blankRecord(record) {
			continue
		}

		row := Row{
			Index: i,
			Sexo:  strings.TrimSpace(cell(record, columns[models.FieldSexo])),
			Area:  strings.TrimSpace(cell(record, columns[models.FieldArea])),
		}
		if pos, ok := columns[models.FieldGalpon]; ok {
			row.Galpon = strings.TrimSpace(cell(record, pos))
		}

		sexCode, err := models.EncodeSex(row.Sexo)
		if err != nil {
			rowErrs = append(rowErrs, categoryAt(err, i))
			continue
		}
		areaCode, err := models.EncodeArea(row.Area)
		if err != nil {
			rowErrs = append(rowErrs, categoryAt(err, i))
			continue
		}

		hts := strings.TrimSpace(cell(record, columns[models.FieldEdadHTS]))
		slaughterAge, err := strconv.ParseFloat(hts, 64)
		if err != nil {
			rowErrs = append(rowErrs, &models.RowError{Row: i, Field: models.FieldEdadHTS, Value: hts, Err: err})
			continue
		}

		granja := strings.TrimSpace(cell(record, columns[models.FieldEdadGranja]))
		saleAge, err := strconv.ParseFloat(granja, 64)
		if err != nil {
			rowErrs = append(rowErrs, &models.RowError{Row: i, Field: models.FieldEdadGranja, Value: granja, Err: err})
			continue
		}

		row.Features = models.FeatureRow{
			AreaCode:         areaCode,
			SexCode:          sexCode,
			SlaughterAgeDays: int(slaughterAge),
			SaleAgeDays:      saleAge,
		}
		rows = append(rows, row)
	}

	if len(rowErrs) > 0 {
		return nil, &FileValidationError{Errors: rowErrs}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("uploaded file has no data rows")
	}
	return rows, nil
}

func categoryAt(err error, row int) error {
	if cat, ok := err.(*models.UnrecognizedCategoryError); ok {
		withRow := *cat
		withRow.Row = row
		return &withRow
	}
	return err
}

func cell(record []string, pos int) string {
	if pos < 0 || pos >= len(record) {
		return ""
	}
	return record[pos]
}

func blankRecord(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func dedupeByGalpon(rows []Row) []Row {
	seen := make(map[string]bool, len(rows))
	out := rows[:0]
	for _, row := range rows {
		if row.Galpon != "" {
			if seen[row.Galpon] {
				continue
			}
			seen[row.Galpon] = true
		}
		out = append(out, row)
	}
	return out
}

// Features extracts the encoded feature batch in row order.
func Features(rows []Row) []models.FeatureRow {
	out := make([]models.FeatureRow, len(rows))
	for i, r := range rows {
		out[i] = r.Features
	}
	return out
}
