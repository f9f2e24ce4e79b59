package workbook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/mamadbah2/avipredict/internal/config"
	"github.com/mamadbah2/avipredict/internal/domain/models"
)

const sheetName = "Sheet1"

var header = []interface{}{
	"Nombre", "Cargo", "Area", "Sexo", "Edad HTS", "Edad Granja",
	"prePorcMort", "prePorcCon", "preICA", "prePeProFin", "created_at",
}

// Repository appends saved prediction records to the shared workbook.
type Repository interface {
	AppendRecords(ctx context.Context, records []models.SavedPredictionRecord) error
}

// DriveRepository keeps the predictions workbook on a Google Drive folder.
//
// Appending is a download-modify-reupload of the whole file with no
// optimistic concurrency check; concurrent writers outside this process can
// lose updates. Single-writer use is assumed.
type DriveRepository struct {
	service  *drive.Service
	folderID string
	filename string
	logger   *zap.Logger
}

// NewDriveRepository builds a Drive-backed workbook repository.
func NewDriveRepository(ctx context.Context, cfg config.DriveConfig, logger *zap.Logger) (*DriveRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := drive.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(drive.DriveScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize drive client: %w", err)
	}

	return &DriveRepository{
		service:  service,
		folderID: cfg.FolderID,
		filename: cfg.Filename,
		logger:   logger,
	}, nil
}

// AppendRecords downloads the workbook if it exists, appends one row per
// record and uploads the full file back. A missing workbook is created from
// the header plus the new rows.
func (r *DriveRepository) AppendRecords(ctx context.Context, records []models.SavedPredictionRecord) error {
	if len(records) == 0 {
		return nil
	}

	fileID, err := r.findFile(ctx)
	if err != nil {
		return err
	}

	var f *excelize.File
	if fileID == "" {
		f = excelize.NewFile()
		if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
			return fmt.Errorf("write workbook header: %w", err)
		}
	} else {
		f, err = r.download(ctx, fileID)
		if err != nil {
			return err
		}
	}
	defer f.Close()

	if err := appendRows(f, records); err != nil {
		return err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("serialize workbook: %w", err)
	}

	if err := r.upload(ctx, fileID, buf); err != nil {
		return err
	}

	r.logger.Info("workbook updated", zap.String("file", r.filename), zap.Int("rows", len(records)))
	return nil
}

func (r *DriveRepository) findFile(ctx context.Context) (string, error) {
	query := fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false", r.filename, r.folderID)
	list, err := r.service.Files.List().Q(query).Fields("files(id, name)").PageSize(1).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("locate workbook %s: %w", r.filename, err)
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

func (r *DriveRepository) download(ctx context.Context, fileID string) (*excelize.File, error) {
	resp, err := r.service.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		// A workbook deleted between lookup and download is treated as absent.
		if apiErr, ok := err.(*googleapi.Error); ok && apiErr.Code == 404 {
			f := excelize.NewFile()
			if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
				return nil, fmt.Errorf("write workbook header: %w", err)
			}
			return f, nil
		}
		return nil, fmt.Errorf("download workbook %s: %w", r.filename, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read workbook body: %w", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", r.filename, err)
	}
	return f, nil
}

func (r *DriveRepository) upload(ctx context.Context, fileID string, buf *bytes.Buffer) error {
	if fileID == "" {
		meta := &drive.File{Name: r.filename, Parents: []string{r.folderID}}
		if _, err := r.service.Files.Create(meta).Media(bytes.NewReader(buf.Bytes())).Context(ctx).Do(); err != nil {
			return fmt.Errorf("create workbook %s: %w", r.filename, err)
		}
		return nil
	}

	if _, err := r.service.Files.Update(fileID, &drive.File{}).Media(bytes.NewReader(buf.Bytes())).Context(ctx).Do(); err != nil {
		return fmt.Errorf("upload workbook %s: %w", r.filename, err)
	}
	return nil
}

func appendRows(f *excelize.File, records []models.SavedPredictionRecord) error {
	sheet := f.GetSheetList()[0]
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("scan workbook rows: %w", err)
	}

	next := len(rows) + 1
	for i, rec := range records {
		cellRef, err := excelize.CoordinatesToCellName(1, next+i)
		if err != nil {
			return fmt.Errorf("compute cell reference: %w", err)
		}
		values := []interface{}{
			rec.Nombre, rec.Cargo, rec.AreaGranja, rec.Sexo, rec.EdadSacrificio, rec.EdadVenta,
			rec.PrePorcMort, rec.PrePorcCon, rec.PreICA, rec.PrePeProFin,
			rec.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(sheet, cellRef, &values); err != nil {
			return fmt.Errorf("append workbook row: %w", err)
		}
	}
	return nil
}
