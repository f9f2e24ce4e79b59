package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/avipredict/internal/domain/models"
	"github.com/mamadbah2/avipredict/internal/repository/mongodb"
	"github.com/mamadbah2/avipredict/internal/service/export"
	"github.com/mamadbah2/avipredict/internal/service/ingest"
	"github.com/mamadbah2/avipredict/internal/service/prediction"
	"github.com/mamadbah2/avipredict/pkg/metrics"
)

// Predictor is the slice of the batch pipeline the HTTP layer consumes.
type Predictor interface {
	PredictAll(rows []models.FeatureRow) ([]models.PredictionResult, error)
}

// Ingester parses uploaded prediction files.
type Ingester interface {
	Parse(filename string, r io.Reader) ([]ingest.Row, error)
}

// PredictionHandler serves manual and file-based inference plus CSV export.
type PredictionHandler struct {
	predictor Predictor
	ingester  Ingester
	audit     mongodb.AuditRepository
	metrics   *metrics.Manager
	logger    *zap.Logger
	now       func() time.Time
}

// NewPredictionHandler constructs the HTTP handler adapter. audit may be nil
// when the inference log is disabled.
func NewPredictionHandler(p Predictor, ing Ingester, audit mongodb.AuditRepository, m *metrics.Manager, logger *zap.Logger) *PredictionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PredictionHandler{
		predictor: p,
		ingester:  ing,
		audit:     audit,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// ManualPredictionRequest is one form submission.
type ManualPredictionRequest struct {
	Nombre         string  `json:"nombre" binding:"required"`
	Cargo          string  `json:"cargo" binding:"required"`
	Area           string  `json:"area" binding:"required"`
	Sexo           string  `json:"sexo" binding:"required"`
	EdadSacrificio int     `json:"edadSacrificio" binding:"required"`
	EdadVenta      float64 `json:"edadVenta"`
}

// FileRowResponse pairs one validated upload row with its prediction.
type FileRowResponse struct {
	Index  int                     `json:"index"`
	Sexo   string                  `json:"sexo"`
	Area   string                  `json:"area"`
	Galpon string                  `json:"galpon,omitempty"`
	Input  models.FeatureRow       `json:"input"`
	Result models.PredictionResult `json:"result"`
}

// PredictManual scores a single form row and returns the result together
// with the provenance record ready to be saved.
func (h *PredictionHandler) PredictManual(c *gin.Context) {
	var req ManualPredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid prediction payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sexCode, err := models.EncodeSex(req.Sexo)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	areaCode, err := models.EncodeArea(req.Area)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row := models.FeatureRow{
		AreaCode:         areaCode,
		SexCode:          sexCode,
		SlaughterAgeDays: req.EdadSacrificio,
		SaleAgeDays:      req.EdadVenta,
	}
	if err := row.ValidateManualBounds(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := h.predict(c, "manual", []models.FeatureRow{row})
	if err != nil {
		return
	}

	result, err := prediction.First(results)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	record := models.SavedPredictionRecord{
		Nombre:         req.Nombre,
		Cargo:          req.Cargo,
		AreaGranja:     req.Area,
		Sexo:           req.Sexo,
		EdadSacrificio: req.EdadSacrificio,
		EdadVenta:      req.EdadVenta,
	}
	record.ApplyResult(result)

	c.JSON(http.StatusOK, gin.H{
		"result":    result,
		"flattened": prediction.Flatten(results)[0],
		"record":    record,
	})
}

// PredictFile validates an uploaded CSV/XLSX/XLSM file and scores the whole
// batch in one inference pass.
func (h *PredictionHandler) PredictFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing multipart field 'file'"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read uploaded file"})
		return
	}
	defer f.Close()

	rows, err := h.ingester.Parse(fileHeader.Filename, f)
	if err != nil {
		status := http.StatusBadRequest
		var missing *models.MissingColumnsError
		var invalid *ingest.FileValidationError
		if !errors.As(err, &missing) && !errors.As(err, &invalid) {
			// Parse/IO problems rather than user data problems.
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	results, err := h.predict(c, "file", ingest.Features(rows))
	if err != nil {
		return
	}

	out := make([]FileRowResponse, len(rows))
	for i, row := range rows {
		out[i] = FileRowResponse{
			Index:  row.Index,
			Sexo:   row.Sexo,
			Area:   row.Area,
			Galpon: row.Galpon,
			Input:  row.Features,
			Result: results[i],
		}
	}

	c.JSON(http.StatusOK, gin.H{"rows": out, "count": len(out)})
}

// ExportRequest carries precomputed rows back for CSV serialization.
type ExportRequest struct {
	Rows []export.Row `json:"rows" binding:"required"`
}

// ExportCSV streams the result table as a CSV attachment. Pass ?bom=1 for
// the Excel-compatible UTF-8-with-BOM variant.
func (h *PredictionHandler) ExportCSV(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Rows) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rows must not be empty"})
		return
	}

	withBOM := c.Query("bom") == "1"
	data, err := export.WriteCSV(req.Rows, withBOM)
	if err != nil {
		h.logger.Error("csv export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to build csv"})
		return
	}

	filename := export.Filename(h.now())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// predict runs the batch pipeline, records metrics and the audit entry, and
// writes the HTTP error response on failure.
func (h *PredictionHandler) predict(c *gin.Context, source string, rows []models.FeatureRow) ([]models.PredictionResult, error) {
	start := h.now()
	results, err := h.predictor.PredictAll(rows)
	h.auditLog(c, source, len(rows), time.Since(start), err)

	if err != nil {
		if h.metrics != nil {
			h.metrics.BatchFailed()
		}
		h.logger.Error("inference failed", zap.String("source", source), zap.Int("rows", len(rows)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, err
	}

	if h.metrics != nil {
		h.metrics.BatchScored(len(rows))
	}
	return results, nil
}

func (h *PredictionHandler) auditLog(c *gin.Context, source string, rows int, took time.Duration, predictErr error) {
	if h.audit == nil {
		return
	}

	entry := mongodb.InferenceLog{
		Timestamp:  h.now().UTC(),
		Source:     source,
		Rows:       rows,
		DurationMs: float64(took.Microseconds()) / 1000,
		Status:     "ok",
	}
	if predictErr != nil {
		entry.Status = "error"
		entry.Error = predictErr.Error()
	}

	if err := h.audit.SaveInferenceLog(c.Request.Context(), entry); err != nil {
		// Best effort only; auditing never fails a user request.
		h.logger.Warn("failed to save inference log", zap.Error(err))
	}
}
