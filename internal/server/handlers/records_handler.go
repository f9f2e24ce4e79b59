package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/avipredict/internal/domain/models"
	"github.com/mamadbah2/avipredict/internal/repository/supabase"
	"github.com/mamadbah2/avipredict/internal/repository/workbook"
	"github.com/mamadbah2/avipredict/pkg/metrics"
)

// RecordsHandler serves persistence of provenance records: the remote table
// and the shared workbook.
type RecordsHandler struct {
	store    supabase.Repository
	workbook workbook.Repository
	metrics  *metrics.Manager
	logger   *zap.Logger
	now      func() time.Time
}

// NewRecordsHandler constructs the records HTTP adapter. wb may be nil when
// the workbook feature is not configured.
func NewRecordsHandler(store supabase.Repository, wb workbook.Repository, m *metrics.Manager, logger *zap.Logger) *RecordsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordsHandler{
		store:    store,
		workbook: wb,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Save inserts one provenance record, stamping created_at. A failed save
// loses nothing; the caller still holds the computed result and may retry.
func (h *RecordsHandler) Save(c *gin.Context) {
	var record models.SavedPredictionRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record body"})
		return
	}
	if record.Nombre == "" || record.Cargo == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nombre and cargo are required"})
		return
	}

	record.CreatedAt = h.now().UTC()

	stored, err := h.store.Insert(c.Request.Context(), record)
	if err != nil {
		h.logger.Error("failed saving record", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	if h.metrics != nil {
		h.metrics.RecordSaved()
	}
	c.JSON(http.StatusCreated, stored)
}

// List returns every saved record, newest first.
func (h *RecordsHandler) List(c *gin.Context) {
	records, err := h.store.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed listing records", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}

// Delete removes one record by id through the backend stored procedure.
func (h *RecordsHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("failed deleting record", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// AppendWorkbookRequest carries the records to append to the workbook.
type AppendWorkbookRequest struct {
	Records []models.SavedPredictionRecord `json:"records" binding:"required"`
}

// AppendWorkbook appends records to the shared Drive workbook.
func (h *RecordsHandler) AppendWorkbook(c *gin.Context) {
	if h.workbook == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "workbook persistence is not configured"})
		return
	}

	var req AppendWorkbookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Records) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "records must not be empty"})
		return
	}

	for i := range req.Records {
		if req.Records[i].CreatedAt.IsZero() {
			req.Records[i].CreatedAt = h.now().UTC()
		}
	}

	if err := h.workbook.AppendRecords(c.Request.Context(), req.Records); err != nil {
		h.logger.Error("failed appending to workbook", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	if h.metrics != nil {
		h.metrics.WorkbookWrite()
	}
	c.JSON(http.StatusOK, gin.H{"appended": len(req.Records)})
}
