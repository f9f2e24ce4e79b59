package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/avipredict/internal/server/handlers"
	"github.com/mamadbah2/avipredict/pkg/metrics"
)

// New wires the Gin engine with required routes and middlewares.
func New(predictions *handlers.PredictionHandler, records *handlers.RecordsHandler, m *metrics.Manager, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	api := r.Group("/api/v1")
	{
		api.POST("/predictions", predictions.PredictManual)
		api.POST("/predictions/file", predictions.PredictFile)
		api.POST("/predictions/export", predictions.ExportCSV)

		api.POST("/records", records.Save)
		api.GET("/records", records.List)
		api.DELETE("/records/:id", records.Delete)
		api.POST("/records/workbook", records.AppendWorkbook)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
