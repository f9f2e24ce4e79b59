package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/avipredict/internal/config"
	"github.com/mamadbah2/avipredict/internal/predictor"
	"github.com/mamadbah2/avipredict/internal/repository/mongodb"
	"github.com/mamadbah2/avipredict/internal/repository/supabase"
	"github.com/mamadbah2/avipredict/internal/repository/workbook"
	"github.com/mamadbah2/avipredict/internal/scheduler"
	"github.com/mamadbah2/avipredict/internal/server/handlers"
	"github.com/mamadbah2/avipredict/internal/server/router"
	ingestsvc "github.com/mamadbah2/avipredict/internal/service/ingest"
	predictionsvc "github.com/mamadbah2/avipredict/internal/service/prediction"
	"github.com/mamadbah2/avipredict/pkg/logger"
	"github.com/mamadbah2/avipredict/pkg/metrics"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	// The four regressors are loaded once here and shared read-only for the
	// life of the process. A missing artifact keeps the server from starting.
	modelSet, err := predictor.LoadSet(cfg.Models.Dir, baseLogger.Named("predictor"))
	if err != nil {
		baseLogger.Fatal("failed to load model artifacts", zap.Error(err))
	}

	supabaseRepo := supabase.NewRESTRepository(cfg.Supabase, baseLogger.Named("repo.supabase"))

	var workbookRepo workbook.Repository
	if cfg.WorkbookEnabled() {
		workbookRepo, err = workbook.NewDriveRepository(context.Background(), cfg.Drive, baseLogger.Named("repo.workbook"))
		if err != nil {
			baseLogger.Fatal("failed to init workbook repository", zap.Error(err))
		}
	} else {
		baseLogger.Warn("drive credentials missing, workbook persistence disabled")
	}

	var auditRepo mongodb.AuditRepository
	if cfg.AuditEnabled() {
		mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		auditRepo = mongoRepo
	} else {
		baseLogger.Warn("mongodb uri missing, inference audit log disabled")
	}

	metricsManager := metrics.NewManager()

	batchPredictor := predictionsvc.NewBatchPredictor(modelSet, baseLogger.Named("svc.prediction"))
	ingestSvc := ingestsvc.NewService(baseLogger.Named("svc.ingest"))

	predictionHandler := handlers.NewPredictionHandler(batchPredictor, ingestSvc, auditRepo, metricsManager, baseLogger.Named("handlers.predictions"))
	recordsHandler := handlers.NewRecordsHandler(supabaseRepo, workbookRepo, metricsManager, baseLogger.Named("handlers.records"))
	engine := router.New(predictionHandler, recordsHandler, metricsManager, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Sync, supabaseRepo, workbookRepo, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
