package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/avipredict/internal/config"
	"github.com/mamadbah2/avipredict/internal/repository/supabase"
	"github.com/mamadbah2/avipredict/internal/repository/workbook"
)

// Scheduler runs the optional workbook sync job: saved predictions newer
// than the last run are appended to the shared Drive workbook.
type Scheduler struct {
	cron     *cron.Cron
	store    supabase.Repository
	workbook workbook.Repository
	cfg      config.SyncConfig
	logger   *zap.Logger

	lastSync time.Time
}

// NewScheduler creates a scheduler instance. Jobs run sequentially in the
// configured timezone, falling back to local time when it cannot be loaded.
func NewScheduler(cfg config.SyncConfig, store supabase.Repository, wb workbook.Repository, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Overlapping runs would break the workbook's single-writer assumption.
	opts := []cron.Option{cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))}
	if loc, err := time.LoadLocation(cfg.Timezone); err == nil {
		opts = append(opts, cron.WithLocation(loc))
	} else {
		logger.Warn("invalid timezone, using local", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	return &Scheduler{
		cron:     cron.New(opts...),
		store:    store,
		workbook: wb,
		cfg:      cfg,
		logger:   logger,
		lastSync: time.Now().UTC(),
	}
}

// Start schedules the sync job. A missing cron expression or workbook
// repository leaves the scheduler idle.
func (s *Scheduler) Start() {
	if s.cfg.CronSchedule == "" || s.workbook == nil {
		s.logger.Info("workbook sync disabled")
		return
	}

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.syncWorkbook); err != nil {
		s.logger.Error("failed to schedule workbook sync", zap.Error(err))
		return
	}

	s.logger.Info("workbook sync scheduled", zap.String("cron", s.cfg.CronSchedule))
	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) syncWorkbook() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	since := s.lastSync
	records, err := s.store.ListSince(ctx, since)
	if err != nil {
		s.logger.Error("workbook sync: failed listing records", zap.Error(err))
		return
	}
	if len(records) == 0 {
		s.logger.Debug("workbook sync: nothing new", zap.Time("since", since))
		return
	}

	if err := s.workbook.AppendRecords(ctx, records); err != nil {
		s.logger.Error("workbook sync: append failed", zap.Error(err))
		return
	}

	// Advance the watermark only after a successful append so a failed run
	// is retried with the same window.
	s.lastSync = time.Now().UTC()
	s.logger.Info("workbook sync completed", zap.Int("records", len(records)), zap.Time("since", since))
}
