package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/cropledger/internal/config"
	"github.com/mamadbah2/cropledger/internal/domain/models"
	"github.com/mamadbah2/cropledger/internal/metrics"
)

// Snapshotter builds and stores an analytics snapshot.
type Snapshotter interface {
	Snapshot(ctx context.Context, now time.Time) (models.AnalyticsReport, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	reports  Snapshotter
	schedule string
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance running in the configured timezone.
func NewScheduler(cfg config.ReportingConfig, reports Snapshotter, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	// Standard 5-field cron expressions: min, hour, dom, month, dow.
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:     c,
		reports:  reports,
		schedule: cfg.CronSchedule,
		logger:   logger,
	}, nil
}

// Start registers the snapshot job and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.storeSnapshot); err != nil {
		return fmt.Errorf("schedule report snapshot: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) storeSnapshot() {
	s.logger.Info("generating weekly analytics snapshot")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	report, err := s.reports.Snapshot(ctx, time.Now())
	if err != nil {
		metrics.SnapshotsStored.WithLabelValues("error").Inc()
		s.logger.Error("failed to store weekly snapshot", zap.Error(err))
		return
	}

	metrics.SnapshotsStored.WithLabelValues("ok").Inc()
	s.logger.Info("weekly snapshot stored", zap.String("id", report.ID), zap.String("forecast", string(report.Forecast.Kind)))
}
