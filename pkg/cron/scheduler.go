// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	filingservice "github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/service"
)

// Ingester processes the report inbox.
type Ingester interface {
	IngestInbox(ctx context.Context) (filingservice.IngestSummary, error)
}

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron     *cron.Cron
	ingester Ingester
	schedule string
	timeout  time.Duration
	running  sync.Mutex
	logger   *slog.Logger
}

// NewScheduler creates a new job scheduler. schedule uses the standard 5-field format.
func NewScheduler(ingester Ingester, schedule string, logger *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:     c,
		ingester: ingester,
		schedule: schedule,
		timeout:  30 * time.Minute,
		logger:   logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.ingestInbox)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.String("schedule", s.schedule),
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers an inbox ingest.
func (s *Scheduler) RunNow() {
	go s.ingestInbox()
}

// ingestInbox runs one ingest. A run that starts while another is in progress is skipped.
func (s *Scheduler) ingestInbox() {
	if !s.running.TryLock() {
		s.logger.Warn("inbox ingest still running, skipping")
		return
	}
	defer s.running.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.logger.Info("starting scheduled inbox ingest")

	summary, err := s.ingester.IngestInbox(ctx)
	if err != nil {
		s.logger.Error("inbox ingest failed", slog.Any("error", err))
		return
	}

	s.logger.Info("scheduled inbox ingest completed",
		slog.Int("processed", summary.Processed),
		slog.Int("duplicates", summary.Duplicates),
		slog.Int("rejected", summary.Rejected),
		slog.Int("failed", summary.Failed),
	)
}
