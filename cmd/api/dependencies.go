package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/committee"
	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/extractor"
	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/handler"
	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/parser"
	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/repository"
	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/service"

	"github.com/FACorreiaa/dc-campaign-finance/pkg/alert"
	"github.com/FACorreiaa/dc-campaign-finance/pkg/config"
	"github.com/FACorreiaa/dc-campaign-finance/pkg/cron"
	"github.com/FACorreiaa/dc-campaign-finance/pkg/db"
	"github.com/FACorreiaa/dc-campaign-finance/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	// Repositories
	FilingRepo     repository.FilingRepository
	CommitteeIndex *committee.Index

	// Services
	FileStorage   storage.Storage
	AlertService  *alert.Service
	FilingService *service.FilingService
	Scheduler     *cron.Scheduler

	// Handlers
	FilingHandler *handler.FilingHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	// Initialize database
	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	// Initialize repositories
	if err := deps.initRepositories(ctx); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}

	// Initialize services
	if err := deps.initServices(); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	// Initialize handlers
	if err := deps.initHandlers(); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        int32(d.Config.Database.MaxConns),
		MinConns:        int32(d.Config.Database.MinConns),
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	// Run migrations
	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initRepositories initializes the filing repository and the committee index built from it
func (d *Dependencies) initRepositories(ctx context.Context) error {
	d.FilingRepo = repository.NewPostgresFilingRepository(d.DB.Pool)

	index, err := committee.NewIndex(d.Config.Committees.IndexPath, d.Config.Committees.MatchThreshold)
	if err != nil {
		return fmt.Errorf("failed to open committee index: %w", err)
	}
	d.CommitteeIndex = index

	committees, err := d.FilingRepo.ListCommittees(ctx)
	if err != nil {
		return fmt.Errorf("failed to list committees: %w", err)
	}
	if err := d.CommitteeIndex.Build(committees); err != nil {
		return fmt.Errorf("failed to build committee index: %w", err)
	}

	d.Logger.Info("repositories initialized", slog.Int("committees", len(committees)))
	return nil
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() error {
	fileStorage, err := storage.NewLocalStorage(d.Config.Storage.BasePath)
	if err != nil {
		return fmt.Errorf("failed to init file storage: %w", err)
	}
	d.FileStorage = fileStorage

	p := parser.NewParser(parserConfig(d.Config.Parser))

	d.FilingService = service.NewFilingService(extractor.NewPdfToText(d.Config.Ingest.PdfToText), p, d.Logger).
		WithRepository(d.FilingRepo).
		WithCommittees(d.CommitteeIndex).
		WithStorage(d.FileStorage).
		WithLimit(d.Config.Limits.ContributionLimitCents).
		WithWorkers(d.Config.Ingest.Workers)
	if d.Config.Alerts.WebhookURL != "" {
		d.AlertService = alert.NewService(d.Config.Alerts.WebhookURL, d.Logger)
		d.FilingService.WithAlerter(d.AlertService)
	}
	if d.Config.Ingest.VerifyPages {
		d.FilingService.WithPageCounter(extractor.CountPages)
	}

	if d.Config.Ingest.Enabled {
		d.Scheduler = cron.NewScheduler(d.FilingService, d.Config.Ingest.Schedule, d.Logger)
	}

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() error {
	d.FilingHandler = handler.NewFilingHandler(d.FilingService, d.Logger)

	d.Logger.Info("handlers initialized")
	return nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	if d.CommitteeIndex != nil {
		if err := d.CommitteeIndex.Close(); err != nil {
			d.Logger.Warn("failed to close committee index", slog.Any("error", err))
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}

// parserConfig applies the configured page classification to the default report layout.
func parserConfig(cfg config.ParserConfig) parser.ParserConfig {
	pc := parser.DefaultConfig()
	pc.Segmenter.SkipPages = cfg.SkipPages
	pc.Segmenter.FirstPage = cfg.SkipPages + 1
	if len(cfg.BoilerplatePhrases) > 0 {
		pc.Segmenter.BoilerplatePhrases = cfg.BoilerplatePhrases
	}
	return pc
}

var (
	_ service.CommitteeResolver = (*committee.Index)(nil)
	_ cron.Ingester             = (*service.FilingService)(nil)
)
