package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/kushwahaamar-dev/sentinel/config"
	"github.com/kushwahaamar-dev/sentinel/middleware"
	"github.com/kushwahaamar-dev/sentinel/repositories"
	"github.com/kushwahaamar-dev/sentinel/repositories/postgres"
	"github.com/kushwahaamar-dev/sentinel/services/audit"
	"github.com/kushwahaamar-dev/sentinel/services/ingest"
	"github.com/kushwahaamar-dev/sentinel/services/oracle"
	"github.com/kushwahaamar-dev/sentinel/services/oracle/gemini"
	"github.com/kushwahaamar-dev/sentinel/services/payout"
	"github.com/kushwahaamar-dev/sentinel/services/poller"
	"github.com/kushwahaamar-dev/sentinel/services/recipients"
	"github.com/kushwahaamar-dev/sentinel/services/sink"
	"github.com/kushwahaamar-dev/sentinel/services/sink/vault"
	"github.com/kushwahaamar-dev/sentinel/services/sources"
	"github.com/kushwahaamar-dev/sentinel/services/sources/eonet"
	"github.com/kushwahaamar-dev/sentinel/services/sources/gdacs"
	"github.com/kushwahaamar-dev/sentinel/services/sources/nws"
	"github.com/kushwahaamar-dev/sentinel/services/sources/owm"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repositories
	Records repositories.RecordRepository
	Logs    repositories.LogRepository

	// Ingestion
	Switchboard *ingest.Switchboard
	Statuses    *ingest.StatusCache
	Events      *ingest.EventCache

	// Pipeline
	Gateway  *oracle.Gateway
	Registry *recipients.Registry
	Sink     sink.DisbursementSink
	Pipeline *payout.Pipeline

	// Background services
	Audit  *audit.Service
	Poller *poller.Poller

	// HTTP
	AuthMiddleware *middleware.AuthMiddleware

	// StartedAt anchors the uptime reported by /statistics.
	StartedAt time.Time
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:    cfg,
		Logger:    logger,
		StartedAt: time.Now().UTC(),
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initRepositories()
	deps.initIngestion(cfg)

	if err := deps.initPipeline(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	deps.AuthMiddleware = middleware.NewAuthMiddleware(cfg.OperatorKey, logger)

	logger.Info("all dependencies initialized successfully",
		zap.String("mode", string(cfg.Mode)))
	return deps, nil
}

// initDatabase initializes the PostgreSQL connection and schema
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	db, err := postgres.NewDB(cfg.Database, d.Logger)
	if err != nil {
		return err
	}
	d.DB = db

	if err := db.InitSchema(ctx); err != nil {
		return err
	}

	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	d.Records = postgres.NewRecordRepository(d.DB, d.Logger)
	d.Logs = postgres.NewLogRepository(d.DB, d.Logger)
	d.Logger.Info("repositories initialized")
}

// initIngestion wires the feed adapters into the switchboard
func (d *Dependencies) initIngestion(cfg *config.Config) {
	client := sources.NewClient(sources.ClientConfig{
		Timeout: cfg.Sources.HTTPTimeout,
	})

	feeds := []sources.Source{
		gdacs.New(cfg.Sources.GDACSURL, client),
		eonet.New(cfg.Sources.EONETURL, client),
		nws.New(cfg.Sources.NWSURL, client),
		owm.New(cfg.Sources.OWMURL, cfg.Sources.OWMAPIKey, client),
	}

	d.Statuses = ingest.NewStatusCache()
	d.Events = ingest.NewEventCache(cfg.Poller.EventCacheSize, 24*time.Hour)

	scenariosPath := filepath.Join(cfg.DataDir, "scenarios.json")
	d.Switchboard = ingest.NewSwitchboard(feeds, scenariosPath, d.Statuses, d.Logger)

	d.Logger.Info("ingestion switchboard initialized",
		zap.Int("sources", len(feeds)))
}

// initPipeline wires the oracle, registry, sink and background services
func (d *Dependencies) initPipeline(cfg *config.Config) error {
	// The live judge only runs with a key; without one the gateway
	// goes straight to the deterministic rule fallback.
	var judge oracle.Judge
	if cfg.Oracle.APIKey != "" {
		judge = gemini.New(gemini.Config{
			APIKey:  cfg.Oracle.APIKey,
			BaseURL: cfg.Oracle.BaseURL,
			Model:   cfg.Oracle.Model,
			Timeout: cfg.Oracle.Timeout,
		})
		d.Logger.Info("decision oracle configured", zap.String("model", cfg.Oracle.Model))
	} else {
		d.Logger.Warn("no oracle API key configured, using rule fallback only")
	}
	d.Gateway = oracle.NewGateway(judge, cfg.Oracle.Timeout, d.Logger)

	registry, err := recipients.NewRegistry(filepath.Join(cfg.DataDir, "recipients.json"), d.Logger)
	if err != nil {
		return fmt.Errorf("failed to load recipient registry: %w", err)
	}
	d.Registry = registry

	if cfg.IsLive() {
		d.Sink = vault.New(vault.Config{
			Endpoint: cfg.Sink.Endpoint,
			APIKey:   cfg.Sink.APIKey,
			Timeout:  cfg.Sink.Timeout,
		})
	} else {
		d.Sink = sink.NewMockSink(d.Logger)
	}
	d.Logger.Info("disbursement sink initialized", zap.String("sink", d.Sink.Name()))

	d.Audit = audit.NewService(d.Logs, d.Logger, audit.DefaultConfig())
	d.Pipeline = payout.NewPipeline(d.Records, d.Registry, d.Gateway, d.Sink, d.Audit, d.Logger)

	d.Poller = poller.NewPoller(d.Switchboard, d.Pipeline, d.Events, d.Audit, poller.Config{
		Interval:       cfg.Poller.Interval,
		SuppressWindow: cfg.Poller.SuppressWindow,
	}, d.Logger)

	return nil
}

// Start launches the background services. The poller only runs in
// LIVE mode; MOCK deployments scan through the simulate endpoint.
func (d *Dependencies) Start(ctx context.Context) error {
	if err := d.Audit.Start(); err != nil {
		return fmt.Errorf("failed to start audit service: %w", err)
	}

	if d.Config.IsLive() {
		if err := d.Poller.Start(ctx); err != nil {
			return fmt.Errorf("failed to start poller: %w", err)
		}
	}

	return nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	if d.Config.IsLive() {
		d.Poller.Stop()
	}

	if err := d.Audit.Stop(5 * time.Second); err != nil {
		d.Logger.Warn("audit service did not drain in time", zap.Error(err))
	}

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	d.Logger.Info("all dependencies closed")
	return nil
}
