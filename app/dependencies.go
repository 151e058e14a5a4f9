package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/littlebump/sonobot/config"
	"github.com/littlebump/sonobot/internal/line"
	"github.com/littlebump/sonobot/repositories"
	"github.com/littlebump/sonobot/repositories/postgres"
	"github.com/littlebump/sonobot/services/analysis"
	"github.com/littlebump/sonobot/services/dispatch"
	"github.com/littlebump/sonobot/services/providers"
	"github.com/littlebump/sonobot/services/providers/gemini"
	"github.com/littlebump/sonobot/services/providers/openrouter"
)

// Dependencies holds all application dependencies. This is the central
// wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger
	DB     *postgres.DB // nil when no database is configured

	// Repositories
	AnalysisRecords repositories.AnalysisRecordRepository // nil without DB

	// Dispatch
	Rotator     *dispatch.Rotator
	Coordinator *dispatch.Coordinator

	// Services
	Line     *line.Client
	Analysis *analysis.Service
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initDispatch(cfg)
	deps.initServices(cfg)

	if !cfg.HasPrimaryProvider() && !cfg.HasFallbackProvider() {
		logger.Warn("no vision providers configured, every analysis will fail")
	}

	logger.Info("all dependencies initialized",
		zap.Int("gemini_keys", len(cfg.Gemini.APIKeys)),
		zap.Bool("fallback_configured", cfg.HasFallbackProvider()),
		zap.Bool("recording_enabled", deps.DB != nil))
	return deps, nil
}

// initDatabase opens the PostgreSQL pool and prepares the analysis schema.
// Skipped entirely when no database is configured.
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	if cfg.Database == nil {
		d.Logger.Info("no database configured, analysis recording disabled")
		return nil
	}

	db, err := postgres.NewDB(*cfg.Database, d.Logger)
	if err != nil {
		return err
	}
	if err := db.InitSchema(ctx); err != nil {
		return err
	}

	d.DB = db
	d.AnalysisRecords = postgres.NewAnalysisRecordRepository(db, d.Logger)
	return nil
}

// initDispatch builds the key rotation and fallback chain.
func (d *Dependencies) initDispatch(cfg *config.Config) {
	rotCfg := dispatch.DefaultRotatorConfig()
	rotCfg.KeyCooldown = cfg.Gemini.KeyCooldown
	rotCfg.GlobalCooldown = cfg.Gemini.GlobalCooldown
	rotCfg.MaxRounds = cfg.Gemini.MaxRotationRounds

	pool := dispatch.NewKeyPool(cfg.Gemini.APIKeys)
	d.Rotator = dispatch.NewRotator(pool, cfg.Gemini.MinRequestInterval, rotCfg, dispatch.SystemClock(), d.Logger)

	geminiClient := gemini.NewClient(gemini.Config{
		BaseURL: cfg.Gemini.BaseURL,
		Model:   cfg.Gemini.Model,
		Timeout: cfg.Gemini.Timeout,
	})
	primary := func(ctx context.Context, apiKey string, image providers.Image, prompt string) (string, error) {
		return geminiClient.Analyze(ctx, apiKey, image, prompt)
	}

	var secondary dispatch.SecondaryFunc
	if cfg.HasFallbackProvider() {
		orClient := openrouter.NewClient(openrouter.Config{
			APIKey:  cfg.OpenRouter.APIKey,
			BaseURL: cfg.OpenRouter.BaseURL,
			Timeout: cfg.OpenRouter.Timeout,
		})
		secondary = func(ctx context.Context, model string, image providers.Image, prompt string) (string, error) {
			return orClient.Analyze(ctx, model, image, prompt)
		}
	}

	d.Coordinator = dispatch.NewCoordinator(d.Rotator, primary, secondary, cfg.OpenRouter.Models, d.Logger)
}

// initServices builds the LINE client and the analysis service.
func (d *Dependencies) initServices(cfg *config.Config) {
	d.Line = line.NewClient(line.ClientConfig{
		ChannelAccessToken: cfg.Line.ChannelAccessToken,
		APIBase:            cfg.Line.APIBase,
		BlobBase:           cfg.Line.BlobBase,
		Timeout:            cfg.Line.Timeout,
	}, d.Logger)

	d.Analysis = analysis.NewService(d.Coordinator, d.AnalysisRecords, "gemini", cfg.Gemini.Model, d.Logger)
}

// Close releases held resources.
func (d *Dependencies) Close() {
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			d.Logger.Error("failed to close database", zap.Error(err))
		}
	}
}
