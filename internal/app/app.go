// Package app wires configuration, storage, clients, and services into one
// shared core used by cmd/folio-server.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/foliolab/folio/internal/clients/yahoo"
	"github.com/foliolab/folio/internal/common"
	"github.com/foliolab/folio/internal/interfaces"
	"github.com/foliolab/folio/internal/services/analytics"
	"github.com/foliolab/folio/internal/services/portfolio"
	"github.com/foliolab/folio/internal/storage"
)

// App holds all initialized services, clients, and storage.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	MarketClient     interfaces.MarketDataClient
	PortfolioService interfaces.PortfolioService
	AnalyticsService interfaces.AnalyticsService
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients, and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	binDir := getBinaryDir()

	// Load configuration: provided path, FOLIO_CONFIG, binary dir, then the
	// development fallback.
	if configPath == "" {
		configPath = os.Getenv("FOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "folio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/folio.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to binary directory
	if config.Storage.Portfolio.Path != "" && !filepath.IsAbs(config.Storage.Portfolio.Path) {
		config.Storage.Portfolio.Path = filepath.Join(binDir, config.Storage.Portfolio.Path)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	marketClient := yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
		yahoo.WithBenchmark(config.Analytics.BenchmarkSymbol),
		yahoo.WithLogger(logger),
	)

	app := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		MarketClient:     marketClient,
		PortfolioService: portfolio.NewService(storageManager, marketClient, logger),
		AnalyticsService: analytics.NewService(storageManager, marketClient, config.Analytics.SmoothingEnabled(), logger),
		StartupTime:      time.Now(),
	}

	logger.Info().
		Str("environment", config.Environment).
		Str("storage", config.Storage.Portfolio.Path).
		Str("benchmark", config.Analytics.BenchmarkSymbol).
		Msg("Application initialized")

	return app, nil
}

// Close releases all application resources.
func (a *App) Close() error {
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("Failed to close storage")
			return err
		}
	}
	return nil
}
