// Package app wires configuration, storage, clients and services into a
// single application core shared by the server binary and tests.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rsmishra/nivesh/internal/clients/gemini"
	"github.com/rsmishra/nivesh/internal/clients/yahoo"
	"github.com/rsmishra/nivesh/internal/common"
	"github.com/rsmishra/nivesh/internal/interfaces"
	"github.com/rsmishra/nivesh/internal/resolver"
	"github.com/rsmishra/nivesh/internal/services/chat"
	"github.com/rsmishra/nivesh/internal/services/market"
	"github.com/rsmishra/nivesh/internal/services/portfolio"
	"github.com/rsmishra/nivesh/internal/storage/badger"
)

// App holds all initialized services and clients.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	YahooClient      interfaces.MarketDataClient
	GeminiClient     interfaces.GeminiClient
	PriceFetcher     interfaces.PriceFetcher
	PortfolioService interfaces.PortfolioService
	ChatService      interfaces.ChatService
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

// NewApp initializes configuration, storage, clients and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	// Load configuration - check provided path, NIVESH_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("NIVESH_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "nivesh.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/nivesh.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := badger.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	geminiKey, err := common.ResolveAPIKey("gemini_api_key", config.Clients.Gemini.APIKey)
	if err != nil {
		logger.Warn().Msg("Gemini API key not configured - statement ingestion and chat will be unavailable")
	}

	yahooClient := yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
		yahoo.WithLogger(logger),
	)

	// Keep the interface field nil unless construction succeeds; assigning
	// a nil *gemini.Client would make the interface non-nil and defeat the
	// services' availability checks.
	var geminiClient interfaces.GeminiClient
	if geminiKey != "" {
		client, err := gemini.NewClient(ctx, geminiKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
		} else {
			geminiClient = client
		}
	}

	tables, err := resolver.LoadTables(config.Resolver.EquityMappingPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", config.Resolver.EquityMappingPath).
			Msg("Equity mapping not loaded, using built-in tables only")
		tables = resolver.DefaultTables()
	}
	res := resolver.New(tables, logger)

	fetcher := market.NewFetcher(yahooClient, logger)
	portfolioService := portfolio.NewService(storageManager.PortfolioStorage(), fetcher, geminiClient, res, logger)
	chatService := chat.NewService(storageManager.ChatStorage(), storageManager.PortfolioStorage(), geminiClient, fetcher, yahooClient, logger)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		YahooClient:      yahooClient,
		GeminiClient:     geminiClient,
		PriceFetcher:     fetcher,
		PortfolioService: portfolioService,
		ChatService:      chatService,
		StartupTime:      startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}
