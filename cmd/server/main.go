package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/harborworks/fleetimport/internal/config"
	"github.com/harborworks/fleetimport/internal/core"
	"github.com/harborworks/fleetimport/internal/logging"
	"github.com/harborworks/fleetimport/internal/store/memory"
	"github.com/harborworks/fleetimport/internal/store/postgres"
	"github.com/harborworks/fleetimport/internal/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"max_file_size", cfg.Import.MaxFileSize,
		"session_ttl", cfg.Import.SessionTTL,
		"crossref_policy", cfg.Import.CrossRefPolicy,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()

	var assetStore core.AssetStore
	var ledger core.HistoryLedger

	if cfg.Database.URL != "" {
		// Parse and configure connection pool
		poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
		if err != nil {
			slog.Error("failed to parse database URL", "error", err)
			os.Exit(1)
		}
		poolConfig.MaxConns = int32(cfg.Database.MaxConns)
		poolConfig.MinConns = int32(cfg.Database.MinConns)
		poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			slog.Error("failed to ping database", "error", err)
			os.Exit(1)
		}

		pgStore := postgres.NewStore(pool)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			slog.Error("failed to ensure schema", "error", err)
			os.Exit(1)
		}
		assetStore = pgStore
		ledger = postgres.NewLedger(pool)

		// Log which database we connected to
		if u, err := url.Parse(cfg.Database.URL); err == nil {
			slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
		} else {
			slog.Info("connected to database")
		}
	} else {
		slog.Info("no database configured, using in-memory store")
		assetStore = memory.NewStore()
		ledger = memory.NewLedger()
	}

	crossRef, err := core.ParseCrossRefPolicy(cfg.Import.CrossRefPolicy)
	if err != nil {
		slog.Error("invalid cross-reference policy", "error", err)
		os.Exit(1)
	}

	cache := core.NewDryRunCache(cfg.Import.SessionTTL)
	service := core.NewService(assetStore, ledger, cache, crossRef, cfg.Import.MaxFileSize)

	slog.Info("templates registered", "count", len(core.AllTemplates()))

	// Create server with config
	server := web.NewServer(service, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	// Start server (uses addr from config internally)
	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
