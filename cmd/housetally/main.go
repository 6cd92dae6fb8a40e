// HouseTally - Household Finance Tracker
//
// This is the main entry point for the HouseTally server. HouseTally lets
// the members of a household pool contributions, settle up with transfers,
// and see who owes whom, behind a token-based authentication engine.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/housetally/housetally-core/migrations"

	"github.com/housetally/housetally-core/internal/api"
	"github.com/housetally/housetally-core/internal/auth"
	"github.com/housetally/housetally-core/internal/infrastructure/config"
	"github.com/housetally/housetally-core/internal/infrastructure/database"
	"github.com/housetally/housetally-core/internal/infrastructure/logging"
	"github.com/housetally/housetally-core/internal/ledger"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// tokenPurgeInterval is how often expired revocation records are removed.
const tokenPurgeInterval = time.Hour

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting HouseTally",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Build the authentication engine
	hasher, err := auth.NewHasher(cfg.Security.Password.BcryptCost)
	if err != nil {
		return fmt.Errorf("creating password hasher: %w", err)
	}
	codec, err := auth.NewCodec(cfg.Security.JWT.Secret, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())
	if err != nil {
		return fmt.Errorf("creating token codec: %w", err)
	}
	engine := auth.NewEngine(
		auth.NewUserDirectory(db.DB),
		hasher,
		codec,
		auth.NewSQLiteRevocationStore(db.DB),
		log,
	)
	log.Info("auth engine initialised",
		"access_ttl", cfg.AccessTokenTTL(),
		"refresh_ttl", cfg.RefreshTokenTTL(),
		"bcrypt_cost", cfg.Security.Password.BcryptCost,
	)

	// Periodically purge expired revocation records
	go purgeLoop(ctx, engine, log)

	// Start the API server
	server, err := api.New(api.Deps{
		Config:  cfg.API,
		Logger:  log,
		Engine:  engine,
		Ledger:  ledger.NewRepository(db.DB),
		DB:      db,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	// Verify all connections are healthy
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("HouseTally stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses HOUSETALLY_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HOUSETALLY_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// purgeLoop removes expired revocation records periodically until the
// context is cancelled.
func purgeLoop(ctx context.Context, engine *auth.Engine, log *logging.Logger) {
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := engine.PurgeExpiredTokens(ctx)
			if err != nil {
				log.Error("purging expired tokens", "error", err)
				continue
			}
			if removed > 0 {
				log.Info("purged expired token records", "removed", removed)
			}
		}
	}
}
