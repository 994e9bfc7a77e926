package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/araddon/dateparse"
	"github.com/rs/zerolog"

	"github.com/lueurxax/sred-discovery/internal/app"
	coreerrors "github.com/lueurxax/sred-discovery/internal/core/errors"
	"github.com/lueurxax/sred-discovery/internal/platform/config"
	db "github.com/lueurxax/sred-discovery/internal/storage"
)

// Exit codes.
const (
	exitClientFault = 2
	exitRunFailed   = 3
)

func main() {
	mode := flag.String("mode", "discover", "Service mode (discover, changes, apply, watch)")
	claimID := flag.String("claim", "", "Claim to process")
	strategy := flag.String("strategy", "", "Discovery strategy override (signal_first, names_only, clustering_only, hybrid)")
	backfill := flag.Bool("backfill", false, "Recompute missing signal profiles and entities")
	sinceFlag := flag.String("since", "", "Only consider documents created after this time (changes and apply modes)")

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv)
	setLogLevel(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	if *claimID == "" {
		log.Fatalf("Usage: %s --mode=[discover|changes|apply|watch] --claim=<id>", os.Args[0])
	}

	since, err := parseSince(*sinceFlag)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid --since")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poolOpts := db.PoolOptions{
		MaxConns:          cfg.Database.MaxConnections,
		MinConns:          cfg.Database.MinConnections,
		MaxConnIdleTime:   cfg.Database.MaxConnIdleTime,
		MaxConnLifetime:   cfg.Database.MaxConnLifetime,
		HealthCheckPeriod: cfg.Database.HealthCheckPeriod,
	}

	database, err := db.NewWithOptions(ctx, cfg.Database.PostgresDSN, poolOpts, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	application := app.New(cfg, database, &logger)

	if err := runMode(ctx, application, *mode, *claimID, *strategy, *backfill, since); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info().Msg("application stopped")
			return
		}

		logger.Error().Err(err).Msg("application error")
		database.Close()
		os.Exit(exitCode(err))
	}
}

func newLogger(appEnv string) zerolog.Logger {
	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// setLogLevel sets the global log level based on the configuration.
func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func parseSince(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q: %w", s, err)
	}

	return t, nil
}

func runMode(ctx context.Context, application *app.App, mode, claimID, strategy string, backfill bool, since time.Time) error {
	switch mode {
	case "discover":
		return application.RunDiscover(ctx, claimID, strategy, backfill)
	case "changes":
		return application.RunChanges(ctx, claimID, since)
	case "apply":
		return application.RunApply(ctx, claimID, since)
	case "watch":
		return application.RunWatch(ctx, claimID)
	default:
		log.Fatalf("Usage: %s --mode=[discover|changes|apply|watch] --claim=<id>", os.Args[0])

		return nil
	}
}

func exitCode(err error) int {
	switch {
	case coreerrors.IsClientFault(err):
		return exitClientFault
	case errors.Is(err, coreerrors.ErrRunFailed):
		return exitRunFailed
	default:
		return 1
	}
}
