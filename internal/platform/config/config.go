package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	coreerrors "github.com/lueurxax/sred-discovery/internal/core/errors"
)

// Strategies accepted by DISCOVERY_STRATEGY.
var knownStrategies = map[string]bool{
	"signal_first":    true,
	"names_only":      true,
	"clustering_only": true,
	"hybrid":          true,
}

const minClusterSizeFloor = 2

type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"local"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Database DatabaseConfig

	// Discovery
	DiscoveryStrategy       string  `env:"DISCOVERY_STRATEGY" envDefault:"signal_first"`
	MinClusterSize          int     `env:"MIN_CLUSTER_SIZE" envDefault:"3"`
	SignalThreshold         float64 `env:"SIGNAL_THRESHOLD" envDefault:"0.1"`
	SignalBackfill          bool    `env:"SIGNAL_BACKFILL" envDefault:"false"`
	NameSimilarityThreshold float64 `env:"NAME_SIMILARITY_THRESHOLD" envDefault:"0.8"`
	HybridMatchThreshold    float64 `env:"HYBRID_MATCH_THRESHOLD" envDefault:"0.75"`
	ClusteringEnabled       bool    `env:"CLUSTERING_ENABLED" envDefault:"true"`

	// Change detection
	ChangeMatchThreshold float64 `env:"CHANGE_MATCH_THRESHOLD" envDefault:"0.60"`
	ChangeHighConfidence float64 `env:"CHANGE_HIGH_CONFIDENCE" envDefault:"0.80"`

	// Embedding lookups for documents stored without a mean vector
	EmbeddingFetchRPS         float64 `env:"EMBEDDING_FETCH_RPS" envDefault:"20"`
	EmbeddingFetchConcurrency int     `env:"EMBEDDING_FETCH_CONCURRENCY" envDefault:"8"`

	// Watch mode
	HealthPort    int           `env:"HEALTH_PORT" envDefault:"8080"`
	WatchInterval time.Duration `env:"WATCH_INTERVAL" envDefault:"5m"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	applyAliases(cfg)

	return cfg, nil
}

// Validate rejects unknown strategies and out-of-range thresholds.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.PostgresDSN) == "" {
		return invalid("POSTGRES_DSN is required")
	}

	if !knownStrategies[strings.ToLower(strings.TrimSpace(c.DiscoveryStrategy))] {
		return invalid("unknown DISCOVERY_STRATEGY %q", c.DiscoveryStrategy)
	}

	if c.MinClusterSize < minClusterSizeFloor {
		return invalid("MIN_CLUSTER_SIZE must be at least %d, got %d", minClusterSizeFloor, c.MinClusterSize)
	}

	thresholds := []struct {
		name  string
		value float64
	}{
		{"SIGNAL_THRESHOLD", c.SignalThreshold},
		{"NAME_SIMILARITY_THRESHOLD", c.NameSimilarityThreshold},
		{"HYBRID_MATCH_THRESHOLD", c.HybridMatchThreshold},
		{"CHANGE_MATCH_THRESHOLD", c.ChangeMatchThreshold},
		{"CHANGE_HIGH_CONFIDENCE", c.ChangeHighConfidence},
	}

	for _, th := range thresholds {
		if th.value <= 0 || th.value > 1 {
			return invalid("%s must be in (0, 1], got %v", th.name, th.value)
		}
	}

	if c.ChangeHighConfidence < c.ChangeMatchThreshold {
		return invalid("CHANGE_HIGH_CONFIDENCE (%v) is below CHANGE_MATCH_THRESHOLD (%v)", c.ChangeHighConfidence, c.ChangeMatchThreshold)
	}

	if c.EmbeddingFetchRPS <= 0 || c.EmbeddingFetchConcurrency <= 0 {
		return invalid("embedding fetch limits must be positive")
	}

	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("config: %s: %w", fmt.Sprintf(format, args...), coreerrors.ErrInvalidInput)
}

// applyAliases honours legacy variable names when the canonical one is unset.
func applyAliases(cfg *Config) {
	if !hasEnv("POSTGRES_DSN") {
		setStringFromEnv("DATABASE_URL", &cfg.Database.PostgresDSN)
	}

	if !hasEnv("DISCOVERY_STRATEGY") {
		setStringFromEnv("SRED_DISCOVERY_STRATEGY", &cfg.DiscoveryStrategy)
	}
}

func hasEnv(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}

func setStringFromEnv(key string, target *string) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	val = strings.TrimSpace(val)
	if val == "" {
		return
	}

	*target = val
}
