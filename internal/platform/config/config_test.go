package config

import (
	"errors"
	"os"
	"testing"
	"time"

	coreerrors "github.com/lueurxax/sred-discovery/internal/core/errors"
)

// Test environment variable keys.
const (
	testEnvPostgresDSN = "POSTGRES_DSN"
	testEnvDatabaseURL = "DATABASE_URL"
	testEnvStrategy    = "DISCOVERY_STRATEGY"
)

// Test values.
const (
	testPostgresDSN = "postgres://localhost/test"
	testErrLoad     = "Load() error = %v"
	testDefaultEnv  = "local"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()

	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t, "APP_ENV", testEnvStrategy, "SRED_DISCOVERY_STRATEGY", "MIN_CLUSTER_SIZE",
		"SIGNAL_THRESHOLD", "HYBRID_MATCH_THRESHOLD", "HEALTH_PORT", "WATCH_INTERVAL", "CLUSTERING_ENABLED")
	t.Setenv(testEnvPostgresDSN, testPostgresDSN)

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.AppEnv != testDefaultEnv {
		t.Errorf("AppEnv default = %q, want %q", cfg.AppEnv, testDefaultEnv)
	}

	if cfg.Database.PostgresDSN != testPostgresDSN {
		t.Errorf("PostgresDSN = %q, want %q", cfg.Database.PostgresDSN, testPostgresDSN)
	}

	if cfg.DiscoveryStrategy != "signal_first" {
		t.Errorf("DiscoveryStrategy default = %q, want signal_first", cfg.DiscoveryStrategy)
	}

	if cfg.MinClusterSize != 3 {
		t.Errorf("MinClusterSize default = %d, want 3", cfg.MinClusterSize)
	}

	if cfg.SignalThreshold != 0.1 {
		t.Errorf("SignalThreshold default = %v, want 0.1", cfg.SignalThreshold)
	}

	if cfg.HybridMatchThreshold != 0.75 {
		t.Errorf("HybridMatchThreshold default = %v, want 0.75", cfg.HybridMatchThreshold)
	}

	if cfg.HealthPort != 8080 {
		t.Errorf("HealthPort default = %d, want %d", cfg.HealthPort, 8080)
	}

	if cfg.WatchInterval != 5*time.Minute {
		t.Errorf("WatchInterval default = %v, want 5m", cfg.WatchInterval)
	}

	if !cfg.ClusteringEnabled {
		t.Error("ClusteringEnabled should default to true")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v", err)
	}
}

func TestLoad_DatabaseURLAlias(t *testing.T) {
	clearEnv(t, testEnvPostgresDSN)
	t.Setenv(testEnvDatabaseURL, "postgres://alias/db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.Database.PostgresDSN != "postgres://alias/db" {
		t.Errorf("PostgresDSN = %q, want alias value", cfg.Database.PostgresDSN)
	}
}

func TestLoad_CanonicalWinsOverAlias(t *testing.T) {
	t.Setenv(testEnvPostgresDSN, testPostgresDSN)
	t.Setenv(testEnvDatabaseURL, "postgres://alias/db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.Database.PostgresDSN != testPostgresDSN {
		t.Errorf("PostgresDSN = %q, want %q", cfg.Database.PostgresDSN, testPostgresDSN)
	}
}

func TestLoad_InvalidNumeric(t *testing.T) {
	t.Setenv(testEnvPostgresDSN, testPostgresDSN)
	t.Setenv("MIN_CLUSTER_SIZE", "three")

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid MIN_CLUSTER_SIZE")
	}
}

func validConfig() Config {
	return Config{
		Database:                  DatabaseConfig{PostgresDSN: testPostgresDSN},
		DiscoveryStrategy:         "signal_first",
		MinClusterSize:            3,
		SignalThreshold:           0.1,
		NameSimilarityThreshold:   0.8,
		HybridMatchThreshold:      0.75,
		ChangeMatchThreshold:      0.6,
		ChangeHighConfidence:      0.8,
		EmbeddingFetchRPS:         20,
		EmbeddingFetchConcurrency: 8,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "hybrid upper case", mutate: func(c *Config) { c.DiscoveryStrategy = "HYBRID" }},
		{name: "missing dsn", mutate: func(c *Config) { c.Database.PostgresDSN = "" }, wantErr: true},
		{name: "unknown strategy", mutate: func(c *Config) { c.DiscoveryStrategy = "kmeans" }, wantErr: true},
		{name: "cluster size too small", mutate: func(c *Config) { c.MinClusterSize = 1 }, wantErr: true},
		{name: "threshold above one", mutate: func(c *Config) { c.NameSimilarityThreshold = 1.5 }, wantErr: true},
		{name: "zero threshold", mutate: func(c *Config) { c.SignalThreshold = 0 }, wantErr: true},
		{name: "high below match", mutate: func(c *Config) { c.ChangeHighConfidence = 0.5 }, wantErr: true},
		{name: "no fetch concurrency", mutate: func(c *Config) { c.EmbeddingFetchConcurrency = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err != nil && !errors.Is(err, coreerrors.ErrInvalidInput) {
				t.Errorf("Validate() error %v does not wrap ErrInvalidInput", err)
			}
		})
	}
}
