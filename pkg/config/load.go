package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults, and
// validates. Environment overrides are not applied; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies MERIDIAN_SECTION_FIELD environment overrides (e.g.
// MERIDIAN_SERVER_LISTEN_ADDRESS). Environment always wins over the file.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}
	ApplyDefaults(cfg)

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies MERIDIAN_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	envString("MERIDIAN_SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	envDuration("MERIDIAN_SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("MERIDIAN_SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("MERIDIAN_SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	envDuration("MERIDIAN_SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	envString("MERIDIAN_CATALOG_ROOT", &cfg.Catalog.Root)

	envDuration("MERIDIAN_EVALUATOR_BUDGET", &cfg.Evaluator.Budget)
	envInt("MERIDIAN_EVALUATOR_PARALLELISM", &cfg.Evaluator.Parallelism)

	envString("MERIDIAN_CACHE_HOST", &cfg.Cache.Host)
	envInt("MERIDIAN_CACHE_PORT", &cfg.Cache.Port)
	envString("MERIDIAN_CACHE_PASSWORD", &cfg.Cache.Password)
	envInt("MERIDIAN_CACHE_DB", &cfg.Cache.DB)
	envDuration("MERIDIAN_CACHE_TTL", &cfg.Cache.TTL)
	envDuration("MERIDIAN_CACHE_OP_TIMEOUT", &cfg.Cache.OpTimeout)

	envString("MERIDIAN_RECORD_BACKEND", &cfg.Record.Backend)
	envString("MERIDIAN_RECORD_POSTGRES_HOST", &cfg.Record.Postgres.Host)
	envInt("MERIDIAN_RECORD_POSTGRES_PORT", &cfg.Record.Postgres.Port)
	envString("MERIDIAN_RECORD_POSTGRES_USER", &cfg.Record.Postgres.User)
	envString("MERIDIAN_RECORD_POSTGRES_PASSWORD", &cfg.Record.Postgres.Password)
	envString("MERIDIAN_RECORD_POSTGRES_DATABASE", &cfg.Record.Postgres.Database)
	envInt("MERIDIAN_RECORD_POSTGRES_POOL_SIZE", &cfg.Record.Postgres.PoolSize)
	envString("MERIDIAN_RECORD_SQLITE_PATH", &cfg.Record.SQLite.Path)
	envDuration("MERIDIAN_RECORD_QUERY_TIMEOUT", &cfg.Record.QueryTimeout)

	envString("MERIDIAN_OUTBOX_URL", &cfg.Outbox.URL)
	envString("MERIDIAN_OUTBOX_STREAM", &cfg.Outbox.Stream)
	envString("MERIDIAN_OUTBOX_SUBJECT_PREFIX", &cfg.Outbox.SubjectPrefix)
	envDuration("MERIDIAN_OUTBOX_PUBLISH_TIMEOUT", &cfg.Outbox.PublishTimeout)

	envString("MERIDIAN_TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("MERIDIAN_TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("MERIDIAN_TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString("MERIDIAN_TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
}

func envString(name string, dst *string) {
	if val := os.Getenv(name); val != "" {
		*dst = val
	}
}

func envInt(name string, dst *int) {
	if val := os.Getenv(name); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envBool(name string, dst *bool) {
	if val := os.Getenv(name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

// envDuration accepts Go duration strings; a bare integer is taken as
// milliseconds so MERIDIAN_EVALUATOR_BUDGET=8 does what it reads as.
func envDuration(name string, dst *time.Duration) {
	val := os.Getenv(name)
	if val == "" {
		return
	}
	if d, err := time.ParseDuration(val); err == nil {
		*dst = d
		return
	}
	if ms, err := strconv.Atoi(val); err == nil {
		*dst = time.Duration(ms) * time.Millisecond
	}
}
