package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for internal consistency. It collects
// every problem rather than stopping at the first so a bad deployment is
// fixed in one pass.
func Validate(cfg *Config) error {
	var problems []string

	if cfg.Server.ListenAddress == "" {
		problems = append(problems, "server.listen_address is required")
	}
	if cfg.Server.ReadTimeout <= 0 {
		problems = append(problems, "server.read_timeout must be positive")
	}
	if cfg.Server.WriteTimeout <= 0 {
		problems = append(problems, "server.write_timeout must be positive")
	}

	if cfg.Catalog.Root == "" {
		problems = append(problems, "catalog.root is required")
	}

	if cfg.Evaluator.Budget <= 0 {
		problems = append(problems, "evaluator.budget must be positive")
	}
	if cfg.Evaluator.Parallelism < 0 {
		problems = append(problems, "evaluator.parallelism cannot be negative")
	}

	if cfg.Cache.Host == "" {
		problems = append(problems, "cache.host is required")
	}
	if cfg.Cache.Port <= 0 || cfg.Cache.Port > 65535 {
		problems = append(problems, "cache.port must be in 1..65535")
	}
	if cfg.Cache.TTL <= 0 {
		problems = append(problems, "cache.ttl must be positive")
	}

	switch cfg.Record.Backend {
	case "postgres":
		if cfg.Record.Postgres.Host == "" {
			problems = append(problems, "record.postgres.host is required for the postgres backend")
		}
		if cfg.Record.Postgres.User == "" {
			problems = append(problems, "record.postgres.user is required for the postgres backend")
		}
		if cfg.Record.Postgres.Database == "" {
			problems = append(problems, "record.postgres.database is required for the postgres backend")
		}
		if cfg.Record.Postgres.PoolSize <= 0 {
			problems = append(problems, "record.postgres.pool_size must be positive")
		}
	case "sqlite":
		if cfg.Record.SQLite.Path == "" {
			problems = append(problems, "record.sqlite.path is required for the sqlite backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("record.backend must be postgres or sqlite, got %q", cfg.Record.Backend))
	}

	if cfg.Outbox.URL == "" {
		problems = append(problems, "outbox.url is required")
	}
	if cfg.Outbox.PublishTimeout <= 0 {
		problems = append(problems, "outbox.publish_timeout must be positive")
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("telemetry.logging.level must be debug, info, warn, or error, got %q", cfg.Telemetry.Logging.Level))
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		problems = append(problems, fmt.Sprintf("telemetry.logging.format must be json or text, got %q", cfg.Telemetry.Logging.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
