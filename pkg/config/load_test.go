package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
server:
  listen_address: "127.0.0.1:9999"
record:
  backend: sqlite
  sqlite:
    path: data/test.db
`

// TestLoadConfig_Defaults tests that unset fields receive defaults
func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.ListenAddress != "127.0.0.1:9999" {
		t.Errorf("listen_address = %q", cfg.Server.ListenAddress)
	}
	if cfg.Evaluator.Budget != DefaultEvaluatorBudget {
		t.Errorf("evaluator budget = %v, want %v", cfg.Evaluator.Budget, DefaultEvaluatorBudget)
	}
	if cfg.Cache.TTL != time.Hour {
		t.Errorf("cache ttl = %v, want 1h", cfg.Cache.TTL)
	}
	if cfg.Cache.Port != DefaultCachePort {
		t.Errorf("cache port = %d", cfg.Cache.Port)
	}
	if cfg.Outbox.Stream != DefaultOutboxStream {
		t.Errorf("outbox stream = %q", cfg.Outbox.Stream)
	}
	if cfg.Telemetry.Logging.Level != "info" || cfg.Telemetry.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Telemetry.Logging)
	}
}

// TestLoadConfig_EnvOverrides tests that MERIDIAN_* variables win
func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("MERIDIAN_SERVER_LISTEN_ADDRESS", "0.0.0.0:8001")
	t.Setenv("MERIDIAN_EVALUATOR_BUDGET", "12ms")
	t.Setenv("MERIDIAN_CACHE_PORT", "6380")
	t.Setenv("MERIDIAN_RECORD_BACKEND", "sqlite")
	t.Setenv("MERIDIAN_RECORD_SQLITE_PATH", "/tmp/override.db")

	cfg, err := LoadConfigWithEnvOverrides(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:8001" {
		t.Errorf("listen_address = %q", cfg.Server.ListenAddress)
	}
	if cfg.Evaluator.Budget != 12*time.Millisecond {
		t.Errorf("budget = %v", cfg.Evaluator.Budget)
	}
	if cfg.Cache.Port != 6380 {
		t.Errorf("cache port = %d", cfg.Cache.Port)
	}
	if cfg.Record.SQLite.Path != "/tmp/override.db" {
		t.Errorf("sqlite path = %q", cfg.Record.SQLite.Path)
	}
}

// TestLoadConfig_BudgetMilliseconds tests the bare-integer duration form
func TestLoadConfig_BudgetMilliseconds(t *testing.T) {
	t.Setenv("MERIDIAN_EVALUATOR_BUDGET", "8")

	cfg, err := LoadConfigWithEnvOverrides(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}
	if cfg.Evaluator.Budget != 8*time.Millisecond {
		t.Errorf("budget = %v, want 8ms", cfg.Evaluator.Budget)
	}
}

// TestValidate_Errors tests that invalid configurations are rejected with
// every problem reported
func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantPart string
	}{
		{
			name: "unknown backend",
			content: `
record:
  backend: dynamo
`,
			wantPart: "record.backend",
		},
		{
			name: "postgres missing settings",
			content: `
record:
  backend: postgres
`,
			wantPart: "record.postgres.host",
		},
		{
			name: "bad log level",
			content: minimalConfig + `
telemetry:
  logging:
    level: loud
`,
			wantPart: "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatalf("LoadConfig() error = nil")
			}
			if !strings.Contains(err.Error(), tt.wantPart) {
				t.Errorf("error = %q, want substring %q", err, tt.wantPart)
			}
		})
	}
}

// TestLoadConfig_MissingFile tests the read failure path
func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("LoadConfig(absent) error = nil")
	}
}
