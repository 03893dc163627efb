// Package config defines and loads the meridian configuration: a YAML file
// with applied defaults, validation, and MERIDIAN_* environment overrides.
package config

import "time"

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Evaluator EvaluatorConfig `yaml:"evaluator"`
	Cache     CacheConfig     `yaml:"cache"`
	Record    RecordConfig    `yaml:"record"`
	Outbox    OutboxConfig    `yaml:"outbox"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	ListenAddress   string        `yaml:"listen_address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes"`

	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig configures cross-origin access for browser-based agent UIs.
type CORSConfig struct {
	Enabled        bool     `yaml:"enabled"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
	MaxAge         int      `yaml:"max_age"`
}

// CatalogConfig locates the section/question tree.
type CatalogConfig struct {
	// Root is the directory containing sections/ and questions/.
	Root string `yaml:"root"`
}

// EvaluatorConfig bounds the evaluation pass.
type EvaluatorConfig struct {
	// Budget is the local soft deadline for one evaluation pass.
	Budget time.Duration `yaml:"budget"`

	// Parallelism caps the rule-evaluation workers; zero means GOMAXPROCS.
	Parallelism int `yaml:"parallelism"`
}

// CacheConfig configures the remote state cache.
type CacheConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	TTL         time.Duration `yaml:"ttl"`
	OpTimeout   time.Duration `yaml:"op_timeout"`
	PingTimeout time.Duration `yaml:"ping_timeout"`
}

// RecordConfig configures the system-of-record client.
type RecordConfig struct {
	// Backend is "postgres" or "sqlite".
	Backend string `yaml:"backend"`

	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`

	// QueryTimeout bounds each individual query.
	QueryTimeout time.Duration `yaml:"query_timeout"`
}

// PostgresConfig holds deployment database settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	PoolSize int    `yaml:"pool_size"`
}

// SQLiteConfig holds the development database settings.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// OutboxConfig configures the durable answer write-back queue.
type OutboxConfig struct {
	URL            string        `yaml:"url"`
	Stream         string        `yaml:"stream"`
	SubjectPrefix  string        `yaml:"subject_prefix"`
	PublishTimeout time.Duration `yaml:"publish_timeout"`
}

// TelemetryConfig groups logging and metrics settings.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is debug, info, warn, or error.
	Level string `yaml:"level"`

	// Format is json or text.
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	AddSource bool `yaml:"add_source"`

	// RedactFields are substrings of field keys whose values are masked
	// before logging (ssn, date_of_birth, ...).
	RedactFields []string `yaml:"redact_fields"`
}

// MetricsConfig configures the Prometheus surface.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}
