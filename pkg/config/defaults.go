package config

import "time"

// Default values for configuration fields.
const (
	DefaultListenAddress   = "127.0.0.1:8090"
	DefaultReadTimeout     = 5 * time.Second
	DefaultWriteTimeout    = 5 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultMaxHeaderBytes  = 1 << 20

	DefaultCORSMaxAge = 3600

	DefaultCatalogRoot = "./catalog"

	DefaultEvaluatorBudget = 8 * time.Millisecond

	DefaultCacheHost        = "127.0.0.1"
	DefaultCachePort        = 6379
	DefaultCacheTTL         = time.Hour
	DefaultCacheOpTimeout   = 5 * time.Millisecond
	DefaultCachePingTimeout = time.Millisecond

	DefaultRecordBackend      = "postgres"
	DefaultPostgresPort       = 5432
	DefaultPostgresPoolSize   = 10
	DefaultRecordQueryTimeout = 5 * time.Millisecond
	DefaultSQLitePath         = "data/meridian.db"

	DefaultOutboxURL            = "nats://127.0.0.1:4222"
	DefaultOutboxStream         = "LOAN_ANSWERS"
	DefaultOutboxSubjectPrefix  = "loan.answers"
	DefaultOutboxPublishTimeout = 250 * time.Millisecond

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "meridian"
)

// ApplyDefaults fills zero-valued fields in place.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.CORS.MaxAge == 0 {
		cfg.Server.CORS.MaxAge = DefaultCORSMaxAge
	}
	if len(cfg.Server.CORS.AllowedMethods) == 0 {
		cfg.Server.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.Server.CORS.AllowedHeaders) == 0 {
		cfg.Server.CORS.AllowedHeaders = []string{"Content-Type", "X-Request-ID"}
	}

	if cfg.Catalog.Root == "" {
		cfg.Catalog.Root = DefaultCatalogRoot
	}

	if cfg.Evaluator.Budget == 0 {
		cfg.Evaluator.Budget = DefaultEvaluatorBudget
	}

	if cfg.Cache.Host == "" {
		cfg.Cache.Host = DefaultCacheHost
	}
	if cfg.Cache.Port == 0 {
		cfg.Cache.Port = DefaultCachePort
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.OpTimeout == 0 {
		cfg.Cache.OpTimeout = DefaultCacheOpTimeout
	}
	if cfg.Cache.PingTimeout == 0 {
		cfg.Cache.PingTimeout = DefaultCachePingTimeout
	}

	if cfg.Record.Backend == "" {
		cfg.Record.Backend = DefaultRecordBackend
	}
	if cfg.Record.Postgres.Port == 0 {
		cfg.Record.Postgres.Port = DefaultPostgresPort
	}
	if cfg.Record.Postgres.PoolSize == 0 {
		cfg.Record.Postgres.PoolSize = DefaultPostgresPoolSize
	}
	if cfg.Record.SQLite.Path == "" {
		cfg.Record.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Record.QueryTimeout == 0 {
		cfg.Record.QueryTimeout = DefaultRecordQueryTimeout
	}

	if cfg.Outbox.URL == "" {
		cfg.Outbox.URL = DefaultOutboxURL
	}
	if cfg.Outbox.Stream == "" {
		cfg.Outbox.Stream = DefaultOutboxStream
	}
	if cfg.Outbox.SubjectPrefix == "" {
		cfg.Outbox.SubjectPrefix = DefaultOutboxSubjectPrefix
	}
	if cfg.Outbox.PublishTimeout == 0 {
		cfg.Outbox.PublishTimeout = DefaultOutboxPublishTimeout
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
}
