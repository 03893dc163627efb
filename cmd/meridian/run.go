package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"originate-hq/meridian/pkg/catalog"
	"originate-hq/meridian/pkg/config"
	"originate-hq/meridian/pkg/evaluator"
	"originate-hq/meridian/pkg/loader"
	"originate-hq/meridian/pkg/outbox"
	"originate-hq/meridian/pkg/queue"
	"originate-hq/meridian/pkg/record"
	"originate-hq/meridian/pkg/rules"
	"originate-hq/meridian/pkg/server"
	"originate-hq/meridian/pkg/statecache"
	"originate-hq/meridian/pkg/telemetry/health"
	"originate-hq/meridian/pkg/telemetry/logging"
	"originate-hq/meridian/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the question-evaluation engine",
	Long: `Start the engine with the specified configuration.

Warmup loads the question catalog, compiles every criteria rule, and
connects the state cache, the system of record, and the answer outbox
before traffic is admitted; readiness reports not_ready until all of that
completes. Resources are torn down in reverse order on shutdown.

Examples:
  # Start with default config
  meridian run

  # Start with custom config
  meridian run --config /etc/meridian/config.yaml

  # Override listen address
  meridian run --listen 0.0.0.0:8090

  # Validate config without starting
  meridian run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration (once; re-init is rejected)
	if err := config.Initialize(cfgFile); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.GetConfig()

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(cfg.Telemetry.Logging, os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	ctx := context.Background()

	// Warmup phase. Order matters: rules and catalog first (a compile
	// failure must abort before any connection is opened), then the
	// dependencies, leaves first. Teardown is deferred in reverse.
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	engine := rules.NewEngine(rules.Options{
		Logger:      logger,
		Parallelism: cfg.Evaluator.Parallelism,
		OnFailure:   func(ruleID string, err error) { collector.RecordRuleFailure(ruleID) },
	})

	registry, err := catalog.Load(cfg.Catalog.Root, engine, logger)
	if err != nil {
		return fmt.Errorf("catalog load failed: %w", err)
	}
	fmt.Printf("✓ Catalog loaded (%d sections, %d questions)\n", len(registry.Sections()), registry.QuestionCount())

	store, err := record.Open(ctx, record.Config{
		Backend:      cfg.Record.Backend,
		Host:         cfg.Record.Postgres.Host,
		Port:         cfg.Record.Postgres.Port,
		User:         cfg.Record.Postgres.User,
		Password:     cfg.Record.Postgres.Password,
		Database:     cfg.Record.Postgres.Database,
		PoolSize:     cfg.Record.Postgres.PoolSize,
		SQLitePath:   cfg.Record.SQLite.Path,
		QueryTimeout: cfg.Record.QueryTimeout,
	})
	if err != nil {
		return fmt.Errorf("system-of-record connect failed: %w", err)
	}
	defer store.Close()
	fmt.Printf("✓ System of record connected (%s)\n", cfg.Record.Backend)

	kv := statecache.NewRedisKV(statecache.RedisConfig{
		Host:        cfg.Cache.Host,
		Port:        cfg.Cache.Port,
		Password:    cfg.Cache.Password,
		DB:          cfg.Cache.DB,
		OpTimeout:   cfg.Cache.OpTimeout,
		PingTimeout: cfg.Cache.PingTimeout,
	})
	defer kv.Close()
	if err := kv.Ping(ctx); err != nil {
		// The cache is survivable at runtime but a dead cache at startup is
		// almost always a config error; say so loudly and keep going.
		logger.Warn("state cache unreachable at startup", "error", err)
	} else {
		fmt.Printf("✓ State cache connected (%s:%d)\n", cfg.Cache.Host, cfg.Cache.Port)
	}

	publisher, err := outbox.Connect(ctx, outbox.Config{
		URL:            cfg.Outbox.URL,
		Stream:         cfg.Outbox.Stream,
		SubjectPrefix:  cfg.Outbox.SubjectPrefix,
		PublishTimeout: cfg.Outbox.PublishTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("outbox connect failed: %w", err)
	}
	defer publisher.Close()
	fmt.Printf("✓ Outbox connected (%s)\n", cfg.Outbox.Stream)

	ldr := loader.New(store, logger)
	cache := statecache.New(kv, ldr, statecache.Options{
		TTL:     cfg.Cache.TTL,
		Logger:  logger,
		Metrics: collector,
	})
	eval := evaluator.New(registry, engine, evaluator.Options{
		Budget:  cfg.Evaluator.Budget,
		Logger:  logger,
		Metrics: collector,
	})
	service := queue.NewService(registry, cache, eval, publisher, logger, collector)

	checker := health.New(engine.RuleCount, 0)
	checker.RegisterCheck("cache", cache.Ping)
	checker.RegisterCheck("record", store.Ping)
	checker.RegisterCheck("outbox", publisher.Ping)

	prober := health.NewProber(checker, logger)
	if err := prober.Start(""); err != nil {
		return fmt.Errorf("failed to start health prober: %w", err)
	}
	defer prober.Stop()

	checker.MarkWarmupComplete()
	logger.Info("warmup complete",
		"rules", engine.RuleCount(),
		"budget", cfg.Evaluator.Budget,
	)

	srv := server.NewServer(&cfg.Server, &cfg.Telemetry.Metrics, service, checker, collector, logger)
	return srv.Start(ctx)
}
