package health

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Prober re-runs the registered dependency checks on a schedule and logs
// transitions, so an unhealthy backend is visible in logs between platform
// readiness probes.
type Prober struct {
	checker  *Checker
	logger   *slog.Logger
	cron     *cron.Cron
	lastDown map[string]bool
}

// NewProber creates a background prober over the checker.
func NewProber(checker *Checker, logger *slog.Logger) *Prober {
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{
		checker:  checker,
		logger:   logger,
		cron:     cron.New(),
		lastDown: make(map[string]bool),
	}
}

// Start schedules the probe. The spec uses standard cron syntax with an
// optional @every form; an empty spec defaults to every 30 seconds.
func (p *Prober) Start(spec string) error {
	if spec == "" {
		spec = "@every 30s"
	}
	if _, err := p.cron.AddFunc(spec, p.probe); err != nil {
		return err
	}
	p.cron.Start()
	return nil
}

// Stop halts scheduling and waits for a running probe to finish.
func (p *Prober) Stop() {
	ctx := p.cron.Stop()
	<-ctx.Done()
}

func (p *Prober) probe() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status := p.checker.Readiness(ctx)
	for name, result := range status.Checks {
		down := result.Status != "ok"
		if down && !p.lastDown[name] {
			p.logger.Warn("dependency became unhealthy",
				"component", name,
				"message", result.Message,
			)
		}
		if !down && p.lastDown[name] {
			p.logger.Info("dependency recovered", "component", name)
		}
		p.lastDown[name] = down
	}
}
