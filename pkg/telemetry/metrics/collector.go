// Package metrics collects Prometheus metrics for meridian: request
// latency, evaluation outcomes, state-cache behavior, and outbox
// durability warnings.
package metrics

import (
	"originate-hq/meridian/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns the registry and the per-subsystem metric groups. One
// collector is created at warmup and shared; all record methods are cheap
// and safe for concurrent use.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	request   *RequestMetrics
	evaluator *EvaluatorMetrics
	cache     *CacheMetrics
	outbox    *OutboxMetrics
}

// NewCollector creates a collector with the specified configuration and
// registry. A nil registry gets a fresh one.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "meridian"
	}

	return &Collector{
		config:    cfg,
		registry:  registry,
		request:   NewRequestMetrics(cfg, registry),
		evaluator: NewEvaluatorMetrics(cfg, registry),
		cache:     NewCacheMetrics(cfg, registry),
		outbox:    NewOutboxMetrics(cfg, registry),
	}
}

// Registry returns the Prometheus registry for the /metrics handler.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Request returns the HTTP request metric group.
func (c *Collector) Request() *RequestMetrics { return c.request }

// RecordBudgetExceeded implements evaluator.Metrics.
func (c *Collector) RecordBudgetExceeded() {
	if !c.config.Enabled {
		return
	}
	c.evaluator.RecordBudgetExceeded()
}

// RecordRuleFailure counts a rule evaluation degraded to false.
func (c *Collector) RecordRuleFailure(ruleID string) {
	if !c.config.Enabled {
		return
	}
	c.evaluator.RecordRuleFailure(ruleID)
}

// RecordStateCacheHit implements statecache.Metrics.
func (c *Collector) RecordStateCacheHit() {
	if !c.config.Enabled {
		return
	}
	c.cache.RecordHit()
}

// RecordStateCacheMiss implements statecache.Metrics.
func (c *Collector) RecordStateCacheMiss() {
	if !c.config.Enabled {
		return
	}
	c.cache.RecordMiss()
}

// RecordStateCacheFallthrough implements statecache.Metrics.
func (c *Collector) RecordStateCacheFallthrough() {
	if !c.config.Enabled {
		return
	}
	c.cache.RecordFallthrough()
}

// RecordOutboxPublishFailure implements queue.PublishMetrics.
func (c *Collector) RecordOutboxPublishFailure() {
	if !c.config.Enabled {
		return
	}
	c.outbox.RecordPublishFailure()
}

// RecordOutboxPublish counts a successful enqueue.
func (c *Collector) RecordOutboxPublish() {
	if !c.config.Enabled {
		return
	}
	c.outbox.RecordPublish()
}
