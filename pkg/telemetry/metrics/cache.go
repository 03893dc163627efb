package metrics

import (
	"originate-hq/meridian/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// CacheMetrics tracks state-cache behavior.
//
// Metrics:
//   - meridian_state_cache_hits_total
//   - meridian_state_cache_misses_total
//   - meridian_state_cache_fallthroughs_total: remote cache unavailable or
//     unwritable, request served directly from the loader
type CacheMetrics struct {
	hits          prometheus.Counter
	misses        prometheus.Counter
	fallthroughs  prometheus.Counter
}

// NewCacheMetrics creates and registers the cache metric group.
func NewCacheMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CacheMetrics {
	cm := &CacheMetrics{
		hits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "state_cache_hits_total",
				Help:      "Total state cache hits",
			},
		),
		misses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "state_cache_misses_total",
				Help:      "Total state cache misses triggering a full reload",
			},
		),
		fallthroughs: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "state_cache_fallthroughs_total",
				Help:      "Requests served without the remote cache due to errors",
			},
		),
	}

	registry.MustRegister(cm.hits, cm.misses, cm.fallthroughs)
	return cm
}

// RecordHit records a complete cached read.
func (cm *CacheMetrics) RecordHit() { cm.hits.Inc() }

// RecordMiss records an absent or incomplete entry.
func (cm *CacheMetrics) RecordMiss() { cm.misses.Inc() }

// RecordFallthrough records a degraded read or write.
func (cm *CacheMetrics) RecordFallthrough() { cm.fallthroughs.Inc() }
