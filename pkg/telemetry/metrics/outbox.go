package metrics

import (
	"originate-hq/meridian/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// OutboxMetrics tracks the durable answer write-back queue.
//
// Metrics:
//   - meridian_outbox_publishes_total
//   - meridian_outbox_publish_failures_total: enqueues that failed and were
//     swallowed; a rising rate means system-of-record writes are at risk
type OutboxMetrics struct {
	publishes prometheus.Counter
	failures  prometheus.Counter
}

// NewOutboxMetrics creates and registers the outbox metric group.
func NewOutboxMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *OutboxMetrics {
	om := &OutboxMetrics{
		publishes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "outbox_publishes_total",
				Help:      "Answer write records enqueued",
			},
		),
		failures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "outbox_publish_failures_total",
				Help:      "Answer write records that failed to enqueue",
			},
		),
	}

	registry.MustRegister(om.publishes, om.failures)
	return om
}

// RecordPublish counts a successful enqueue.
func (om *OutboxMetrics) RecordPublish() { om.publishes.Inc() }

// RecordPublishFailure counts a swallowed enqueue failure.
func (om *OutboxMetrics) RecordPublishFailure() { om.failures.Inc() }
