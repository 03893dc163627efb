package metrics

import (
	"strconv"
	"time"

	"originate-hq/meridian/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks the HTTP request surface.
//
// Metrics:
//   - meridian_requests_total: total requests by route and status code
//   - meridian_request_duration_seconds: latency histogram by route
//
// Buckets are millisecond-scale: the hot path targets <10ms p50, so the
// default Prometheus buckets would collapse everything into one bar.
type RequestMetrics struct {
	enabled  bool
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRequestMetrics creates and registers the request metric group.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		enabled: cfg.Enabled,
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   []float64{0.001, 0.0025, 0.005, 0.008, 0.010, 0.025, 0.050, 0.100, 0.250, 1.0},
			},
			[]string{"route"},
		),
	}

	registry.MustRegister(rm.total, rm.duration)
	return rm
}

// Record records one completed request.
func (rm *RequestMetrics) Record(route string, status int, duration time.Duration) {
	if !rm.enabled {
		return
	}
	rm.total.WithLabelValues(route, strconv.Itoa(status)).Inc()
	rm.duration.WithLabelValues(route).Observe(duration.Seconds())
}
