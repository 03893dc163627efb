package metrics

import (
	"originate-hq/meridian/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// EvaluatorMetrics tracks the question-evaluation pipeline.
//
// Metrics:
//   - meridian_evaluate_budget_exceeded_total: passes cut short by the
//     latency budget
//   - meridian_rule_eval_failures_total: rule evaluations degraded to
//     false, by rule id
type EvaluatorMetrics struct {
	budgetExceeded prometheus.Counter
	ruleFailures   *prometheus.CounterVec
}

// NewEvaluatorMetrics creates and registers the evaluator metric group.
func NewEvaluatorMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EvaluatorMetrics {
	em := &EvaluatorMetrics{
		budgetExceeded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "evaluate_budget_exceeded_total",
				Help:      "Evaluation passes that returned partial results because the latency budget fired",
			},
		),
		ruleFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "rule_eval_failures_total",
				Help:      "Rule evaluations that errored and degraded to false",
			},
			[]string{"rule_id"},
		),
	}

	registry.MustRegister(em.budgetExceeded, em.ruleFailures)
	return em
}

// RecordBudgetExceeded counts a partial evaluation pass.
func (em *EvaluatorMetrics) RecordBudgetExceeded() {
	em.budgetExceeded.Inc()
}

// RecordRuleFailure counts a degraded rule evaluation.
func (em *EvaluatorMetrics) RecordRuleFailure(ruleID string) {
	em.ruleFailures.WithLabelValues(ruleID).Inc()
}
