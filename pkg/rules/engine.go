package rules

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"sync"

	"originate-hq/meridian/pkg/criteria"
	"originate-hq/meridian/pkg/loan"
)

// Context is the field map a decision table is evaluated against. Keys are
// normalized field names; a missing key reads as null, so "is not set"
// conditions match absent fields.
type Context map[string]loan.Value

// Job pairs a rule id with the context to evaluate it against.
type Job struct {
	RuleID  string
	Context Context
}

// Options configures an Engine.
type Options struct {
	// Logger receives evaluation failures. Defaults to slog.Default().
	Logger *slog.Logger

	// Parallelism caps the workers used by EvaluateBatch. Defaults to
	// GOMAXPROCS.
	Parallelism int

	// OnFailure is invoked for each degraded evaluation, after logging.
	// Used to feed the rule-failure counter. May be nil.
	OnFailure func(ruleID string, err error)
}

// Engine is the decision-table registry and evaluator.
type Engine struct {
	mu     sync.RWMutex
	tables map[string]*criteria.DecisionTable

	logger      *slog.Logger
	parallelism int
	onFailure   func(ruleID string, err error)
}

// NewEngine creates an empty engine.
func NewEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	return &Engine{
		tables:      make(map[string]*criteria.DecisionTable),
		logger:      logger,
		parallelism: parallelism,
		onFailure:   opts.OnFailure,
	}
}

// Compile installs a decision table under the given rule id, replacing any
// previous table with the same id.
func (e *Engine) Compile(ruleID string, table *criteria.DecisionTable) error {
	if ruleID == "" {
		return fmt.Errorf("rule id cannot be empty")
	}
	if table == nil {
		return fmt.Errorf("rule %q: table cannot be nil", ruleID)
	}
	if table.HitPolicy != criteria.HitPolicyFirst {
		return fmt.Errorf("rule %q: unsupported hit policy %q", ruleID, table.HitPolicy)
	}
	for i, rule := range table.Rules {
		for field, cond := range rule.Conditions {
			if !knownOperator(cond.Operator) {
				return fmt.Errorf("rule %q row %d field %q: unknown operator %q", ruleID, i, field, cond.Operator)
			}
		}
	}

	e.mu.Lock()
	e.tables[ruleID] = table
	e.mu.Unlock()
	return nil
}

// RuleCount returns the number of installed tables.
func (e *Engine) RuleCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.tables)
}

// Evaluate walks the table's rules in order under the first hit policy. A
// rule matches when every condition holds against the context; the first
// match returns its output. No match, or an empty table, returns false.
func (e *Engine) Evaluate(ruleID string, evalCtx Context) (bool, error) {
	e.mu.RLock()
	table, ok := e.tables[ruleID]
	e.mu.RUnlock()
	if !ok {
		return false, fmt.Errorf("rule %q not registered", ruleID)
	}

	for _, rule := range table.Rules {
		if ruleMatches(rule, evalCtx) {
			return rule.Output.Result, nil
		}
	}
	return false, nil
}

// EvaluateBatch evaluates every job and returns results in input order.
// Jobs are spread across a bounded worker pool; a per-job error degrades to
// false and is reported through the logger and OnFailure hook. A cancelled
// context stops dispatch and leaves remaining results false.
func (e *Engine) EvaluateBatch(ctx context.Context, jobs []Job) []bool {
	results := make([]bool, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	workers := e.parallelism
	if workers > len(jobs) {
		workers = len(jobs)
	}
	if workers == 1 {
		for i, job := range jobs {
			if ctx.Err() != nil {
				break
			}
			results[i] = e.evaluateJob(job)
		}
		return results
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = e.evaluateJob(jobs[i])
			}
		}()
	}

	for i := range jobs {
		if ctx.Err() != nil {
			break
		}
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return results
}

func (e *Engine) evaluateJob(job Job) bool {
	result, err := e.Evaluate(job.RuleID, job.Context)
	if err != nil {
		e.logger.Warn("rule evaluation degraded to false",
			"rule_id", job.RuleID,
			"error", err,
		)
		if e.onFailure != nil {
			e.onFailure(job.RuleID, err)
		}
		return false
	}
	return result
}

// ruleMatches reports whether every condition in the rule row holds.
func ruleMatches(rule criteria.Rule, evalCtx Context) bool {
	for field, cond := range rule.Conditions {
		if !conditionHolds(cond, evalCtx[field]) {
			return false
		}
	}
	return true
}

// conditionHolds compares one field value (null when absent) against a
// condition. String equality compares canonical tokens so that criteria
// literals join against raw system-of-record values regardless of casing.
func conditionHolds(cond criteria.Condition, actual loan.Value) bool {
	switch cond.Operator {
	case criteria.OpEqual:
		return valuesEqual(actual, cond.Value)
	case criteria.OpNotEqual:
		return !valuesEqual(actual, cond.Value)
	case criteria.OpGreaterThan, criteria.OpGreaterEqual, criteria.OpLessThan, criteria.OpLessEqual:
		lhs, ok := numeric(actual)
		if !ok {
			return false
		}
		rhs, ok := numeric(cond.Value)
		if !ok {
			return false
		}
		switch cond.Operator {
		case criteria.OpGreaterThan:
			return lhs > rhs
		case criteria.OpGreaterEqual:
			return lhs >= rhs
		case criteria.OpLessThan:
			return lhs < rhs
		default:
			return lhs <= rhs
		}
	default:
		return false
	}
}

func valuesEqual(actual, expected loan.Value) bool {
	if as, ok := actual.Str(); ok {
		if es, ok := expected.Str(); ok {
			return loan.CanonicalToken(as) == loan.CanonicalToken(es)
		}
	}
	// Numeric literals may surface as numeric strings in loan fields.
	if _, ok := expected.Num(); ok {
		if lhs, lok := numeric(actual); lok {
			rhs, _ := expected.Num()
			return lhs == rhs
		}
		return false
	}
	return actual.Equal(expected)
}

// numeric extracts a float from a number or a numeric string.
func numeric(v loan.Value) (float64, bool) {
	if n, ok := v.Num(); ok {
		return n, true
	}
	if s, ok := v.Str(); ok {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func knownOperator(op criteria.Operator) bool {
	switch op {
	case criteria.OpEqual, criteria.OpNotEqual,
		criteria.OpGreaterThan, criteria.OpGreaterEqual,
		criteria.OpLessThan, criteria.OpLessEqual:
		return true
	}
	return false
}
