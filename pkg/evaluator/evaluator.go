package evaluator

import (
	"context"
	"log/slog"
	"time"

	"originate-hq/meridian/pkg/catalog"
	"originate-hq/meridian/pkg/loan"
	"originate-hq/meridian/pkg/rules"
)

// DefaultBudget bounds one evaluation pass.
const DefaultBudget = 8 * time.Millisecond

// QueueItem is a question instantiated against a specific entity (or the
// null slot for proposal- and property-level questions) with merge-field
// text resolved.
type QueueItem struct {
	QuestionID        string              `json:"questionId"`
	SectionID         string              `json:"sectionId"`
	Ordinal           int                 `json:"ordinal"`
	Level             loan.EntityLevel    `json:"entityLevel"`
	EntityPid         string              `json:"entityPid,omitempty"`
	EntityDisplayName string              `json:"entityDisplayName,omitempty"`
	RenderedText      string              `json:"renderedText"`
	InputKind         string              `json:"inputKind"`
	Options           []string            `json:"options,omitempty"`
	AccessField       string              `json:"accessField"`
	Flexibility       catalog.Flexibility `json:"flexibility"`
	ExtractionHints   map[string]string   `json:"extractionHints,omitempty"`

	// Prefill carries the current value of the access field when the
	// question's form field is marked prepopulate, so the conversational
	// layer can offer it for confirmation instead of asking cold.
	Prefill loan.Value `json:"prefill,omitempty"`
}

// Metrics receives evaluator events; the telemetry collector implements it.
type Metrics interface {
	RecordBudgetExceeded()
}

type nopMetrics struct{}

func (nopMetrics) RecordBudgetExceeded() {}

// Evaluator produces the applicable queue items for a LoanState.
type Evaluator struct {
	registry *catalog.Registry
	engine   *rules.Engine
	budget   time.Duration
	logger   *slog.Logger
	metrics  Metrics
}

// Options configures an Evaluator.
type Options struct {
	Budget  time.Duration // defaults to DefaultBudget
	Logger  *slog.Logger
	Metrics Metrics
}

// New creates an Evaluator over the immutable registry and engine.
func New(registry *catalog.Registry, engine *rules.Engine, opts Options) *Evaluator {
	budget := opts.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Evaluator{
		registry: registry,
		engine:   engine,
		budget:   budget,
		logger:   logger,
		metrics:  metrics,
	}
}

// Evaluate walks the entity levels in fixed order, expanding each
// unanswered question across its entity slots and batching the rule
// evaluations per level. It returns the applicable items and whether the
// pass was cut short by the latency budget.
func (e *Evaluator) Evaluate(ctx context.Context, state *loan.LoanState) (items []QueueItem, partial bool) {
	start := time.Now()

	loanCtx := normalizeFields(state.Fields)

	for _, level := range loan.EvaluationOrder {
		if time.Since(start) > e.budget {
			e.budgetExceeded(state.ProposalPid, level, start, len(items))
			return items, true
		}

		questions := e.registry.QuestionsForLevel(level)
		if len(questions) == 0 {
			continue
		}

		slots := entitySlots(level, &state.Entities)

		// One evaluation job per (question, slot). Always-applicable
		// questions skip the engine and go straight into the pending list.
		type pending struct {
			question *catalog.Question
			slot     *loan.EntityRef
			evalCtx  rules.Context
			jobIndex int // -1 for always-applicable
		}
		var (
			pendings []pending
			jobs     []rules.Job
		)
		for _, q := range questions {
			if state.IsAnswered(q.ID) {
				continue
			}
			for _, slot := range slots {
				if time.Since(start) > e.budget {
					e.budgetExceeded(state.ProposalPid, level, start, len(items))
					return items, true
				}

				evalCtx := mergeContext(loanCtx, slot)
				p := pending{question: q, slot: slot, evalCtx: evalCtx, jobIndex: -1}
				if !q.AlwaysApplicable {
					p.jobIndex = len(jobs)
					jobs = append(jobs, rules.Job{RuleID: q.RuleID, Context: evalCtx})
				}
				pendings = append(pendings, p)
			}
		}

		results := e.engine.EvaluateBatch(ctx, jobs)

		for _, p := range pendings {
			applicable := p.jobIndex < 0 || results[p.jobIndex]
			if !applicable {
				continue
			}
			items = append(items, e.buildItem(p.question, p.slot, p.evalCtx))
		}
	}

	return items, false
}

func (e *Evaluator) budgetExceeded(pid string, level loan.EntityLevel, start time.Time, emitted int) {
	e.metrics.RecordBudgetExceeded()
	e.logger.Warn("evaluation budget exceeded, returning partial queue",
		"proposal_pid", pid,
		"level", string(level),
		"elapsed", time.Since(start),
		"budget", e.budget,
		"items", emitted,
	)
}

// buildItem renders the queue item for an applicable (question, slot) pair.
func (e *Evaluator) buildItem(q *catalog.Question, slot *loan.EntityRef, evalCtx rules.Context) QueueItem {
	item := QueueItem{
		QuestionID:      q.ID,
		SectionID:       q.SectionID,
		Ordinal:         q.Ordinal,
		Level:           q.Level,
		RenderedText:    interpolate(q.Instructions, evalCtx),
		InputKind:       q.InputKind,
		Options:         q.Options,
		Flexibility:     q.Flexibility,
		ExtractionHints: q.ExtractionHints,
	}
	if slot != nil {
		item.EntityPid = slot.Pid
		item.EntityDisplayName = slot.DisplayName
	}
	if len(q.FormFields) > 0 {
		primary := q.FormFields[0]
		item.AccessField = primary.AccessField
		if primary.Prepopulate {
			if v, ok := evalCtx[loan.NormalizeFieldName(primary.AccessField)]; ok && !v.IsNull() {
				item.Prefill = v
			}
		}
	}
	return item
}

// entitySlots returns the slots a level's questions expand over: the entity
// population for entity levels, or a single null slot for the singleton
// proposal and property contexts.
func entitySlots(level loan.EntityLevel, entities *loan.Entities) []*loan.EntityRef {
	if level.Singleton() {
		return []*loan.EntityRef{nil}
	}
	population := entities.ForLevel(level)
	slots := make([]*loan.EntityRef, len(population))
	for i := range population {
		slots[i] = &population[i]
	}
	return slots
}

// normalizeFields re-keys a field map by normalized field name so criteria
// join against it.
func normalizeFields(fields loan.Fields) rules.Context {
	out := make(rules.Context, len(fields))
	for k, v := range fields {
		out[loan.NormalizeFieldName(k)] = v
	}
	return out
}

// mergeContext shallow-merges the loan fields with the slot entity's
// fields; the entity wins on conflict.
func mergeContext(loanCtx rules.Context, slot *loan.EntityRef) rules.Context {
	if slot == nil {
		return loanCtx
	}
	out := make(rules.Context, len(loanCtx)+len(slot.Fields))
	for k, v := range loanCtx {
		out[k] = v
	}
	for k, v := range slot.Fields {
		out[loan.NormalizeFieldName(k)] = v
	}
	return out
}
