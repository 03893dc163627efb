package queue

import (
	"sort"

	"originate-hq/meridian/pkg/catalog"
	"originate-hq/meridian/pkg/evaluator"
	"originate-hq/meridian/pkg/loan"
)

// Section progress status values.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusComplete   = "complete"
)

// SectionProgress reports per-section counters for the agent's UI.
type SectionProgress struct {
	SectionID string `json:"sectionId"`
	Name      string `json:"name"`
	Total     int    `json:"total"`
	Answered  int    `json:"answered"`
	Status    string `json:"status"`
}

// GroupRef identifies one queue item inside an ask-together group.
type GroupRef struct {
	QuestionID string `json:"questionId"`
	EntityPid  string `json:"entityPid,omitempty"`
}

// Response is the full question-queue payload.
type Response struct {
	ProposalPid     string                `json:"proposalPid"`
	Queue           []evaluator.QueueItem `json:"queue"`
	Sections        []SectionProgress     `json:"sections"`
	CanAskTogether  [][]GroupRef          `json:"canAskTogether"`
	NextRecommended string                `json:"nextRecommended"`
	StateVersion    int64                 `json:"stateVersion"`

	// Partial marks a queue cut short by the evaluator's latency budget.
	Partial bool `json:"partial,omitempty"`
}

// Builder turns evaluator output into the ordered response.
type Builder struct {
	registry *catalog.Registry
}

// NewBuilder creates a Builder over the immutable registry.
func NewBuilder(registry *catalog.Registry) *Builder {
	return &Builder{registry: registry}
}

// Build sorts the queue items globally, computes section progress from the
// loan state, and derives grouping hints.
func (b *Builder) Build(state *loan.LoanState, items []evaluator.QueueItem, partial bool) *Response {
	sort.SliceStable(items, func(i, j int) bool {
		si := b.registry.Section(items[i].SectionID).Sequence
		sj := b.registry.Section(items[j].SectionID).Sequence
		if si != sj {
			return si < sj
		}
		if items[i].Ordinal != items[j].Ordinal {
			return items[i].Ordinal < items[j].Ordinal
		}
		return items[i].EntityPid < items[j].EntityPid
	})

	resp := &Response{
		ProposalPid:    state.ProposalPid,
		Queue:          items,
		Sections:       b.sectionProgress(state),
		CanAskTogether: b.groupRuns(items),
		StateVersion:   state.Version,
		Partial:        partial,
	}
	if len(items) > 0 {
		resp.NextRecommended = items[0].QuestionID
	}
	return resp
}

// sectionProgress counts, per section, the question instances across all
// entities against the answered set.
func (b *Builder) sectionProgress(state *loan.LoanState) []SectionProgress {
	sections := b.registry.Sections()
	out := make([]SectionProgress, 0, len(sections))

	for _, section := range sections {
		progress := SectionProgress{SectionID: section.ID, Name: section.Name}

		for _, level := range loan.EvaluationOrder {
			slots := 1
			if !level.Singleton() {
				slots = len(state.Entities.ForLevel(level))
			}
			for _, q := range b.registry.QuestionsForLevel(level) {
				if q.SectionID != section.ID {
					continue
				}
				progress.Total += slots
				if state.IsAnswered(q.ID) {
					progress.Answered++
				}
			}
		}

		switch {
		case progress.Total > 0 && progress.Answered >= progress.Total:
			progress.Status = StatusComplete
		case progress.Answered == 0:
			progress.Status = StatusPending
		default:
			progress.Status = StatusInProgress
		}
		out = append(out, progress)
	}
	return out
}

// groupRuns scans the ordered queue for consecutive items sharing section,
// entity level, and flexibility where each question lists its predecessor
// in can_combine_with. Runs of length >= 2 become ask-together hints.
func (b *Builder) groupRuns(items []evaluator.QueueItem) [][]GroupRef {
	var groups [][]GroupRef
	var run []GroupRef

	flush := func() {
		if len(run) >= 2 {
			groups = append(groups, run)
		}
		run = nil
	}

	for i, item := range items {
		if i == 0 {
			run = []GroupRef{{QuestionID: item.QuestionID, EntityPid: item.EntityPid}}
			continue
		}
		prev := items[i-1]
		q := b.registry.Question(item.QuestionID)
		sameRun := item.SectionID == prev.SectionID &&
			item.Level == prev.Level &&
			item.Flexibility == prev.Flexibility &&
			q != nil && q.CanCombine(prev.QuestionID)
		if sameRun {
			run = append(run, GroupRef{QuestionID: item.QuestionID, EntityPid: item.EntityPid})
			continue
		}
		flush()
		run = []GroupRef{{QuestionID: item.QuestionID, EntityPid: item.EntityPid}}
	}
	flush()

	return groups
}
