package catalog

import (
	"sort"

	"originate-hq/meridian/pkg/loan"
)

// Registry owns the loaded sections and questions and serves O(1) lookups.
// It is immutable after Load returns.
type Registry struct {
	sections    []Section
	sectionByID map[string]*Section
	byID        map[string]*Question
	byLevel     map[loan.EntityLevel][]*Question
}

func newRegistry(sections map[string]*Section, questions []loadedQuestion) *Registry {
	r := &Registry{
		sections:    make([]Section, 0, len(sections)),
		sectionByID: make(map[string]*Section, len(sections)),
		byID:        make(map[string]*Question, len(questions)),
		byLevel:     make(map[loan.EntityLevel][]*Question),
	}

	for _, s := range sections {
		r.sections = append(r.sections, *s)
	}
	sort.Slice(r.sections, func(i, j int) bool { return r.sections[i].Sequence < r.sections[j].Sequence })
	for i := range r.sections {
		r.sectionByID[r.sections[i].ID] = &r.sections[i]
	}

	for _, lq := range questions {
		q := lq.question
		r.byID[q.ID] = q
		r.byLevel[q.Level] = append(r.byLevel[q.Level], q)
	}

	// Pre-sort each level's questions by section sequence then ordinal so
	// the evaluator emits them in conversation order without sorting on the
	// hot path.
	for level := range r.byLevel {
		qs := r.byLevel[level]
		sort.SliceStable(qs, func(i, j int) bool {
			si := r.sectionByID[qs[i].SectionID].Sequence
			sj := r.sectionByID[qs[j].SectionID].Sequence
			if si != sj {
				return si < sj
			}
			return qs[i].Ordinal < qs[j].Ordinal
		})
	}

	return r
}

// Question returns the question with the given id, or nil.
func (r *Registry) Question(id string) *Question {
	return r.byID[id]
}

// QuestionsForLevel returns the level's questions pre-sorted by section
// sequence then ordinal. Callers must not mutate the returned slice.
func (r *Registry) QuestionsForLevel(level loan.EntityLevel) []*Question {
	return r.byLevel[level]
}

// Sections returns all sections sorted by sequence. Callers must not mutate
// the returned slice.
func (r *Registry) Sections() []Section {
	return r.sections
}

// Section returns the section with the given id, or nil.
func (r *Registry) Section(id string) *Section {
	return r.sectionByID[id]
}

// QuestionCount returns the number of loaded questions.
func (r *Registry) QuestionCount() int {
	return len(r.byID)
}
