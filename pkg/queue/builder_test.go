package queue

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"originate-hq/meridian/pkg/catalog"
	"originate-hq/meridian/pkg/evaluator"
	"originate-hq/meridian/pkg/loan"
	"originate-hq/meridian/pkg/rules"
)

// fixtureCatalog writes a catalog tree and loads it.
func fixtureCatalog(t *testing.T) (*catalog.Registry, *rules.Engine) {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"sections/identity.yaml":   "id: identity\nname: Identity\nsequence: 10\n",
		"sections/employment.yaml": "id: employment\nname: Employment\nsequence: 20\n",
		"questions/q100.yaml": `
id: Q100
name: Citizenship
section: identity
ordinal: 1
level: BORROWER
instructions: "What is your citizenship status?"
type: choice
form_fields:
  - order: 1
    label: Citizenship
    access_field: citizenship_type
criteria: ""
`,
		"questions/q110.yaml": `
id: Q110
name: Marital status
section: identity
ordinal: 2
level: BORROWER
instructions: "What is your marital status?"
type: choice
form_fields:
  - order: 1
    label: Marital status
    access_field: marital_status
criteria: ""
can_combine_with: [Q100]
`,
		"questions/q200.yaml": `
id: Q200
name: Employer
section: employment
ordinal: 1
level: JOB
instructions: "Who is your employer?"
type: text
form_fields:
  - order: 1
    label: Employer
    access_field: employer_name
criteria: ""
`,
		"questions/q210.yaml": `
id: Q210
name: Income
section: employment
ordinal: 2
level: JOB
instructions: "What is your monthly income?"
type: number
form_fields:
  - order: 1
    label: Income
    access_field: monthly_income
  - order: 2
    label: Frequency
    access_field: income_frequency
criteria: ""
`,
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	engine := rules.NewEngine(rules.Options{})
	registry, err := catalog.Load(root, engine, nil)
	if err != nil {
		t.Fatalf("catalog.Load() error = %v", err)
	}
	return registry, engine
}

func fixtureState() *loan.LoanState {
	return &loan.LoanState{
		ProposalPid: "p-1",
		Version:     77,
		LoadedAt:    time.Now(),
		Fields:      loan.Fields{},
		Entities: loan.Entities{
			Borrowers: []loan.EntityRef{
				{Pid: "b-1", DisplayName: "Ada Lovelace", Fields: loan.Fields{}},
			},
			Jobs: []loan.EntityRef{
				{Pid: "j-1", DisplayName: "Acme Corp", Fields: loan.Fields{}},
			},
		},
		Answered: map[string]struct{}{},
	}
}

// evaluate runs the real evaluator so builder tests see realistic items.
func evaluate(t *testing.T, registry *catalog.Registry, engine *rules.Engine, state *loan.LoanState) []evaluator.QueueItem {
	t.Helper()
	items, partial := evaluator.New(registry, engine, evaluator.Options{}).Evaluate(t.Context(), state)
	if partial {
		t.Fatalf("unexpected partial evaluation")
	}
	return items
}

// TestBuild_Ordering tests the global (section, ordinal, entity) sort
func TestBuild_Ordering(t *testing.T) {
	registry, engine := fixtureCatalog(t)
	state := fixtureState()
	state.Entities.Borrowers = append(state.Entities.Borrowers,
		loan.EntityRef{Pid: "b-0", DisplayName: "Alan Turing", Fields: loan.Fields{}})

	items := evaluate(t, registry, engine, state)
	resp := NewBuilder(registry).Build(state, items, false)

	var got []string
	for _, item := range resp.Queue {
		got = append(got, item.QuestionID+"/"+item.EntityPid)
	}
	want := []string{
		"Q100/b-0", "Q100/b-1",
		"Q110/b-0", "Q110/b-1",
		"Q200/j-1", "Q210/j-1",
	}
	if len(got) != len(want) {
		t.Fatalf("queue = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("queue[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	if resp.NextRecommended != "Q100" {
		t.Errorf("NextRecommended = %q, want Q100", resp.NextRecommended)
	}
	if resp.StateVersion != 77 {
		t.Errorf("StateVersion = %d, want 77", resp.StateVersion)
	}
}

// TestBuild_SectionProgress tests the counters and status transitions
func TestBuild_SectionProgress(t *testing.T) {
	registry, engine := fixtureCatalog(t)
	builder := NewBuilder(registry)

	state := fixtureState()

	// Nothing answered: both sections pending.
	resp := builder.Build(state, evaluate(t, registry, engine, state), false)
	byID := map[string]SectionProgress{}
	for _, s := range resp.Sections {
		byID[s.SectionID] = s
	}
	if s := byID["identity"]; s.Total != 2 || s.Answered != 0 || s.Status != StatusPending {
		t.Errorf("identity = %+v", s)
	}
	if s := byID["employment"]; s.Total != 2 || s.Answered != 0 || s.Status != StatusPending {
		t.Errorf("employment = %+v", s)
	}

	// One identity question answered: in progress.
	state.Answered["Q100"] = struct{}{}
	resp = builder.Build(state, evaluate(t, registry, engine, state), false)
	for _, s := range resp.Sections {
		if s.SectionID == "identity" {
			if s.Answered != 1 || s.Status != StatusInProgress {
				t.Errorf("identity after one answer = %+v", s)
			}
		}
	}

	// All identity questions answered: complete, and answered <= total.
	state.Answered["Q110"] = struct{}{}
	resp = builder.Build(state, evaluate(t, registry, engine, state), false)
	for _, s := range resp.Sections {
		if s.Answered > s.Total {
			t.Errorf("section %s answered %d > total %d", s.SectionID, s.Answered, s.Total)
		}
		if s.SectionID == "identity" && s.Status != StatusComplete {
			t.Errorf("identity after all answers = %+v", s)
		}
	}
}

// TestBuild_CanAskTogether tests grouping of combinable adjacent questions
func TestBuild_CanAskTogether(t *testing.T) {
	registry, engine := fixtureCatalog(t)
	state := fixtureState()

	items := evaluate(t, registry, engine, state)
	resp := NewBuilder(registry).Build(state, items, false)

	// Q110 lists Q100 in can_combine_with; they are adjacent in identity.
	// The employment questions have no combine relation, so exactly one
	// group comes back.
	if len(resp.CanAskTogether) != 1 {
		t.Fatalf("CanAskTogether = %+v, want one group", resp.CanAskTogether)
	}
	group := resp.CanAskTogether[0]
	if len(group) != 2 || group[0].QuestionID != "Q100" || group[1].QuestionID != "Q110" {
		t.Errorf("group = %+v", group)
	}
}

// TestBuild_EmptyQueue tests the all-answered terminal state
func TestBuild_EmptyQueue(t *testing.T) {
	registry, engine := fixtureCatalog(t)
	state := fixtureState()
	for _, id := range []string{"Q100", "Q110", "Q200", "Q210"} {
		state.Answered[id] = struct{}{}
	}

	resp := NewBuilder(registry).Build(state, evaluate(t, registry, engine, state), false)
	if len(resp.Queue) != 0 {
		t.Errorf("queue = %d items, want 0", len(resp.Queue))
	}
	if resp.NextRecommended != "" {
		t.Errorf("NextRecommended = %q, want empty", resp.NextRecommended)
	}
	for _, s := range resp.Sections {
		if s.Status != StatusComplete {
			t.Errorf("section %s = %+v, want complete", s.SectionID, s)
		}
	}
}
