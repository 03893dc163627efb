package record

import (
	"context"
	"errors"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(Config{
		Backend:      "sqlite",
		SQLitePath:   ":memory:",
		QueryTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seed(t *testing.T, store *SQLiteStore) {
	t.Helper()
	stmts := []string{
		`INSERT INTO proposals (pid, deal_pid, loan_type, loan_purpose, loan_amount, citizenship_type)
		 VALUES ('p-1', 'd-1', 'Conventional', 'Purchase', 425000, NULL)`,
		`INSERT INTO borrowers (pid, deal_pid, first_name, last_name, citizenship_type)
		 VALUES ('b-1', 'd-1', 'Ada', 'Lovelace', 'US Citizen')`,
		`INSERT INTO borrowers (pid, deal_pid, first_name, last_name, citizenship_type)
		 VALUES ('b-2', 'd-1', 'Alan', 'Turing', 'Non-Permanent Resident')`,
		`INSERT INTO jobs (pid, borrower_pid, employer_name, monthly_income)
		 VALUES ('j-1', 'b-1', 'Acme Corp', 9200.5)`,
		`INSERT INTO assets (pid, borrower_pid, asset_type, market_value)
		 VALUES ('a-1', 'b-2', 'Checking', 25000)`,
		`INSERT INTO properties (deal_pid, city, state, zip_code, appraised_value)
		 VALUES ('d-1', 'Boulder', 'CO', '80301', 650000)`,
		`INSERT INTO answered_questions (deal_pid, question_id) VALUES ('d-1', 'Q100')`,
		`INSERT INTO answered_questions (deal_pid, question_id) VALUES ('d-1', 'Q110')`,
	}
	for _, stmt := range stmts {
		if _, err := store.DB().Exec(stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

// TestSQLiteStore_Proposal tests the root fetch and not-found mapping
func TestSQLiteStore_Proposal(t *testing.T) {
	store := openTestStore(t)
	seed(t, store)
	ctx := context.Background()

	p, err := store.GetProposal(ctx, "p-1")
	if err != nil {
		t.Fatalf("GetProposal() error = %v", err)
	}
	if p.Pid != "p-1" || p.DealPid != "d-1" {
		t.Errorf("proposal = %+v", p)
	}
	if got := p.Columns["loan_type"]; got != "Conventional" {
		t.Errorf("loan_type = %v", got)
	}
	if v, present := p.Columns["citizenship_type"]; !present || v != nil {
		t.Errorf("citizenship_type = %v (present %v), want present nil", v, present)
	}

	_, err = store.GetProposal(ctx, "p-404")
	if !errors.Is(err, ErrProposalNotFound) {
		t.Fatalf("GetProposal(missing) error = %v, want ErrProposalNotFound", err)
	}
}

// TestSQLiteStore_Children tests child-collection fetches by borrower set
func TestSQLiteStore_Children(t *testing.T) {
	store := openTestStore(t)
	seed(t, store)
	ctx := context.Background()

	borrowers, err := store.ListBorrowers(ctx, "d-1")
	if err != nil {
		t.Fatalf("ListBorrowers() error = %v", err)
	}
	if len(borrowers) != 2 || borrowers[0].Pid != "b-1" {
		t.Fatalf("borrowers = %+v", borrowers)
	}

	jobs, err := store.ListJobs(ctx, []string{"b-1", "b-2"})
	if err != nil {
		t.Fatalf("ListJobs() error = %v", err)
	}
	if len(jobs) != 1 || jobs[0].BorrowerPid != "b-1" {
		t.Errorf("jobs = %+v", jobs)
	}
	if got := jobs[0].Columns["monthly_income"]; got != 9200.5 {
		t.Errorf("monthly_income = %v (%T)", got, got)
	}

	// Empty pid set returns an empty slice, never an error.
	none, err := store.ListAssets(ctx, nil)
	if err != nil {
		t.Fatalf("ListAssets(nil) error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("ListAssets(nil) = %+v", none)
	}

	// Empty collections likewise.
	liabilities, err := store.ListLiabilities(ctx, []string{"b-1", "b-2"})
	if err != nil {
		t.Fatalf("ListLiabilities() error = %v", err)
	}
	if len(liabilities) != 0 {
		t.Errorf("liabilities = %+v", liabilities)
	}
}

// TestSQLiteStore_PropertyAndAnswered tests the deal-keyed fetches
func TestSQLiteStore_PropertyAndAnswered(t *testing.T) {
	store := openTestStore(t)
	seed(t, store)
	ctx := context.Background()

	property, err := store.GetProperty(ctx, "d-1")
	if err != nil {
		t.Fatalf("GetProperty() error = %v", err)
	}
	if property["zip_code"] != "80301" {
		t.Errorf("property = %+v", property)
	}

	missing, err := store.GetProperty(ctx, "d-404")
	if err != nil {
		t.Fatalf("GetProperty(missing) error = %v", err)
	}
	if missing != nil {
		t.Errorf("GetProperty(missing) = %+v, want nil", missing)
	}

	answered, err := store.ListAnsweredQuestions(ctx, "d-1")
	if err != nil {
		t.Fatalf("ListAnsweredQuestions() error = %v", err)
	}
	if len(answered) != 2 {
		t.Errorf("answered = %v", answered)
	}
}

// TestOpen_UnknownBackend tests backend selection
func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Config{Backend: "oracle"})
	if err == nil {
		t.Fatalf("Open(oracle) error = nil")
	}
}
