package loader

import (
	"context"
	"errors"
	"testing"

	"originate-hq/meridian/pkg/loan"
	"originate-hq/meridian/pkg/record"
)

// fakeStore serves a canned proposal graph.
type fakeStore struct {
	proposalErr error
}

func (f *fakeStore) GetProposal(ctx context.Context, pid string) (*record.Proposal, error) {
	if f.proposalErr != nil {
		return nil, f.proposalErr
	}
	return &record.Proposal{
		Pid:     pid,
		DealPid: "d-1",
		Columns: map[string]any{
			"pid":          pid,
			"deal_pid":     "d-1",
			"loan_type":    "Conventional",
			"loan_amount":  425000.0,
			"loan_purpose": nil,
		},
	}, nil
}

func (f *fakeStore) ListBorrowers(ctx context.Context, dealPid string) ([]record.Entity, error) {
	return []record.Entity{
		{Pid: "b-1", Columns: map[string]any{
			"pid": "b-1", "first_name": "Ada", "last_name": "Lovelace",
			"citizenship_type": "US Citizen",
		}},
		{Pid: "b-2", Columns: map[string]any{
			"pid": "b-2", "first_name": "  ", "last_name": "",
		}},
	}, nil
}

func (f *fakeStore) ListJobs(ctx context.Context, borrowerPids []string) ([]record.Entity, error) {
	return []record.Entity{
		{Pid: "j-1", BorrowerPid: "b-1", Columns: map[string]any{
			"pid": "j-1", "employer_name": "Acme Corp", "monthly_income": 9200.5,
		}},
	}, nil
}

func (f *fakeStore) ListAssets(ctx context.Context, borrowerPids []string) ([]record.Entity, error) {
	return []record.Entity{}, nil
}

func (f *fakeStore) ListLiabilities(ctx context.Context, borrowerPids []string) ([]record.Entity, error) {
	return []record.Entity{}, nil
}

func (f *fakeStore) ListRealEstateOwned(ctx context.Context, borrowerPids []string) ([]record.Entity, error) {
	return []record.Entity{}, nil
}

func (f *fakeStore) GetProperty(ctx context.Context, dealPid string) (map[string]any, error) {
	return map[string]any{
		"deal_pid": dealPid, "zip_code": "80301", "appraised_value": 650000.0,
	}, nil
}

func (f *fakeStore) ListAnsweredQuestions(ctx context.Context, dealPid string) ([]string, error) {
	return []string{"Q100"}, nil
}

func (f *fakeStore) Ping(ctx context.Context) error { return nil }
func (f *fakeStore) Close() error                   { return nil }

// TestLoad_Normalization tests flattening, prefixing, and display names
func TestLoad_Normalization(t *testing.T) {
	ldr := New(&fakeStore{}, nil)

	state, err := ldr.Load(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Proposal columns flatten to lower-camel keys.
	if got := state.Fields["loanType"]; !got.Equal(loan.String("Conventional")) {
		t.Errorf("loanType = %v", got)
	}
	if got := state.Fields["loanAmount"]; !got.Equal(loan.Number(425000)) {
		t.Errorf("loanAmount = %v", got)
	}
	if got := state.Fields["loanPurpose"]; !got.IsNull() {
		t.Errorf("loanPurpose = %v, want null", got)
	}

	// Property columns carry the property_ prefix.
	if got := state.Fields["property_zipCode"]; !got.Equal(loan.String("80301")) {
		t.Errorf("property_zipCode = %v", got)
	}
	if _, clash := state.Fields["zipCode"]; clash {
		t.Errorf("property column leaked without prefix")
	}

	// Display names: first + last trimmed, placeholder when blank.
	if got := state.Entities.Borrowers[0].DisplayName; got != "Ada Lovelace" {
		t.Errorf("borrower display name = %q", got)
	}
	if got := state.Entities.Borrowers[1].DisplayName; got != "Record b-2" {
		t.Errorf("blank-name borrower display name = %q", got)
	}
	if got := state.Entities.Jobs[0].DisplayName; got != "Acme Corp" {
		t.Errorf("job display name = %q", got)
	}

	// Empty child collections are empty lists, never nil errors.
	if state.Entities.Assets == nil || len(state.Entities.Assets) != 0 {
		t.Errorf("assets = %+v", state.Entities.Assets)
	}

	if !state.IsAnswered("Q100") {
		t.Errorf("answered set = %v", state.Answered)
	}
	if state.Version == 0 {
		t.Errorf("version not set")
	}
	if state.LoadedAt.IsZero() {
		t.Errorf("loadedAt not set")
	}
}

// TestLoad_ProposalNotFound tests error propagation from the root fetch
func TestLoad_ProposalNotFound(t *testing.T) {
	ldr := New(&fakeStore{proposalErr: record.ErrProposalNotFound}, nil)

	_, err := ldr.Load(context.Background(), "p-404")
	if !errors.Is(err, record.ErrProposalNotFound) {
		t.Fatalf("Load() error = %v, want ErrProposalNotFound", err)
	}
}
