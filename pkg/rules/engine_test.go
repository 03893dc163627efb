package rules

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"originate-hq/meridian/pkg/criteria"
	"originate-hq/meridian/pkg/loan"
)

func mustCompile(t *testing.T, engine *Engine, ruleID, criteriaStr string) {
	t.Helper()
	table, err := criteria.Compile(criteriaStr)
	if err != nil {
		t.Fatalf("compile criteria: %v", err)
	}
	if err := engine.Compile(ruleID, table); err != nil {
		t.Fatalf("install rule: %v", err)
	}
}

// TestEvaluate_Simple tests evaluation of a single equality rule
func TestEvaluate_Simple(t *testing.T) {
	engine := NewEngine(Options{Logger: slog.Default()})
	mustCompile(t, engine, "question:Q1", "Loan Type is Conventional")

	tests := []struct {
		name    string
		context Context
		want    bool
	}{
		{
			name:    "matching value",
			context: Context{"loan_type": loan.String("CONVENTIONAL")},
			want:    true,
		},
		{
			name:    "non-matching value",
			context: Context{"loan_type": loan.String("FHA")},
			want:    false,
		},
		{
			name:    "missing field reads as null",
			context: Context{},
			want:    false,
		},
		{
			name:    "raw cased value joins against canonical literal",
			context: Context{"loan_type": loan.String("Conventional")},
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Evaluate("question:Q1", tt.context)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestEvaluate_Operators tests the comparison operators
func TestEvaluate_Operators(t *testing.T) {
	tests := []struct {
		name     string
		criteria string
		context  Context
		want     bool
	}{
		{
			name:     "is not set matches absent field",
			criteria: "Visa Type is not set",
			context:  Context{},
			want:     true,
		},
		{
			name:     "is not set rejects present field",
			criteria: "Visa Type is not set",
			context:  Context{"visa_type": loan.String("H_1B")},
			want:     false,
		},
		{
			name:     "is not on differing value",
			criteria: "Loan Purpose is not Refinance",
			context:  Context{"loan_purpose": loan.String("PURCHASE")},
			want:     true,
		},
		{
			name:     "is not treats absent as not equal",
			criteria: "Loan Purpose is not Refinance",
			context:  Context{},
			want:     true,
		},
		{
			name:     "numeric greater-equal boundary",
			criteria: "Loan Amount >= 500000",
			context:  Context{"loan_amount": loan.Number(500000)},
			want:     true,
		},
		{
			name:     "numeric comparison over numeric string",
			criteria: "Loan Amount > 100000",
			context:  Context{"loan_amount": loan.String("250000")},
			want:     true,
		},
		{
			name:     "numeric comparison on non-number is false",
			criteria: "Loan Amount > 100000",
			context:  Context{"loan_amount": loan.String("a lot")},
			want:     false,
		},
		{
			name:     "AND requires every condition",
			criteria: "Matches all of the following rules:\n  Citizenship Type is Non-Permanent Resident\n  Visa Type is H-1B",
			context: Context{
				"citizenship_type": loan.String("NON_PERMANENT_RESIDENT"),
				"visa_type":        loan.String("F_1"),
			},
			want: false,
		},
		{
			name:     "OR takes the first matching row",
			criteria: "Matches any of the following rules:\n  Loan Purpose is Purchase\n  Loan Purpose is Refinance",
			context:  Context{"loan_purpose": loan.String("REFINANCE")},
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(Options{Logger: slog.Default()})
			mustCompile(t, engine, "question:T", tt.criteria)

			got, err := engine.Evaluate("question:T", tt.context)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestEvaluate_EmptyTable tests that a compiled-but-empty table is false
func TestEvaluate_EmptyTable(t *testing.T) {
	engine := NewEngine(Options{})
	mustCompile(t, engine, "question:EMPTY", "")

	got, err := engine.Evaluate("question:EMPTY", Context{"anything": loan.Bool(true)})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got {
		t.Errorf("empty table evaluated to true, want false")
	}
}

// TestEvaluate_UnknownRule tests the registry error path
func TestEvaluate_UnknownRule(t *testing.T) {
	engine := NewEngine(Options{})
	if _, err := engine.Evaluate("question:NOPE", Context{}); err == nil {
		t.Fatalf("Evaluate() error = nil, want unknown-rule error")
	}
}

// TestCompile_Replaces tests that a duplicate rule id replaces the table
func TestCompile_Replaces(t *testing.T) {
	engine := NewEngine(Options{})
	mustCompile(t, engine, "question:Q", "Loan Type is FHA")
	mustCompile(t, engine, "question:Q", "Loan Type is Conventional")

	if engine.RuleCount() != 1 {
		t.Fatalf("RuleCount() = %d, want 1", engine.RuleCount())
	}
	got, err := engine.Evaluate("question:Q", Context{"loan_type": loan.String("CONVENTIONAL")})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !got {
		t.Errorf("replaced rule not in effect")
	}
}

// TestEvaluateBatch_OrderAndDegrade tests batch ordering and fail-soft
func TestEvaluateBatch_OrderAndDegrade(t *testing.T) {
	var mu sync.Mutex
	var failed []string

	engine := NewEngine(Options{
		Logger: slog.Default(),
		OnFailure: func(ruleID string, err error) {
			mu.Lock()
			failed = append(failed, ruleID)
			mu.Unlock()
		},
	})
	mustCompile(t, engine, "question:A", "Loan Purpose is Purchase")
	mustCompile(t, engine, "question:B", "Loan Purpose is Refinance")

	purchase := Context{"loan_purpose": loan.String("PURCHASE")}
	jobs := []Job{
		{RuleID: "question:A", Context: purchase},
		{RuleID: "question:MISSING", Context: purchase},
		{RuleID: "question:B", Context: purchase},
		{RuleID: "question:A", Context: Context{}},
	}

	results := engine.EvaluateBatch(context.Background(), jobs)
	want := []bool{true, false, false, false}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("results[%d] = %v, want %v", i, results[i], want[i])
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(failed) != 1 || failed[0] != "question:MISSING" {
		t.Errorf("OnFailure calls = %v, want [question:MISSING]", failed)
	}
}

// TestEvaluateBatch_Empty tests the zero-job case
func TestEvaluateBatch_Empty(t *testing.T) {
	engine := NewEngine(Options{})
	if results := engine.EvaluateBatch(context.Background(), nil); len(results) != 0 {
		t.Errorf("EvaluateBatch(nil) = %v, want empty", results)
	}
}
