package criteria

import (
	"reflect"
	"testing"

	"originate-hq/meridian/pkg/loan"
)

// TestCompile_SingleComparisons tests the four single-line forms
func TestCompile_SingleComparisons(t *testing.T) {
	tests := []struct {
		name      string
		criteria  string
		wantField string
		wantOp    Operator
		wantValue loan.Value
	}{
		{
			name:      "is with enum value",
			criteria:  "Citizenship Type is US Citizen",
			wantField: "citizenship_type",
			wantOp:    OpEqual,
			wantValue: loan.String("US_CITIZEN"),
		},
		{
			name:      "is not",
			criteria:  "Loan Purpose is not Refinance",
			wantField: "loan_purpose",
			wantOp:    OpNotEqual,
			wantValue: loan.String("REFINANCE"),
		},
		{
			name:      "is not set",
			criteria:  "Visa Type is not set",
			wantField: "visa_type",
			wantOp:    OpEqual,
			wantValue: loan.Null(),
		},
		{
			name:      "is boolean",
			criteria:  "Self Employed is true",
			wantField: "self_employed",
			wantOp:    OpEqual,
			wantValue: loan.Bool(true),
		},
		{
			name:      "is number",
			criteria:  "Dependents Count is 0",
			wantField: "dependents_count",
			wantOp:    OpEqual,
			wantValue: loan.Number(0),
		},
		{
			name:      "greater or equal",
			criteria:  "Loan Amount >= 500000",
			wantField: "loan_amount",
			wantOp:    OpGreaterEqual,
			wantValue: loan.Number(500000),
		},
		{
			name:      "less than with decimal",
			criteria:  "Years Employed < 2.5",
			wantField: "years_employed",
			wantOp:    OpLessThan,
			wantValue: loan.Number(2.5),
		},
		{
			name:      "hyphenated field name",
			criteria:  "Co-Borrower Type is Spouse",
			wantField: "co_borrower_type",
			wantOp:    OpEqual,
			wantValue: loan.String("SPOUSE"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Compile(tt.criteria)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			if len(table.Rules) != 1 {
				t.Fatalf("Compile() rules = %d, want 1", len(table.Rules))
			}
			cond, ok := table.Rules[0].Conditions[tt.wantField]
			if !ok {
				t.Fatalf("Compile() missing condition on %q, got %v", tt.wantField, table.Rules[0].Conditions)
			}
			if cond.Operator != tt.wantOp {
				t.Errorf("operator = %q, want %q", cond.Operator, tt.wantOp)
			}
			if !cond.Value.Equal(tt.wantValue) {
				t.Errorf("value = %v, want %v", cond.Value, tt.wantValue)
			}
			if !table.Rules[0].Output.Result {
				t.Errorf("output result = false, want true")
			}
		})
	}
}

// TestCompile_AllGroup tests AND groups: one rule row with many conditions
func TestCompile_AllGroup(t *testing.T) {
	criteria := "Matches all of the following rules:\n" +
		"  Citizenship Type is Non-Permanent Resident\n" +
		"  Visa Type is H-1B"

	table, err := Compile(criteria)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if len(table.Rules) != 1 {
		t.Fatalf("rules = %d, want 1", len(table.Rules))
	}
	conds := table.Rules[0].Conditions
	if len(conds) != 2 {
		t.Fatalf("conditions = %d, want 2", len(conds))
	}
	if got := conds["citizenship_type"].Value; !got.Equal(loan.String("NON_PERMANENT_RESIDENT")) {
		t.Errorf("citizenship_type value = %v", got)
	}
	if got := conds["visa_type"].Value; !got.Equal(loan.String("H_1B")) {
		t.Errorf("visa_type value = %v", got)
	}
}

// TestCompile_AnyGroup tests OR groups: one rule row per condition
func TestCompile_AnyGroup(t *testing.T) {
	criteria := "Matches any of the following rules:\n" +
		"  Loan Purpose is Purchase\n" +
		"  Loan Purpose is Refinance"

	table, err := Compile(criteria)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if len(table.Rules) != 2 {
		t.Fatalf("rules = %d, want 2", len(table.Rules))
	}
	for i, want := range []string{"PURCHASE", "REFINANCE"} {
		conds := table.Rules[i].Conditions
		if len(conds) != 1 {
			t.Fatalf("rule %d conditions = %d, want 1", i, len(conds))
		}
		if got := conds["loan_purpose"].Value; !got.Equal(loan.String(want)) {
			t.Errorf("rule %d value = %v, want %s", i, got, want)
		}
	}
}

// TestCompile_Empty tests that blank criteria compiles to zero rules
func TestCompile_Empty(t *testing.T) {
	for _, criteria := range []string{"", "   ", "\n\n  \n"} {
		table, err := Compile(criteria)
		if err != nil {
			t.Fatalf("Compile(%q) error = %v", criteria, err)
		}
		if !table.Empty() {
			t.Errorf("Compile(%q) = %d rules, want 0", criteria, len(table.Rules))
		}
	}
}

// TestCompile_Errors tests hard rejection of unrepresentable constructs
func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		criteria string
		wantLine int
	}{
		{"unrecognized line", "Borrower has any open bankruptcy", 1},
		{"non-numeric comparison", "Loan Amount >= jumbo", 1},
		{"multiple lines without header", "Loan Purpose is Purchase\nLoan Type is FHA", 2},
		{"header with no rules", "Matches all of the following rules:", 1},
		{"bad line inside group", "Matches any of the following rules:\n  Loan Purpose is Purchase\n  something unparseable", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.criteria)
			if err == nil {
				t.Fatalf("Compile() error = nil, want compile error")
			}
			ce, ok := err.(*CompileError)
			if !ok {
				t.Fatalf("Compile() error type = %T, want *CompileError", err)
			}
			if ce.Line != tt.wantLine {
				t.Errorf("error line = %d, want %d", ce.Line, tt.wantLine)
			}
		})
	}
}

// TestCompile_Deterministic tests that compilation is deterministic and
// idempotent for the same input
func TestCompile_Deterministic(t *testing.T) {
	criteria := "Matches all of the following rules:\n" +
		"  Citizenship Type is Non-Permanent Resident\n" +
		"  Loan Amount >= 100000"

	first, err := Compile(criteria)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Compile(criteria)
		if err != nil {
			t.Fatalf("Compile() error = %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Compile() not deterministic: %v vs %v", first, again)
		}
	}
}

// TestCompileError_Path tests the file-path tagging used by the catalog
func TestCompileError_Path(t *testing.T) {
	_, err := Compile("nonsense line here")
	ce := err.(*CompileError)
	tagged := ce.WithPath("questions/credit/q1.yaml")
	if tagged.Path != "questions/credit/q1.yaml" {
		t.Errorf("path = %q", tagged.Path)
	}
	if ce.Path != "" {
		t.Errorf("WithPath mutated the original error")
	}
}
