package criteria

import "originate-hq/meridian/pkg/loan"

// Operator is a comparison operator in a decision-table condition.
type Operator string

const (
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
	OpGreaterThan  Operator = ">"
	OpGreaterEqual Operator = ">="
	OpLessThan     Operator = "<"
	OpLessEqual    Operator = "<="
)

// HitPolicyFirst returns the output of the first matching rule row.
// It is the only hit policy the engine implements.
const HitPolicyFirst = "first"

// Condition compares a context field against a literal value.
type Condition struct {
	Operator Operator
	Value    loan.Value
}

// Output is the shared result shape of a rule row.
type Output struct {
	Result bool
}

// Rule is one decision-table row: a conjunction of conditions keyed by
// normalized field name, and the output produced when every condition holds.
type Rule struct {
	Conditions map[string]Condition
	Output     Output
}

// DecisionTable is the compiled form of a criteria string. An empty criteria
// string compiles to a table with zero rules, which evaluates to false; the
// catalog marks such questions alwaysApplicable and bypasses the engine.
type DecisionTable struct {
	HitPolicy string
	Rules     []Rule
}

// Empty reports whether the table has no rule rows.
func (t *DecisionTable) Empty() bool {
	return t == nil || len(t.Rules) == 0
}
