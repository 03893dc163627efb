// Package criteria compiles the human-readable question criteria DSL into
// normalized decision tables for the rules engine.
//
// The DSL is line-oriented. A criteria string is either a single comparison
// line, or a "Matches all/any of the following rules:" header followed by
// indented comparison lines. Comparison forms:
//
//	Citizenship Type is US Citizen
//	Citizenship Type is not US Citizen
//	Visa Type is not set
//	Loan Amount >= 500000
//
// "all" groups compile to one rule row carrying every condition (AND);
// "any" groups compile to one rule row per condition (OR). Nested groups,
// list operators, and date arithmetic are not part of the grammar and any
// line outside it fails compilation with the source location.
package criteria
