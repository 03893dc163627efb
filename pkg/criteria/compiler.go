package criteria

import (
	"regexp"
	"strconv"
	"strings"

	"originate-hq/meridian/pkg/loan"
)

const (
	headerAll = "matches all of the following rules:"
	headerAny = "matches any of the following rules:"
)

var numberPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// Compile translates a criteria string into a decision table. Compilation
// is deterministic and idempotent; an empty or whitespace-only string
// compiles to a table with zero rules.
//
// Any line outside the grammar is a hard error carrying the 1-based line
// number; the catalog tags it with the source file path and aborts startup.
func Compile(criteria string) (*DecisionTable, error) {
	table := &DecisionTable{HitPolicy: HitPolicyFirst}

	lines := splitLines(criteria)
	if len(lines) == 0 {
		return table, nil
	}

	first := strings.ToLower(lines[0].text)
	switch first {
	case headerAll:
		row := Rule{Conditions: map[string]Condition{}, Output: Output{Result: true}}
		for _, ln := range lines[1:] {
			field, cond, err := parseComparison(ln)
			if err != nil {
				return nil, err
			}
			row.Conditions[field] = cond
		}
		if len(row.Conditions) == 0 {
			return nil, &CompileError{Line: lines[0].number, Text: lines[0].text, Message: "group header with no rules"}
		}
		table.Rules = append(table.Rules, row)

	case headerAny:
		if len(lines) == 1 {
			return nil, &CompileError{Line: lines[0].number, Text: lines[0].text, Message: "group header with no rules"}
		}
		for _, ln := range lines[1:] {
			field, cond, err := parseComparison(ln)
			if err != nil {
				return nil, err
			}
			table.Rules = append(table.Rules, Rule{
				Conditions: map[string]Condition{field: cond},
				Output:     Output{Result: true},
			})
		}

	default:
		if len(lines) > 1 {
			return nil, &CompileError{Line: lines[1].number, Text: lines[1].text, Message: "multiple lines without a group header"}
		}
		field, cond, err := parseComparison(lines[0])
		if err != nil {
			return nil, err
		}
		table.Rules = append(table.Rules, Rule{
			Conditions: map[string]Condition{field: cond},
			Output:     Output{Result: true},
		})
	}

	return table, nil
}

// line is a non-empty criteria line with its 1-based position.
type line struct {
	number int
	text   string
}

func splitLines(criteria string) []line {
	var out []line
	for i, raw := range strings.Split(criteria, "\n") {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		out = append(out, line{number: i + 1, text: text})
	}
	return out
}

// parseComparison parses one comparison line into a normalized field name
// and condition. Recognized forms, checked most-specific first:
//
//	<Field> is not set        -> field == null
//	<Field> is not <Value>    -> field != value
//	<Field> is <Value>        -> field == value
//	<Field> >= | <= | > | < <Number>
func parseComparison(ln line) (string, Condition, error) {
	text := ln.text

	// Relational operators. Two-character forms must be tried before their
	// one-character prefixes.
	for _, op := range []Operator{OpGreaterEqual, OpLessEqual, OpGreaterThan, OpLessThan} {
		idx := strings.Index(text, string(op))
		if idx < 0 {
			continue
		}
		fieldPart := strings.TrimSpace(text[:idx])
		valuePart := strings.TrimSpace(text[idx+len(op):])
		if fieldPart == "" {
			return "", Condition{}, &CompileError{Line: ln.number, Text: text, Message: "comparison has no field name"}
		}
		if !numberPattern.MatchString(valuePart) {
			return "", Condition{}, &CompileError{Line: ln.number, Text: text, Message: "numeric comparison requires a numeric value"}
		}
		num, err := strconv.ParseFloat(valuePart, 64)
		if err != nil {
			return "", Condition{}, &CompileError{Line: ln.number, Text: text, Message: "numeric comparison requires a numeric value"}
		}
		return loan.NormalizeFieldName(fieldPart), Condition{Operator: op, Value: loan.Number(num)}, nil
	}

	if field, ok := cutSuffixFold(text, " is not set"); ok {
		return loan.NormalizeFieldName(field), Condition{Operator: OpEqual, Value: loan.Null()}, nil
	}

	if field, value, ok := cutInfixFold(text, " is not "); ok {
		return loan.NormalizeFieldName(field), Condition{Operator: OpNotEqual, Value: normalizeLiteral(value)}, nil
	}

	if field, value, ok := cutInfixFold(text, " is "); ok {
		return loan.NormalizeFieldName(field), Condition{Operator: OpEqual, Value: normalizeLiteral(value)}, nil
	}

	return "", Condition{}, &CompileError{Line: ln.number, Text: text, Message: "unrecognized criteria line"}
}

// normalizeLiteral converts a right-hand-side literal: true/false become
// booleans, numeric strings become numbers, and everything else becomes an
// uppercase canonical token ("US Citizen" -> "US_CITIZEN").
func normalizeLiteral(raw string) loan.Value {
	switch strings.ToLower(raw) {
	case "true":
		return loan.Bool(true)
	case "false":
		return loan.Bool(false)
	}
	if numberPattern.MatchString(raw) {
		if num, err := strconv.ParseFloat(raw, 64); err == nil {
			return loan.Number(num)
		}
	}
	return loan.String(loan.CanonicalToken(raw))
}

// cutSuffixFold strips a case-insensitive suffix, returning the trimmed
// remainder and whether it matched.
func cutSuffixFold(s, suffix string) (string, bool) {
	if len(s) < len(suffix) {
		return "", false
	}
	head, tail := s[:len(s)-len(suffix)], s[len(s)-len(suffix):]
	if !strings.EqualFold(tail, suffix) {
		return "", false
	}
	head = strings.TrimSpace(head)
	if head == "" {
		return "", false
	}
	return head, true
}

// cutInfixFold splits on the first case-insensitive occurrence of sep,
// returning trimmed halves. Both halves must be non-empty.
func cutInfixFold(s, sep string) (string, string, bool) {
	idx := indexFold(s, sep)
	if idx < 0 {
		return "", "", false
	}
	left := strings.TrimSpace(s[:idx])
	right := strings.TrimSpace(s[idx+len(sep):])
	if left == "" || right == "" {
		return "", "", false
	}
	return left, right, true
}

func indexFold(s, sub string) int {
	lower := strings.ToLower(s)
	return strings.Index(lower, strings.ToLower(sub))
}
