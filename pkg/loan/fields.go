package loan

import (
	"strings"
	"unicode"
)

// Fields is a flattened map of loan attributes keyed by lower-camel name,
// as produced by the state loader ("loanType", "property_zipCode").
type Fields map[string]Value

// Clone returns a shallow copy (Values are immutable).
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// NormalizeFieldName canonicalizes a field name so that criteria authored
// against human-readable names join against loader-produced keys:
// lowercase, camel boundaries and whitespace and hyphens become single
// underscores. "Citizenship Type", "citizenshipType" and "citizenship_type"
// all normalize to "citizenship_type".
//
// The function is idempotent: NormalizeFieldName(NormalizeFieldName(s)) ==
// NormalizeFieldName(s).
func NormalizeFieldName(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)

	prevUnderscore := true // suppress a leading underscore
	prevLowerOrDigit := false
	for _, r := range name {
		switch {
		case r == ' ' || r == '\t' || r == '-' || r == '_':
			if !prevUnderscore {
				b.WriteByte('_')
				prevUnderscore = true
			}
			prevLowerOrDigit = false
		case unicode.IsUpper(r):
			if prevLowerOrDigit && !prevUnderscore {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevUnderscore = false
			prevLowerOrDigit = false
		default:
			b.WriteRune(unicode.ToLower(r))
			prevUnderscore = false
			prevLowerOrDigit = unicode.IsLower(r) || unicode.IsDigit(r)
		}
	}

	return strings.TrimSuffix(b.String(), "_")
}

// CanonicalToken canonicalizes an enumerated string value the way the
// criteria compiler does: uppercase, whitespace and hyphens become single
// underscores ("US Citizen" -> "US_CITIZEN"). Idempotent.
func CanonicalToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	prevUnderscore := true
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '-' || r == '_' {
			if !prevUnderscore {
				b.WriteByte('_')
				prevUnderscore = true
			}
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
		prevUnderscore = false
	}

	return strings.TrimSuffix(b.String(), "_")
}

// LowerCamel converts a system-of-record column name ("loan_type",
// "LoanType") to the lower-camel form used as a Fields key ("loanType").
func LowerCamel(column string) string {
	parts := strings.FieldsFunc(column, func(r rune) bool {
		return r == '_' || r == ' ' || r == '-'
	})
	if len(parts) == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(len(column))
	for i, p := range parts {
		if i == 0 {
			b.WriteString(strings.ToLower(p[:1]))
			b.WriteString(p[1:])
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
