package logging

import (
	"log/slog"
	"strings"
)

// defaultRedactKeys are always masked regardless of configuration. Loan
// traffic carries borrower identifiers that must never reach log storage.
var defaultRedactKeys = []string{
	"ssn",
	"social_security",
	"date_of_birth",
	"password",
	"api_key",
}

// Redacted replaces masked values in log output.
const Redacted = "[REDACTED]"

// Redactor masks attribute values whose keys contain a sensitive
// substring. Matching is case-insensitive and applies at every group
// depth.
type Redactor struct {
	keys []string
}

// NewRedactor combines the default key set with configured extras.
func NewRedactor(extra []string) *Redactor {
	keys := make([]string, 0, len(defaultRedactKeys)+len(extra))
	for _, k := range defaultRedactKeys {
		keys = append(keys, strings.ToLower(k))
	}
	for _, k := range extra {
		if k != "" {
			keys = append(keys, strings.ToLower(k))
		}
	}
	return &Redactor{keys: keys}
}

// ReplaceAttr is installed as the slog handler's attribute hook.
func (r *Redactor) ReplaceAttr(groups []string, a slog.Attr) slog.Attr {
	if r.matches(a.Key) {
		a.Value = slog.StringValue(Redacted)
	}
	return a
}

func (r *Redactor) matches(key string) bool {
	lower := strings.ToLower(key)
	for _, k := range r.keys {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
