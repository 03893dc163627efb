package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"originate-hq/meridian/pkg/config"
)

// TestNew_RedactsSensitiveFields tests that borrower identifiers are
// masked before reaching the writer
func TestNew_RedactsSensitiveFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{
		Level:        "info",
		Format:       "json",
		RedactFields: []string{"visa_number"},
	}, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("answer received",
		"borrower_ssn", "123-45-6789",
		"visa_number", "A123456",
		"question_id", "Q100",
	)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log output not JSON: %v (%s)", err, buf.String())
	}
	if rec["borrower_ssn"] != Redacted {
		t.Errorf("borrower_ssn = %v, want redacted", rec["borrower_ssn"])
	}
	if rec["visa_number"] != Redacted {
		t.Errorf("visa_number = %v, want redacted (configured key)", rec["visa_number"])
	}
	if rec["question_id"] != "Q100" {
		t.Errorf("question_id = %v, want pass-through", rec["question_id"])
	}
	if strings.Contains(buf.String(), "123-45-6789") {
		t.Errorf("raw SSN reached the log writer")
	}
}

// TestNew_LevelFiltering tests minimum level enforcement
func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "warn", Format: "text"}, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record emitted at warn level")
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn record missing")
	}
}

// TestNew_Invalid tests rejection of unknown levels and formats
func TestNew_Invalid(t *testing.T) {
	if _, err := New(config.LoggingConfig{Level: "loud"}, nil); err == nil {
		t.Errorf("New(level=loud) error = nil")
	}
	if _, err := New(config.LoggingConfig{Level: "info", Format: "xml"}, nil); err == nil {
		t.Errorf("New(format=xml) error = nil")
	}
}
