// Package telemetry provides observability for meridian.
//
// # Components
//
//   - logging: structured slog logging with loan-field redaction
//   - metrics: Prometheus metrics collection
//   - health: liveness/readiness checks with periodic dependency probes
//
// Borrower data is sensitive: log records pass through a redactor that
// masks configured field keys (ssn, date_of_birth, ...) before they reach
// any handler, so raw identifiers never land in log storage.
package telemetry
