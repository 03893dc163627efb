// Package rules holds compiled decision tables by rule id and evaluates
// them against context maps.
//
// The registry is write-once: the catalog installs every table during the
// warmup phase and the map is read-only afterwards. Installation errors are
// fatal to the caller; evaluation is fail-soft — an individual evaluation
// error degrades to false, is logged, and increments a counter, so one bad
// rule never takes down a request.
package rules
