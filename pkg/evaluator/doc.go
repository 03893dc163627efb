// Package evaluator expands every candidate question across the relevant
// entity population and evaluates the compiled rules under a local latency
// budget.
//
// The budget is independent of the transport deadline: even a caller with a
// generous deadline gets a bounded-latency response. Budget checks run
// between entity levels and inside the expansion loop, so a pathological
// fan-out cannot pin a request; partial results are valid and counted.
package evaluator
