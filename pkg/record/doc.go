// Package record is the client for the loan system of record. It exposes
// the narrow read surface the state loader needs — proposal row, borrower
// graph, property row, answered question ids — behind one Store interface
// with two backends: postgres for deployment and sqlite for development and
// tests.
//
// The engine never writes here; answer mutations flow through the state
// cache and the durable outbox, and an external consumer owns persistence.
package record
