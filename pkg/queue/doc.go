// Package queue assembles the ordered question queue returned to the
// conversational agent and handles answer submissions.
//
// The builder sorts the evaluator's items into conversation order, computes
// per-section progress, and identifies runs of questions that may be asked
// in one turn. The answer handler maps an answer onto loan fields, updates
// the state cache, enqueues a durable write record, and re-runs the
// pipeline so the agent always receives a queue consistent with the answer
// it just gave.
package queue
