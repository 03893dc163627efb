// Meridian is a low-latency question-evaluation engine for a conversational
// mortgage-origination agent.
//
// Given an in-progress loan application, it returns the ordered list of
// questions that currently apply, with per-section progress and hints about
// which questions may be asked together. Submitted answers update the
// cached application state, are enqueued for durable write-back, and the
// question queue is recomputed in the same request.
//
// Usage:
//
//	# Start the engine with default configuration
//	meridian run
//
//	# Start with a custom configuration file
//	meridian run --config /etc/meridian/config.yaml
//
//	# Load and compile the question catalog without serving
//	meridian validate --catalog ./catalog
//
//	# Show version information
//	meridian version
package main

func main() {
	Execute()
}
