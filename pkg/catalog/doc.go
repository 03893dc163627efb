// Package catalog loads the section and question descriptors that drive the
// conversation, compiles each question's criteria into the rules engine, and
// serves O(1) lookups on the hot path.
//
// The catalog is read once from a filesystem tree during warmup:
//
//	<root>/sections/*.yaml        one section per file
//	<root>/questions/**/*.yaml    one question per file, any nesting
//
// Any error — missing required field, duplicate id or sequence, a criteria
// string that fails to compile — aborts startup with the offending file path
// in the message. Partial startup is forbidden; after a successful load the
// registry is immutable and freely shared.
package catalog
