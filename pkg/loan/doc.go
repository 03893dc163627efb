// Package loan defines the domain model for an in-progress loan
// application: the flattened field map, the borrower entity graph, and the
// per-proposal working set (LoanState) that the evaluator reads and the
// state cache owns.
//
// Loan field values are heterogeneous (string, number, boolean, null). They
// are carried through the core as a tagged Value variant rather than a raw
// interface{}; JSON and msgpack codecs live at the boundary of this package.
package loan
