// Package statecache is the coherence layer between the question evaluator
// and the system of record. Each proposal's LoanState is stored in the
// remote cache under four split keys:
//
//	loan:<pid>:fields    msgpack map of flattened loan fields
//	loan:<pid>:entities  msgpack object with the five entity lists
//	loan:<pid>:answered  native set of answered question ids
//	loan:<pid>:meta      msgpack {version, loadedAt}
//
// All four share a one-hour TTL and are rewritten together in a single
// pipelined transaction, so readers observe either the old or the new
// version, never a mix. The :fields key is the cache-presence witness; if
// any of fields/entities/meta is missing the entry is incomplete and a full
// reload through the loader is triggered (the answered set may legitimately
// be empty).
//
// A cache outage is survivable: reads fall through to the loader with a
// logged warning and a counter, and the request proceeds.
package statecache
