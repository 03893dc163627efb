package statecache

import (
	"context"
	"time"
)

// StateKeys are the four split keys for one proposal.
type StateKeys struct {
	Fields   string
	Entities string
	Answered string
	Meta     string
}

// KeysFor builds the key schema for a proposal pid.
func KeysFor(pid string) StateKeys {
	prefix := "loan:" + pid
	return StateKeys{
		Fields:   prefix + ":fields",
		Entities: prefix + ":entities",
		Answered: prefix + ":answered",
		Meta:     prefix + ":meta",
	}
}

// StateSnapshot is one coherent read of the split keys. A nil byte slice
// means the key was absent.
type StateSnapshot struct {
	Fields   []byte
	Entities []byte
	Meta     []byte
	Answered []string
}

// Complete reports whether the binary keys were all present. The answered
// set is allowed to be empty.
func (s *StateSnapshot) Complete() bool {
	return s != nil && s.Fields != nil && s.Entities != nil && s.Meta != nil
}

// StateWrite is the payload of one atomic state rewrite.
type StateWrite struct {
	Fields   []byte
	Entities []byte
	Meta     []byte
	Answered []string
	TTL      time.Duration
}

// KV is the narrow remote-store surface the cache needs. The production
// implementation is redis; tests substitute an in-memory fake.
type KV interface {
	// ReadState fetches all four keys concurrently in one round trip.
	ReadState(ctx context.Context, keys StateKeys) (*StateSnapshot, error)

	// WriteState rewrites all four keys atomically: set the three binary
	// keys with TTL, delete the answered set, and re-create it (with TTL)
	// when non-empty. Readers see either the old or the new version.
	WriteState(ctx context.Context, keys StateKeys, w StateWrite) error

	// DeleteState removes all four keys.
	DeleteState(ctx context.Context, keys StateKeys) error

	// Exists reports whether a single key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// Ping verifies connectivity; readiness checks give it a
	// sub-millisecond budget.
	Ping(ctx context.Context) error

	// Close releases the client.
	Close() error
}
