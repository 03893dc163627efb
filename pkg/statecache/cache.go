package statecache

import (
	"context"
	"log/slog"
	"time"

	"originate-hq/meridian/pkg/loan"
)

// DefaultTTL is the shared expiry of the four split keys.
const DefaultTTL = time.Hour

// Loader is the read-through source on a cache miss.
type Loader interface {
	Load(ctx context.Context, proposalPid string) (*loan.LoanState, error)
}

// Metrics receives cache events; the telemetry collector implements it.
type Metrics interface {
	RecordStateCacheHit()
	RecordStateCacheMiss()
	RecordStateCacheFallthrough()
}

type nopMetrics struct{}

func (nopMetrics) RecordStateCacheHit()         {}
func (nopMetrics) RecordStateCacheMiss()        {}
func (nopMetrics) RecordStateCacheFallthrough() {}

// Cache is the two-tier read-through state cache.
type Cache struct {
	kv      KV
	loader  Loader
	ttl     time.Duration
	logger  *slog.Logger
	metrics Metrics
}

// Options configures a Cache.
type Options struct {
	TTL     time.Duration // defaults to DefaultTTL
	Logger  *slog.Logger
	Metrics Metrics
}

// New creates a Cache over the remote store and loader.
func New(kv KV, ldr Loader, opts Options) *Cache {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Cache{kv: kv, loader: ldr, ttl: ttl, logger: logger, metrics: metrics}
}

// Get returns the proposal's LoanState, reading through to the loader on a
// miss or an incomplete entry and writing the loaded state back. A cache
// outage degrades to a direct load.
func (c *Cache) Get(ctx context.Context, pid string) (*loan.LoanState, error) {
	keys := KeysFor(pid)

	snap, err := c.kv.ReadState(ctx, keys)
	if err != nil {
		c.metrics.RecordStateCacheFallthrough()
		c.logger.Warn("state cache unavailable, falling through to loader",
			"proposal_pid", pid,
			"error", err,
		)
		return c.loadAndFill(ctx, pid, keys, false)
	}

	if !snap.Complete() {
		c.metrics.RecordStateCacheMiss()
		return c.loadAndFill(ctx, pid, keys, true)
	}

	state, err := decodeState(pid, snap)
	if err != nil {
		// A corrupt entry is treated as a miss; the rewrite heals it.
		c.metrics.RecordStateCacheMiss()
		c.logger.Warn("state cache entry undecodable, reloading",
			"proposal_pid", pid,
			"error", err,
		)
		return c.loadAndFill(ctx, pid, keys, true)
	}

	c.metrics.RecordStateCacheHit()
	return state, nil
}

// Update merges a field delta, records an answered question, bumps the
// version, and rewrites the four keys atomically. It returns the updated
// state. A failed rewrite is logged and counted but does not fail the
// caller; the state remains authoritative for this response.
func (c *Cache) Update(ctx context.Context, pid string, delta loan.Fields, answeredQuestionID string) (*loan.LoanState, error) {
	state, err := c.Get(ctx, pid)
	if err != nil {
		return nil, err
	}

	for field, value := range delta {
		state.Fields[field] = value
	}
	if answeredQuestionID != "" {
		state.Answered[answeredQuestionID] = struct{}{}
	}
	state.Version = nextVersion(state.Version)

	if err := c.writeBack(ctx, pid, state); err != nil {
		c.metrics.RecordStateCacheFallthrough()
		c.logger.Warn("state cache rewrite failed after update",
			"proposal_pid", pid,
			"version", state.Version,
			"error", err,
		)
	}
	return state, nil
}

// Invalidate removes the proposal's split keys.
func (c *Cache) Invalidate(ctx context.Context, pid string) error {
	return c.kv.DeleteState(ctx, KeysFor(pid))
}

// IsCached reports whether the proposal is present, using the :fields key
// as the presence witness.
func (c *Cache) IsCached(ctx context.Context, pid string) (bool, error) {
	return c.kv.Exists(ctx, KeysFor(pid).Fields)
}

// Ping probes the remote store for readiness checks.
func (c *Cache) Ping(ctx context.Context) error {
	return c.kv.Ping(ctx)
}

func (c *Cache) loadAndFill(ctx context.Context, pid string, keys StateKeys, fill bool) (*loan.LoanState, error) {
	state, err := c.loader.Load(ctx, pid)
	if err != nil {
		return nil, err
	}
	if fill {
		if err := c.writeBack(ctx, pid, state); err != nil {
			c.logger.Warn("state cache fill failed",
				"proposal_pid", pid,
				"error", err,
			)
		}
	}
	return state, nil
}

func (c *Cache) writeBack(ctx context.Context, pid string, state *loan.LoanState) error {
	fields, err := loan.EncodeFields(state.Fields)
	if err != nil {
		return err
	}
	entities, err := loan.EncodeEntities(&state.Entities)
	if err != nil {
		return err
	}
	meta, err := loan.EncodeMeta(state.Version, state.LoadedAt)
	if err != nil {
		return err
	}
	return c.kv.WriteState(ctx, KeysFor(pid), StateWrite{
		Fields:   fields,
		Entities: entities,
		Meta:     meta,
		Answered: state.AnsweredList(),
		TTL:      c.ttl,
	})
}

func decodeState(pid string, snap *StateSnapshot) (*loan.LoanState, error) {
	fields, err := loan.DecodeFields(snap.Fields)
	if err != nil {
		return nil, err
	}
	entities, err := loan.DecodeEntities(snap.Entities)
	if err != nil {
		return nil, err
	}
	version, loadedAt, err := loan.DecodeMeta(snap.Meta)
	if err != nil {
		return nil, err
	}
	return &loan.LoanState{
		ProposalPid: pid,
		Version:     version,
		LoadedAt:    loadedAt,
		Fields:      fields,
		Entities:    *entities,
		Answered:    loan.AnsweredSet(snap.Answered),
	}, nil
}

// nextVersion produces a strictly increasing version from a wall-clock
// source so versions are comparable across processes by magnitude.
func nextVersion(current int64) int64 {
	v := time.Now().UnixNano()
	if v <= current {
		v = current + 1
	}
	return v
}
