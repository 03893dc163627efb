package record

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrProposalNotFound is returned by GetProposal for an unknown pid.
var ErrProposalNotFound = errors.New("proposal not found")

// Proposal is the root row of a loan application.
type Proposal struct {
	Pid     string
	DealPid string

	// Columns holds every column of the row keyed by column name, including
	// pid and deal_pid. The loader flattens these into LoanState fields.
	Columns map[string]any
}

// Entity is one row of a child collection (borrower, job, asset, liability,
// owned property).
type Entity struct {
	Pid string

	// BorrowerPid is the owning borrower for borrower-scoped children;
	// empty for borrowers themselves.
	BorrowerPid string

	Columns map[string]any
}

// Store is the read surface of the system of record. Every call honors the
// context deadline; implementations additionally bound each query with the
// configured per-query timeout.
type Store interface {
	// GetProposal fetches the proposal row. Returns ErrProposalNotFound
	// (possibly wrapped) when the pid is unknown.
	GetProposal(ctx context.Context, pid string) (*Proposal, error)

	// ListBorrowers fetches the borrowers of a deal.
	ListBorrowers(ctx context.Context, dealPid string) ([]Entity, error)

	// ListJobs, ListAssets, ListLiabilities and ListRealEstateOwned fetch
	// the child collections for a set of borrower pids. An empty pid set or
	// an empty collection returns an empty slice, never an error.
	ListJobs(ctx context.Context, borrowerPids []string) ([]Entity, error)
	ListAssets(ctx context.Context, borrowerPids []string) ([]Entity, error)
	ListLiabilities(ctx context.Context, borrowerPids []string) ([]Entity, error)
	ListRealEstateOwned(ctx context.Context, borrowerPids []string) ([]Entity, error)

	// GetProperty fetches the subject property row for a deal, or nil when
	// the deal has none yet.
	GetProperty(ctx context.Context, dealPid string) (map[string]any, error)

	// ListAnsweredQuestions fetches the distinct answered question ids for
	// a deal.
	ListAnsweredQuestions(ctx context.Context, dealPid string) ([]string, error)

	// Ping verifies connectivity; used by readiness checks.
	Ping(ctx context.Context) error

	// Close releases the connection pool.
	Close() error
}

// Config selects and configures a Store backend.
type Config struct {
	// Backend is "postgres" or "sqlite".
	Backend string

	// Postgres connection settings.
	Host     string
	Port     int
	User     string
	Password string
	Database string
	PoolSize int

	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string

	// QueryTimeout bounds each individual query. Default 5ms on the hot
	// read path per the latency budget; raise it for development backends.
	QueryTimeout time.Duration
}

// Open constructs the configured backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "postgres":
		return NewPostgresStore(ctx, cfg)
	case "sqlite":
		return NewSQLiteStore(cfg)
	default:
		return nil, fmt.Errorf("unknown record backend %q", cfg.Backend)
	}
}

// queryContext applies the per-query timeout when one is configured.
func queryContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
