package record

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is the deployment backend over a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewPostgresStore connects the pool and verifies connectivity.
func NewPostgresStore(ctx context.Context, cfg Config) (*PostgresStore, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s pool_max_conns=%d",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.PoolSize)

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool, cfg: cfg}, nil
}

// GetProposal implements Store.
func (s *PostgresStore) GetProposal(ctx context.Context, pid string) (*Proposal, error) {
	ctx, cancel := queryContext(ctx, s.cfg.QueryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `SELECT * FROM proposals WHERE pid = $1`, pid)
	if err != nil {
		return nil, fmt.Errorf("query proposal %s: %w", pid, err)
	}

	records, err := scanPgxGeneric(rows)
	if err != nil {
		return nil, fmt.Errorf("scan proposal %s: %w", pid, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("proposal %s: %w", pid, ErrProposalNotFound)
	}

	columns := records[0]
	return &Proposal{
		Pid:     stringColumn(columns, "pid"),
		DealPid: stringColumn(columns, "deal_pid"),
		Columns: columns,
	}, nil
}

// ListBorrowers implements Store.
func (s *PostgresStore) ListBorrowers(ctx context.Context, dealPid string) ([]Entity, error) {
	return s.listEntities(ctx, `SELECT * FROM borrowers WHERE deal_pid = $1 ORDER BY pid`, dealPid)
}

// ListJobs implements Store.
func (s *PostgresStore) ListJobs(ctx context.Context, borrowerPids []string) ([]Entity, error) {
	return s.listChildren(ctx, "jobs", borrowerPids)
}

// ListAssets implements Store.
func (s *PostgresStore) ListAssets(ctx context.Context, borrowerPids []string) ([]Entity, error) {
	return s.listChildren(ctx, "assets", borrowerPids)
}

// ListLiabilities implements Store.
func (s *PostgresStore) ListLiabilities(ctx context.Context, borrowerPids []string) ([]Entity, error) {
	return s.listChildren(ctx, "liabilities", borrowerPids)
}

// ListRealEstateOwned implements Store.
func (s *PostgresStore) ListRealEstateOwned(ctx context.Context, borrowerPids []string) ([]Entity, error) {
	return s.listChildren(ctx, "real_estate_owned", borrowerPids)
}

// GetProperty implements Store.
func (s *PostgresStore) GetProperty(ctx context.Context, dealPid string) (map[string]any, error) {
	ctx, cancel := queryContext(ctx, s.cfg.QueryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `SELECT * FROM properties WHERE deal_pid = $1`, dealPid)
	if err != nil {
		return nil, fmt.Errorf("query property for deal %s: %w", dealPid, err)
	}

	records, err := scanPgxGeneric(rows)
	if err != nil {
		return nil, fmt.Errorf("scan property for deal %s: %w", dealPid, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// ListAnsweredQuestions implements Store.
func (s *PostgresStore) ListAnsweredQuestions(ctx context.Context, dealPid string) ([]string, error) {
	ctx, cancel := queryContext(ctx, s.cfg.QueryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `SELECT DISTINCT question_id FROM answered_questions WHERE deal_pid = $1`, dealPid)
	if err != nil {
		return nil, fmt.Errorf("query answered questions for deal %s: %w", dealPid, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan answered question: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Ping implements Store.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) listEntities(ctx context.Context, query string, args ...any) ([]Entity, error) {
	ctx, cancel := queryContext(ctx, s.cfg.QueryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entities: %w", err)
	}

	records, err := scanPgxGeneric(rows)
	if err != nil {
		return nil, fmt.Errorf("scan entities: %w", err)
	}
	return toEntities(records), nil
}

func (s *PostgresStore) listChildren(ctx context.Context, table string, borrowerPids []string) ([]Entity, error) {
	if len(borrowerPids) == 0 {
		return []Entity{}, nil
	}
	query := fmt.Sprintf(`SELECT * FROM %s WHERE borrower_pid = ANY($1) ORDER BY pid`, table)
	return s.listEntities(ctx, query, borrowerPids)
}

// scanPgxGeneric reads every row into a column-name-keyed map. The rows are
// closed before returning.
func scanPgxGeneric(rows pgx.Rows) ([]map[string]any, error) {
	defer rows.Close()

	descs := rows.FieldDescriptions()
	var out []map[string]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		record := make(map[string]any, len(descs))
		for i, d := range descs {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			record[string(d.Name)] = v
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return out, nil
}
