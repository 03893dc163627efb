package record

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the development and test backend over a local database
// file (or :memory:).
type SQLiteStore struct {
	db  *sql.DB
	cfg Config
}

// NewSQLiteStore opens the database and ensures the schema exists.
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
	if cfg.SQLitePath == "" {
		return nil, fmt.Errorf("sqlite backend requires a path")
	}

	db, err := sql.Open("sqlite", cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
	}
	// A single writer connection sidesteps table-lock contention; the
	// engine only reads here anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db, cfg: cfg}, nil
}

// DB exposes the handle for test fixtures.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

// GetProposal implements Store.
func (s *SQLiteStore) GetProposal(ctx context.Context, pid string) (*Proposal, error) {
	ctx, cancel := queryContext(ctx, s.cfg.QueryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT * FROM proposals WHERE pid = ?`, pid)
	if err != nil {
		return nil, fmt.Errorf("query proposal %s: %w", pid, err)
	}
	defer rows.Close()

	records, err := scanGeneric(rows)
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
func (s *SQLiteStore) ListBorrowers(ctx context.Context, dealPid string) ([]Entity, error) {
	return s.listEntities(ctx, `SELECT * FROM borrowers WHERE deal_pid = ? ORDER BY pid`, dealPid)
}

// ListJobs implements Store.
func (s *SQLiteStore) ListJobs(ctx context.Context, borrowerPids []string) ([]Entity, error) {
	return s.listChildren(ctx, "jobs", borrowerPids)
}

// ListAssets implements Store.
func (s *SQLiteStore) ListAssets(ctx context.Context, borrowerPids []string) ([]Entity, error) {
	return s.listChildren(ctx, "assets", borrowerPids)
}

// ListLiabilities implements Store.
func (s *SQLiteStore) ListLiabilities(ctx context.Context, borrowerPids []string) ([]Entity, error) {
	return s.listChildren(ctx, "liabilities", borrowerPids)
}

// ListRealEstateOwned implements Store.
func (s *SQLiteStore) ListRealEstateOwned(ctx context.Context, borrowerPids []string) ([]Entity, error) {
	return s.listChildren(ctx, "real_estate_owned", borrowerPids)
}

// GetProperty implements Store.
func (s *SQLiteStore) GetProperty(ctx context.Context, dealPid string) (map[string]any, error) {
	ctx, cancel := queryContext(ctx, s.cfg.QueryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT * FROM properties WHERE deal_pid = ?`, dealPid)
	if err != nil {
		return nil, fmt.Errorf("query property for deal %s: %w", dealPid, err)
	}
	defer rows.Close()

	records, err := scanGeneric(rows)
	if err != nil {
		return nil, fmt.Errorf("scan property for deal %s: %w", dealPid, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// ListAnsweredQuestions implements Store.
func (s *SQLiteStore) ListAnsweredQuestions(ctx context.Context, dealPid string) ([]string, error) {
	ctx, cancel := queryContext(ctx, s.cfg.QueryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT question_id FROM answered_questions WHERE deal_pid = ?`, dealPid)
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
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) listEntities(ctx context.Context, query string, args ...any) ([]Entity, error) {
	ctx, cancel := queryContext(ctx, s.cfg.QueryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entities: %w", err)
	}
	defer rows.Close()

	records, err := scanGeneric(rows)
	if err != nil {
		return nil, fmt.Errorf("scan entities: %w", err)
	}
	return toEntities(records), nil
}

func (s *SQLiteStore) listChildren(ctx context.Context, table string, borrowerPids []string) ([]Entity, error) {
	if len(borrowerPids) == 0 {
		return []Entity{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(borrowerPids)), ",")
	query := fmt.Sprintf(`SELECT * FROM %s WHERE borrower_pid IN (%s) ORDER BY pid`, table, placeholders)
	args := make([]any, len(borrowerPids))
	for i, pid := range borrowerPids {
		args[i] = pid
	}
	return s.listEntities(ctx, query, args...)
}

// scanGeneric reads every row into a column-name-keyed map, normalizing
// []byte payloads to strings.
func scanGeneric(rows *sql.Rows) ([]map[string]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		record := make(map[string]any, len(columns))
		for i, name := range columns {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			record[name] = v
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

func toEntities(records []map[string]any) []Entity {
	out := make([]Entity, 0, len(records))
	for _, r := range records {
		out = append(out, Entity{
			Pid:         stringColumn(r, "pid"),
			BorrowerPid: stringColumn(r, "borrower_pid"),
			Columns:     r,
		})
	}
	return out
}

func stringColumn(record map[string]any, name string) string {
	switch v := record[name].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
