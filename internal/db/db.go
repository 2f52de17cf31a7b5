package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/lox/bank-combination-finder/internal/types"
)

// timeLayout is fixed width so created_at sorts as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DB represents a SQLite database connection holding search history
type DB struct {
	db     *sql.DB
	logger *log.Logger
}

// Run is a stored search together with where its amounts came from
type Run struct {
	ID        string
	CreatedAt time.Time
	Source    string
	Result    *types.Result
}

// RunSummary is a run without its matches
type RunSummary struct {
	ID         string
	CreatedAt  time.Time
	Source     string
	Target     types.Target
	Status     types.Status
	Matches    int
	Candidates int
	Explored   int64
	Elapsed    time.Duration
}

// New creates a new database connection
func New(dataDir string, logger *log.Logger) (*DB, error) {
	// Create data directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %v", err)
	}

	// Pragmas go in the DSN so every pooled connection gets them
	dbPath := filepath.Join(dataDir, "combinations.db")
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	d := &DB{
		db:     db,
		logger: logger,
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	if err := ApplyMigrations(context.Background(), db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %v", err)
	}

	return d, nil
}

// createTables creates the necessary tables in the database
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			source TEXT NOT NULL,
			target INTEGER NOT NULL,
			tolerance INTEGER NOT NULL,
			max_combination_size INTEGER NOT NULL,
			max_matches INTEGER NOT NULL,
			time_budget_ns INTEGER NOT NULL,
			negated INTEGER NOT NULL,
			status TEXT NOT NULL,
			candidates INTEGER NOT NULL,
			explored INTEGER NOT NULL,
			elapsed_ns INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS matches (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			match_index INTEGER NOT NULL,
			target INTEGER NOT NULL,
			negated INTEGER NOT NULL,
			total INTEGER NOT NULL,
			PRIMARY KEY (run_id, match_index)
		);

		CREATE TABLE IF NOT EXISTS match_items (
			run_id TEXT NOT NULL,
			match_index INTEGER NOT NULL,
			position INTEGER NOT NULL,
			origin_id TEXT NOT NULL,
			label TEXT NOT NULL,
			value INTEGER NOT NULL,
			PRIMARY KEY (run_id, match_index, position),
			FOREIGN KEY (run_id, match_index) REFERENCES matches(run_id, match_index) ON DELETE CASCADE
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create run tables: %v", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source)",
	}

	for _, index := range indexes {
		if _, err := db.Exec(index); err != nil {
			return fmt.Errorf("failed to create index: %v", err)
		}
	}

	return nil
}

// SaveRun stores a search result and returns the new run id. Writes that hit
// a locked database are retried.
func (d *DB) SaveRun(ctx context.Context, source string, result *types.Result) (string, error) {
	run := Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Source:    source,
		Result:    result,
	}

	err := retry.Do(
		func() error {
			return d.saveRun(ctx, run)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(100*time.Millisecond),
		retry.RetryIf(isBusy),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			d.logger.Warn("Retrying run store", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return "", fmt.Errorf("failed to store run: %w", err)
	}

	d.logger.Debug("Run stored", "id", run.ID, "matches", len(result.Matches))
	return run.ID, nil
}

func (d *DB) saveRun(ctx context.Context, run Run) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	r := run.Result
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			id, created_at, source, target, tolerance,
			max_combination_size, max_matches, time_budget_ns, negated,
			status, candidates, explored, elapsed_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID, run.CreatedAt.Format(timeLayout), run.Source, r.Target.Value, r.Target.Tolerance,
		r.Config.MaxCombinationSize, r.Config.MaxMatches, int64(r.Config.TimeBudget), r.Config.SearchNegatedTarget,
		string(r.Status), r.Candidates, r.Explored, int64(r.Elapsed),
	)
	if err != nil {
		return err
	}

	for i, m := range r.Matches {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO matches (run_id, match_index, target, negated, total) VALUES (?, ?, ?, ?, ?)
		`, run.ID, i, m.Target, m.Negated, m.Total)
		if err != nil {
			return err
		}
		for pos, item := range m.Items {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO match_items (run_id, match_index, position, origin_id, label, value) VALUES (?, ?, ?, ?, ?, ?)
			`, run.ID, i, pos, item.OriginID, item.Label, item.Value)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func isBusy(err error) bool {
	return errors.Is(err, sqlite3.BUSY) || errors.Is(err, sqlite3.LOCKED)
}

const runColumns = `
	r.id, r.created_at, r.source, r.target, r.tolerance,
	r.max_combination_size, r.max_matches, r.time_budget_ns, r.negated,
	r.status, r.candidates, r.explored, r.elapsed_ns,
	(SELECT COUNT(*) FROM matches m WHERE m.run_id = r.id)
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunSummary, types.SearchConfig, error) {
	var s RunSummary
	var cfg types.SearchConfig
	var createdAt, status string
	var budget, elapsed int64

	err := row.Scan(
		&s.ID, &createdAt, &s.Source, &s.Target.Value, &s.Target.Tolerance,
		&cfg.MaxCombinationSize, &cfg.MaxMatches, &budget, &cfg.SearchNegatedTarget,
		&status, &s.Candidates, &s.Explored, &elapsed,
		&s.Matches,
	)
	if err != nil {
		return RunSummary{}, types.SearchConfig{}, err
	}

	s.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return RunSummary{}, types.SearchConfig{}, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	s.Status = types.Status(status)
	s.Elapsed = time.Duration(elapsed)
	cfg.TimeBudget = time.Duration(budget)

	return s, cfg, nil
}

// ListRuns returns the most recent runs first, up to limit (0 = all)
func (d *DB) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `SELECT ` + runColumns + ` FROM runs r ORDER BY r.created_at DESC, r.rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		s, _, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// GetRun returns a stored run with its matches, or nil if it doesn't exist
func (d *DB) GetRun(ctx context.Context, id string) (*Run, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs r WHERE r.id = ?`, id)
	s, cfg, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %v", err)
	}

	result := &types.Result{
		Target:     s.Target,
		Config:     cfg,
		Status:     s.Status,
		Candidates: s.Candidates,
		Explored:   s.Explored,
		Elapsed:    s.Elapsed,
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT m.match_index, m.target, m.negated, m.total, i.origin_id, i.label, i.value
		FROM matches m
		JOIN match_items i ON i.run_id = m.run_id AND i.match_index = m.match_index
		WHERE m.run_id = ?
		ORDER BY m.match_index, i.position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	current := -1
	for rows.Next() {
		var idx int
		var m types.Match
		var item types.Amount
		if err := rows.Scan(&idx, &m.Target, &m.Negated, &m.Total, &item.OriginID, &item.Label, &item.Value); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		if idx != current {
			result.Matches = append(result.Matches, m)
			current = idx
		}
		last := &result.Matches[len(result.Matches)-1]
		last.Items = append(last.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}

	return &Run{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Source:    s.Source,
		Result:    result,
	}, nil
}

// RunsForOrigin returns the ids of runs with a match that uses originID,
// most recent first
func (d *DB) RunsForOrigin(ctx context.Context, originID string) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT DISTINCT r.id, r.created_at
		FROM match_items i
		JOIN runs r ON r.id = i.run_id
		WHERE i.origin_id = ?
		ORDER BY r.created_at DESC
	`, originID)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs for origin: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id, createdAt string
		if err := rows.Scan(&id, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan run id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return ids, nil
}

// DeleteRun removes a run and its matches
func (d *DB) DeleteRun(ctx context.Context, id string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}

// CountRuns returns the number of stored runs
func (d *DB) CountRuns(ctx context.Context) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count runs: %v", err)
	}
	return count, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// DB returns the underlying database handle
func (d *DB) DB() *sql.DB {
	return d.db
}
