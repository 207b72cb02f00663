// Package history keeps a SQLite record of runs and their scenario results.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/stripcheck/packages/core/runner"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  TIMESTAMP NOT NULL,
	duration_ms INTEGER NOT NULL,
	base_url    TEXT NOT NULL DEFAULT '',
	total       INTEGER NOT NULL,
	passed      INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	skipped     INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS scenario_results (
	run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	scenario_id TEXT NOT NULL,
	title       TEXT NOT NULL,
	status      TEXT NOT NULL,
	note        TEXT NOT NULL DEFAULT '',
	refs        TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL,
	PRIMARY KEY (run_id, position)
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// ErrNoRuns is returned by LastRun when nothing has been recorded yet
var ErrNoRuns = errors.New("no runs recorded")

// Run is one recorded run
type Run struct {
	ID       string
	Started  time.Time
	Duration time.Duration
	BaseURL  string
	Total    int
	Passed   int
	Failed   int
	Skipped  int
}

// Succeeded reports whether every executed scenario passed
func (r *Run) Succeeded() bool {
	return r.Failed == 0
}

// ScenarioRecord is one recorded scenario result
type ScenarioRecord struct {
	ID       string
	Title    string
	Status   string
	Note     string
	Refs     []string
	Duration time.Duration
}

// Store is a run history database
type Store struct {
	db           *sql.DB
	path         string
	queryTimeout time.Duration
}

// Open opens (creating if needed) the history database at path. The path may
// carry a sqlite:// or sqlite: prefix.
func Open(ctx context.Context, path string) (*Store, error) {
	path = parsePath(path)
	if path == "" {
		return nil, errors.New("history database path is empty")
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps :memory: databases coherent
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}

	return &Store{
		db:           db,
		path:         path,
		queryTimeout: 30 * time.Second,
	}, nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record stores a run and all its scenario results in one transaction
func (s *Store) Record(ctx context.Context, result *runner.RunResult, baseURL string) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, duration_ms, base_url, total, passed, failed, skipped)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID, result.Started.UTC(), result.Duration.Milliseconds(), baseURL,
		len(result.Results), result.Passed, result.Failed, result.Skipped,
	); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	for i, r := range result.Results {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO scenario_results (run_id, position, scenario_id, title, status, note, refs, duration_ms)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			result.RunID, i, r.ID, r.Title, r.Status, r.Note, strings.Join(r.Refs, "\n"), r.Duration.Milliseconds(),
		); err != nil {
			return fmt.Errorf("failed to record %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// LastRun returns the most recently started run
func (s *Store) LastRun(ctx context.Context) (*Run, error) {
	runs, err := s.Recent(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrNoRuns
	}
	return runs[0], nil
}

// Recent returns up to limit runs, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]*Run, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, duration_ms, base_url, total, passed, failed, skipped
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var r Run
		var durationMs int64
		if err := rows.Scan(&r.ID, &r.Started, &durationMs, &r.BaseURL, &r.Total, &r.Passed, &r.Failed, &r.Skipped); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return runs, nil
}

// Scenarios returns the scenario results of a run in execution order
func (s *Store) Scenarios(ctx context.Context, runID string) ([]*ScenarioRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT scenario_id, title, status, note, refs, duration_ms
		 FROM scenario_results WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var out []*ScenarioRecord
	for rows.Next() {
		var rec ScenarioRecord
		var refs string
		var durationMs int64
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Status, &rec.Note, &refs, &durationMs); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if refs != "" {
			rec.Refs = strings.Split(refs, "\n")
		}
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		out = append(out, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

// parsePath accepts a bare file path or a sqlite:// / sqlite: connection string
func parsePath(p string) string {
	p = strings.TrimSpace(p)
	if strings.HasPrefix(p, "sqlite://") {
		return strings.TrimPrefix(p, "sqlite://")
	}
	return strings.TrimPrefix(p, "sqlite:")
}
