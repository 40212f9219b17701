// Package history keeps a local record of past verification runs in
// SQLite. Recording is best-effort: history failures never change a
// pipeline's outcome.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// StageRecord is one executed stage of a recorded run.
type StageRecord struct {
	Name       string
	Passed     bool
	ExitCode   int
	DurationMS int64
}

// Record is one verification run.
type Record struct {
	ID         string
	StartedAt  time.Time
	Toolchain  string // "" for the ambient default
	Features   string // space-joined feature flags as passed to cargo
	Commit     string // project HEAD hash, "" when not a git checkout
	Passed     bool
	ExitCode   int
	DurationMS int64
	Stages     []StageRecord
}

// NewRecord returns a Record with a fresh run id and start time.
func NewRecord() *Record {
	return &Record{ID: uuid.NewString(), StartedAt: time.Now()}
}

// Store is a SQLite-backed run history. Use ":memory:" for tests.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if needed) the history database at path, including
// any missing parent directories.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		toolchain TEXT NOT NULL,
		features TEXT NOT NULL,
		commit_hash TEXT NOT NULL,
		passed INTEGER NOT NULL,
		exit_code INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS stages (
		run_id TEXT NOT NULL REFERENCES runs(id),
		seq INTEGER NOT NULL,
		name TEXT NOT NULL,
		passed INTEGER NOT NULL,
		exit_code INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		PRIMARY KEY (run_id, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Record persists one run and its stages atomically.
func (s *Store) Record(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO runs (id, started_at, toolchain, features, commit_hash, passed, exit_code, duration_ms) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		rec.ID, rec.StartedAt.Unix(), rec.Toolchain, rec.Features, rec.Commit, boolInt(rec.Passed), rec.ExitCode, rec.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for i, st := range rec.Stages {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO stages (run_id, seq, name, passed, exit_code, duration_ms) VALUES (?, ?, ?, ?, ?, ?)",
			rec.ID, i, st.Name, boolInt(st.Passed), st.ExitCode, st.DurationMS,
		)
		if err != nil {
			return fmt.Errorf("insert stage %s: %w", st.Name, err)
		}
	}
	return tx.Commit()
}

// Recent returns up to limit runs, newest first, stages included.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, started_at, toolchain, features, commit_hash, passed, exit_code, duration_ms FROM runs ORDER BY started_at DESC, id LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var r Record
		var startedAt int64
		var passed int
		if err := rows.Scan(&r.ID, &startedAt, &r.Toolchain, &r.Features, &r.Commit, &passed, &r.ExitCode, &r.DurationMS); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt = time.Unix(startedAt, 0)
		r.Passed = passed != 0
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	for i := range recs {
		stages, err := s.stagesFor(ctx, recs[i].ID)
		if err != nil {
			return nil, err
		}
		recs[i].Stages = stages
	}
	return recs, nil
}

func (s *Store) stagesFor(ctx context.Context, runID string) ([]StageRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, passed, exit_code, duration_ms FROM stages WHERE run_id = ? ORDER BY seq",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query stages: %w", err)
	}
	defer rows.Close()

	var stages []StageRecord
	for rows.Next() {
		var st StageRecord
		var passed int
		if err := rows.Scan(&st.Name, &passed, &st.ExitCode, &st.DurationMS); err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		st.Passed = passed != 0
		stages = append(stages, st)
	}
	return stages, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
