// Package history persists one record per generation or model run so that
// past invocations can be listed and compared. It is operational history,
// not a results store: per-sample outputs live in the exported datasets.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Run is one recorded invocation of the generate or run pipeline.
type Run struct {
	ID        int64
	RunID     uuid.UUID
	Command   string // "generate" or "run"
	Task      string
	Dataset   string
	TestTypes string // comma-separated operator aliases
	Samples   int    // input samples read
	Generated int    // perturbed samples produced
	Failures  int    // samples skipped or errored
	Duration  time.Duration
	Timestamp time.Time
}

// Store manages the SQLite run-history database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the history database at dbPath and
// applies any pending schema migrations. ":memory:" is accepted for tests.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// busy_timeout first so the remaining pragmas wait on locks rather
	// than failing when another process is initializing the same file.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	s := &Store{db: db, dbPath: dbPath}
	if err := s.applyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// execWithRetry retries a statement with exponential backoff on
// "database is locked" errors; any other error returns immediately.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun inserts a run record and fills in its row ID. A zero RunID
// gets a fresh UUID; a zero Timestamp gets the current time.
func (s *Store) RecordRun(ctx context.Context, r *Run) error {
	if r.RunID == uuid.Nil {
		r.RunID = uuid.New()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}

	query := `INSERT INTO runs
		(run_id, command, task, dataset, test_types, samples, generated, failures, duration_ms, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := s.db.ExecContext(ctx, query,
		r.RunID.String(),
		r.Command,
		r.Task,
		r.Dataset,
		r.TestTypes,
		r.Samples,
		r.Generated,
		r.Failures,
		r.Duration.Milliseconds(),
		r.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	r.ID = id
	return nil
}

// RecentRuns returns up to limit runs, most recent first. limit <= 0
// returns all runs.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT id, run_id, command, task, dataset, test_types, samples, generated, failures, duration_ms, timestamp
		FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// RunByID looks up one run by its UUID.
func (s *Store) RunByID(ctx context.Context, runID uuid.UUID) (*Run, error) {
	query := `SELECT id, run_id, command, task, dataset, test_types, samples, generated, failures, duration_ms, timestamp
		FROM runs WHERE run_id = ?`

	rows, err := s.db.QueryContext(ctx, query, runID.String())
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query run: %w", err)
		}
		return nil, fmt.Errorf("run %s not found", runID)
	}
	return scanRun(rows)
}

func scanRun(rows *sql.Rows) (*Run, error) {
	r := &Run{}
	var runID string
	var durationMS int64
	var task, dataset, testTypes sql.NullString
	err := rows.Scan(
		&r.ID,
		&runID,
		&r.Command,
		&task,
		&dataset,
		&testTypes,
		&r.Samples,
		&r.Generated,
		&r.Failures,
		&durationMS,
		&r.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("scan run row: %w", err)
	}

	id, err := uuid.Parse(runID)
	if err != nil {
		return nil, fmt.Errorf("parse run id %q: %w", runID, err)
	}
	r.RunID = id
	r.Duration = time.Duration(durationMS) * time.Millisecond
	if task.Valid {
		r.Task = task.String
	}
	if dataset.Valid {
		r.Dataset = dataset.String
	}
	if testTypes.Valid {
		r.TestTypes = testTypes.String
	}
	return r, nil
}
