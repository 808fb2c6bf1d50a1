// Package sqlite persists run history in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/tensorflow/tfhub.dev/internal/domain/execution"
	"github.com/tensorflow/tfhub.dev/internal/domain/repositories"
	"github.com/tensorflow/tfhub.dev/internal/domain/values"
)

// Ensure interface compliance
var _ repositories.RunRepository = (*RunRepository)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	started_at INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	root_dir TEXT NOT NULL,
	total INTEGER NOT NULL,
	passed INTEGER NOT NULL,
	failed INTEGER NOT NULL,
	errors INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

const selectColumns = `SELECT run_id, started_at, duration_ms, root_dir, total, passed, failed, errors FROM runs`

// RunRepository stores run summaries in SQLite.
type RunRepository struct {
	db *sql.DB
}

// Open opens (and creates if needed) the history database at path.
func Open(path string) (*RunRepository, error) {
	if path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &RunRepository{db: db}, nil
}

// Close releases the database handle.
func (r *RunRepository) Close() error {
	return r.db.Close()
}

// Save persists a run summary, replacing an earlier row with the same ID.
func (r *RunRepository) Save(ctx context.Context, rec execution.RunRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, started_at, duration_ms, root_dir, total, passed, failed, errors)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id) DO UPDATE SET
			started_at = excluded.started_at,
			duration_ms = excluded.duration_ms,
			root_dir = excluded.root_dir,
			total = excluded.total,
			passed = excluded.passed,
			failed = excluded.failed,
			errors = excluded.errors`,
		rec.RunID.String(),
		rec.StartedAt.UnixMilli(),
		rec.Duration.Milliseconds(),
		rec.RootDir,
		rec.Total, rec.Passed, rec.Failed, rec.Errors,
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", rec.RunID, err)
	}
	return nil
}

// FindByID retrieves a run by its unique ID.
func (r *RunRepository) FindByID(ctx context.Context, id uuid.UUID) (execution.RunRecord, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` WHERE run_id = ?`, id.String())
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return execution.RunRecord{}, fmt.Errorf("%w: %s", repositories.ErrRunNotFound, id)
	}
	return rec, err
}

// Recent retrieves the newest runs first.
func (r *RunRepository) Recent(ctx context.Context, limit int) ([]execution.RunRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as no limit
	}
	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return collect(rows)
}

// FindBetween retrieves runs that started within [start, end], newest first.
func (r *RunRepository) FindBetween(ctx context.Context, start, end time.Time) ([]execution.RunRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		selectColumns+` WHERE started_at >= ? AND started_at <= ? ORDER BY started_at DESC`,
		start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return collect(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (execution.RunRecord, error) {
	var (
		rec        execution.RunRecord
		id         string
		startedMs  int64
		durationMs int64
	)
	if err := s.Scan(&id, &startedMs, &durationMs, &rec.RootDir, &rec.Total, &rec.Passed, &rec.Failed, &rec.Errors); err != nil {
		return execution.RunRecord{}, err
	}

	runID, err := values.ParseRunID(id)
	if err != nil {
		return execution.RunRecord{}, fmt.Errorf("corrupt run id %q: %w", id, err)
	}
	rec.RunID = runID
	rec.StartedAt = time.UnixMilli(startedMs)
	rec.Duration = time.Duration(durationMs) * time.Millisecond
	return rec, nil
}

func collect(rows *sql.Rows) ([]execution.RunRecord, error) {
	defer rows.Close()

	var out []execution.RunRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	return out, nil
}
