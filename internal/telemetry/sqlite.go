package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 200
)

// SQLiteRecorder implements Recorder using SQLite.
//
// Records land in the operation_history table, giving a durable local
// audit trail even when the time-series sink is unavailable.
type SQLiteRecorder struct {
	db *sql.DB
}

// NewSQLiteRecorder creates a SQLite-backed recorder over an open
// connection. The operation_history table must exist (see migrations).
func NewSQLiteRecorder(db *sql.DB) *SQLiteRecorder {
	return &SQLiteRecorder{db: db}
}

// Record inserts a completed operation.
func (r *SQLiteRecorder) Record(ctx context.Context, rec Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO operation_history (id, object, action, started_at, finished_at, duration_ms, detail)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Object,
		rec.Action,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.FinishedAt.UTC().Format(time.RFC3339Nano),
		rec.Duration().Milliseconds(),
		rec.Detail,
	)
	if err != nil {
		return fmt.Errorf("inserting operation record: %w", err)
	}

	return nil
}

// Recent returns records for an object and action, newest first.
// limit defaults to 50 and is clamped to 200.
func (r *SQLiteRecorder) Recent(ctx context.Context, object, action string, limit int) ([]Record, error) {
	if object == "" {
		return nil, fmt.Errorf("%w: object is required", ErrInvalidRecord)
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, object, action, started_at, finished_at, detail
		 FROM operation_history
		 WHERE object = ? AND action = ?
		 ORDER BY finished_at DESC
		 LIMIT ?`,
		object,
		action,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying operation history: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		var rec Record
		var startedAt, finishedAt string

		if err := rows.Scan(&rec.ID, &rec.Object, &rec.Action, &startedAt, &finishedAt, &rec.Detail); err != nil {
			return nil, fmt.Errorf("scanning operation record: %w", err)
		}

		if rec.StartedAt, err = parseRecordTimestamp(startedAt); err != nil {
			return nil, err
		}
		if rec.FinishedAt, err = parseRecordTimestamp(finishedAt); err != nil {
			return nil, err
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating operation history: %w", err)
	}

	return records, nil
}

// parseRecordTimestamp parses timestamps stored by this recorder.
func parseRecordTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("timestamp is empty")
	}

	timestamp, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp: %w", err)
	}

	return timestamp, nil
}
