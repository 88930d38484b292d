package telemetry

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// setupRecorderTestDB creates an in-memory database with the
// operation_history table matching the migration.
func setupRecorderTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE operation_history (
			id TEXT PRIMARY KEY,
			object TEXT NOT NULL,
			action TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			detail TEXT NOT NULL DEFAULT ''
		) STRICT;
		CREATE INDEX idx_operation_history_object ON operation_history(object, action, finished_at DESC);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestSQLiteRecorder(t *testing.T) {
	db := setupRecorderTestDB(t)
	recorder := NewSQLiteRecorder(db)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	insert := func(object, action string, finished time.Time, duration time.Duration) {
		t.Helper()
		rec := NewRecord(object, action, finished.Add(-duration), finished)
		if err := recorder.Record(ctx, rec); err != nil {
			t.Fatalf("Record(%s %s): %v", object, action, err)
		}
	}

	insert("motor1", ActionSet, base, time.Second)
	insert("motor1", ActionSet, base.Add(time.Minute), 2*time.Second)
	insert("motor1", ActionTrigger, base, 30*time.Second)
	insert("det1", ActionSet, base, 10*time.Second)

	t.Run("filters by object and action, newest first", func(t *testing.T) {
		records, err := recorder.Recent(ctx, "motor1", ActionSet, 10)
		if err != nil {
			t.Fatalf("Recent: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("Recent length = %d, want 2", len(records))
		}
		if !records[0].FinishedAt.Equal(base.Add(time.Minute)) {
			t.Errorf("records[0].FinishedAt = %v, want newest first", records[0].FinishedAt)
		}
		if records[0].Duration() != 2*time.Second {
			t.Errorf("records[0].Duration() = %v, want 2s", records[0].Duration())
		}
	})

	t.Run("limit", func(t *testing.T) {
		records, err := recorder.Recent(ctx, "motor1", ActionSet, 1)
		if err != nil {
			t.Fatalf("Recent: %v", err)
		}
		if len(records) != 1 {
			t.Errorf("Recent length = %d, want 1", len(records))
		}
	})

	t.Run("unknown object", func(t *testing.T) {
		records, err := recorder.Recent(ctx, "ghost", ActionSet, 10)
		if err != nil {
			t.Fatalf("Recent: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("Recent length = %d, want 0", len(records))
		}
	})

	t.Run("invalid record rejected", func(t *testing.T) {
		err := recorder.Record(ctx, Record{Object: "", Action: ActionSet})
		if err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("estimator over sqlite", func(t *testing.T) {
		est, err := NewEstimator(recorder)
		if err != nil {
			t.Fatalf("NewEstimator: %v", err)
		}
		got, err := est.Estimate(ctx, "motor1", ActionSet)
		if err != nil {
			t.Fatalf("Estimate: %v", err)
		}
		if got != 1500*time.Millisecond {
			t.Errorf("Estimate = %v, want 1.5s", got)
		}
	})
}
