package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func makeRecord(object, action string, duration time.Duration) Record {
	finished := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return NewRecord(object, action, finished.Add(-duration), finished)
}

func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Record)
		wantErr bool
	}{
		{"valid", func(*Record) {}, false},
		{"missing object", func(r *Record) { r.Object = "" }, true},
		{"missing action", func(r *Record) { r.Action = "" }, true},
		{"zero start", func(r *Record) { r.StartedAt = time.Time{} }, true},
		{"finished before started", func(r *Record) {
			r.FinishedAt = r.StartedAt.Add(-time.Second)
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := makeRecord("motor1", ActionSet, time.Second)
			tt.mutate(&rec)
			err := rec.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidRecord) {
				t.Errorf("Validate() = %v, want ErrInvalidRecord", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestRecordDuration(t *testing.T) {
	rec := makeRecord("motor1", ActionSet, 1500*time.Millisecond)
	if rec.Duration() != 1500*time.Millisecond {
		t.Errorf("Duration() = %v, want 1.5s", rec.Duration())
	}
}

// memoryRecorder is a test double holding records in insertion order.
type memoryRecorder struct {
	records   []Record
	recordErr error
	recentErr error
}

func (m *memoryRecorder) Record(_ context.Context, rec Record) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memoryRecorder) Recent(_ context.Context, object, action string, limit int) ([]Record, error) {
	if m.recentErr != nil {
		return nil, m.recentErr
	}
	var out []Record
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		if m.records[i].Object == object && m.records[i].Action == action {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

func TestFanout(t *testing.T) {
	t.Run("requires a recorder", func(t *testing.T) {
		if _, err := NewFanout(); err == nil {
			t.Error("expected error for empty fanout")
		}
	})

	t.Run("writes to all, reads from first", func(t *testing.T) {
		first := &memoryRecorder{}
		second := &memoryRecorder{}
		fanout, err := NewFanout(first, second)
		if err != nil {
			t.Fatalf("NewFanout: %v", err)
		}

		rec := makeRecord("motor1", ActionSet, time.Second)
		if err := fanout.Record(context.Background(), rec); err != nil {
			t.Fatalf("Record: %v", err)
		}
		if len(first.records) != 1 || len(second.records) != 1 {
			t.Errorf("record counts = %d, %d, want 1, 1", len(first.records), len(second.records))
		}

		records, err := fanout.Recent(context.Background(), "motor1", ActionSet, 10)
		if err != nil {
			t.Fatalf("Recent: %v", err)
		}
		if len(records) != 1 {
			t.Errorf("Recent length = %d, want 1", len(records))
		}
	})

	t.Run("errors from every failing sink are joined", func(t *testing.T) {
		errFirst := errors.New("sqlite down")
		errSecond := errors.New("influx down")
		fanout, _ := NewFanout(
			&memoryRecorder{recordErr: errFirst},
			&memoryRecorder{recordErr: errSecond},
		)

		err := fanout.Record(context.Background(), makeRecord("motor1", ActionSet, time.Second))
		if !errors.Is(err, errFirst) {
			t.Errorf("joined error = %v, missing first sink error", err)
		}
		if !errors.Is(err, errSecond) {
			t.Errorf("joined error = %v, missing second sink error", err)
		}
	})

	t.Run("one failing sink does not stop the others", func(t *testing.T) {
		failing := &memoryRecorder{recordErr: errors.New("sink down")}
		healthy := &memoryRecorder{}
		fanout, _ := NewFanout(failing, healthy)

		err := fanout.Record(context.Background(), makeRecord("motor1", ActionSet, time.Second))
		if err == nil {
			t.Error("expected error from failing sink")
		}
		if len(healthy.records) != 1 {
			t.Errorf("healthy sink records = %d, want 1", len(healthy.records))
		}
	})
}

func TestEstimator(t *testing.T) {
	t.Run("requires a recorder", func(t *testing.T) {
		if _, err := NewEstimator(nil); err == nil {
			t.Error("expected error for nil recorder")
		}
	})

	t.Run("no history", func(t *testing.T) {
		est, _ := NewEstimator(&memoryRecorder{})
		_, err := est.Estimate(context.Background(), "motor1", ActionSet)
		if !errors.Is(err, ErrNoHistory) {
			t.Errorf("Estimate error = %v, want ErrNoHistory", err)
		}
	})

	t.Run("mean of recent durations", func(t *testing.T) {
		rec := &memoryRecorder{}
		ctx := context.Background()
		rec.Record(ctx, makeRecord("motor1", ActionSet, 1*time.Second))
		rec.Record(ctx, makeRecord("motor1", ActionSet, 3*time.Second))
		rec.Record(ctx, makeRecord("motor1", ActionTrigger, 30*time.Second))
		rec.Record(ctx, makeRecord("det1", ActionSet, 10*time.Second))

		est, _ := NewEstimator(rec)
		got, err := est.Estimate(ctx, "motor1", ActionSet)
		if err != nil {
			t.Fatalf("Estimate: %v", err)
		}
		if got != 2*time.Second {
			t.Errorf("Estimate = %v, want 2s", got)
		}
	})

	t.Run("recorder failure", func(t *testing.T) {
		est, _ := NewEstimator(&memoryRecorder{recentErr: errors.New("query failed")})
		if _, err := est.Estimate(context.Background(), "motor1", ActionSet); err == nil {
			t.Error("expected error")
		}
	})
}
