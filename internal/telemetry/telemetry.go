package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Action values for operation records.
const (
	ActionSet     = "set"
	ActionTrigger = "trigger"
	ActionStop    = "stop"
	ActionRead    = "read"
)

// Record is one completed device operation.
type Record struct {
	// ID uniquely identifies the record.
	ID string `json:"id"`

	// Object is the device name the operation ran against.
	Object string `json:"object"`

	// Action is what was done (set, trigger, stop, read).
	Action string `json:"action"`

	// StartedAt is when the operation was dispatched (UTC).
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the operation completed (UTC).
	FinishedAt time.Time `json:"finished_at"`

	// Detail is an optional free-form note, such as the values written.
	Detail string `json:"detail,omitempty"`
}

// NewRecord creates a record for a completed operation.
func NewRecord(object, action string, startedAt, finishedAt time.Time) Record {
	return Record{
		ID:         uuid.New().String(),
		Object:     object,
		Action:     action,
		StartedAt:  startedAt.UTC(),
		FinishedAt: finishedAt.UTC(),
	}
}

// Duration returns how long the operation took.
func (r Record) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Validate checks required fields and time ordering.
func (r Record) Validate() error {
	if r.Object == "" {
		return fmt.Errorf("%w: object is required", ErrInvalidRecord)
	}
	if r.Action == "" {
		return fmt.Errorf("%w: action is required", ErrInvalidRecord)
	}
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return fmt.Errorf("%w: timestamps are required", ErrInvalidRecord)
	}
	if r.FinishedAt.Before(r.StartedAt) {
		return fmt.Errorf("%w: finished before started", ErrInvalidRecord)
	}
	return nil
}

// Recorder stores and retrieves operation records.
//
// Implementations must be thread-safe and use UTC timestamps.
type Recorder interface {
	// Record persists a completed operation.
	Record(ctx context.Context, rec Record) error

	// Recent returns the most recent records for an object and action,
	// newest first. Implementations may clamp limit.
	Recent(ctx context.Context, object, action string, limit int) ([]Record, error)
}

// Noop discards all records. Used when telemetry is disabled.
type Noop struct{}

func (Noop) Record(context.Context, Record) error { return nil }

func (Noop) Recent(context.Context, string, string, int) ([]Record, error) {
	return nil, nil
}

// Fanout forwards records to several recorders. Recent is served from the
// first recorder; write errors are joined so one failing sink does not
// hide another.
type Fanout struct {
	recorders []Recorder
}

// NewFanout creates a composite recorder. At least one recorder is
// required; the first one serves reads.
func NewFanout(recorders ...Recorder) (*Fanout, error) {
	if len(recorders) == 0 {
		return nil, fmt.Errorf("telemetry: fanout requires at least one recorder")
	}
	return &Fanout{recorders: recorders}, nil
}

func (f *Fanout) Record(ctx context.Context, rec Record) error {
	var errs []error
	for _, r := range f.recorders {
		if err := r.Record(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) Recent(ctx context.Context, object, action string, limit int) ([]Record, error) {
	return f.recorders[0].Recent(ctx, object, action, limit)
}
