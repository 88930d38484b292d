package telemetry

import (
	"context"
	"fmt"
	"time"
)

// estimateSampleSize bounds how many recent records feed an estimate.
// A small window tracks drifting hardware better than the full history.
const estimateSampleSize = 10

// Estimator predicts operation durations from recorded history.
type Estimator struct {
	recorder Recorder
}

// NewEstimator creates an estimator over a recorder.
func NewEstimator(recorder Recorder) (*Estimator, error) {
	if recorder == nil {
		return nil, fmt.Errorf("telemetry: estimator requires a recorder")
	}
	return &Estimator{recorder: recorder}, nil
}

// Estimate returns the mean duration of the most recent operations for
// the given object and action. Returns ErrNoHistory when nothing has been
// recorded yet.
func (e *Estimator) Estimate(ctx context.Context, object, action string) (time.Duration, error) {
	records, err := e.recorder.Recent(ctx, object, action, estimateSampleSize)
	if err != nil {
		return 0, fmt.Errorf("fetching history for estimate: %w", err)
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("%w: %s %s", ErrNoHistory, object, action)
	}

	var total time.Duration
	for _, rec := range records {
		total += rec.Duration()
	}
	return total / time.Duration(len(records)), nil
}
