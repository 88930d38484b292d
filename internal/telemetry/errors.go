package telemetry

import "errors"

var (
	// ErrNoHistory is returned by the Estimator when no completed
	// operations exist for the requested object and action.
	ErrNoHistory = errors.New("telemetry: no operation history")

	// ErrInvalidRecord is returned when a record is missing required fields.
	ErrInvalidRecord = errors.New("telemetry: invalid record")
)
