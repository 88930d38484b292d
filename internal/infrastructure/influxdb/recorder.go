package influxdb

import (
	"context"

	"github.com/openbeamline/signalbind/internal/telemetry"
)

// OperationRecorder adapts a Client to the telemetry.Recorder interface so
// operation records can fan out to InfluxDB alongside SQLite.
//
// Recent always returns empty: the time-series store is write-only from
// the daemon's point of view, history queries are served from SQLite.
type OperationRecorder struct {
	client *Client
}

// NewOperationRecorder wraps a connected client as a telemetry recorder.
func NewOperationRecorder(client *Client) *OperationRecorder {
	return &OperationRecorder{client: client}
}

// Record writes the operation as a duration point. Never fails: write
// errors surface asynchronously via the client's error callback.
func (r *OperationRecorder) Record(_ context.Context, rec telemetry.Record) error {
	r.client.WriteOperationDuration(rec.Object, rec.Action, rec.Duration())
	return nil
}

// Recent is not supported by the time-series sink.
func (r *OperationRecorder) Recent(_ context.Context, _, _ string, _ int) ([]telemetry.Record, error) {
	return nil, nil
}
