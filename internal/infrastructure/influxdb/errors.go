package influxdb

import "errors"

// Sink errors, checked with errors.Is.
var (
	// ErrNotConnected means the sink has been closed or never connected.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed wraps ping or connection failures at startup.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrDisabled means the influxdb config section is turned off; the
	// daemon runs on SQLite telemetry alone.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
