package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteOperationDuration records how long a device operation took.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - object: Device name (e.g., "motor1")
//   - action: Operation kind (set, trigger, stop, read)
//   - duration: Wall-clock time the operation took
func (c *Client) WriteOperationDuration(object, action string, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"operation_duration",
		map[string]string{
			"object": object,
			"action": action,
		},
		map[string]interface{}{
			"duration_ms": float64(duration.Milliseconds()),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteChannelValue records a numeric channel reading.
//
// Used by the poll loop to mirror channel state into the time-series
// store. Non-numeric values are skipped by the caller.
//
// Parameters:
//   - device: Owning device name
//   - field: Signal field name (e.g., "position")
//   - channelID: Resolved channel identifier (e.g., "XF:Mtr1.VAL")
//   - value: The reading
func (c *Client) WriteChannelValue(device, field, channelID string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"channel_value",
		map[string]string{
			"device":  device,
			"field":   field,
			"channel": channelID,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
