// Package command exposes bound devices over MQTT command topics.
//
// Each device listens on three topics under a shared prefix:
//
//	<prefix>/<device>/set     — JSON object of field values to write
//	<prefix>/<device>/stop    — halt the device
//	<prefix>/<device>/trigger — fire an acquisition
//
// Every completed command is recorded as an operation in the telemetry
// store, and before dispatching the handler logs how long the command is
// expected to take based on recorded history.
package command
