package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openbeamline/signalbind/internal/channel"
	"github.com/openbeamline/signalbind/internal/infrastructure/mqtt"
	"github.com/openbeamline/signalbind/internal/telemetry"
)

// Broker is the subset of the MQTT client used by the dispatcher.
// *mqtt.Client satisfies it.
type Broker interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Target is a device the dispatcher can drive. *signal.Device satisfies it.
type Target interface {
	Name() string
	SetNamed(values map[string]any) ([]*channel.WriteHandle, error)
	Stop() error
	Trigger() error
}

// Logger defines the logging interface used by the dispatcher.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Dispatcher routes MQTT command messages to bound devices and records
// each completed command as a telemetry operation.
//
// Safe for concurrent use once started; handlers run on the broker's
// delivery goroutines.
type Dispatcher struct {
	broker    Broker
	recorder  telemetry.Recorder
	estimator *telemetry.Estimator
	prefix    string
	qos       byte
	logger    Logger

	// ctx bounds telemetry writes issued from broker callbacks; set by Start.
	ctx context.Context
}

// NewDispatcher creates a dispatcher over the given broker connection.
//
// prefix is the topic namespace command topics live under, without a
// trailing slash, for example "signalbind/devices".
func NewDispatcher(broker Broker, recorder telemetry.Recorder, prefix string, qos byte, logger Logger) (*Dispatcher, error) {
	if broker == nil {
		return nil, fmt.Errorf("command: broker cannot be nil")
	}
	if recorder == nil {
		return nil, fmt.Errorf("command: recorder cannot be nil")
	}
	if prefix == "" {
		return nil, fmt.Errorf("command: prefix cannot be empty")
	}
	if logger == nil {
		logger = noopLogger{}
	}
	estimator, err := telemetry.NewEstimator(recorder)
	if err != nil {
		return nil, fmt.Errorf("command: %w", err)
	}
	return &Dispatcher{
		broker:    broker,
		recorder:  recorder,
		estimator: estimator,
		prefix:    prefix,
		qos:       qos,
		logger:    logger,
	}, nil
}

// Start subscribes the command topics for every given device. The context
// bounds telemetry writes made from message handlers; cancel it at
// shutdown alongside the broker connection.
func (d *Dispatcher) Start(ctx context.Context, targets []Target) error {
	d.ctx = ctx
	for _, target := range targets {
		if err := d.listen(target); err != nil {
			return err
		}
		d.logger.Info("command topics registered",
			"device", target.Name(),
			"prefix", d.prefix,
		)
	}
	return nil
}

// listen registers the three command handlers for one device.
func (d *Dispatcher) listen(target Target) error {
	routes := map[string]mqtt.MessageHandler{
		telemetry.ActionSet: func(_ string, payload []byte) error {
			return d.handleSet(target, payload)
		},
		telemetry.ActionStop: func(string, []byte) error {
			return d.handleSimple(target, telemetry.ActionStop, target.Stop)
		},
		telemetry.ActionTrigger: func(string, []byte) error {
			return d.handleSimple(target, telemetry.ActionTrigger, target.Trigger)
		},
	}
	for action, handler := range routes {
		topic := fmt.Sprintf("%s/%s/%s", d.prefix, target.Name(), action)
		if err := d.broker.Subscribe(topic, d.qos, handler); err != nil {
			return fmt.Errorf("command: subscribe %s: %w", topic, err)
		}
	}
	return nil
}

// handleSet decodes a JSON object of field values and writes them through
// the device. The raw payload is kept as the operation detail.
func (d *Dispatcher) handleSet(target Target, payload []byte) error {
	var values map[string]any
	if err := json.Unmarshal(payload, &values); err != nil {
		d.logger.Warn("malformed set command",
			"device", target.Name(),
			"error", err,
		)
		return fmt.Errorf("%w: %w", ErrBadPayload, err)
	}

	d.logExpected(target.Name(), telemetry.ActionSet)

	started := time.Now()
	if _, err := target.SetNamed(values); err != nil {
		d.logger.Warn("set command failed", "device", target.Name(), "error", err)
		return err
	}

	rec := telemetry.NewRecord(target.Name(), telemetry.ActionSet, started, time.Now())
	rec.Detail = string(payload)
	d.record(rec)

	d.logger.Info("set command dispatched",
		"device", target.Name(),
		"fields", len(values),
	)
	return nil
}

// handleSimple runs a payload-free command such as stop or trigger.
func (d *Dispatcher) handleSimple(target Target, action string, op func() error) error {
	d.logExpected(target.Name(), action)

	started := time.Now()
	if err := op(); err != nil {
		d.logger.Warn("command failed",
			"device", target.Name(),
			"action", action,
			"error", err,
		)
		return err
	}

	d.record(telemetry.NewRecord(target.Name(), action, started, time.Now()))

	d.logger.Info("command dispatched", "device", target.Name(), "action", action)
	return nil
}

// logExpected logs the predicted duration for a command when enough
// history exists. A device with no history is not an error.
func (d *Dispatcher) logExpected(device, action string) {
	expected, err := d.estimator.Estimate(d.ctx, device, action)
	if err != nil {
		if !errors.Is(err, telemetry.ErrNoHistory) {
			d.logger.Warn("duration estimate failed",
				"device", device,
				"action", action,
				"error", err,
			)
		}
		return
	}
	d.logger.Debug("expected duration",
		"device", device,
		"action", action,
		"expected", expected,
	)
}

// record persists one operation record. Telemetry failures are logged,
// not returned: a broken sink must not fail the command itself.
func (d *Dispatcher) record(rec telemetry.Record) {
	if err := d.recorder.Record(d.ctx, rec); err != nil {
		d.logger.Warn("recording command telemetry failed",
			"object", rec.Object,
			"action", rec.Action,
			"error", err,
		)
	}
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
