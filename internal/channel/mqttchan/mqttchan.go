package mqttchan

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/openbeamline/signalbind/internal/channel"
	"github.com/openbeamline/signalbind/internal/infrastructure/mqtt"
)

// Broker is the subset of the MQTT client used by this package.
// *mqtt.Client satisfies it.
type Broker interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
	IsConnected() bool
}

// Client constructs MQTT-backed channel handles.
//
// Safe for concurrent use.
type Client struct {
	broker Broker
	prefix string
	qos    byte
}

// NewClient creates a channel client over the given broker connection.
//
// prefix is the topic namespace channel identifiers live under, without a
// trailing slash, for example "signalbind/channels".
func NewClient(broker Broker, prefix string, qos byte) (*Client, error) {
	if broker == nil {
		return nil, fmt.Errorf("mqttchan: broker cannot be nil")
	}
	if prefix == "" {
		return nil, fmt.Errorf("mqttchan: prefix cannot be empty")
	}
	return &Client{broker: broker, prefix: prefix, qos: qos}, nil
}

// Construct subscribes to the channel's state topic and returns a handle.
//
// The topic the handle reads from depends on the readback configuration;
// writes always target the base identifier. Construct fails only if the
// subscription cannot be registered.
func (c *Client) Construct(id string, cfg channel.Config) (channel.Handle, error) {
	readID := id
	if cfg.HasReadback {
		readID = cfg.ReadbackID(id)
	}

	h := &handle{
		client: c,
		id:     id,
		cfg:    cfg,
	}

	stateTopic := fmt.Sprintf("%s/%s/state", c.prefix, readID)
	if err := c.broker.Subscribe(stateTopic, c.qos, h.onState); err != nil {
		return nil, fmt.Errorf("%w: subscribe %s: %w", channel.ErrConnectionFailed, stateTopic, err)
	}

	return h, nil
}

// handle is a single MQTT-backed channel endpoint.
type handle struct {
	client *Client
	id     string
	cfg    channel.Config

	mu        sync.RWMutex
	value     any
	received  bool
	callbacks []channel.Callback
}

// onState records the latest value from the state topic and notifies
// subscribers. The first value doubles as the connection-established
// event: before it arrives the handle reports disconnected.
func (h *handle) onState(_ string, payload []byte) error {
	var value any
	if h.cfg.String {
		value = string(payload)
	} else if err := json.Unmarshal(payload, &value); err != nil {
		return fmt.Errorf("mqttchan: channel %s: decode state: %w", h.id, err)
	}

	now := time.Now().UTC()

	h.mu.Lock()
	first := !h.received
	h.value = value
	h.received = true
	subscribers := append([]channel.Callback(nil), h.callbacks...)
	h.mu.Unlock()

	// Notify outside the lock; a callback may call back into the handle.
	if first {
		for _, cb := range subscribers {
			cb(channel.Event{Kind: channel.EventConnection, Channel: h.id, Connected: true, At: now})
		}
	}
	for _, cb := range subscribers {
		cb(channel.Event{Kind: channel.EventValue, Channel: h.id, Value: value, At: now})
	}
	return nil
}

// Watch registers a callback for value and connection events.
func (h *handle) Watch(cb channel.Callback) {
	h.mu.Lock()
	h.callbacks = append(h.callbacks, cb)
	h.mu.Unlock()
}

func (h *handle) ID() string {
	return h.id
}

// Connected reports whether the broker is up and at least one value has
// been observed on the state topic.
func (h *handle) Connected() bool {
	h.mu.RLock()
	received := h.received
	h.mu.RUnlock()
	return received && h.client.broker.IsConnected()
}

// Get returns the last value seen on the state topic.
func (h *handle) Get() (any, error) {
	if !h.client.broker.IsConnected() {
		return nil, channel.ErrDisconnected
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.received {
		return nil, fmt.Errorf("%w: no value received yet", channel.ErrDisconnected)
	}
	return h.value, nil
}

// Put publishes the value to the channel's set topic.
func (h *handle) Put(value any) (*channel.WriteHandle, error) {
	if !h.cfg.Writable {
		return nil, fmt.Errorf("%w: channel %s", channel.ErrNotWritable, h.id)
	}
	if !h.client.broker.IsConnected() {
		return nil, channel.ErrDisconnected
	}

	var payload []byte
	if h.cfg.String {
		payload = []byte(fmt.Sprint(value))
	} else {
		var err error
		payload, err = json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("mqttchan: channel %s: encode value: %w", h.id, err)
		}
	}

	setTopic := fmt.Sprintf("%s/%s/set", h.client.prefix, h.id)
	if err := h.client.broker.Publish(setTopic, payload, h.client.qos, false); err != nil {
		return nil, fmt.Errorf("mqttchan: channel %s: %w", h.id, err)
	}

	return channel.NewWriteHandle(h.id, value), nil
}
