package signal

import (
	"fmt"
	"strings"
	"sync"

	"github.com/openbeamline/signalbind/internal/channel"
)

// Logger defines the logging interface used by Device.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Device binds a schema to a concrete base identifier and a channel
// client, exposing the generic read/describe/set operations.
//
// Each device owns a lazily populated channel cache: the first access to a
// field resolves its identifier and constructs the channel through the
// client; every later access returns the identical cached handle. The
// cache grows monotonically and is serialized by a per-device mutex, so at
// most one handle exists per identifier even under concurrent access.
//
// Construction through the client may block while the transport connects;
// Read, Set and Signal inherit that blocking behaviour. The device applies
// no timeouts and no retries of its own.
type Device struct {
	schema *Schema
	client channel.Client
	base   string
	name   string
	alias  string

	// readFields is the subset of schema fields included in Read and
	// Describe, in schema declaration order.
	readFields []string

	mu       sync.Mutex
	channels map[string]channel.Handle
	groups   map[string]*channel.Group

	logger Logger
}

// Description is the per-field metadata returned by Describe.
type Description struct {
	// Source is the resolved channel identifier the field reads from.
	Source string `json:"source"`

	// Writable reports whether the field accepts writes.
	Writable bool `json:"writable"`

	// Doc is the documentation string for the field.
	Doc string `json:"doc,omitempty"`
}

// DeviceOption configures a Device at construction.
type DeviceOption func(*Device) error

// WithName overrides the display name derived from the base identifier.
func WithName(name string) DeviceOption {
	return func(d *Device) error {
		d.name = name
		return nil
	}
}

// WithAlias sets a secondary display name.
func WithAlias(alias string) DeviceOption {
	return func(d *Device) error {
		d.alias = alias
		return nil
	}
}

// WithReadFields restricts Read and Describe to the given fields. Every
// name must be declared by the schema. The default is all fields.
func WithReadFields(fields ...string) DeviceOption {
	return func(d *Device) error {
		for _, f := range fields {
			if _, ok := d.schema.Descriptor(f); !ok {
				return fmt.Errorf("%w: %q", ErrUnknownField, f)
			}
		}
		d.readFields = append([]string(nil), fields...)
		return nil
	}
}

// WithLogger sets the logger for the device.
func WithLogger(logger Logger) DeviceOption {
	return func(d *Device) error {
		d.logger = logger
		return nil
	}
}

// NewDevice binds a schema to a base identifier using the given channel
// client. No channel is constructed here; connection happens on first
// field access.
func NewDevice(schema *Schema, client channel.Client, base string, opts ...DeviceOption) (*Device, error) {
	if schema == nil {
		return nil, ErrNilSchema
	}
	if client == nil {
		return nil, ErrNilClient
	}
	if base == "" {
		return nil, ErrEmptyBase
	}

	d := &Device{
		schema:     schema,
		client:     client,
		base:       base,
		name:       NameFromBase(base),
		readFields: schema.FieldNames(),
		channels:   make(map[string]channel.Handle),
		groups:     make(map[string]*channel.Group),
		logger:     noopLogger{},
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// NameFromBase derives a display name from a base channel identifier:
// lowercased, trailing separator stripped, separators replaced with dots.
func NameFromBase(base string) string {
	name := strings.TrimRight(strings.ToLower(base), ":")
	return strings.ReplaceAll(name, ":", ".")
}

// Schema returns the shared schema the device is bound to.
func (d *Device) Schema() *Schema { return d.schema }

// Base returns the base identifier used to resolve field templates.
func (d *Device) Base() string { return d.base }

// Name returns the display name.
func (d *Device) Name() string { return d.name }

// Alias returns the secondary display name, if any.
func (d *Device) Alias() string { return d.alias }

// ReadFields returns the fields included in Read and Describe.
func (d *Device) ReadFields() []string {
	return append([]string(nil), d.readFields...)
}

// Signal returns the channel handle for a declared field, constructing and
// caching it on first access. Repeated calls return the identical handle
// for as long as the device lives.
func (d *Device) Signal(field string) (channel.Handle, error) {
	desc, ok := d.schema.Descriptor(field)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	id := desc.Resolve(d.base)

	// Serialize check-construct-insert so concurrent first access still
	// yields exactly one handle per identifier.
	d.mu.Lock()
	defer d.mu.Unlock()

	if h, ok := d.channels[id]; ok {
		return h, nil
	}

	h, err := d.client.Construct(id, desc.ChannelConfig())
	if err != nil {
		return nil, fmt.Errorf("constructing channel %s: %w", id, err)
	}
	d.channels[id] = h
	d.logger.Debug("channel constructed", "device", d.name, "field", field, "channel", id)
	return h, nil
}

// Signals instantiates and returns every declared field's channel handle,
// keyed by field name. All lazy channels are connected as a side effect.
func (d *Device) Signals() (map[string]channel.Handle, error) {
	handles := make(map[string]channel.Handle, len(d.schema.order))
	for _, field := range d.schema.FieldNames() {
		h, err := d.Signal(field)
		if err != nil {
			return nil, err
		}
		handles[field] = h
	}
	return handles, nil
}

// Subscribe registers a callback for value and connection events on a
// field's channel, constructing the channel on first use like Signal.
// Returns ErrNotWatchable wrapped with the resolved identifier when the
// transport cannot push notifications.
func (d *Device) Subscribe(field string, cb channel.Callback) error {
	h, err := d.Signal(field)
	if err != nil {
		return err
	}

	watcher, ok := h.(channel.Watcher)
	if !ok {
		return fmt.Errorf("channel %s: %w", h.ID(), channel.ErrNotWatchable)
	}
	watcher.Watch(cb)
	d.logger.Debug("subscription registered", "device", d.name, "field", field, "channel", h.ID())
	return nil
}

// Group returns the composed group channel for a declared group name.
//
// Members are resolved individually (populating the field cache) and the
// group is cached under the ordered tuple of member identifiers, so the
// same group object is reused whenever all members resolve identically.
func (d *Device) Group(name string) (*channel.Group, error) {
	members, ok := d.schema.GroupMembers(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, name)
	}

	handles := make([]channel.Handle, len(members))
	for i, field := range members {
		h, err := d.Signal(field)
		if err != nil {
			return nil, err
		}
		handles[i] = h
	}

	key := channel.GroupKey(handles...)

	d.mu.Lock()
	defer d.mu.Unlock()

	if g, ok := d.groups[key]; ok {
		return g, nil
	}
	g, err := channel.NewGroup(handles...)
	if err != nil {
		return nil, fmt.Errorf("composing group %q: %w", name, err)
	}
	d.groups[key] = g
	d.logger.Debug("group composed", "device", d.name, "group", name, "key", key)
	return g, nil
}

// Read returns the current value of every read field, keyed by field name.
//
// The read fails fast on the first disconnected channel: no partial result
// is returned, and the error names the resolved channel identifier rather
// than the field, so failures trace directly to the hardware endpoint.
func (d *Device) Read() (map[string]any, error) {
	values := make(map[string]any, len(d.readFields))
	for _, field := range d.readFields {
		h, err := d.Signal(field)
		if err != nil {
			return nil, err
		}
		if !h.Connected() {
			return nil, fmt.Errorf("channel %s: %w", h.ID(), channel.ErrDisconnected)
		}
		v, err := h.Get()
		if err != nil {
			return nil, fmt.Errorf("channel %s: %w", h.ID(), err)
		}
		values[field] = v
	}
	return values, nil
}

// Describe returns per-field metadata for every read field without
// requiring any channel connection.
func (d *Device) Describe() map[string]Description {
	descriptions := make(map[string]Description, len(d.readFields))
	for _, field := range d.readFields {
		desc, ok := d.schema.Descriptor(field)
		if !ok {
			continue
		}
		descriptions[field] = Description{
			Source:   desc.Resolve(d.base),
			Writable: desc.Writable(),
			Doc:      d.schema.Doc(field),
		}
	}
	return descriptions
}

// Set writes one value per writable field, bound positionally against the
// writable declaration order. The value count must match the writable
// field count exactly; a mismatch returns ErrArgumentBinding before any
// channel is accessed. Returns one write handle per dispatched write, in
// declaration order.
func (d *Device) Set(values ...any) ([]*channel.WriteHandle, error) {
	writable := d.schema.WritableNames()
	if len(values) != len(writable) {
		return nil, fmt.Errorf("%w: got %d values for writable fields %v",
			ErrArgumentBinding, len(values), writable)
	}

	byName := make(map[string]any, len(values))
	for i, field := range writable {
		byName[field] = values[i]
	}
	return d.dispatchWrites(writable, byName)
}

// SetNamed writes one value per writable field, bound by field name. The
// key set must cover every writable field exactly; missing or unknown
// names return ErrArgumentBinding before any channel is accessed. Writes
// dispatch in writable declaration order, identically to Set.
func (d *Device) SetNamed(values map[string]any) ([]*channel.WriteHandle, error) {
	writable := d.schema.WritableNames()

	writableSet := make(map[string]bool, len(writable))
	for _, field := range writable {
		writableSet[field] = true
		if _, ok := values[field]; !ok {
			return nil, fmt.Errorf("%w: missing value for field %q", ErrArgumentBinding, field)
		}
	}
	for name := range values {
		if !writableSet[name] {
			return nil, fmt.Errorf("%w: %q is not a writable field", ErrArgumentBinding, name)
		}
	}
	return d.dispatchWrites(writable, values)
}

// dispatchWrites issues the bound writes in the given field order.
func (d *Device) dispatchWrites(order []string, values map[string]any) ([]*channel.WriteHandle, error) {
	handles := make([]*channel.WriteHandle, 0, len(order))
	for _, field := range order {
		h, err := d.Signal(field)
		if err != nil {
			return handles, err
		}
		wh, err := h.Put(values[field])
		if err != nil {
			return handles, fmt.Errorf("channel %s: %w", h.ID(), err)
		}
		d.logger.Debug("write dispatched", "device", d.name, "field", field, "channel", h.ID())
		handles = append(handles, wh)
	}
	return handles, nil
}

// Stop is a no-op hook for richer device types layered on top of the
// binding (stop motion, abort acquisition). Embedding types override it.
func (d *Device) Stop() error { return nil }

// Trigger is a no-op hook for richer device types (trigger acquisition).
// Embedding types override it.
func (d *Device) Trigger() error { return nil }
