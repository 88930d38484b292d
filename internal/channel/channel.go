package channel

import (
	"time"

	"github.com/google/uuid"
)

// DefaultReadbackSuffix is the conventional suffix of a companion readback
// channel. A writable channel with a separate readback reads from
// <identifier><suffix> and writes to <identifier>.
const DefaultReadbackSuffix = "_RBV"

// Config carries per-channel construction options.
//
// It is declared on a field descriptor and passed through to the Client
// unchanged; the binding layer itself only inspects Writable.
type Config struct {
	// Writable marks the channel as accepting writes. Put on a handle
	// constructed without it returns ErrNotWritable.
	Writable bool

	// HasReadback requests a companion readback channel: reads are served
	// from the readback identifier, writes go to the base identifier.
	HasReadback bool

	// String marks the channel value as string-typed. Implementations
	// should skip numeric decoding for such channels.
	String bool

	// ReadbackSuffix overrides DefaultReadbackSuffix when HasReadback is
	// set. Empty means the default.
	ReadbackSuffix string
}

// ReadbackID returns the identifier of the companion readback channel for
// the given base identifier, honouring any suffix override.
func (c Config) ReadbackID(id string) string {
	suffix := c.ReadbackSuffix
	if suffix == "" {
		suffix = DefaultReadbackSuffix
	}
	return id + suffix
}

// Client constructs channel handles for resolved identifiers.
//
// Implementations must be safe for concurrent use. Construct should not
// block on connection establishment; connection failures surface lazily
// from Handle.Get and Handle.Put.
type Client interface {
	// Construct returns a handle for the channel with the given identifier.
	Construct(id string, cfg Config) (Handle, error)
}

// Handle is a live channel endpoint.
//
// Handles are created once per identifier per owning instance and cached by
// the binding layer; implementations may assume long-lived handles.
type Handle interface {
	// ID returns the resolved channel identifier the handle was
	// constructed with.
	ID() string

	// Connected reports the last known connection state.
	Connected() bool

	// Get returns the current channel value.
	// Returns ErrDisconnected if the channel is not connected.
	Get() (any, error)

	// Put writes a value to the channel and returns a handle representing
	// the in-flight write. Returns ErrNotWritable for read-only channels
	// and ErrDisconnected when not connected.
	Put(value any) (*WriteHandle, error)
}

// WriteHandle represents a single issued write.
//
// It is a placeholder for eventual completion tracking: the binding layer
// creates one per dispatched write but defines no waiting primitive over
// it. Callers needing completion semantics must use the transport's own
// facilities.
type WriteHandle struct {
	// ID uniquely identifies the write.
	ID string `json:"id"`

	// Channel is the resolved identifier the write was issued to.
	Channel string `json:"channel"`

	// Value is the written value.
	Value any `json:"value"`

	// IssuedAt is the UTC time the write was dispatched.
	IssuedAt time.Time `json:"issued_at"`
}

// NewWriteHandle creates a write handle for a dispatched write.
func NewWriteHandle(channelID string, value any) *WriteHandle {
	return &WriteHandle{
		ID:       uuid.New().String(),
		Channel:  channelID,
		Value:    value,
		IssuedAt: time.Now().UTC(),
	}
}
