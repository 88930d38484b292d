package channel

import "time"

// EventKind discriminates what a channel event reports.
type EventKind int

const (
	// EventValue reports a new value observed on the channel.
	EventValue EventKind = iota

	// EventConnection reports a connection state change.
	EventConnection
)

// Event is a single change pushed from a channel to its subscribers.
type Event struct {
	// Kind says which of the remaining fields carry the payload.
	Kind EventKind

	// Channel is the resolved identifier the event originated from.
	Channel string

	// Value is the observed value. Valid for EventValue.
	Value any

	// Connected is the new connection state. Valid for EventConnection.
	Connected bool

	// At is the UTC time the change was observed.
	At time.Time
}

// Callback receives channel events. Callbacks run on the transport's
// delivery goroutine and must not block.
type Callback func(Event)

// Watcher is implemented by handles that can push change notifications.
// Transports without server-side notification simply don't implement it;
// callers detect support with a type assertion.
type Watcher interface {
	// Watch registers a callback for subsequent events on this handle.
	// Callbacks cannot be removed; they live as long as the handle.
	Watch(cb Callback)
}
