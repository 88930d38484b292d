package channel

import "errors"

// Domain errors for channel operations.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, channel.ErrDisconnected) {
//	    // handle disconnected channel
//	}
var (
	// ErrDisconnected is returned when an operation is attempted on a
	// channel that is not currently connected. Wrapping errors include the
	// resolved channel identifier.
	ErrDisconnected = errors.New("channel: not connected")

	// ErrNotWritable is returned when a write is attempted on a read-only
	// channel.
	ErrNotWritable = errors.New("channel: not writable")

	// ErrConnectionFailed is returned when the underlying transport cannot
	// establish a channel connection.
	ErrConnectionFailed = errors.New("channel: connection failed")

	// ErrEmptyGroup is returned when a group is composed with no members.
	ErrEmptyGroup = errors.New("channel: group has no members")

	// ErrGroupArity is returned when a per-member group write is given a
	// value count that does not match the group size.
	ErrGroupArity = errors.New("channel: value count does not match group size")

	// ErrNotWatchable is returned when a subscription is requested on a
	// handle whose transport cannot push change notifications.
	ErrNotWatchable = errors.New("channel: handle does not support watching")
)
