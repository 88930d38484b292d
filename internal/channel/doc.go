// Package channel defines the Channel Client capability consumed by the
// signal binding layer.
//
// A channel is a named communication endpoint on an instrument (a process
// variable, a bridged topic, a register). The binding layer never speaks a
// wire protocol itself; it asks a Client to construct a Handle for a
// resolved identifier and delegates all reads and writes to it.
//
// # Capability Contract
//
//   - Client.Construct returns a Handle for an identifier. Connection
//     failures surface lazily from Get/Put, not at construction.
//   - Handle.Connected reports last known connection state.
//   - Handle.Get returns the current value, or ErrDisconnected.
//   - Handle.Put issues a write and returns a WriteHandle, or
//     ErrDisconnected/ErrNotWritable.
//
// # Implementations
//
//   - channel/mqttchan: channels bridged over MQTT topics (production)
//   - test doubles in consuming packages (see internal/signal tests)
//
// Group composes several handles into one logical channel that is read and
// written as a bundle. Group identity is the ordered tuple of member
// identifiers, so a group is reused whenever its members resolve the same.
//
// # Error Handling
//
// All errors are sentinel values checked with errors.Is. Errors carry the
// channel identifier, not any higher-level field name, so failures can be
// traced to the hardware endpoint directly.
package channel
