// Package signal provides the declarative signal binding layer for
// Signalbind.
//
// A schema declares, once per device type, the set of named signal fields a
// device exposes: each field pairs a name with a channel identifier
// template and a read/write capability. At runtime a Device binds a schema
// to a concrete base identifier and lazily connects each field's channel on
// first access, caching exactly one handle per resolved identifier.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────────────┐
//	│                         signal package                           │
//	│                                                                  │
//	│  ┌───────────────┐    ┌────────────────┐    ┌────────────────┐   │
//	│  │   Descriptor  │    │     Schema     │    │     Device     │   │
//	│  │(descriptor.go)│◀───│  (schema.go)   │◀───│  (device.go)   │   │
//	│  │               │    │                │    │                │   │
//	│  │ • template    │    │ • field map    │    │ • channel cache│   │
//	│  │ • capability  │    │ • writable     │    │ • Read/Set     │   │
//	│  │ • chan config │    │   ordering     │    │ • Describe     │   │
//	│  └───────────────┘    │ • doc sources  │    │ • Groups       │   │
//	│                       └────────────────┘    └────────────────┘   │
//	│                                                     │            │
//	└─────────────────────────────────────────────────────│────────────┘
//	                                                      ▼
//	                                          ┌──────────────────────┐
//	                                          │   channel.Client     │
//	                                          │ (mqttchan, mocks...) │
//	                                          └──────────────────────┘
//
// # Lifecycle
//
// Schemas are built exactly once, via Builder, typically in a package-level
// variable (the Go analogue of class-definition time):
//
//	var Motor = signal.NewSchema("motor").
//	    Doc("motor").
//	    Field("position", "{base}.VAL", signal.Writable(), signal.WithReadback()).
//	    Field("speed", "{base}.VELO", signal.Writable()).
//	    Field("moving", "{base}.MOVN").
//	    MustBuild()
//
// A Schema is immutable after Build and safe for unsynchronized concurrent
// reads; any number of Devices share it.
//
// Devices own their channel cache exclusively. First access to a field
// constructs the channel through the channel.Client (which may block while
// the transport connects); every later access returns the identical cached
// handle. Cache population is serialized per device, so at most one handle
// ever exists per identifier per device, even under concurrent access.
//
// # Generic Operations
//
// Read, Describe, Set, Stop and Trigger are derived entirely from the
// schema; no per-field code is written by device authors. Set accepts
// either positional values in writable declaration order or a name-keyed
// map, validated against the writable field set before any channel is
// touched.
//
// # Error Handling
//
// Configuration mistakes (a template without its placeholder, a group
// naming an undeclared field) fail at schema build time. Runtime channel
// failures are never retried here; they surface to the caller carrying the
// resolved channel identifier.
package signal
