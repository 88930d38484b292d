// Package mqttchan implements the channel interfaces over MQTT topics.
//
// Each channel identifier maps to a pair of topics under a configurable
// prefix:
//
//	<prefix>/<identifier>/state   retained, last known value
//	<prefix>/<identifier>/set     write requests
//
// A hardware gateway on the other side of the broker mirrors real channel
// values onto the state topics and applies set messages to the hardware.
// This package never talks to hardware directly.
//
// # Readback channels
//
// A handle constructed with HasReadback reads from the readback
// identifier's state topic and writes to the base identifier's set topic,
// so a Get after a Put observes what the hardware reports, not what was
// requested.
//
//	<prefix>/XF:Mtr1.VELO_RBV/state   <- Get
//	<prefix>/XF:Mtr1.VELO/set         <- Put
//
// # Value encoding
//
// Values are JSON-encoded on set topics and JSON-decoded from state
// topics. Channels constructed with the String option bypass decoding and
// carry raw payload bytes as strings.
//
// # Connection semantics
//
// Construct subscribes immediately. A handle reports disconnected until
// the first state message arrives and whenever the broker connection is
// down; Get returns ErrDisconnected in both cases. State topics are
// expected to be retained so reconnecting handles repopulate promptly.
package mqttchan
