// Package docdb resolves human-readable documentation for declared signal
// fields from reference tables bundled into the binary.
//
// Tables are YAML files embedded at build time, one per instrument record
// family, each mapping a field name to a description string. They are
// parsed once, on first use, and are read-only for the life of the
// process.
//
// Lookup walks an ordered list of table names (a schema supplies its own
// tables before any inherited ones, mirroring a most-derived-first
// ancestor walk) and returns the first exact match. A field name carrying
// the readback suffix falls back to the base field's entry. Lookups never
// fail: a miss degrades to a sentinel string naming the searched field.
//
// Lookup is deterministic and side-effect free; callers that query
// repeatedly are expected to cache the result (signal.Schema does).
package docdb
