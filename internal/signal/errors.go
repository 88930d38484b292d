package signal

import "errors"

// Domain errors for the signal package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, signal.ErrArgumentBinding) {
//	    // handle a Set call that does not match the writable fields
//	}
var (
	// ErrMissingPlaceholder is returned when a descriptor template does not
	// contain the {base} placeholder. This is a configuration error raised
	// at declaration time, never at runtime.
	ErrMissingPlaceholder = errors.New("signal: template missing {base} placeholder")

	// ErrInvalidField is returned when a field declaration is malformed
	// (empty name, nil descriptor).
	ErrInvalidField = errors.New("signal: invalid field declaration")

	// ErrUnknownField is returned when an operation references a field the
	// schema does not declare.
	ErrUnknownField = errors.New("signal: unknown field")

	// ErrUnknownGroup is returned when a group name is not declared by the
	// schema.
	ErrUnknownGroup = errors.New("signal: unknown group")

	// ErrInvalidGroup is returned when a group declaration is malformed or
	// references an undeclared field.
	ErrInvalidGroup = errors.New("signal: invalid group declaration")

	// ErrArgumentBinding is returned when Set arguments do not match the
	// schema's writable fields in arity or names. No channel is accessed.
	ErrArgumentBinding = errors.New("signal: arguments do not match writable fields")

	// ErrNilSchema is returned when a device is created without a schema.
	ErrNilSchema = errors.New("signal: schema is required")

	// ErrNilClient is returned when a device is created without a channel
	// client.
	ErrNilClient = errors.New("signal: channel client is required")

	// ErrEmptyBase is returned when a device is created with an empty base
	// identifier.
	ErrEmptyBase = errors.New("signal: base identifier is required")
)
