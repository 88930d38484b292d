package command

import "errors"

// ErrBadPayload indicates a command payload that could not be decoded.
var ErrBadPayload = errors.New("command: malformed payload")
