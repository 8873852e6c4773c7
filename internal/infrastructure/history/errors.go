package history

import "errors"

var (
	// ErrNoPath indicates the journal path is missing from configuration.
	ErrNoPath = errors.New("history: journal path is required")

	// ErrBadEvent indicates an event failed validation before insert.
	ErrBadEvent = errors.New("history: invalid event")
)
