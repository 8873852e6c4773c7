package device

import "errors"

// Domain errors for the device package.
var (
	// ErrNoID is returned when registering a nil device or one with an
	// empty identifier.
	ErrNoID = errors.New("device: missing device ID")

	// ErrDuplicateID is returned when a device ID is already registered.
	// Duplicate IDs are a configuration fault and fatal at startup.
	ErrDuplicateID = errors.New("device: duplicate device ID")
)
