package kasa

import "errors"

var (
	// ErrNoID indicates a device entry without an identifier.
	ErrNoID = errors.New("kasa: device id is required")

	// ErrNoAddr indicates a device entry without an address.
	ErrNoAddr = errors.New("kasa: device addr is required")

	// ErrBadFrame indicates a response that is not a valid plug frame.
	ErrBadFrame = errors.New("kasa: malformed response frame")

	// ErrRejected indicates the plug answered with a non-zero err_code.
	ErrRejected = errors.New("kasa: plug rejected command")
)
