package hue

import "errors"

var (
	// ErrNoID indicates a group entry without an identifier.
	ErrNoID = errors.New("hue: device id is required")

	// ErrNoAddr indicates a missing bridge address.
	ErrNoAddr = errors.New("hue: bridge addr is required")

	// ErrNoToken indicates a missing bridge API username.
	ErrNoToken = errors.New("hue: bridge token is required")
)
