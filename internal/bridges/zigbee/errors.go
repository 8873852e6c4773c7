package zigbee

import "errors"

// Package errors. Wrap with device context where relevant.
var (
	// ErrNoID indicates a device entry without an identifier.
	ErrNoID = errors.New("zigbee: device id required")

	// ErrNoTopic indicates a device entry without an MQTT topic.
	ErrNoTopic = errors.New("zigbee: device topic required")

	// ErrBadPayload indicates a report that is not valid JSON for the
	// expected shape.
	ErrBadPayload = errors.New("zigbee: unparseable payload")
)
