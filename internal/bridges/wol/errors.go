package wol

import "errors"

var (
	// ErrNoID indicates a device entry without an identifier.
	ErrNoID = errors.New("wol: device id is required")

	// ErrNoTopic indicates a device entry without an MQTT topic.
	ErrNoTopic = errors.New("wol: device topic is required")

	// ErrBadMAC indicates an unparseable or non-48-bit hardware address.
	ErrBadMAC = errors.New("wol: invalid mac address")
)
