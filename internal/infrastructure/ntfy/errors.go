package ntfy

import "errors"

// Domain-specific errors for notification delivery.
var (
	// ErrNoServer is returned when the server URL is missing from config.
	ErrNoServer = errors.New("ntfy: server url is required")

	// ErrNoTopic is returned when the topic is missing from config.
	ErrNoTopic = errors.New("ntfy: topic is required")

	// ErrSendFailed is returned when a notification cannot be delivered.
	ErrSendFailed = errors.New("ntfy: send failed")
)
