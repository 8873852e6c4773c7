package debug

import "errors"

// ErrNoTopic indicates a mirror entry without a base topic.
var ErrNoTopic = errors.New("debug: base topic is required")
