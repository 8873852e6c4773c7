package presence

import "errors"

// Package errors. Wrap with context where relevant.
var (
	// ErrNoWildcard indicates a subscription filter that cannot name
	// per-source topics.
	ErrNoWildcard = errors.New("presence: topic filter needs a + or # wildcard")
)
