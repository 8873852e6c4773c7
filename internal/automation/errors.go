package automation

import "errors"

// Domain errors for the automation package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, automation.ErrNilTarget) {
//	    // handle missing device wiring
//	}
var (
	// ErrNoScheduler is returned when binding without a scheduler.
	ErrNoScheduler = errors.New("automation: no scheduler configured")

	// ErrNoExpression is returned when binding with an empty cron expression.
	ErrNoExpression = errors.New("automation: empty cron expression")

	// ErrNilTarget is returned when binding against a nil device or component.
	ErrNilTarget = errors.New("automation: nil target")
)
