package scheduler

import "errors"

// ErrInvalidExpression is returned when a cron expression cannot be
// parsed or a registration is otherwise unusable. Registration errors
// are configuration errors: they are fatal before startup.
var ErrInvalidExpression = errors.New("scheduler: invalid expression")
