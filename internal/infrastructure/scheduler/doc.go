// Package scheduler runs callbacks on cron expressions.
//
// It wraps robfig/cron configured for the 6-field seconds form used
// throughout config.yaml. Jobs are registered during startup (a bad
// expression fails startup), then Start runs them until shutdown.
//
//	sched := scheduler.New(logger)
//	err := sched.Schedule("0 0 9 * * *", batteries.NotifyIfAny)
//	if err != nil {
//	    return err
//	}
//	sched.Start()
//	defer sched.Stop()
//
// Callbacks run on the cron goroutine. Anything touching automation
// state must take that component's lock, same as timer callbacks.
package scheduler
