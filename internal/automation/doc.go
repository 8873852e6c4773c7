// Package automation contains the reactive coordination core of
// Homeflow: the logic that turns asynchronous sensor and device events
// into correct, debounced actuation.
//
// Components, leaves first:
//
//   - Timer: a cancellable, restartable single-shot delayed callback.
//     Everything else is built on it.
//   - Hub: ordered fan-out of a boolean condition (presence, darkness)
//     to independent subscribers, with per-subscriber panic isolation.
//   - AutoOff: arms a Timer while a device's reported state satisfies a
//     predicate and disarms otherwise. Covers the kettle, the bathroom
//     light and the workbench charger, each with its own predicate and
//     delay.
//   - Hallway: correlates door, trash drawer, wall switch and the light
//     group's own reports against a grace timer and a forced-override
//     flag. The hardest unit in the package.
//   - BatteryMonitor: accumulates low-battery readings and emits one
//     consolidated daily notification.
//   - Schedules: thin glue binding component methods and fixed device
//     cycles to cron expressions.
//
// # Concurrency
//
// Events normally arrive on a single dispatcher goroutine, but timer
// expiries and cron ticks run on their own goroutines, so every
// stateful component guards its fields with a mutex. Locks are held
// only for state mutation, never across an outbound capability call.
//
// # Error Handling
//
// Outbound calls (SetOn, notifications) are fire-and-forget; this
// package never retries. Subscriber and timer callback panics are
// caught and logged so one misbehaving consumer cannot starve the
// rest.
package automation
