package automation

import (
	"sync"
	"time"
)

// Timer is a cancellable, restartable single-shot delayed callback.
//
// It is the debounce primitive the rest of the package is built on:
// arming an already-armed timer replaces the deadline and callback, and
// the superseded callback never runs. Each owner holds its own Timer;
// instances are never shared between components.
//
// Thread Safety:
//   - Start, Cancel and IsWaiting are safe for concurrent use.
//   - A callback that has already begun executing runs to completion;
//     Start and Cancel arriving during that execution only affect
//     subsequent scheduling.
type Timer struct {
	mu      sync.Mutex
	pending *time.Timer
	gen     uint64
	waiting bool
	logger  Logger
}

// NewTimer creates an idle timer.
//
// Parameters:
//   - logger: Logger for callback panics (nil for no logging)
func NewTimer(logger Logger) *Timer {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Timer{logger: logger}
}

// Start schedules fn to run once after d, discarding any pending deadline.
//
// The new duration is measured from this call; remaining time on a
// replaced deadline is not carried over. The replaced callback never
// runs.
//
// Parameters:
//   - d: Delay before fn runs
//   - fn: Callback to invoke exactly once when the deadline elapses
func (t *Timer) Start(d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.gen++
	gen := t.gen

	if t.pending != nil {
		t.pending.Stop()
	}
	t.waiting = true
	t.pending = time.AfterFunc(d, func() { t.fire(gen, fn) })
}

// fire runs the scheduled callback unless the arming that scheduled it
// has been superseded by a later Start or Cancel.
func (t *Timer) fire(gen uint64, fn func()) {
	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		return
	}
	// Committed: the timer counts as fired whatever the callback does.
	t.waiting = false
	t.pending = nil
	t.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("timer callback panicked", "panic", r)
		}
	}()

	fn()
}

// Cancel discards any pending deadline. Idempotent; a no-op when the
// timer is idle or has already fired.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.gen++
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	t.waiting = false
}

// IsWaiting reports whether a callback is scheduled and has neither
// fired nor been cancelled.
func (t *Timer) IsWaiting() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.waiting
}
