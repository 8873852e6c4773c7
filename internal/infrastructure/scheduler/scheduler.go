package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
)

// Logger is the narrow logging interface the scheduler needs.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is used until SetLogger is called.
type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Scheduler runs callbacks on cron expressions.
//
// Expressions use the 6-field form with a leading seconds field, e.g.
// "0 30 19 * * *" for 19:30:00 daily. Each registered job runs at most
// once per matching tick; a panicking job is recovered and logged
// without affecting other jobs or later ticks.
//
// Thread Safety:
//   - Schedule may be called before or after Start from any goroutine.
//   - Callbacks run on the cron goroutine, not the caller's.
type Scheduler struct {
	cron   *cron.Cron
	logger Logger
}

// New creates a stopped scheduler. Call Start after registration.
func New(logger Logger) *Scheduler {
	if logger == nil {
		logger = noopLogger{}
	}

	adapter := cronLogger{logger: logger}
	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.Recover(adapter)),
	)

	return &Scheduler{
		cron:   c,
		logger: logger,
	}
}

// Schedule registers a callback against a cron expression.
//
// Parameters:
//   - expr: 6-field cron expression with seconds, e.g. "0 0 9 * * *"
//   - fn: Callback invoked on each matching tick
//
// Returns:
//   - error: ErrInvalidExpression (wrapped) if the expression is malformed
func (s *Scheduler) Schedule(expr string, fn func()) error {
	if fn == nil {
		return fmt.Errorf("%w: callback cannot be nil", ErrInvalidExpression)
	}

	if _, err := s.cron.AddFunc(expr, fn); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidExpression, expr, err)
	}

	s.logger.Info("schedule registered", "expr", expr)
	return nil
}

// Start begins running registered jobs in their own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling. Running jobs complete; the returned context is
// done once they have.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// JobCount returns the number of registered jobs.
func (s *Scheduler) JobCount() int {
	return len(s.cron.Entries())
}

// cronLogger adapts Logger to the cron library's logging interface.
type cronLogger struct {
	logger Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	// Cron's own chatter is noise at info level.
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	args := append([]any{"error", err}, keysAndValues...)
	l.logger.Error("cron: "+msg, args...)
}
