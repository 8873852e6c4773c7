package automation

import (
	"fmt"
	"sync"
)

// Scheduler registers callbacks against 6-field (seconds included) cron
// expressions. Implemented by the scheduler package.
type Scheduler interface {
	Schedule(expr string, fn func()) error
}

// Schedules binds automation behaviours to times of day. It performs no
// decision logic of its own; it only adapts component methods and
// capability calls into scheduler registrations.
//
// Registration is idempotent: binding the same name and expression
// twice registers once and the second call succeeds without effect.
//
// Thread Safety:
//   - All Bind methods are safe for concurrent use, though in practice
//     they run once during bootstrap.
type Schedules struct {
	scheduler Scheduler
	logger    Logger

	mu    sync.Mutex
	bound map[string]bool
}

// NewSchedules creates the glue around a scheduler.
//
// Parameters:
//   - scheduler: Cron registration target
//   - logger: Logger instance (nil for no logging)
func NewSchedules(scheduler Scheduler, logger Logger) *Schedules {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Schedules{
		scheduler: scheduler,
		logger:    logger,
		bound:     make(map[string]bool),
	}
}

// bind registers fn under name@expr exactly once.
func (s *Schedules) bind(name, expr string, fn func()) error {
	if s.scheduler == nil {
		return ErrNoScheduler
	}
	if expr == "" {
		return fmt.Errorf("%w: %s", ErrNoExpression, name)
	}

	key := name + "@" + expr

	s.mu.Lock()
	if s.bound[key] {
		s.mu.Unlock()
		s.logger.Warn("schedule already bound, skipping", "name", name, "expr", expr)
		return nil
	}
	s.bound[key] = true
	s.mu.Unlock()

	if err := s.scheduler.Schedule(expr, fn); err != nil {
		s.mu.Lock()
		delete(s.bound, key)
		s.mu.Unlock()
		return fmt.Errorf("binding %s: %w", name, err)
	}

	s.logger.Info("schedule bound", "name", name, "expr", expr)
	return nil
}

// BindBatteryCheck registers the monitor's consolidated notification
// against a recurring expression, typically once a day.
func (s *Schedules) BindBatteryCheck(expr string, monitor *BatteryMonitor) error {
	if monitor == nil {
		return fmt.Errorf("%w: battery monitor", ErrNilTarget)
	}
	return s.bind("battery-check", expr, monitor.NotifyIfAny)
}

// BindSwitchCycle registers a fixed daily on/off cycle for a device,
// e.g. an air filter that runs over lunch.
func (s *Schedules) BindSwitchCycle(name string, device Switch, onExpr, offExpr string) error {
	if device == nil {
		return fmt.Errorf("%w: %s", ErrNilTarget, name)
	}

	if err := s.bind(name+"-on", onExpr, func() { device.SetOn(true) }); err != nil {
		return err
	}
	return s.bind(name+"-off", offExpr, func() { device.SetOn(false) })
}

// BindCoverCycle registers a fixed daily open/close cycle for a cover,
// e.g. curtains that open in the morning and close at dusk.
func (s *Schedules) BindCoverCycle(name string, cover OpenCloser, openExpr, closeExpr string) error {
	if cover == nil {
		return fmt.Errorf("%w: %s", ErrNilTarget, name)
	}

	if err := s.bind(name+"-open", openExpr, func() { cover.SetOpenPercent(100) }); err != nil {
		return err
	}
	return s.bind(name+"-close", closeExpr, func() { cover.SetOpenPercent(0) })
}
