package automation

import "time"

// Switch is the on/off capability the automation actuates. Calls are
// fire-and-forget; delivery is the collaborator's concern.
type Switch interface {
	SetOn(on bool)
}

// OpenCloser is the positional capability for covers and blinds.
type OpenCloser interface {
	SetOpenPercent(percent int)
}

// Report is a device state snapshot as delivered by a collaborator.
// Power is zero for devices without load metering.
type Report struct {
	On    bool
	Power float64
}

// Predicate decides from a state report whether a device should
// eventually be switched off.
type Predicate func(Report) bool

// ReportsOn is the plain auto-off predicate: any "on" report arms the
// countdown. Suits lights and chargers.
func ReportsOn(r Report) bool {
	return r.On
}

// OnWithPowerBelow returns a predicate that arms only when the device
// is on and drawing less than threshold watts. Suits the kettle, whose
// load drops near the end of the boil cycle; arming any earlier would
// cut the boil short.
func OnWithPowerBelow(threshold float64) Predicate {
	return func(r Report) bool {
		return r.On && r.Power < threshold
	}
}

// AutoOff turns a device off a fixed delay after its reported state
// satisfies a predicate, and disarms whenever a report stops
// satisfying it.
//
// Each instance owns its own Timer; instances applied to similar
// devices stay fully independent.
//
// Thread Safety:
//   - OnStateReport is safe for concurrent use; serialisation of
//     reports from one device is the dispatcher's job.
type AutoOff struct {
	predicate Predicate
	delay     time.Duration
	timer     *Timer
}

// NewAutoOff creates a helper that arms a delay-long countdown while
// predicate holds.
//
// Parameters:
//   - predicate: Condition over state reports (e.g. ReportsOn)
//   - delay: How long the condition must hold before switch-off
//   - logger: Logger for timer callback panics (nil for no logging)
func NewAutoOff(predicate Predicate, delay time.Duration, logger Logger) *AutoOff {
	return &AutoOff{
		predicate: predicate,
		delay:     delay,
		timer:     NewTimer(logger),
	}
}

// OnStateReport feeds one device state report into the helper.
//
// A report satisfying the predicate (re)arms the countdown; any other
// report disarms it. When the countdown elapses the device is switched
// off once.
func (a *AutoOff) OnStateReport(device Switch, r Report) {
	if a.predicate == nil || device == nil {
		return
	}

	if a.predicate(r) {
		a.timer.Start(a.delay, func() { device.SetOn(false) })
	} else {
		a.timer.Cancel()
	}
}

// IsWaiting reports whether a switch-off is currently pending.
func (a *AutoOff) IsWaiting() bool {
	return a.timer.IsWaiting()
}

// Cancel disarms any pending switch-off.
func (a *AutoOff) Cancel() {
	a.timer.Cancel()
}
