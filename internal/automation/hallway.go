package automation

import (
	"sync"
	"time"
)

// Hallway correlates door contact, trash drawer contact, wall switch
// and the light group's own state reports into one decision: should the
// hallway group be lit.
//
// The forced flag distinguishes "on because a human asked" from "on
// because the automation decided", so that later door or trash closures
// never fight a manual choice. State is implicit in {doorOpen,
// trashOpen, forced} plus whether the grace timer is armed.
//
// Thread Safety:
//   - All handlers are safe for concurrent use. The mutex guards only
//     state mutation; the group's SetOn is always called outside it.
type Hallway struct {
	mu        sync.Mutex
	doorOpen  bool
	trashOpen bool
	forced    bool

	timer  *Timer
	group  Switch
	grace  time.Duration
	logger Logger
}

// NewHallway creates the hallway automation.
//
// Parameters:
//   - group: The light group to actuate; must be non-nil
//   - grace: How long the light stays on after the door closes
//   - logger: Logger instance (nil for no logging)
func NewHallway(group Switch, grace time.Duration, logger Logger) *Hallway {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Hallway{
		timer:  NewTimer(logger),
		group:  group,
		grace:  grace,
		logger: logger,
	}
}

// HandleSwitch applies a wall switch press. A manual switch always
// wins: it cancels any pending grace period, actuates the group
// immediately and records the choice as forced.
func (h *Hallway) HandleSwitch(on bool) {
	h.mu.Lock()
	h.timer.Cancel()
	h.forced = on
	h.mu.Unlock()

	h.logger.Debug("hallway switch", "on", on)
	h.group.SetOn(on)
}

// HandleDoor applies a door contact transition.
//
// Opening lights the group unconditionally and cancels any pending
// grace period; entering is always lit. Closing arms the grace timer
// unless a human forced the light, in which case the door has no say.
func (h *Hallway) HandleDoor(open bool) {
	h.mu.Lock()
	h.doorOpen = open

	if open {
		h.timer.Cancel()
		h.mu.Unlock()

		h.logger.Debug("hallway door opened")
		h.group.SetOn(true)
		return
	}

	if h.forced {
		h.mu.Unlock()
		h.logger.Debug("hallway door closed, light forced on")
		return
	}

	h.timer.Start(h.grace, h.graceExpired)
	h.mu.Unlock()

	h.logger.Debug("hallway door closed, grace period started", "grace", h.grace)
}

// graceExpired runs when the grace period elapses without interruption.
// The trash drawer is re-checked at expiry: if it opened in the
// meantime the light stays on.
func (h *Hallway) graceExpired() {
	h.mu.Lock()
	turnOff := !h.trashOpen
	h.mu.Unlock()

	if turnOff {
		h.logger.Debug("hallway grace period expired")
		h.group.SetOn(false)
	}
}

// HandleTrash applies a trash drawer contact transition.
//
// Opening lights the group. Closing turns it off only when nothing
// else wants it on: no grace period pending, door closed, not forced.
func (h *Hallway) HandleTrash(open bool) {
	h.mu.Lock()
	h.trashOpen = open

	if open {
		h.mu.Unlock()

		h.logger.Debug("hallway trash opened")
		h.group.SetOn(true)
		return
	}

	turnOff := !h.timer.IsWaiting() && !h.doorOpen && !h.forced
	h.mu.Unlock()

	h.logger.Debug("hallway trash closed", "turn_off", turnOff)
	if turnOff {
		h.group.SetOn(false)
	}
}

// HandleLightReport observes the group's own reported on/off state.
// It fires for every transition, including ones this automation caused.
//
// A light that turns on while both contacts are closed can only be a
// manual action (app, voice, physical dimmer), so it is recorded as
// forced and any pending grace period is cancelled. A light that turns
// off clears forced unconditionally.
func (h *Hallway) HandleLightReport(on bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if on {
		if !h.doorOpen && !h.trashOpen {
			h.timer.Cancel()
			h.forced = true
			h.logger.Debug("hallway light turned on manually, forcing")
		}
		return
	}

	h.forced = false
}
