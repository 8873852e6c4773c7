package presence

import (
	"github.com/nerrad567/homeflow/internal/device"
	"github.com/nerrad567/homeflow/internal/infrastructure/ntfy"
)

// Announcer pushes a phone notification on every presence transition.
//
// The notification carries a broadcast action so the companion app can
// override the new state with one tap ("Set away" while home, "Set
// home" while away).
type Announcer struct {
	emitter Emitter
	logger  Logger
}

// NewAnnouncer creates a presence transition announcer.
func NewAnnouncer(emitter Emitter, logger Logger) *Announcer {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Announcer{emitter: emitter, logger: logger}
}

// ID returns the fixed device identifier.
func (a *Announcer) ID() string {
	return "presence-announcer"
}

// HandlePresence emits a "Home"/"Away" notification event.
func (a *Announcer) HandlePresence(present bool) {
	if a.emitter == nil {
		return
	}

	message := "Away"
	label := "Set home"
	state := "1"
	if present {
		message = "Home"
		label = "Set away"
		state = "0"
	}

	action := ntfy.BroadcastAction(label, map[string]string{
		"cmd":   "presence",
		"state": state,
	}, true)

	a.logger.Debug("announcing presence transition", "message", message)
	a.emitter.Emit(device.NotificationEvent{Notification: ntfy.Notification{
		Title:    "Presence",
		Message:  message,
		Tags:     []string{"house"},
		Priority: ntfy.PriorityLow,
		Actions:  []ntfy.Action{action},
	}})
}
