package ntfy

// Priority is the ntfy notification priority scale.
type Priority int

// Priority levels, matching the ntfy wire protocol (1 = lowest).
const (
	PriorityMin Priority = iota + 1
	PriorityLow
	PriorityDefault
	PriorityHigh
	PriorityMax
)

// Action is a tappable button attached to a notification.
//
// Only broadcast actions are used: they fire an Android intent with the
// given extras, which the companion app turns back into an MQTT message
// (e.g. "Set away" overriding presence).
type Action struct {
	// Action is the ntfy action type; BroadcastAction sets "broadcast".
	Action string `json:"action"`

	// Label is the button text.
	Label string `json:"label"`

	// Clear dismisses the notification when tapped.
	Clear bool `json:"clear,omitempty"`

	// Extras are key/value pairs delivered with the broadcast intent.
	Extras map[string]string `json:"extras,omitempty"`
}

// BroadcastAction builds a broadcast action button.
func BroadcastAction(label string, extras map[string]string, clear bool) Action {
	return Action{
		Action: "broadcast",
		Label:  label,
		Clear:  clear,
		Extras: extras,
	}
}

// Notification is a push notification. All fields are optional; the
// zero value is valid but pointless.
type Notification struct {
	Title    string   `json:"title,omitempty"`
	Message  string   `json:"message,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Priority Priority `json:"priority,omitempty"`
	Actions  []Action `json:"actions,omitempty"`
}
