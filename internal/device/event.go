package device

import "github.com/nerrad567/homeflow/internal/infrastructure/ntfy"

// Event is a closed union of everything the dispatcher routes. Each
// variant is a small value type; events are copied, never shared.
type Event interface {
	isEvent()
}

// MessageEvent is an inbound MQTT message.
type MessageEvent struct {
	Topic   string
	Payload []byte
}

// PresenceEvent is an overall home occupancy transition.
type PresenceEvent struct {
	Present bool
}

// DarknessEvent is an ambient light transition from the light sensor.
type DarknessEvent struct {
	Dark bool
}

// NotificationEvent asks the notification collaborator to deliver a
// push notification. Devices emit these instead of talking to ntfy
// directly so delivery stays on the dispatcher's sequencing.
type NotificationEvent struct {
	Notification ntfy.Notification
}

func (MessageEvent) isEvent()      {}
func (PresenceEvent) isEvent()     {}
func (DarknessEvent) isEvent()     {}
func (NotificationEvent) isEvent() {}
