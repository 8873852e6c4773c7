package device

// Device is anything with a stable identifier that can be registered
// with the Manager. Concrete devices live in the bridges packages; the
// automation core only ever sees capability subsets.
type Device interface {
	ID() string
}

// OnOff is the switchable capability. SetOn is fire-and-forget: the
// command is handed to the device's transport and the reported state
// catches up via a later state message.
type OnOff interface {
	SetOn(on bool)
	On() bool
}

// Brightness is the dimmable capability, 0-100 percent.
type Brightness interface {
	SetBrightness(percent int)
	Brightness() int
}

// ColorTemperature is the tunable-white capability in Kelvin.
type ColorTemperature interface {
	SetColorTemperature(kelvin int)
	ColorTemperature() int
}

// OpenClose is the positional capability for covers and contacts,
// 0 = fully closed, 100 = fully open. Binary contact sensors report
// 0 or 100 and ignore the setter.
type OpenClose interface {
	SetOpenPercent(percent int)
	OpenPercent() int
}

// Subscriber declares the MQTT topic filters a device wants delivered.
// Filters may contain + and # wildcards.
type Subscriber interface {
	Topics() []string
}

// MessageHandler receives MQTT messages matching its declared topics.
// Handlers run on the dispatcher goroutine; they must not block on
// anything slower than a local mutation plus a fire-and-forget send.
type MessageHandler interface {
	Subscriber
	HandleMessage(topic string, payload []byte)
}

// PresenceHandler reacts to overall home occupancy transitions.
type PresenceHandler interface {
	HandlePresence(present bool)
}

// DarknessHandler reacts to ambient light transitions.
type DarknessHandler interface {
	HandleDarkness(dark bool)
}
