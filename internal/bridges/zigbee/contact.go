package zigbee

import (
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/homeflow/internal/automation"
	"github.com/nerrad567/homeflow/internal/infrastructure/config"
)

// ContactSensor is a zigbee2mqtt door, drawer, or window sensor.
//
// Open/closed transitions go to the hub (the hallway automation binds
// its door and trash handlers there). With a presence topic configured
// the sensor doubles as a presence trigger: opening the door while the
// home reads empty publishes an occupancy marker, and the marker is
// cleared a hold time after the door closes. That way arriving at an
// empty house lights it up without the front door keeping the house
// marked occupied while everyone is out.
//
// Thread Safety: safe for concurrent use.
type ContactSensor struct {
	mu          sync.Mutex
	open        bool
	homePresent bool

	id              string
	topic           string
	role            string
	presenceTopic   string
	presenceTimeout time.Duration
	clearTimer      *automation.Timer

	hub       *automation.Hub
	sender    StateSender
	batteries BatterySink
	telemetry Telemetry
	logger    Logger
}

// contactReport is the state payload published on the device topic.
// zigbee2mqtt reports contact=true while the sensor halves touch, so
// open is its negation.
type contactReport struct {
	Contact *bool    `json:"contact"`
	Battery *float64 `json:"battery"`
}

// presenceMessage is the occupancy marker published on the presence
// topic, shaped like any other presence source.
type presenceMessage struct {
	State   bool  `json:"state"`
	Updated int64 `json:"updated"`
}

// NewContactSensor creates a contact sensor from its config entry.
//
// Parameters:
//   - cfg: device entry; PresenceTopic and PresenceTimeout enable the
//     presence trigger.
//   - hub: receives open (true) / closed (false) transitions. May be nil.
//   - sender: publishes the occupancy marker. May be nil, which
//     disables the presence trigger.
//   - batteries: low-battery sink. May be nil.
//   - telemetry: battery sample sink. May be nil.
//   - logger: may be nil for silent operation.
//
// Returns:
//   - *ContactSensor: ready to register with the device manager.
//   - error: ErrNoID or ErrNoTopic on an incomplete entry.
func NewContactSensor(cfg config.ZigbeeDeviceConfig, hub *automation.Hub, sender StateSender, batteries BatterySink, telemetry Telemetry, logger Logger) (*ContactSensor, error) {
	if cfg.ID == "" {
		return nil, ErrNoID
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoTopic, cfg.ID)
	}
	if logger == nil {
		logger = noopLogger{}
	}

	return &ContactSensor{
		id:              cfg.ID,
		topic:           cfg.Topic,
		role:            cfg.Role,
		presenceTopic:   cfg.PresenceTopic,
		presenceTimeout: cfg.GetPresenceTimeout(),
		clearTimer:      automation.NewTimer(logger),
		hub:             hub,
		sender:          sender,
		batteries:       batteries,
		telemetry:       telemetry,
		logger:          logger,
	}, nil
}

// ID returns the device identifier.
func (c *ContactSensor) ID() string {
	return c.id
}

// Topics returns the state report subscription.
func (c *ContactSensor) Topics() []string {
	return []string{c.topic}
}

// Open returns the last reported open state.
func (c *ContactSensor) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// HandlePresence tracks the overall home presence so the trigger only
// marks occupancy when the home reads empty.
func (c *ContactSensor) HandlePresence(present bool) {
	c.mu.Lock()
	c.homePresent = present
	c.mu.Unlock()
}

// HandleMessage ingests a state report. Repeated reports of the same
// contact state change nothing.
func (c *ContactSensor) HandleMessage(_ string, payload []byte) {
	var report contactReport
	if err := parsePayload(payload, &report); err != nil {
		c.logger.Warn("unparseable contact report", "device", c.id, "error", err)
		return
	}

	reportBattery(c.batteries, c.telemetry, c.id, report.Battery)
	if report.Contact == nil {
		return
	}

	open := !*report.Contact

	c.mu.Lock()
	if open == c.open {
		c.mu.Unlock()
		return
	}
	c.open = open
	markPresent := open && !c.homePresent
	c.mu.Unlock()

	c.logger.Debug("contact changed", "device", c.id, "role", c.role, "open", open)

	if c.hub != nil {
		c.hub.Publish(open)
	}
	if c.presenceTopic == "" || c.sender == nil {
		return
	}

	if open {
		// Someone is at the door: hold any pending clear and, if the
		// home reads empty, mark it occupied.
		c.clearTimer.Cancel()
		if markPresent {
			c.markOccupied()
		}
	} else {
		c.clearTimer.Start(c.presenceTimeout, c.clearOccupied)
	}
}

func (c *ContactSensor) markOccupied() {
	msg := presenceMessage{State: true, Updated: time.Now().UnixMilli()}
	if err := c.sender.SendMessage(c.presenceTopic, msg); err != nil {
		c.logger.Warn("presence marker publish failed", "device", c.id, "error", err)
		return
	}
	c.logger.Info("door marked home occupied", "device", c.id)
}

func (c *ContactSensor) clearOccupied() {
	if err := c.sender.SendMessage(c.presenceTopic, nil); err != nil {
		c.logger.Warn("presence marker clear failed", "device", c.id, "error", err)
		return
	}
	c.logger.Debug("door occupancy marker cleared", "device", c.id)
}
