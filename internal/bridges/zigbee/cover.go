package zigbee

import (
	"fmt"
	"sync"

	"github.com/nerrad567/homeflow/internal/infrastructure/config"
)

// Cover is a zigbee2mqtt position cover (curtain or blind motor).
// Position 100 is fully open, 0 fully closed.
//
// Thread Safety: safe for concurrent use.
type Cover struct {
	mu       sync.Mutex
	position int

	id    string
	topic string

	publisher Publisher
	batteries BatterySink
	telemetry Telemetry
	logger    Logger
}

// coverReport is the state payload published on the device topic.
type coverReport struct {
	Position *int     `json:"position"`
	Battery  *float64 `json:"battery"`
}

// NewCover creates a cover from its config entry.
//
// Parameters:
//   - cfg: device entry.
//   - publisher: MQTT command transport. May be nil for tests.
//   - batteries: low-battery sink. May be nil.
//   - telemetry: battery sample sink. May be nil.
//   - logger: may be nil for silent operation.
//
// Returns:
//   - *Cover: ready to register with the device manager.
//   - error: ErrNoID or ErrNoTopic on an incomplete entry.
func NewCover(cfg config.ZigbeeDeviceConfig, publisher Publisher, batteries BatterySink, telemetry Telemetry, logger Logger) (*Cover, error) {
	if cfg.ID == "" {
		return nil, ErrNoID
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoTopic, cfg.ID)
	}
	if logger == nil {
		logger = noopLogger{}
	}

	return &Cover{
		id:        cfg.ID,
		topic:     cfg.Topic,
		publisher: publisher,
		batteries: batteries,
		telemetry: telemetry,
		logger:    logger,
	}, nil
}

// ID returns the device identifier.
func (c *Cover) ID() string {
	return c.id
}

// Topics returns the state report subscription.
func (c *Cover) Topics() []string {
	return []string{c.topic}
}

// OpenPercent returns the last reported position.
func (c *Cover) OpenPercent() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

// SetOpenPercent publishes a position command.
//
// Parameters:
//   - percent: target position, clamped to 0..100.
func (c *Cover) SetOpenPercent(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	body := struct {
		Position int `json:"position"`
	}{Position: percent}
	sendCommand(c.publisher, c.logger, c.id, c.topic, body)
}

// HandleMessage ingests a position report.
func (c *Cover) HandleMessage(_ string, payload []byte) {
	var report coverReport
	if err := parsePayload(payload, &report); err != nil {
		c.logger.Warn("unparseable cover report", "device", c.id, "error", err)
		return
	}

	reportBattery(c.batteries, c.telemetry, c.id, report.Battery)
	if report.Position == nil {
		return
	}

	c.mu.Lock()
	c.position = *report.Position
	c.mu.Unlock()

	c.logger.Debug("cover report", "device", c.id, "position", *report.Position)
}
