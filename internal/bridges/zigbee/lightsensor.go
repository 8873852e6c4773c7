package zigbee

import (
	"fmt"
	"sync"

	"github.com/nerrad567/homeflow/internal/automation"
	"github.com/nerrad567/homeflow/internal/device"
	"github.com/nerrad567/homeflow/internal/infrastructure/config"
)

// LightSensor derives a darkness boolean from illuminance reports.
//
// Hysteresis keeps dusk from flapping the lights: at or below min lux
// it is dark, at or above max lux it is light, and in between the
// previous answer stands.
//
// On a change the sensor publishes to its hub and emits a
// DarknessEvent for handler devices. Every report also lands in
// telemetry.
//
// Thread Safety: safe for concurrent use.
type LightSensor struct {
	mu   sync.Mutex
	dark bool

	id    string
	topic string
	min   int
	max   int

	hub       *automation.Hub
	emitter   Emitter
	telemetry Telemetry
	batteries BatterySink
	logger    Logger
}

// illuminanceReport is the state payload published on the device topic.
type illuminanceReport struct {
	Illuminance *int     `json:"illuminance"`
	Battery     *float64 `json:"battery"`
}

// NewLightSensor creates a light sensor from its config entry.
//
// Parameters:
//   - cfg: device entry; Min and Max bound the hysteresis band in lux.
//   - hub: receives the darkness boolean on change. May be nil.
//   - emitter: receives a DarknessEvent on change. May be nil.
//   - telemetry: illuminance sample sink. May be nil.
//   - batteries: low-battery sink. May be nil.
//   - logger: may be nil for silent operation.
//
// Returns:
//   - *LightSensor: ready to register with the device manager.
//   - error: ErrNoID or ErrNoTopic on an incomplete entry.
func NewLightSensor(cfg config.ZigbeeDeviceConfig, hub *automation.Hub, emitter Emitter, telemetry Telemetry, batteries BatterySink, logger Logger) (*LightSensor, error) {
	if cfg.ID == "" {
		return nil, ErrNoID
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoTopic, cfg.ID)
	}
	if logger == nil {
		logger = noopLogger{}
	}

	return &LightSensor{
		id:        cfg.ID,
		topic:     cfg.Topic,
		min:       cfg.Min,
		max:       cfg.Max,
		hub:       hub,
		emitter:   emitter,
		telemetry: telemetry,
		batteries: batteries,
		logger:    logger,
	}, nil
}

// ID returns the device identifier.
func (s *LightSensor) ID() string {
	return s.id
}

// Topics returns the state report subscription.
func (s *LightSensor) Topics() []string {
	return []string{s.topic}
}

// Dark returns the current darkness answer.
func (s *LightSensor) Dark() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dark
}

// HandleMessage ingests an illuminance report.
func (s *LightSensor) HandleMessage(_ string, payload []byte) {
	var report illuminanceReport
	if err := parsePayload(payload, &report); err != nil {
		s.logger.Warn("unparseable illuminance report", "device", s.id, "error", err)
		return
	}

	reportBattery(s.batteries, s.telemetry, s.id, report.Battery)
	if report.Illuminance == nil {
		return
	}
	lux := *report.Illuminance

	if s.telemetry != nil {
		s.telemetry.WriteIlluminance(s.id, float64(lux))
	}

	s.mu.Lock()
	dark := s.dark
	switch {
	case lux <= s.min:
		dark = true
	case lux >= s.max:
		dark = false
	}
	changed := dark != s.dark
	s.dark = dark
	s.mu.Unlock()

	if !changed {
		return
	}

	s.logger.Info("darkness changed", "device", s.id, "dark", dark, "lux", lux)
	if s.hub != nil {
		s.hub.Publish(dark)
	}
	if s.emitter != nil {
		s.emitter.Emit(device.DarknessEvent{Dark: dark})
	}
}
