package zigbee

import (
	"fmt"

	"github.com/nerrad567/homeflow/internal/automation"
	"github.com/nerrad567/homeflow/internal/infrastructure/config"
)

// WallSwitch is a zigbee2mqtt wall module with on and off rockers
// ("on_press"/"off_press" actions). The decoded intent goes to the hub
// as a boolean, which is how the hallway automation sees its manual
// switch.
type WallSwitch struct {
	id    string
	topic string

	hub       *automation.Hub
	batteries BatterySink
	telemetry Telemetry
	logger    Logger
}

// NewWallSwitch creates a wall switch from its config entry.
//
// Parameters:
//   - cfg: device entry.
//   - hub: receives the on/off intent. May be nil.
//   - batteries: low-battery sink. May be nil.
//   - telemetry: battery sample sink. May be nil.
//   - logger: may be nil for silent operation.
//
// Returns:
//   - *WallSwitch: ready to register with the device manager.
//   - error: ErrNoID or ErrNoTopic on an incomplete entry.
func NewWallSwitch(cfg config.ZigbeeDeviceConfig, hub *automation.Hub, batteries BatterySink, telemetry Telemetry, logger Logger) (*WallSwitch, error) {
	if cfg.ID == "" {
		return nil, ErrNoID
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoTopic, cfg.ID)
	}
	if logger == nil {
		logger = noopLogger{}
	}

	return &WallSwitch{
		id:        cfg.ID,
		topic:     cfg.Topic,
		hub:       hub,
		batteries: batteries,
		telemetry: telemetry,
		logger:    logger,
	}, nil
}

// ID returns the device identifier.
func (w *WallSwitch) ID() string {
	return w.id
}

// Topics returns the action report subscription.
func (w *WallSwitch) Topics() []string {
	return []string{w.topic}
}

// HandleMessage decodes a rocker press into an on/off intent.
func (w *WallSwitch) HandleMessage(_ string, payload []byte) {
	var report actionReport
	if err := parsePayload(payload, &report); err != nil {
		w.logger.Warn("unparseable wall switch report", "device", w.id, "error", err)
		return
	}

	reportBattery(w.batteries, w.telemetry, w.id, report.Battery)
	if report.Action == nil {
		return
	}

	var on bool
	switch *report.Action {
	case actionOnPress:
		on = true
	case actionOffPress:
		on = false
	default:
		return
	}

	w.logger.Debug("wall switch pressed", "device", w.id, "on", on)
	if w.hub != nil {
		w.hub.Publish(on)
	}
}
