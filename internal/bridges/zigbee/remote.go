package zigbee

import (
	"fmt"

	"github.com/nerrad567/homeflow/internal/automation"
	"github.com/nerrad567/homeflow/internal/infrastructure/config"
)

// Remote is a battery powered zigbee2mqtt button remote.
//
// Two-button remotes map their on/off presses directly. Single-button
// remotes press on ("on" or "toggle") and hold off
// ("brightness_move_up"). Everything else (dim holds, stop events) is
// ignored.
type Remote struct {
	id           string
	topic        string
	singleButton bool

	hub       *automation.Hub
	batteries BatterySink
	telemetry Telemetry
	logger    Logger
}

// actionReport is the payload remotes and wall modules publish.
type actionReport struct {
	Action  *string  `json:"action"`
	Battery *float64 `json:"battery"`
}

// NewRemote creates a remote from its config entry.
//
// Parameters:
//   - cfg: device entry; SingleButton selects the press/hold mapping.
//   - hub: receives the decoded on/off intent. May be nil.
//   - batteries: low-battery sink. May be nil.
//   - telemetry: battery sample sink. May be nil.
//   - logger: may be nil for silent operation.
//
// Returns:
//   - *Remote: ready to register with the device manager.
//   - error: ErrNoID or ErrNoTopic on an incomplete entry.
func NewRemote(cfg config.ZigbeeDeviceConfig, hub *automation.Hub, batteries BatterySink, telemetry Telemetry, logger Logger) (*Remote, error) {
	if cfg.ID == "" {
		return nil, ErrNoID
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoTopic, cfg.ID)
	}
	if logger == nil {
		logger = noopLogger{}
	}

	return &Remote{
		id:           cfg.ID,
		topic:        cfg.Topic,
		singleButton: cfg.SingleButton,
		hub:          hub,
		batteries:    batteries,
		telemetry:    telemetry,
		logger:       logger,
	}, nil
}

// ID returns the device identifier.
func (r *Remote) ID() string {
	return r.id
}

// Topics returns the action report subscription.
func (r *Remote) Topics() []string {
	return []string{r.topic}
}

// HandleMessage decodes a button action into an on/off intent.
func (r *Remote) HandleMessage(_ string, payload []byte) {
	var report actionReport
	if err := parsePayload(payload, &report); err != nil {
		r.logger.Warn("unparseable remote report", "device", r.id, "error", err)
		return
	}

	reportBattery(r.batteries, r.telemetry, r.id, report.Battery)
	if report.Action == nil {
		return
	}

	var on, ok bool
	if r.singleButton {
		switch *report.Action {
		case actionOn, actionToggle:
			on, ok = true, true
		case actionBrightnessMoveUp:
			on, ok = false, true
		}
	} else {
		switch *report.Action {
		case actionOn:
			on, ok = true, true
		case actionOff:
			on, ok = false, true
		}
	}
	if !ok {
		return
	}

	r.logger.Debug("remote action", "device", r.id, "action", *report.Action, "on", on)
	if r.hub != nil {
		r.hub.Publish(on)
	}
}
