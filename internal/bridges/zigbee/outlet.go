package zigbee

import (
	"fmt"
	"sync"

	"github.com/nerrad567/homeflow/internal/automation"
	"github.com/nerrad567/homeflow/internal/infrastructure/config"
)

// Outlet is a zigbee2mqtt smartplug, optionally power metered.
//
// Roles refine behavior:
//   - outlet: plain switchable plug.
//   - kettle: arms an auto-off countdown while on with idle power draw.
//   - charger: exempt from the everyone-left turn-off.
//
// Commands go to {topic}/set; the cached on/off state updates when the
// device reports back on {topic}.
//
// Thread Safety: safe for concurrent use.
type Outlet struct {
	mu    sync.Mutex
	on    bool
	power float64

	id          string
	topic       string
	role        string
	presenceOff bool
	autoOff     *automation.AutoOff

	publisher Publisher
	batteries BatterySink
	telemetry Telemetry
	logger    Logger
}

// outletReport is the state payload published on the device topic.
type outletReport struct {
	State   *OnOffState `json:"state"`
	Power   *float64    `json:"power"`
	Battery *float64    `json:"battery"`
}

// NewOutlet creates an outlet from its config entry.
//
// Parameters:
//   - cfg: device entry; Role selects outlet, kettle, or charger.
//   - publisher: MQTT command transport. May be nil for tests.
//   - batteries: low-battery sink. May be nil.
//   - telemetry: power/battery sample sink. May be nil.
//   - logger: may be nil for silent operation.
//
// Returns:
//   - *Outlet: ready to register with the device manager.
//   - error: ErrNoID or ErrNoTopic on an incomplete entry.
func NewOutlet(cfg config.ZigbeeDeviceConfig, publisher Publisher, batteries BatterySink, telemetry Telemetry, logger Logger) (*Outlet, error) {
	if cfg.ID == "" {
		return nil, ErrNoID
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoTopic, cfg.ID)
	}
	if logger == nil {
		logger = noopLogger{}
	}

	o := &Outlet{
		id:        cfg.ID,
		topic:     cfg.Topic,
		role:      cfg.Role,
		publisher: publisher,
		batteries: batteries,
		telemetry: telemetry,
		logger:    logger,
	}

	// An unset presence_off derives from the role: chargers keep
	// charging when everyone leaves.
	if cfg.PresenceOff != nil {
		o.presenceOff = *cfg.PresenceOff
	} else {
		o.presenceOff = cfg.Role != config.OutletRoleCharger
	}

	if cfg.Role == config.OutletRoleKettle {
		o.autoOff = automation.NewAutoOff(
			automation.OnWithPowerBelow(cfg.PowerThreshold),
			cfg.GetAutoOffTimeout(),
			logger,
		)
	}

	return o, nil
}

// ID returns the device identifier.
func (o *Outlet) ID() string {
	return o.id
}

// Topics returns the state report subscription.
func (o *Outlet) Topics() []string {
	return []string{o.topic}
}

// On returns the last reported on/off state.
func (o *Outlet) On() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.on
}

// SetOn publishes an on/off command. The cached state updates only
// when the device reports the change back.
func (o *Outlet) SetOn(on bool) {
	sendCommand(o.publisher, o.logger, o.id, o.topic, OnOffMessage{State: StateFor(on)})
}

// HandleMessage ingests a state report.
func (o *Outlet) HandleMessage(_ string, payload []byte) {
	var report outletReport
	if err := parsePayload(payload, &report); err != nil {
		o.logger.Warn("unparseable outlet report", "device", o.id, "error", err)
		return
	}

	reportBattery(o.batteries, o.telemetry, o.id, report.Battery)
	if report.State == nil && report.Power == nil {
		return
	}

	o.mu.Lock()
	if report.State != nil {
		o.on = report.State.Bool()
	}
	if report.Power != nil {
		o.power = *report.Power
	}
	on, power := o.on, o.power
	o.mu.Unlock()

	o.logger.Debug("outlet report", "device", o.id, "on", on, "power", power)

	if report.Power != nil && o.telemetry != nil {
		o.telemetry.WritePower(o.id, *report.Power)
	}

	// Every report re-evaluates the kettle countdown, so a qualifying
	// report restarts it and a disqualifying one cancels it.
	if o.autoOff != nil {
		o.autoOff.OnStateReport(o, automation.Report{On: on, Power: power})
	}
}

// HandlePresence turns the outlet off when the home empties.
func (o *Outlet) HandlePresence(present bool) {
	if present || !o.presenceOff {
		return
	}
	o.logger.Debug("home empty, turning outlet off", "device", o.id)
	o.SetOn(false)
}

// AutoOffWaiting reports whether a kettle countdown is pending.
func (o *Outlet) AutoOffWaiting() bool {
	return o.autoOff != nil && o.autoOff.IsWaiting()
}
