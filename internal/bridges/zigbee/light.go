package zigbee

import (
	"fmt"
	"math"
	"sync"

	"github.com/nerrad567/homeflow/internal/automation"
	"github.com/nerrad567/homeflow/internal/infrastructure/config"
)

// Brightness travels on the wire as 0..254; percentages map onto it
// with a log curve so the low end gets usable resolution.
const (
	brightnessFactor = 30.0
	brightnessMax    = 254.0
)

// Color temperature travels on the wire in mireds (1e6 / kelvin).
const (
	colorTempMinKelvin = 2200
	colorTempMaxKelvin = 4000
)

// Light is a zigbee2mqtt light or light group.
//
// Commands go to {topic}/set; cached state updates when the group
// reports back on {topic}. Every distinct state report is published to
// the hub as the on/off boolean, which is how the hallway automation
// observes lights changing for any reason, its own commands included.
//
// Thread Safety: safe for concurrent use.
type Light struct {
	mu         sync.Mutex
	on         bool
	brightness float64 // wire scale 0..254
	colorTemp  int     // mireds

	id    string
	topic string

	publisher Publisher
	hub       *automation.Hub
	logger    Logger
}

// lightReport is the state payload published on the group topic.
type lightReport struct {
	State      *OnOffState `json:"state"`
	Brightness *float64    `json:"brightness"`
	ColorTemp  *int        `json:"color_temp"`
}

// NewLight creates a light from its config entry.
//
// Parameters:
//   - cfg: device entry.
//   - publisher: MQTT command transport. May be nil for tests.
//   - hub: receives the on/off boolean per distinct report. May be nil.
//   - logger: may be nil for silent operation.
//
// Returns:
//   - *Light: ready to register with the device manager.
//   - error: ErrNoID or ErrNoTopic on an incomplete entry.
func NewLight(cfg config.ZigbeeDeviceConfig, publisher Publisher, hub *automation.Hub, logger Logger) (*Light, error) {
	if cfg.ID == "" {
		return nil, ErrNoID
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoTopic, cfg.ID)
	}
	if logger == nil {
		logger = noopLogger{}
	}

	return &Light{
		id:        cfg.ID,
		topic:     cfg.Topic,
		publisher: publisher,
		hub:       hub,
		logger:    logger,
	}, nil
}

// ID returns the device identifier.
func (l *Light) ID() string {
	return l.id
}

// Topics returns the state report subscription.
func (l *Light) Topics() []string {
	return []string{l.topic}
}

// On returns the last reported on/off state.
func (l *Light) On() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on
}

// SetOn publishes an on/off command.
func (l *Light) SetOn(on bool) {
	sendCommand(l.publisher, l.logger, l.id, l.topic, OnOffMessage{State: StateFor(on)})
}

// Brightness returns the last reported brightness as a 0..100 percent.
func (l *Light) Brightness() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return brightnessToPercent(l.brightness)
}

// SetBrightness publishes a brightness command.
//
// Parameters:
//   - percent: target level, clamped to 0..100.
func (l *Light) SetBrightness(percent int) {
	body := struct {
		Brightness int `json:"brightness"`
	}{Brightness: int(percentToBrightness(percent))}
	sendCommand(l.publisher, l.logger, l.id, l.topic, body)
}

// ColorTemperature returns the last reported color temperature in
// kelvin, or 0 before the first report carrying one.
func (l *Light) ColorTemperature() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.colorTemp == 0 {
		return 0
	}
	return 1_000_000 / l.colorTemp
}

// SetColorTemperature publishes a color temperature command.
//
// Parameters:
//   - kelvin: target temperature, clamped to the 2200..4000 K range
//     the bulbs support.
func (l *Light) SetColorTemperature(kelvin int) {
	if kelvin < colorTempMinKelvin {
		kelvin = colorTempMinKelvin
	}
	if kelvin > colorTempMaxKelvin {
		kelvin = colorTempMaxKelvin
	}
	body := struct {
		ColorTemp int `json:"color_temp"`
	}{ColorTemp: 1_000_000 / kelvin}
	sendCommand(l.publisher, l.logger, l.id, l.topic, body)
}

// HandleMessage ingests a state report. Reports identical to the
// cached state change nothing; any difference updates the cache and
// goes to the hub.
func (l *Light) HandleMessage(_ string, payload []byte) {
	var report lightReport
	if err := parsePayload(payload, &report); err != nil {
		l.logger.Warn("unparseable light report", "device", l.id, "error", err)
		return
	}
	if report.State == nil && report.Brightness == nil && report.ColorTemp == nil {
		return
	}

	l.mu.Lock()
	changed := false
	if report.State != nil && report.State.Bool() != l.on {
		l.on = report.State.Bool()
		changed = true
	}
	if report.Brightness != nil && *report.Brightness != l.brightness {
		l.brightness = *report.Brightness
		changed = true
	}
	if report.ColorTemp != nil && *report.ColorTemp != l.colorTemp {
		l.colorTemp = *report.ColorTemp
		changed = true
	}
	on := l.on
	l.mu.Unlock()

	if !changed {
		return
	}

	l.logger.Debug("light report", "device", l.id, "on", on)
	if l.hub != nil {
		l.hub.Publish(on)
	}
}

// brightnessToPercent maps the wire scale to a perceptual percent.
func brightnessToPercent(wire float64) int {
	percent := 100 * math.Log10(wire/brightnessFactor+1) / math.Log10(brightnessMax/brightnessFactor+1)
	return int(math.Round(clamp(percent, 0, 100)))
}

// percentToBrightness is the inverse mapping, rounded to a wire value.
func percentToBrightness(percent int) float64 {
	wire := brightnessFactor * (math.Pow(brightnessFactor/(brightnessFactor+brightnessMax), -float64(percent)/100) - 1)
	return math.Round(clamp(wire, 0, brightnessMax))
}

func clamp(v, low, high float64) float64 {
	return math.Min(math.Max(v, low), high)
}
