package zigbee

import (
	"fmt"
	"sync"

	"github.com/nerrad567/homeflow/internal/device"
	"github.com/nerrad567/homeflow/internal/infrastructure/config"
	"github.com/nerrad567/homeflow/internal/infrastructure/ntfy"
)

// A washer counts as running only after this many consecutive reports
// above the power threshold, so door-lock and standby spikes never
// mark a cycle.
const runningHysteresis = 10

// Washer watches a power metering plug and announces the end of a
// laundry cycle.
//
// The first report back below the threshold after a latched run fires
// a notification event; a low report before the latch just resets the
// counter.
//
// Thread Safety: safe for concurrent use.
type Washer struct {
	mu      sync.Mutex
	running int

	id        string
	topic     string
	threshold float64

	emitter   Emitter
	telemetry Telemetry
	logger    Logger
}

// powerReport is the state payload published on the plug topic.
type powerReport struct {
	Power *float64 `json:"power"`
}

// NewWasher creates a washer watcher from its config entry.
//
// Parameters:
//   - cfg: device entry; RunningThreshold is the watt level that
//     counts as running.
//   - emitter: receives the cycle-done notification event. May be nil.
//   - telemetry: power sample sink. May be nil.
//   - logger: may be nil for silent operation.
//
// Returns:
//   - *Washer: ready to register with the device manager.
//   - error: ErrNoID or ErrNoTopic on an incomplete entry.
func NewWasher(cfg config.ZigbeeDeviceConfig, emitter Emitter, telemetry Telemetry, logger Logger) (*Washer, error) {
	if cfg.ID == "" {
		return nil, ErrNoID
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoTopic, cfg.ID)
	}
	if logger == nil {
		logger = noopLogger{}
	}

	return &Washer{
		id:        cfg.ID,
		topic:     cfg.Topic,
		threshold: cfg.RunningThreshold,
		emitter:   emitter,
		telemetry: telemetry,
		logger:    logger,
	}, nil
}

// ID returns the device identifier.
func (w *Washer) ID() string {
	return w.id
}

// Topics returns the power report subscription.
func (w *Washer) Topics() []string {
	return []string{w.topic}
}

// HandleMessage ingests a power report.
func (w *Washer) HandleMessage(_ string, payload []byte) {
	var report powerReport
	if err := parsePayload(payload, &report); err != nil {
		w.logger.Warn("unparseable washer report", "device", w.id, "error", err)
		return
	}
	if report.Power == nil {
		return
	}
	power := *report.Power

	if w.telemetry != nil {
		w.telemetry.WritePower(w.id, power)
	}

	w.mu.Lock()
	var done bool
	switch {
	case power < w.threshold && w.running >= runningHysteresis:
		done = true
		w.running = 0
	case power < w.threshold:
		w.running = 0
	case w.running < runningHysteresis:
		w.running++
	}
	w.mu.Unlock()

	if !done {
		return
	}

	w.logger.Info("washer cycle finished", "device", w.id, "power", power)
	if w.emitter == nil {
		return
	}
	w.emitter.Emit(device.NotificationEvent{Notification: ntfy.Notification{
		Title:    "Laundry is done",
		Message:  "Don't forget to hang it!",
		Tags:     []string{"womans_clothes"},
		Priority: ntfy.PriorityHigh,
	}})
}
