package automation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/nerrad567/homeflow/internal/infrastructure/ntfy"
)

// lowBatteryThreshold is the level below which a device is reported.
const lowBatteryThreshold = 15

// Notifier delivers a push notification. Implemented by the ntfy client.
type Notifier interface {
	Send(ctx context.Context, n ntfy.Notification) error
}

// BatteryMonitor accumulates low-battery readings and emits one
// consolidated notification on demand.
//
// A device reporting back above the threshold is silently dropped from
// the registry, so a sensor that recovers (or gets a fresh battery)
// heals itself out of the next report. Entries are not cleared by
// notifying; a flat battery nags daily until replaced.
//
// Thread Safety:
//   - Report and NotifyIfAny are safe for concurrent use.
type BatteryMonitor struct {
	mu     sync.Mutex
	levels map[string]float64

	notifier Notifier
	logger   Logger
}

// NewBatteryMonitor creates an empty monitor.
//
// Parameters:
//   - notifier: Notification sink; nil disables sending
//   - logger: Logger instance (nil for no logging)
func NewBatteryMonitor(notifier Notifier, logger Logger) *BatteryMonitor {
	if logger == nil {
		logger = noopLogger{}
	}
	return &BatteryMonitor{
		levels:   make(map[string]float64),
		notifier: notifier,
		logger:   logger,
	}
}

// Report records one battery reading. Levels below the threshold are
// upserted into the registry; anything else removes the device.
//
// Parameters:
//   - deviceID: Reporting device
//   - level: Remaining charge, 0-100
func (b *BatteryMonitor) Report(deviceID string, level float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if level < lowBatteryThreshold {
		b.levels[deviceID] = level
		b.logger.Debug("low battery recorded", "device", deviceID, "level", level)
		return
	}

	delete(b.levels, deviceID)
}

// NotifyIfAny sends a single notification listing every device in the
// registry, one "{deviceId}: {level}%" line per entry, sorted by device
// ID. An empty registry sends nothing. Meant to be invoked by a daily
// schedule.
func (b *BatteryMonitor) NotifyIfAny() {
	b.mu.Lock()
	if len(b.levels) == 0 {
		b.mu.Unlock()
		return
	}

	ids := make([]string, 0, len(b.levels))
	for id := range b.levels {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	lines := make([]string, len(ids))
	for i, id := range ids {
		lines[i] = fmt.Sprintf("%s: %v%%", id, b.levels[id])
	}
	b.mu.Unlock()

	if b.notifier == nil {
		return
	}

	n := ntfy.Notification{
		Title:    "Low battery",
		Message:  strings.Join(lines, "\n"),
		Tags:     []string{"battery"},
		Priority: ntfy.PriorityDefault,
	}

	if err := b.notifier.Send(context.Background(), n); err != nil {
		b.logger.Error("battery notification failed", "error", err)
		return
	}

	b.logger.Info("battery notification sent", "devices", len(lines))
}
