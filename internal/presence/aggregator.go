package presence

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/nerrad567/homeflow/internal/automation"
	"github.com/nerrad567/homeflow/internal/device"
)

// Logger is the logging interface used by this package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger discards all log output.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Emitter queues events for the dispatcher.
type Emitter interface {
	Emit(ev device.Event)
}

// stateMessage is the retained per-source payload, e.g. {"state": true}.
// Publishers may attach extra fields (timestamps); they are ignored.
type stateMessage struct {
	State bool `json:"state"`
}

// Aggregator folds per-source presence topics into a single boolean.
//
// Each source (a phone, a laptop) publishes a retained state message on
// its own topic under the configured wildcard filter. The home counts
// as occupied while any source reports present. Sources disappear by
// publishing an empty retained payload, which clears their entry.
//
// On an overall change the aggregator publishes to its hub and emits a
// PresenceEvent so handler devices react too.
//
// Thread Safety: safe for concurrent use. The mutex guards the source
// map only; hub and emitter calls happen outside it.
type Aggregator struct {
	mu      sync.Mutex
	sources map[string]bool
	overall bool

	topic   string
	offset  int // index of the wildcard in topic; names the source
	hub     *automation.Hub
	emitter Emitter
	logger  Logger
}

// NewAggregator creates a presence aggregator subscribed to topic.
//
// Parameters:
//   - topic: MQTT filter with a wildcard, e.g. "homeflow/presence/+".
//     The wildcard portion of an incoming topic names the source.
//   - hub: receives the overall boolean on change. May be nil.
//   - emitter: receives a PresenceEvent on change. May be nil.
//   - logger: may be nil for silent operation.
//
// Returns:
//   - *Aggregator: ready to register with the device manager.
//   - error: ErrNoWildcard if topic cannot name sources.
func NewAggregator(topic string, hub *automation.Hub, emitter Emitter, logger Logger) (*Aggregator, error) {
	offset := strings.IndexAny(topic, "+#")
	if offset < 0 {
		return nil, ErrNoWildcard
	}
	if logger == nil {
		logger = noopLogger{}
	}

	return &Aggregator{
		sources: make(map[string]bool),
		topic:   topic,
		offset:  offset,
		hub:     hub,
		emitter: emitter,
		logger:  logger,
	}, nil
}

// ID returns the fixed device identifier.
func (a *Aggregator) ID() string {
	return "presence"
}

// Topics returns the subscription filter.
func (a *Aggregator) Topics() []string {
	return []string{a.topic}
}

// Present returns the current overall presence.
func (a *Aggregator) Present() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.overall
}

// HandleMessage updates one source from a retained state message.
//
// An empty payload removes the source. A malformed payload is logged
// and leaves the source untouched.
func (a *Aggregator) HandleMessage(topic string, payload []byte) {
	source := topic
	if a.offset < len(topic) {
		source = topic[a.offset:]
	}

	a.mu.Lock()
	if len(payload) == 0 {
		delete(a.sources, source)
		a.logger.Debug("presence source removed", "source", source)
	} else {
		var msg stateMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			a.mu.Unlock()
			a.logger.Warn("unparseable presence payload", "source", source, "error", err)
			return
		}
		a.sources[source] = msg.State
		a.logger.Debug("presence source updated", "source", source, "present", msg.State)
	}

	overall := false
	for _, present := range a.sources {
		if present {
			overall = true
			break
		}
	}
	changed := overall != a.overall
	a.overall = overall
	count := len(a.sources)
	a.mu.Unlock()

	if !changed {
		return
	}

	a.logger.Info("overall presence changed", "present", overall, "sources", count)
	if a.hub != nil {
		a.hub.Publish(overall)
	}
	if a.emitter != nil {
		a.emitter.Emit(device.PresenceEvent{Present: overall})
	}
}
