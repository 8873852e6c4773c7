package device

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nerrad567/homeflow/internal/infrastructure/ntfy"
)

// Logger defines the logging interface used by the Manager.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Transport subscribes MQTT topic filters on behalf of devices.
// Implemented by a thin adapter over the mqtt client.
type Transport interface {
	Subscribe(topic string, handler func(topic string, payload []byte) error) error
}

// Notifier delivers push notifications for NotificationEvents.
type Notifier interface {
	Send(ctx context.Context, n ntfy.Notification) error
}

// Recorder journals dispatched events for after-the-fact inspection.
// Implemented by the history journal.
type Recorder interface {
	Record(ctx context.Context, kind, subject, detail string) error
}

// eventBuffer is the dispatch queue depth. Handlers are quick, so the
// queue only fills if the dispatcher has stalled outright.
const eventBuffer = 128

// maxJournalDetail truncates payloads before journaling.
const maxJournalDetail = 256

// Manager owns the registered devices and the single dispatch sequence.
//
// All inbound activity (MQTT messages, presence and darkness
// transitions, notification requests) funnels through one channel and
// is handed to device handlers sequentially on the Run goroutine, so
// handlers never race each other.
//
// Thread Safety:
//   - Register, Emit, Get and Len are safe for concurrent use.
//   - Handler invocations are serialised by the dispatcher.
type Manager struct {
	mu      sync.RWMutex
	devices map[string]Device
	order   []string

	events    chan Event
	transport Transport
	notifier  Notifier
	recorder  Recorder
	logger    Logger
}

// NewManager creates an empty manager.
//
// Parameters:
//   - transport: Topic subscription target; nil skips MQTT wiring
//   - notifier: Sink for NotificationEvents; nil drops them
//   - recorder: Event journal; nil disables journaling
//   - logger: Logger instance (nil for no logging)
func NewManager(transport Transport, notifier Notifier, recorder Recorder, logger Logger) *Manager {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Manager{
		devices:   make(map[string]Device),
		events:    make(chan Event, eventBuffer),
		transport: transport,
		notifier:  notifier,
		recorder:  recorder,
		logger:    logger,
	}
}

// Register adds a device for dispatch and subscribes its MQTT topics.
//
// A device implementing MessageHandler has each of its topic filters
// subscribed on the transport; inbound messages are fed back into the
// dispatch queue. Subscription failures are logged and do not fail
// registration, matching the fire-and-forget transport contract.
//
// Parameters:
//   - dev: The device to register
//
// Returns:
//   - error: ErrNoID for an empty ID, ErrDuplicateID if already registered
func (m *Manager) Register(dev Device) error {
	if dev == nil {
		return ErrNoID
	}
	id := dev.ID()
	if id == "" {
		return ErrNoID
	}

	m.mu.Lock()
	if _, exists := m.devices[id]; exists {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	m.devices[id] = dev
	m.order = append(m.order, id)
	m.mu.Unlock()

	m.logger.Debug("device registered", "device", id)

	if handler, ok := dev.(MessageHandler); ok && m.transport != nil {
		for _, topic := range handler.Topics() {
			err := m.transport.Subscribe(topic, func(topic string, payload []byte) error {
				m.Emit(MessageEvent{Topic: topic, Payload: payload})
				return nil
			})
			if err != nil {
				m.logger.Error("topic subscription failed",
					"device", id,
					"topic", topic,
					"error", err,
				)
			}
		}
	}

	return nil
}

// Get returns a registered device by ID.
func (m *Manager) Get(id string) (Device, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	dev, ok := m.devices[id]
	return dev, ok
}

// Len returns the number of registered devices.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.devices)
}

// Emit queues an event for dispatch. It never blocks: if the queue is
// full the event is dropped with a warning, which beats deadlocking a
// handler that emits while the dispatcher is busy.
func (m *Manager) Emit(ev Event) {
	select {
	case m.events <- ev:
	default:
		m.logger.Warn("event queue full, dropping event", "event", fmt.Sprintf("%T", ev))
	}
}

// Run consumes the event queue until ctx is cancelled. It is the single
// dispatch sequence: device handlers only ever run here.
func (m *Manager) Run(ctx context.Context) error {
	m.logger.Info("dispatcher started", "devices", m.Len())

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("dispatcher stopped")
			return nil
		case ev := <-m.events:
			m.dispatch(ctx, ev)
		}
	}
}

// dispatch routes one event to the interested devices.
func (m *Manager) dispatch(ctx context.Context, ev Event) {
	switch e := ev.(type) {
	case MessageEvent:
		m.record(ctx, "message", e.Topic, string(e.Payload))
		m.eachDevice(func(id string, dev Device) {
			handler, ok := dev.(MessageHandler)
			if !ok || !subscribed(handler.Topics(), e.Topic) {
				return
			}
			m.invoke(id, func() { handler.HandleMessage(e.Topic, e.Payload) })
		})

	case PresenceEvent:
		m.record(ctx, "presence", "overall", fmt.Sprintf("%t", e.Present))
		m.eachDevice(func(id string, dev Device) {
			handler, ok := dev.(PresenceHandler)
			if !ok {
				return
			}
			m.invoke(id, func() { handler.HandlePresence(e.Present) })
		})

	case DarknessEvent:
		m.record(ctx, "darkness", "overall", fmt.Sprintf("%t", e.Dark))
		m.eachDevice(func(id string, dev Device) {
			handler, ok := dev.(DarknessHandler)
			if !ok {
				return
			}
			m.invoke(id, func() { handler.HandleDarkness(e.Dark) })
		})

	case NotificationEvent:
		m.record(ctx, "notification", e.Notification.Title, e.Notification.Message)
		if m.notifier == nil {
			return
		}
		if err := m.notifier.Send(ctx, e.Notification); err != nil {
			m.logger.Error("notification delivery failed",
				"title", e.Notification.Title,
				"error", err,
			)
		}

	default:
		m.logger.Warn("unhandled event type", "event", fmt.Sprintf("%T", ev))
	}
}

// eachDevice visits devices in registration order.
func (m *Manager) eachDevice(visit func(id string, dev Device)) {
	m.mu.RLock()
	order := make([]string, len(m.order))
	copy(order, m.order)
	m.mu.RUnlock()

	for _, id := range order {
		m.mu.RLock()
		dev, ok := m.devices[id]
		m.mu.RUnlock()
		if ok {
			visit(id, dev)
		}
	}
}

// invoke runs one device handler with panic isolation so a broken
// device cannot stall dispatch for the others.
func (m *Manager) invoke(id string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("device handler panicked", "device", id, "panic", r)
		}
	}()

	fn()
}

// record journals an event, best effort.
func (m *Manager) record(ctx context.Context, kind, subject, detail string) {
	if m.recorder == nil {
		return
	}
	if len(detail) > maxJournalDetail {
		detail = detail[:maxJournalDetail]
	}
	if err := m.recorder.Record(ctx, kind, subject, detail); err != nil {
		m.logger.Warn("event journaling failed", "kind", kind, "error", err)
	}
}

// subscribed reports whether topic matches any of the filters.
func subscribed(filters []string, topic string) bool {
	for _, filter := range filters {
		if matchTopic(filter, topic) {
			return true
		}
	}
	return false
}

// matchTopic implements MQTT topic filter matching with + and #
// wildcards. The broker does the real filtering; this only picks which
// registered device a delivered message belongs to.
func matchTopic(filter, topic string) bool {
	if filter == topic {
		return true
	}

	filterParts := strings.Split(filter, "/")
	topicParts := strings.Split(topic, "/")

	for i, part := range filterParts {
		// '#' matches the remainder, including the parent level itself.
		if part == "#" {
			return i == len(filterParts)-1
		}
		if i >= len(topicParts) {
			return false
		}
		if part != "+" && part != topicParts[i] {
			return false
		}
	}

	return len(filterParts) == len(topicParts)
}
