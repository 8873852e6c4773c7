package automation

import "sync"

// Hub fans a boolean condition out to an ordered list of subscribers.
//
// It decouples the sensor that detects a condition (presence, ambient
// darkness) from the consumers that react to it. Subscribers are
// invoked synchronously in registration order; there is no removal
// primitive, matching a wire-once-at-boot model.
//
// Thread Safety:
//   - Add and Publish are safe for concurrent use. The subscriber list
//     is copied before fan-out so no lock is held across callbacks.
type Hub struct {
	mu     sync.Mutex
	name   string
	subs   []func(bool)
	logger Logger
}

// NewHub creates an empty hub.
//
// Parameters:
//   - name: Condition name used in log entries (e.g. "presence")
//   - logger: Logger for subscriber panics (nil for no logging)
func NewHub(name string, logger Logger) *Hub {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Hub{name: name, logger: logger}
}

// Add appends a subscriber. Duplicates are allowed; nil is ignored.
func (h *Hub) Add(fn func(bool)) {
	if fn == nil {
		return
	}

	h.mu.Lock()
	h.subs = append(h.subs, fn)
	h.mu.Unlock()
}

// Publish invokes every subscriber in registration order with value.
//
// A panic in one subscriber is logged and does not prevent the
// remaining subscribers from running.
func (h *Hub) Publish(value bool) {
	h.mu.Lock()
	subs := make([]func(bool), len(h.subs))
	copy(subs, h.subs)
	h.mu.Unlock()

	for i, fn := range subs {
		h.notify(i, fn, value)
	}
}

// notify runs one subscriber with panic isolation.
func (h *Hub) notify(index int, fn func(bool), value bool) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("subscriber panicked",
				"hub", h.name,
				"subscriber", index,
				"panic", r,
			)
		}
	}()

	fn(value)
}

// Len returns the number of registered subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
