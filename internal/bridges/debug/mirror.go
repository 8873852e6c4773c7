package debug

import (
	"time"

	"github.com/nerrad567/homeflow/internal/infrastructure/config"
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

// StateSender publishes retained JSON state. Implemented by the mqtt
// client.
type StateSender interface {
	SendMessage(topic string, v any) error
}

// stateMessage is the mirrored condition payload.
type stateMessage struct {
	State   bool  `json:"state"`
	Updated int64 `json:"updated"`
}

// Mirror publishes the derived presence and darkness conditions to
// retained MQTT topics, so a dashboard or mosquitto_sub can inspect
// what the automations currently believe.
//
// Thread Safety: safe for concurrent use.
type Mirror struct {
	id     string
	topic  string
	sender StateSender
	logger Logger
}

// NewMirror creates the condition mirror from configuration.
//
// Parameters:
//   - cfg: debug configuration; Topic is the base topic.
//   - sender: retained state transport.
//   - logger: may be nil for silent operation.
//
// Returns:
//   - *Mirror: ready to register with the device manager.
//   - error: ErrNoTopic when the base topic is missing.
func NewMirror(cfg config.DebugConfig, sender StateSender, logger Logger) (*Mirror, error) {
	if cfg.Topic == "" {
		return nil, ErrNoTopic
	}
	if logger == nil {
		logger = noopLogger{}
	}

	return &Mirror{
		id:     "debug-mirror",
		topic:  cfg.Topic,
		sender: sender,
		logger: logger,
	}, nil
}

// ID returns the device identifier.
func (m *Mirror) ID() string {
	return m.id
}

// HandlePresence mirrors the overall presence state.
func (m *Mirror) HandlePresence(present bool) {
	m.publish(m.topic+"/presence", present)
}

// HandleDarkness mirrors the darkness state.
func (m *Mirror) HandleDarkness(dark bool) {
	m.publish(m.topic+"/darkness", dark)
}

func (m *Mirror) publish(topic string, state bool) {
	if m.sender == nil {
		return
	}

	msg := stateMessage{State: state, Updated: time.Now().UnixMilli()}
	if err := m.sender.SendMessage(topic, msg); err != nil {
		m.logger.Warn("condition mirror publish failed", "topic", topic, "error", err)
	}
}
