package zigbee

import (
	"encoding/json"

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

// Publisher sends raw MQTT messages. Implemented by the mqtt client.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// StateSender publishes retained JSON state; a nil value clears it.
// Implemented by the mqtt client.
type StateSender interface {
	SendMessage(topic string, v any) error
}

// BatterySink collects battery levels for the low-battery sweep.
type BatterySink interface {
	Report(deviceID string, level float64)
}

// Telemetry sinks numeric samples for dashboards. Implemented by the
// influxdb client.
type Telemetry interface {
	WriteIlluminance(deviceID string, lux float64)
	WritePower(deviceID string, watts float64)
	WriteBattery(deviceID string, percent float64)
}

// Emitter queues events for the dispatcher.
type Emitter interface {
	Emit(ev device.Event)
}

// Device commands go out at-least-once and never retained: a replayed
// command on reconnect would re-actuate hardware.
const commandQoS = 1

// setTopic returns the zigbee2mqtt command topic for a device topic.
func setTopic(topic string) string {
	return topic + "/set"
}

// sendCommand marshals and publishes a command body. Failures are
// logged, not returned: actuation is best effort and the device's own
// state report is the source of truth.
func sendCommand(p Publisher, logger Logger, id, topic string, body any) {
	if p == nil {
		return
	}
	payload, err := json.Marshal(body)
	if err != nil {
		logger.Error("command encoding failed", "device", id, "error", err)
		return
	}
	if err := p.Publish(setTopic(topic), payload, commandQoS, false); err != nil {
		logger.Warn("command publish failed", "device", id, "topic", setTopic(topic), "error", err)
	}
}

// reportBattery forwards an optional battery field to the sink and to
// telemetry.
func reportBattery(sink BatterySink, telemetry Telemetry, id string, battery *float64) {
	if battery == nil {
		return
	}
	if sink != nil {
		sink.Report(id, *battery)
	}
	if telemetry != nil {
		telemetry.WriteBattery(id, *battery)
	}
}
