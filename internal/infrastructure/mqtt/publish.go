package mqtt

import (
	"encoding/json"
	"fmt"
)

// Maximum payload size for MQTT messages (1MB).
// This prevents resource exhaustion and aligns with typical broker limits.
const maxPayloadSize = 1 << 20 // 1MB

// Publish sends a message to the specified MQTT topic.
//
// Parameters:
//   - topic: The topic to publish to (e.g., "zigbee2mqtt/kitchen/kettle/set")
//   - payload: The message payload (typically JSON, max 1MB, may be empty)
//   - qos: Quality of Service level (0, 1, or 2)
//   - retained: Whether the broker should retain the message for new subscribers
//
// QoS Levels:
//   - 0: At most once (fire and forget)
//   - 1: At least once (guaranteed delivery, may duplicate)
//   - 2: Exactly once (guaranteed, no duplicates, higher overhead)
//
// Retained Messages:
//   - Use for state topics so late subscribers see the current value
//   - An empty retained payload clears the retained value on the broker
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// PublishString is a convenience method that publishes a string payload.
func (c *Client) PublishString(topic string, payload string, qos byte, retained bool) error {
	return c.Publish(topic, []byte(payload), qos, retained)
}

// PublishRetained publishes a retained message with the configured default QoS.
//
// Use for state updates where new subscribers should receive the current state.
func (c *Client) PublishRetained(topic string, payload []byte) error {
	return c.Publish(topic, payload, byte(c.cfg.QoS), true)
}

// SendMessage publishes a JSON-encoded message, retained at QoS 1.
//
// This is the transport contract devices rely on: a nil value sends an
// EMPTY payload rather than the string "null", because an empty retained
// message is how a state (e.g. an occupancy marker) is cleared.
//
// Parameters:
//   - topic: The topic to publish to
//   - v: Value to JSON-encode, or nil to send an empty payload
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
func (c *Client) SendMessage(topic string, v any) error {
	var payload []byte
	if v != nil {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("%w: encoding payload: %w", ErrPublishFailed, err)
		}
		payload = data
	}
	return c.Publish(topic, payload, 1, true)
}
