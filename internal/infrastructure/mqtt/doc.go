// Package mqtt provides MQTT client connectivity for Homeflow.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// MQTT is the event backbone of the house: zigbee2mqtt publishes sensor
// and device state, presence sources publish per-person topics, and
// Homeflow publishes device commands and its own status.
//
//	zigbee2mqtt / presence sources ↔ MQTT Broker ↔ Homeflow
//
// Incoming messages are pushed onto the dispatcher's event channel by a
// thin handler; all automation work happens on the dispatcher goroutine,
// never on paho's.
//
// # Message Conventions
//
// SendMessage is the transport contract device code builds on: values
// are JSON-encoded and published retained at QoS 1, and a nil value
// sends an empty payload, which clears the retained message. Retained
// state plus clean sessions means a restart repopulates device state
// from the broker without any local persistence.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe("zigbee2mqtt/kitchen/kettle", 1,
//	    func(topic string, payload []byte) error {
//	        events <- device.MessageEvent{Topic: topic, Payload: payload}
//	        return nil
//	    })
package mqtt
