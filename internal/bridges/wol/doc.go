// Package wol wakes machines with wake-on-LAN magic packets in
// response to MQTT activate messages.
package wol
