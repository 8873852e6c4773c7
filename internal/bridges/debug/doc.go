// Package debug mirrors derived automation conditions to retained
// MQTT topics for inspection.
package debug
