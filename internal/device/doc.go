// Package device defines the capability contracts devices expose to
// the automation core and the Manager that routes events to them.
//
// Capabilities (OnOff, Brightness, ColorTemperature, OpenClose) are
// narrow interfaces: the core calls them, bridges implement them.
// Setters are fire-and-forget; reported state arrives later through
// the device's own transport.
//
// The Manager is the single dispatch sequence. Inbound MQTT messages,
// presence and darkness transitions, and notification requests all
// funnel through one queue and reach device handlers sequentially on
// the Run goroutine. Devices opt into traffic by implementing the
// optional handler interfaces:
//
//   - MessageHandler: MQTT messages matching the device's topic filters
//   - PresenceHandler: overall occupancy transitions
//   - DarknessHandler: ambient light transitions
//
// A handler panic is isolated and logged; the remaining devices still
// see the event.
package device
