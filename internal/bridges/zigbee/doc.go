// Package zigbee adapts zigbee2mqtt devices to the device manager and
// the automation layer.
//
// Every device here follows the same pattern: commands are published
// to {topic}/set and never retained, state is ingested from reports on
// {topic}, and the cached state only changes when the device reports
// back. Decoded intents and transitions (button presses, contact
// changes, darkness) fan out through automation hubs; battery fields
// go to the shared low-battery sink; numeric samples go to telemetry.
//
// Report structs use pointer fields because zigbee2mqtt payloads are
// sparse: a report may carry any subset of state, power, battery, and
// friends.
package zigbee
