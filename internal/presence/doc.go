// Package presence derives a single home/away boolean from per-source
// MQTT topics.
//
// Phones and other trackers publish retained {"state": bool} messages
// under a shared wildcard filter. The Aggregator keeps one entry per
// source and reports the home occupied while any entry is true. The
// Announcer turns transitions into push notifications with a one-tap
// override action.
package presence
