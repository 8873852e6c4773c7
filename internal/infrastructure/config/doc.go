// Package config loads and validates Homeflow configuration.
//
// Configuration is a single YAML file describing the broker connection,
// the notification and Hue collaborators, optional telemetry and history
// sinks, every device the dispatcher owns, and the automation bindings
// (hallway devices, cron schedules).
//
// # Resolution Order
//
//  1. Built-in defaults (defaultConfig)
//  2. Values from the YAML file
//  3. HOMEFLOW_* environment variable overrides (secrets and endpoints)
//
// # Validation
//
// Load fails fast on any problem: unknown device kinds, duplicate device
// IDs, missing required fields, out-of-range ports. All problems are
// collected and reported in one error so a broken file can be fixed in
// a single pass. A failed validation is fatal before startup; nothing
// is half-started on bad config.
//
// # Usage
//
//	cfg, err := config.Load("config.yaml")
//	if err != nil {
//	    return err
//	}
//	client := mqtt.NewClient(cfg.MQTT)
package config
