// Package logging provides structured logging for Homeflow.
//
// This package wraps Go's standard log/slog package so every component
// logs through one consistent, structured surface.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("connected to broker", "host", cfg.MQTT.Broker.Host)
//	logger.Error("publish failed", "topic", topic, "error", err)
//
// Never log broker credentials, Hue tokens, or ntfy topics in full.
package logging
