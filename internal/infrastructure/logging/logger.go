package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nerrad567/homeflow/internal/infrastructure/config"
)

// Logger wraps slog.Logger with Homeflow-specific defaults.
//
// All log entries carry service and version fields. Automation and
// device packages receive this through their own narrow logger
// interfaces, so they never depend on this package directly.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Logger struct {
	*slog.Logger
}

// New creates a Logger from the logging configuration.
//
// It configures:
//   - Output format (JSON for production, text for development)
//   - Level filtering
//   - Default fields (service name, version)
//   - Output destination (stdout or stderr)
//
// Parameters:
//   - cfg: Logging configuration from config.yaml
//   - version: Application version for the default field
//
// Returns:
//   - *Logger: Configured logger ready for use
func New(cfg config.LoggingConfig, version string) *Logger {
	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		output = os.Stderr
	default:
		output = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(output, opts)
	default:
		handler = slog.NewJSONHandler(output, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", "homeflow"),
		slog.String("version", version),
	})

	return &Logger{
		Logger: slog.New(handler),
	}
}

// parseLevel converts a string log level to slog.Level.
//
// Supported levels: debug, info, warn, error.
// Defaults to info if unrecognised.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a new Logger with additional default attributes.
//
// Example:
//
//	hallwayLog := logger.With("component", "hallway")
//	hallwayLog.Info("door opened") // Includes component=hallway
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// Default creates a logger for use before configuration is loaded.
//
// Outputs to stdout in JSON format at info level. Only intended for
// early startup; replace it as soon as config is available.
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}, "dev")
}
