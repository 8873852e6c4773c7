package hue

import (
	"fmt"
	"net/http"

	"github.com/nerrad567/homeflow/internal/infrastructure/config"
)

// Bridge mirrors overall presence and darkness into CLIP generic flag
// sensors on the Hue bridge, where the bridge's own rules (wake-up
// routines, motion zones) can react to them.
//
// A flag ID of zero disables that mirror.
//
// Thread Safety: safe for concurrent use.
type Bridge struct {
	id             string
	presenceFlagID int
	darknessFlagID int
	base           string

	httpClient *http.Client
	logger     Logger
}

// flagMessage is the CLIP flag sensor state body.
type flagMessage struct {
	Flag bool `json:"flag"`
}

// NewBridge creates the flag mirror from configuration.
//
// Parameters:
//   - cfg: bridge configuration (addr, token, timeout, flag IDs).
//   - logger: may be nil for silent operation.
//
// Returns:
//   - *Bridge: ready to register with the device manager.
//   - error: ErrNoAddr or ErrNoToken on an incomplete entry.
func NewBridge(cfg config.HueConfig, logger Logger) (*Bridge, error) {
	if cfg.Addr == "" {
		return nil, ErrNoAddr
	}
	if cfg.Token == "" {
		return nil, ErrNoToken
	}
	if logger == nil {
		logger = noopLogger{}
	}

	timeout := cfg.GetTimeout()
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Bridge{
		id:             "hue-bridge",
		presenceFlagID: cfg.PresenceFlagID,
		darknessFlagID: cfg.DarknessFlagID,
		base:           baseURL(cfg.Addr, cfg.Token),
		httpClient:     &http.Client{Timeout: timeout},
		logger:         logger,
	}, nil
}

// ID returns the device identifier.
func (b *Bridge) ID() string {
	return b.id
}

// HandlePresence mirrors the overall presence state to its flag.
func (b *Bridge) HandlePresence(present bool) {
	b.setFlag(b.presenceFlagID, present)
}

// HandleDarkness mirrors the darkness state to its flag.
func (b *Bridge) HandleDarkness(dark bool) {
	b.setFlag(b.darknessFlagID, dark)
}

// setFlag writes one CLIP flag sensor.
func (b *Bridge) setFlag(flagID int, value bool) {
	if flagID <= 0 {
		return
	}

	b.logger.Debug("hue flag update", "device", b.id, "flag", flagID, "value", value)
	url := fmt.Sprintf("%s/sensors/%d/state", b.base, flagID)
	putJSON(b.httpClient, b.logger, b.id, url, flagMessage{Flag: value})
}
