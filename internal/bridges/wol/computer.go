package wol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"strings"

	"github.com/nerrad567/homeflow/internal/infrastructure/config"
)

// Logger is the logging interface used by this package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger discards all log output.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// defaultBroadcast is the all-subnets broadcast with the discard
// port, the conventional wake-on-LAN target.
const defaultBroadcast = "255.255.255.255:9"

// activateMessage asks a device to switch on.
type activateMessage struct {
	Activate bool `json:"activate"`
}

// Computer wakes a machine over the LAN when an activate message
// arrives on its topic. Deactivation is not a thing wake-on-LAN can
// do, so activate=false is acknowledged and dropped.
//
// Thread Safety: safe for concurrent use.
type Computer struct {
	id        string
	topic     string
	mac       net.HardwareAddr
	broadcast string
	logger    Logger
}

// NewComputer creates a wake-on-LAN target from its config entry.
//
// Parameters:
//   - cfg: device entry; MAC must be a 48-bit hardware address.
//   - logger: may be nil for silent operation.
//
// Returns:
//   - *Computer: ready to register with the device manager.
//   - error: ErrNoID, ErrNoTopic or ErrBadMAC on an incomplete entry.
func NewComputer(cfg config.WOLDeviceConfig, logger Logger) (*Computer, error) {
	if cfg.ID == "" {
		return nil, ErrNoID
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoTopic, cfg.ID)
	}

	mac, err := net.ParseMAC(cfg.MAC)
	if err != nil || len(mac) != 6 {
		return nil, fmt.Errorf("%w: %s: %q", ErrBadMAC, cfg.ID, cfg.MAC)
	}

	if logger == nil {
		logger = noopLogger{}
	}

	broadcast := cfg.Broadcast
	if broadcast == "" {
		broadcast = defaultBroadcast
	} else if !strings.Contains(broadcast, ":") {
		broadcast = net.JoinHostPort(broadcast, "9")
	}

	return &Computer{
		id:        cfg.ID,
		topic:     cfg.Topic,
		mac:       mac,
		broadcast: broadcast,
		logger:    logger,
	}, nil
}

// ID returns the device identifier.
func (c *Computer) ID() string {
	return c.id
}

// Topics returns the activate message subscription.
func (c *Computer) Topics() []string {
	return []string{c.topic}
}

// HandleMessage ingests an activate message and sends the magic packet.
func (c *Computer) HandleMessage(_ string, payload []byte) {
	var msg activateMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		c.logger.Warn("unparseable activate message", "device", c.id, "error", err)
		return
	}

	if !msg.Activate {
		c.logger.Debug("deactivate requested, not supported", "device", c.id)
		return
	}

	if err := c.wake(); err != nil {
		c.logger.Error("wake packet send failed", "device", c.id, "error", err)
		return
	}
	c.logger.Info("wake packet sent", "device", c.id, "broadcast", c.broadcast)
}

// wake broadcasts one magic packet.
func (c *Computer) wake() error {
	conn, err := net.Dial("udp", c.broadcast)
	if err != nil {
		return fmt.Errorf("dialing broadcast: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Write(magicPacket(c.mac)); err != nil {
		return fmt.Errorf("writing packet: %w", err)
	}
	return nil
}

// magicPacket builds the wake frame: six 0xFF bytes followed by the
// target MAC sixteen times.
func magicPacket(mac net.HardwareAddr) []byte {
	packet := make([]byte, 0, 6+16*len(mac))
	packet = append(packet, bytes.Repeat([]byte{0xFF}, 6)...)
	for i := 0; i < 16; i++ {
		packet = append(packet, mac...)
	}
	return packet
}
