package kasa

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

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

// defaultPort is the plug's fixed command port.
const defaultPort = "9999"

// defaultTimeout bounds one connect-send-receive exchange.
const defaultTimeout = 5 * time.Second

// relayState is the set_relay_state request body.
type relayState struct {
	State int `json:"state"`
}

// request is the plug command document. Exactly one member of System
// is set per request.
type request struct {
	System struct {
		GetSysinfo    *struct{}   `json:"get_sysinfo,omitempty"`
		SetRelayState *relayState `json:"set_relay_state,omitempty"`
	} `json:"system"`
}

func sysinfoRequest() request {
	var req request
	req.System.GetSysinfo = &struct{}{}
	return req
}

func relayRequest(on bool) request {
	var req request
	state := 0
	if on {
		state = 1
	}
	req.System.SetRelayState = &relayState{State: state}
	return req
}

// response is the slice of the plug's reply the outlet cares about.
type response struct {
	System struct {
		GetSysinfo *struct {
			ErrCode    int `json:"err_code"`
			RelayState int `json:"relay_state"`
		} `json:"get_sysinfo"`
		SetRelayState *struct {
			ErrCode int `json:"err_code"`
		} `json:"set_relay_state"`
	} `json:"system"`
}

// Outlet is a TP-Link Kasa smartplug driven over its local TCP
// protocol. Each command is a fresh connection: the plugs drop idle
// sockets quickly and a reconnect costs little on a LAN.
//
// Thread Safety: safe for concurrent use; the outlet holds no mutable
// state.
type Outlet struct {
	id      string
	addr    string
	timeout time.Duration
	logger  Logger
}

// NewOutlet creates a smartplug from its config entry.
//
// Parameters:
//   - cfg: device entry; a bare host gets the default port 9999.
//   - logger: may be nil for silent operation.
//
// Returns:
//   - *Outlet: ready to register with the device manager.
//   - error: ErrNoID or ErrNoAddr on an incomplete entry.
func NewOutlet(cfg config.KasaDeviceConfig, logger Logger) (*Outlet, error) {
	if cfg.ID == "" {
		return nil, ErrNoID
	}
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoAddr, cfg.ID)
	}
	if logger == nil {
		logger = noopLogger{}
	}

	addr := cfg.Addr
	if !strings.Contains(addr, ":") {
		addr = net.JoinHostPort(addr, defaultPort)
	}

	return &Outlet{
		id:      cfg.ID,
		addr:    addr,
		timeout: defaultTimeout,
		logger:  logger,
	}, nil
}

// ID returns the device identifier.
func (o *Outlet) ID() string {
	return o.id
}

// SetOn switches the relay. Failures are logged, not returned.
func (o *Outlet) SetOn(on bool) {
	o.logger.Debug("kasa relay command", "device", o.id, "on", on)

	resp, err := o.roundTrip(relayRequest(on))
	if err != nil {
		o.logger.Error("kasa command failed", "device", o.id, "error", err)
		return
	}

	if resp.System.SetRelayState == nil {
		o.logger.Warn("kasa reply missing relay result", "device", o.id)
		return
	}
	if code := resp.System.SetRelayState.ErrCode; code != 0 {
		o.logger.Warn("kasa command rejected", "device", o.id, "err_code", code)
	}
}

// On queries the plug's live relay state. Query failures are logged
// and read as off.
func (o *Outlet) On() bool {
	resp, err := o.roundTrip(sysinfoRequest())
	if err != nil {
		o.logger.Error("kasa state query failed", "device", o.id, "error", err)
		return false
	}

	info := resp.System.GetSysinfo
	if info == nil {
		o.logger.Warn("kasa reply missing sysinfo", "device", o.id)
		return false
	}
	if info.ErrCode != 0 {
		o.logger.Warn("kasa state query rejected", "device", o.id, "err_code", info.ErrCode)
		return false
	}

	return info.RelayState == 1
}

// roundTrip performs one connect-send-receive exchange.
func (o *Outlet) roundTrip(req request) (*response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	conn, err := net.DialTimeout("tcp", o.addr, o.timeout)
	if err != nil {
		return nil, fmt.Errorf("connecting: %w", err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(o.timeout)); err != nil {
		return nil, fmt.Errorf("setting deadline: %w", err)
	}

	if _, err := conn.Write(encrypt(body)); err != nil {
		return nil, fmt.Errorf("sending command: %w", err)
	}

	var header [4]byte
	if _, err := io.ReadFull(conn, header[:]); err != nil {
		return nil, fmt.Errorf("%w: reading length: %w", ErrBadFrame, err)
	}
	length := binary.BigEndian.Uint32(header[:])
	if length == 0 || length > maxFrame {
		return nil, fmt.Errorf("%w: implausible length %d", ErrBadFrame, length)
	}

	frame := make([]byte, length)
	if _, err := io.ReadFull(conn, frame); err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrBadFrame, err)
	}

	var resp response
	if err := json.Unmarshal(decryptBody(frame), &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding reply: %w", ErrBadFrame, err)
	}
	return &resp, nil
}
