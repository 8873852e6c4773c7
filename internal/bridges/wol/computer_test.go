package wol

import (
	"bytes"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/homeflow/internal/device"
	"github.com/nerrad567/homeflow/internal/infrastructure/config"
)

var _ device.MessageHandler = (*Computer)(nil)

// ─── Test Fakes ──────────────────────────────────────────────────────

// packetCatcher listens for UDP datagrams on loopback.
type packetCatcher struct {
	mu      sync.Mutex
	packets [][]byte
}

func (p *packetCatcher) received() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	cpy := make([][]byte, len(p.packets))
	copy(cpy, p.packets)
	return cpy
}

// startCatcher binds a loopback UDP socket and records datagrams.
func startCatcher(t *testing.T) (*packetCatcher, string) {
	t.Helper()

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	catcher := &packetCatcher{}
	go func() {
		buf := make([]byte, 2048)
		for {
			n, _, err := conn.ReadFrom(buf)
			if err != nil {
				return
			}
			pkt := make([]byte, n)
			copy(pkt, buf[:n])
			catcher.mu.Lock()
			catcher.packets = append(catcher.packets, pkt)
			catcher.mu.Unlock()
		}
	}()

	return catcher, conn.LocalAddr().String()
}

// waitUntil polls cond until it returns true or timeout passes.
func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

// recordingLogger counts log calls by level.
type recordingLogger struct {
	mu    sync.Mutex
	warns int
}

func (l *recordingLogger) Debug(string, ...any) {}
func (l *recordingLogger) Info(string, ...any)  {}
func (l *recordingLogger) Error(string, ...any) {}

func (l *recordingLogger) Warn(string, ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns++
}

func (l *recordingLogger) warnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.warns
}

func computerConfig(broadcast string) config.WOLDeviceConfig {
	return config.WOLDeviceConfig{
		ID:        "office-pc",
		MAC:       "AA:BB:CC:DD:EE:FF",
		Topic:     "homeflow/office/pc",
		Broadcast: broadcast,
	}
}

// ─── Tests ───────────────────────────────────────────────────────────

func TestNewComputer_Validation(t *testing.T) {
	cfg := computerConfig("")
	cfg.ID = ""
	if _, err := NewComputer(cfg, nil); !errors.Is(err, ErrNoID) {
		t.Errorf("missing id error = %v, want ErrNoID", err)
	}

	cfg = computerConfig("")
	cfg.Topic = ""
	if _, err := NewComputer(cfg, nil); !errors.Is(err, ErrNoTopic) {
		t.Errorf("missing topic error = %v, want ErrNoTopic", err)
	}

	cfg = computerConfig("")
	cfg.MAC = "not-a-mac"
	if _, err := NewComputer(cfg, nil); !errors.Is(err, ErrBadMAC) {
		t.Errorf("bad mac error = %v, want ErrBadMAC", err)
	}

	// EUI-64 parses but is not a wake-on-LAN address.
	cfg = computerConfig("")
	cfg.MAC = "01:23:45:67:89:ab:cd:ef"
	if _, err := NewComputer(cfg, nil); !errors.Is(err, ErrBadMAC) {
		t.Errorf("eui-64 error = %v, want ErrBadMAC", err)
	}
}

func TestMagicPacket_Shape(t *testing.T) {
	mac := net.HardwareAddr{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}

	packet := magicPacket(mac)

	if len(packet) != 102 {
		t.Fatalf("packet length = %d, want 102", len(packet))
	}
	if !bytes.Equal(packet[:6], bytes.Repeat([]byte{0xFF}, 6)) {
		t.Errorf("header = % x, want six 0xFF", packet[:6])
	}
	for i := 0; i < 16; i++ {
		start := 6 + i*6
		if !bytes.Equal(packet[start:start+6], mac) {
			t.Errorf("repetition %d = % x, want % x", i, packet[start:start+6], mac)
		}
	}
}

func TestHandleMessage_ActivateSendsPacket(t *testing.T) {
	catcher, addr := startCatcher(t)
	computer, err := NewComputer(computerConfig(addr), nil)
	if err != nil {
		t.Fatalf("NewComputer() error = %v", err)
	}

	computer.HandleMessage("", []byte(`{"activate":true}`))

	if !waitUntil(t, time.Second, func() bool { return len(catcher.received()) == 1 }) {
		t.Fatal("no packet arrived")
	}
	packet := catcher.received()[0]
	if len(packet) != 102 || packet[0] != 0xFF {
		t.Errorf("received % x, want a magic packet", packet[:8])
	}
}

func TestHandleMessage_DeactivateIgnored(t *testing.T) {
	catcher, addr := startCatcher(t)
	computer, err := NewComputer(computerConfig(addr), nil)
	if err != nil {
		t.Fatalf("NewComputer() error = %v", err)
	}

	computer.HandleMessage("", []byte(`{"activate":false}`))

	time.Sleep(50 * time.Millisecond)
	if got := catcher.received(); len(got) != 0 {
		t.Errorf("received %d packets, want none", len(got))
	}
}

func TestHandleMessage_MalformedPayloadLogged(t *testing.T) {
	logger := &recordingLogger{}
	computer, err := NewComputer(computerConfig(""), logger)
	if err != nil {
		t.Fatalf("NewComputer() error = %v", err)
	}

	computer.HandleMessage("", []byte(`activate`))

	if logger.warnCount() != 1 {
		t.Errorf("warnCount = %d, want 1", logger.warnCount())
	}
}
