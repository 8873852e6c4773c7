package hue

import (
	"errors"
	"testing"
)

func TestNewBridge_Validation(t *testing.T) {
	_, cfg := newTestBridge(t)

	noAddr := cfg
	noAddr.Addr = ""
	if _, err := NewBridge(noAddr, nil); !errors.Is(err, ErrNoAddr) {
		t.Errorf("missing addr error = %v, want ErrNoAddr", err)
	}

	noToken := cfg
	noToken.Token = ""
	if _, err := NewBridge(noToken, nil); !errors.Is(err, ErrNoToken) {
		t.Errorf("missing token error = %v, want ErrNoToken", err)
	}
}

func TestBridge_MirrorsPresence(t *testing.T) {
	fake, cfg := newTestBridge(t)
	bridge, err := NewBridge(cfg, nil)
	if err != nil {
		t.Fatalf("NewBridge() error = %v", err)
	}

	bridge.HandlePresence(true)
	bridge.HandlePresence(false)

	requests := fake.recorded()
	if len(requests) != 2 {
		t.Fatalf("bridge saw %d requests, want 2", len(requests))
	}
	for _, req := range requests {
		if req.method != "PUT" || req.path != "/api/s3cret-user/sensors/42/state" {
			t.Errorf("flag update = %+v", req)
		}
	}
	if requests[0].body != `{"flag":true}` || requests[1].body != `{"flag":false}` {
		t.Errorf("flag bodies = %q, %q", requests[0].body, requests[1].body)
	}
}

func TestBridge_MirrorsDarkness(t *testing.T) {
	fake, cfg := newTestBridge(t)
	bridge, err := NewBridge(cfg, nil)
	if err != nil {
		t.Fatalf("NewBridge() error = %v", err)
	}

	bridge.HandleDarkness(true)

	requests := fake.recorded()
	if len(requests) != 1 {
		t.Fatalf("bridge saw %d requests, want 1", len(requests))
	}
	if requests[0].path != "/api/s3cret-user/sensors/7/state" || requests[0].body != `{"flag":true}` {
		t.Errorf("flag update = %+v", requests[0])
	}
}

func TestBridge_ZeroFlagIDSkipsMirror(t *testing.T) {
	fake, cfg := newTestBridge(t)
	cfg.PresenceFlagID = 0
	bridge, err := NewBridge(cfg, nil)
	if err != nil {
		t.Fatalf("NewBridge() error = %v", err)
	}

	bridge.HandlePresence(true)

	if requests := fake.recorded(); len(requests) != 0 {
		t.Errorf("bridge saw %v, want no requests", requests)
	}
}

func TestBridge_RejectedFlagLogged(t *testing.T) {
	fake, cfg := newTestBridge(t)
	fake.status = 500
	logger := &recordingLogger{}
	bridge, err := NewBridge(cfg, logger)
	if err != nil {
		t.Fatalf("NewBridge() error = %v", err)
	}

	bridge.HandleDarkness(true)

	if logger.warnCount() != 1 {
		t.Errorf("warnCount = %d, want 1", logger.warnCount())
	}
}
