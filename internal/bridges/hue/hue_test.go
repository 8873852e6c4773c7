package hue

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/nerrad567/homeflow/internal/automation"
	"github.com/nerrad567/homeflow/internal/device"
	"github.com/nerrad567/homeflow/internal/infrastructure/config"
)

// Compile-time capability checks.
var (
	_ device.OnOff      = (*Group)(nil)
	_ automation.Switch = (*Group)(nil)

	_ device.PresenceHandler = (*Bridge)(nil)
	_ device.DarknessHandler = (*Bridge)(nil)
)

// ─── Test Fakes ──────────────────────────────────────────────────────

// bridgeRequest captures one request to the fake bridge.
type bridgeRequest struct {
	method string
	path   string
	body   string
}

// fakeBridge is an httptest handler standing in for the Hue bridge.
type fakeBridge struct {
	mu       sync.Mutex
	requests []bridgeRequest
	status   int
	response string
}

func (f *fakeBridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, bridgeRequest{r.Method, r.URL.Path, string(body)})
	status := f.status
	response := f.response
	f.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
	}
	if response != "" {
		w.Write([]byte(response))
	}
}

func (f *fakeBridge) recorded() []bridgeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	cpy := make([]bridgeRequest, len(f.requests))
	copy(cpy, f.requests)
	return cpy
}

// newTestBridge starts a fake bridge and returns config pointing at it.
func newTestBridge(t *testing.T) (*fakeBridge, config.HueConfig) {
	t.Helper()

	fake := &fakeBridge{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	return fake, config.HueConfig{
		Enabled:        true,
		Addr:           strings.TrimPrefix(srv.URL, "http://"),
		Token:          "s3cret-user",
		Timeout:        2,
		PresenceFlagID: 42,
		DarknessFlagID: 7,
	}
}

// recordingLogger counts log calls by level.
type recordingLogger struct {
	mu    sync.Mutex
	warns int
	errs  int
}

func (l *recordingLogger) Debug(string, ...any) {}
func (l *recordingLogger) Info(string, ...any)  {}

func (l *recordingLogger) Warn(string, ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns++
}

func (l *recordingLogger) Error(string, ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs++
}

func (l *recordingLogger) warnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.warns
}

func (l *recordingLogger) errCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errs
}
