package influxdb_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/homeflow/internal/infrastructure/config"
	"github.com/nerrad567/homeflow/internal/infrastructure/influxdb"
)

// fakeInflux is a minimal InfluxDB v2 HTTP endpoint: it answers pings
// and captures line-protocol write bodies.
type fakeInflux struct {
	server *httptest.Server

	mu     sync.Mutex
	bodies []string

	// writeStatus lets failure tests force a non-retryable error.
	writeStatus int
}

func newFakeInflux(t *testing.T) *fakeInflux {
	t.Helper()

	f := &fakeInflux{writeStatus: http.StatusNoContent}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/ping":
			w.WriteHeader(http.StatusNoContent)
		case strings.HasPrefix(r.URL.Path, "/api/v2/write"):
			body, _ := io.ReadAll(r.Body)
			f.mu.Lock()
			f.bodies = append(f.bodies, string(body))
			status := f.writeStatus
			f.mu.Unlock()
			w.WriteHeader(status)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(f.server.Close)

	return f
}

func (f *fakeInflux) captured() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(f.bodies, "\n")
}

func (f *fakeInflux) setWriteStatus(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeStatus = status
}

func (f *fakeInflux) config() config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           f.server.URL,
		Token:         "test-token",
		Org:           "homeflow",
		Bucket:        "telemetry",
		BatchSize:     100,
		FlushInterval: 1,
	}
}

// ─── Connection ──────────────────────────────────────────────────────

func TestConnect(t *testing.T) {
	fake := newFakeInflux(t)

	client, err := influxdb.Connect(fake.config())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close() //nolint:errcheck // Test cleanup

	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect()")
	}
}

func TestConnect_Disabled(t *testing.T) {
	fake := newFakeInflux(t)
	cfg := fake.config()
	cfg.Enabled = false

	_, err := influxdb.Connect(cfg)
	if !errors.Is(err, influxdb.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	cfg := config.InfluxDBConfig{
		Enabled: true,
		URL:     "http://127.0.0.1:59999",
		Token:   "test-token",
		Org:     "homeflow",
		Bucket:  "telemetry",
	}

	_, err := influxdb.Connect(cfg)
	if err == nil {
		t.Fatal("Connect() should fail for unreachable server")
	}
	if !errors.Is(err, influxdb.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

// ─── Writes ──────────────────────────────────────────────────────────

func TestWriteHelpers(t *testing.T) {
	fake := newFakeInflux(t)

	client, err := influxdb.Connect(fake.config())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close() //nolint:errcheck // Test cleanup

	client.WriteIlluminance("hall-light-sensor", 42)
	client.WritePower("kettle", 1840.5)
	client.WriteBattery("hall-door", 12)
	client.WritePresence("overall", true)
	client.Flush()

	body := fake.captured()
	for _, want := range []string{
		"illuminance,device_id=hall-light-sensor lux=42",
		"power,device_id=kettle watts=1840.5",
		"battery,device_id=hall-door percent=12",
		"presence,source=overall present=true",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("captured writes missing %q\ngot:\n%s", want, body)
		}
	}
}

func TestWritePoint(t *testing.T) {
	fake := newFakeInflux(t)

	client, err := influxdb.Connect(fake.config())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close() //nolint:errcheck // Test cleanup

	client.WritePoint("uptime",
		map[string]string{"host": "core"},
		map[string]interface{}{"seconds": 915.0})
	client.Flush()

	if !strings.Contains(fake.captured(), "uptime,host=core seconds=915") {
		t.Errorf("captured writes missing custom point\ngot:\n%s", fake.captured())
	}
}

func TestWrite_DroppedAfterClose(t *testing.T) {
	fake := newFakeInflux(t)

	client, err := influxdb.Connect(fake.config())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	before := fake.captured()

	// Writes after Close are silently dropped.
	client.WritePower("kettle", 5)
	client.Flush()

	if got := fake.captured(); got != before {
		t.Errorf("write after Close reached server:\n%s", got)
	}
}

// ─── Error callback ──────────────────────────────────────────────────

func TestSetOnError(t *testing.T) {
	fake := newFakeInflux(t)

	client, err := influxdb.Connect(fake.config())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close() //nolint:errcheck // Test cleanup

	errCh := make(chan error, 1)
	client.SetOnError(func(err error) {
		select {
		case errCh <- err:
		default:
		}
	})

	// 400 is non-retryable, so the failure surfaces immediately.
	fake.setWriteStatus(http.StatusBadRequest)
	client.WriteBattery("hall-door", 3)
	client.Flush()

	select {
	case err := <-errCh:
		if err == nil {
			t.Error("error callback received nil")
		}
	case <-time.After(2 * time.Second):
		t.Error("error callback was not invoked for failed write")
	}
}

func TestHealthCheck(t *testing.T) {
	fake := newFakeInflux(t)

	client, err := influxdb.Connect(fake.config())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close() //nolint:errcheck // Test cleanup

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestHealthCheck_AfterClose(t *testing.T) {
	fake := newFakeInflux(t)

	client, err := influxdb.Connect(fake.config())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if !errors.Is(client.HealthCheck(ctx), influxdb.ErrNotConnected) {
		t.Error("HealthCheck() after Close should return ErrNotConnected")
	}
}
