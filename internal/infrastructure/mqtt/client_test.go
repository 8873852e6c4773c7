package mqtt

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/homeflow/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration for testing.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "homeflow-test",
			TLS:      false,
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// requireBroker skips the test unless a broker is listening locally.
func requireBroker(t *testing.T) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", "127.0.0.1:1883", 200*time.Millisecond)
	if err != nil {
		t.Skip("no MQTT broker at 127.0.0.1:1883")
	}
	conn.Close()
}

// ─── Validation (no broker required) ─────────────────────────────────────────

func TestPublish_Validation(t *testing.T) {
	client := &Client{cfg: testConfig(), subscriptions: make(map[string]subscription)}

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{
			name:    "empty topic",
			topic:   "",
			payload: []byte("x"),
			qos:     1,
			wantErr: ErrInvalidTopic,
		},
		{
			name:    "invalid qos",
			topic:   "t",
			payload: []byte("x"),
			qos:     3,
			wantErr: ErrInvalidQoS,
		},
		{
			name:    "oversized payload",
			topic:   "t",
			payload: make([]byte, maxPayloadSize+1),
			qos:     1,
			wantErr: ErrPublishFailed,
		},
		{
			name:    "not connected",
			topic:   "t",
			payload: []byte("x"),
			qos:     1,
			wantErr: ErrNotConnected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.Publish(tt.topic, tt.payload, tt.qos, false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Publish() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubscribe_Validation(t *testing.T) {
	client := &Client{cfg: testConfig(), subscriptions: make(map[string]subscription)}
	handler := func(string, []byte) error { return nil }

	if err := client.Subscribe("", 1, handler); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic error = %v, want ErrInvalidTopic", err)
	}
	if err := client.Subscribe("t", 3, handler); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("bad qos error = %v, want ErrInvalidQoS", err)
	}
	if err := client.Subscribe("t", 1, nil); !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("nil handler error = %v, want ErrSubscribeFailed", err)
	}
	if err := client.Subscribe("t", 1, handler); !errors.Is(err, ErrNotConnected) {
		t.Errorf("disconnected error = %v, want ErrNotConnected", err)
	}

	if n := client.SubscriptionCount(); n != 0 {
		t.Errorf("failed subscribes must not be tracked, count = %d", n)
	}
}

func TestSendMessage_EncodingError(t *testing.T) {
	client := &Client{cfg: testConfig(), subscriptions: make(map[string]subscription)}

	// Channels cannot be JSON-encoded; the error must surface before any
	// connection check.
	err := client.SendMessage("t", make(chan int))
	if !errors.Is(err, ErrPublishFailed) {
		t.Errorf("SendMessage() error = %v, want ErrPublishFailed", err)
	}
	if !strings.Contains(err.Error(), "encoding payload") {
		t.Errorf("error should mention encoding, got %v", err)
	}
}

func TestCloseNil(t *testing.T) {
	client := &Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on zero client error = %v, want nil", err)
	}
}

func TestHealthCheck_Cancelled(t *testing.T) {
	client := &Client{cfg: testConfig(), subscriptions: make(map[string]subscription)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := client.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() expected error for cancelled context")
	}
}

// ─── Handler wrapping ────────────────────────────────────────────────────────

// fakeMessage implements pahomqtt.Message for handler tests.
type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 1 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 1 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

// captureLogger records log calls for assertions.
type captureLogger struct {
	mu     sync.Mutex
	errors []string
	warns  []string
}

func (l *captureLogger) Error(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func (l *captureLogger) Warn(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *captureLogger) counts() (int, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errors), len(l.warns)
}

func TestWrapHandler_RecoversPanic(t *testing.T) {
	client := &Client{cfg: testConfig(), subscriptions: make(map[string]subscription)}
	logger := &captureLogger{}
	client.SetLogger(logger)

	wrapped := client.wrapHandler(func(string, []byte) error {
		panic("handler exploded")
	})

	// Must not panic through to the caller (paho's router goroutine).
	wrapped(nil, &fakeMessage{topic: "t", payload: []byte("x")})

	errs, _ := logger.counts()
	if errs != 1 {
		t.Errorf("expected 1 logged panic, got %d", errs)
	}
}

func TestWrapHandler_LogsHandlerError(t *testing.T) {
	client := &Client{cfg: testConfig(), subscriptions: make(map[string]subscription)}
	logger := &captureLogger{}
	client.SetLogger(logger)

	wrapped := client.wrapHandler(func(string, []byte) error {
		return fmt.Errorf("bad payload")
	})
	wrapped(nil, &fakeMessage{topic: "t"})

	_, warns := logger.counts()
	if warns != 1 {
		t.Errorf("expected 1 logged warning, got %d", warns)
	}
}

func TestWrapHandler_NoLoggerIsSafe(t *testing.T) {
	client := &Client{cfg: testConfig(), subscriptions: make(map[string]subscription)}

	wrapped := client.wrapHandler(func(string, []byte) error {
		panic("no logger set")
	})
	wrapped(nil, &fakeMessage{topic: "t"})
}

// ─── Options ─────────────────────────────────────────────────────────────────

func TestBuildClientOptions_TLS(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true

	opts := buildClientOptions(cfg)
	if len(opts.Servers) != 1 {
		t.Fatalf("expected 1 broker, got %d", len(opts.Servers))
	}
	if opts.Servers[0].Scheme != "ssl" {
		t.Errorf("scheme = %q, want ssl", opts.Servers[0].Scheme)
	}
}

func TestBuildClientOptions_Plain(t *testing.T) {
	opts := buildClientOptions(testConfig())
	if opts.Servers[0].Scheme != "tcp" {
		t.Errorf("scheme = %q, want tcp", opts.Servers[0].Scheme)
	}
	if opts.ClientID != "homeflow-test" {
		t.Errorf("client id = %q", opts.ClientID)
	}
}

func TestStatusPayloads(t *testing.T) {
	online := buildOnlinePayload("c1")
	if !strings.Contains(online, `"status":"online"`) || !strings.Contains(online, `"client_id":"c1"`) {
		t.Errorf("online payload malformed: %s", online)
	}

	offline := buildOfflinePayload("c1")
	if !strings.Contains(offline, `"status":"offline"`) || !strings.Contains(offline, `"reason":"shutdown"`) {
		t.Errorf("offline payload malformed: %s", offline)
	}
}

func TestTopics_SystemStatus(t *testing.T) {
	if got := (Topics{}).SystemStatus(); got != "homeflow/system/status" {
		t.Errorf("SystemStatus() = %q", got)
	}
}

// ─── Live broker (skipped when unavailable) ──────────────────────────────────

func TestConnect_Live(t *testing.T) {
	requireBroker(t)

	client, err := Connect(testConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if !client.IsConnected() {
		t.Error("IsConnected() = false, want true")
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestPublishSubscribe_Live(t *testing.T) {
	requireBroker(t)

	client, err := Connect(testConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	received := make(chan []byte, 1)
	err = client.Subscribe("homeflow/test/roundtrip", 1, func(_ string, payload []byte) error {
		received <- payload
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if !client.HasSubscription("homeflow/test/roundtrip") {
		t.Error("subscription not tracked")
	}

	if err := client.Publish("homeflow/test/roundtrip", []byte(`{"ok":true}`), 1, false); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case payload := <-received:
		if string(payload) != `{"ok":true}` {
			t.Errorf("payload = %s", payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("message not received within timeout")
	}
}

func TestSendMessage_NilClearsRetained_Live(t *testing.T) {
	requireBroker(t)

	client, err := Connect(testConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	// nil must publish an EMPTY payload, not "null".
	if err := client.SendMessage("homeflow/test/clear", nil); err != nil {
		t.Fatalf("SendMessage(nil) error = %v", err)
	}

	received := make(chan []byte, 1)
	err = client.Subscribe("homeflow/test/clear", 1, func(_ string, payload []byte) error {
		received <- payload
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	// An empty retained publish clears the topic, so nothing should arrive.
	select {
	case payload := <-received:
		if len(payload) != 0 {
			t.Errorf("expected empty or no payload, got %s", payload)
		}
	case <-time.After(500 * time.Millisecond):
	}
}
