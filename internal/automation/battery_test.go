package automation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/nerrad567/homeflow/internal/infrastructure/ntfy"
)

// mockNotifier captures sent notifications.
type mockNotifier struct {
	mu   sync.Mutex
	sent []ntfy.Notification
	fail bool
}

func (m *mockNotifier) Send(_ context.Context, n ntfy.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("ntfy unreachable")
	}
	m.sent = append(m.sent, n)
	return nil
}

func (m *mockNotifier) notifications() []ntfy.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	cpy := make([]ntfy.Notification, len(m.sent))
	copy(cpy, m.sent)
	return cpy
}

// ─── Registry Behaviour ──────────────────────────────────────────────

func TestBatteryMonitor_RecoveryClearsEntry(t *testing.T) {
	notifier := &mockNotifier{}
	m := NewBatteryMonitor(notifier, nil)

	m.Report("d1", 10)
	m.Report("d1", 20)
	m.NotifyIfAny()

	if got := len(notifier.notifications()); got != 0 {
		t.Errorf("sent %d notifications for a recovered device, want 0", got)
	}
}

func TestBatteryMonitor_NotifiesSingleDevice(t *testing.T) {
	notifier := &mockNotifier{}
	m := NewBatteryMonitor(notifier, nil)

	m.Report("d2", 5)
	m.NotifyIfAny()

	sent := notifier.notifications()
	if len(sent) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(sent))
	}

	n := sent[0]
	if n.Title != "Low battery" {
		t.Errorf("Title = %q, want %q", n.Title, "Low battery")
	}
	if n.Message != "d2: 5%" {
		t.Errorf("Message = %q, want %q", n.Message, "d2: 5%")
	}
	if len(n.Tags) != 1 || n.Tags[0] != "battery" {
		t.Errorf("Tags = %v, want [battery]", n.Tags)
	}
}

func TestBatteryMonitor_OneLinePerDeviceSorted(t *testing.T) {
	notifier := &mockNotifier{}
	m := NewBatteryMonitor(notifier, nil)

	m.Report("zulu-remote", 10)
	m.Report("alpha-door", 5)
	m.Report("mike-sensor", 14)
	m.NotifyIfAny()

	sent := notifier.notifications()
	if len(sent) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(sent))
	}

	want := strings.Join([]string{
		"alpha-door: 5%",
		"mike-sensor: 14%",
		"zulu-remote: 10%",
	}, "\n")
	if sent[0].Message != want {
		t.Errorf("Message = %q, want %q", sent[0].Message, want)
	}
}

func TestBatteryMonitor_EmptyRegistrySendsNothing(t *testing.T) {
	notifier := &mockNotifier{}
	m := NewBatteryMonitor(notifier, nil)

	m.NotifyIfAny()

	if got := len(notifier.notifications()); got != 0 {
		t.Errorf("sent %d notifications with empty registry, want 0", got)
	}
}

func TestBatteryMonitor_EntriesKeptAfterNotify(t *testing.T) {
	notifier := &mockNotifier{}
	m := NewBatteryMonitor(notifier, nil)

	m.Report("d1", 8)
	m.NotifyIfAny()
	m.NotifyIfAny()

	sent := notifier.notifications()
	if len(sent) != 2 {
		t.Fatalf("sent %d notifications, want 2 (flat battery nags until replaced)", len(sent))
	}
	if sent[1].Message != "d1: 8%" {
		t.Errorf("second Message = %q, want %q", sent[1].Message, "d1: 8%")
	}
}

func TestBatteryMonitor_ThresholdBoundary(t *testing.T) {
	notifier := &mockNotifier{}
	m := NewBatteryMonitor(notifier, nil)

	m.Report("at-threshold", 15)
	m.NotifyIfAny()
	if got := len(notifier.notifications()); got != 0 {
		t.Errorf("level 15 was reported, want only levels below 15")
	}

	m.Report("below-threshold", 14)
	m.NotifyIfAny()
	sent := notifier.notifications()
	if len(sent) != 1 || sent[0].Message != "below-threshold: 14%" {
		t.Errorf("notifications = %+v, want one for below-threshold", sent)
	}
}

// ─── Failure Paths ───────────────────────────────────────────────────

func TestBatteryMonitor_SendFailureLogged(t *testing.T) {
	notifier := &mockNotifier{fail: true}
	logger := &recordingLogger{}
	m := NewBatteryMonitor(notifier, logger)

	m.Report("d1", 3)
	m.NotifyIfAny()

	if logger.errorCount() != 1 {
		t.Errorf("send failure logged %d times, want 1", logger.errorCount())
	}
}

func TestBatteryMonitor_NilNotifier(t *testing.T) {
	m := NewBatteryMonitor(nil, nil)

	m.Report("d1", 3)
	m.NotifyIfAny() // must not panic
}
