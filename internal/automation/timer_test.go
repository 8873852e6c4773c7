package automation

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// ─── Shared Test Helpers ─────────────────────────────────────────────

// recordingLogger captures log calls for assertions.
type recordingLogger struct {
	mu     sync.Mutex
	debugs []string
	infos  []string
	warns  []string
	errs   []string
}

func (l *recordingLogger) Debug(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debugs = append(l.debugs, msg)
}

func (l *recordingLogger) Info(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}

func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *recordingLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, msg)
}

func (l *recordingLogger) errorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errs)
}

func (l *recordingLogger) warnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.warns)
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

// ─── Firing ──────────────────────────────────────────────────────────

func TestTimer_FiresOnce(t *testing.T) {
	tm := NewTimer(nil)

	var fired atomic.Int32
	tm.Start(20*time.Millisecond, func() { fired.Add(1) })

	if !waitUntil(t, 2*time.Second, func() bool { return fired.Load() == 1 }) {
		t.Fatalf("callback fired %d times, want 1", fired.Load())
	}

	// No second firing.
	time.Sleep(60 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Errorf("callback fired %d times, want 1", got)
	}
	if tm.IsWaiting() {
		t.Error("IsWaiting() = true after firing")
	}
}

func TestTimer_StartReplacesPending(t *testing.T) {
	tm := NewTimer(nil)

	var first, second atomic.Int32
	tm.Start(60*time.Millisecond, func() { first.Add(1) })
	tm.Start(20*time.Millisecond, func() { second.Add(1) })

	if !waitUntil(t, 2*time.Second, func() bool { return second.Load() == 1 }) {
		t.Fatal("replacement callback never fired")
	}

	// Well past the first deadline: the replaced callback must not fire.
	time.Sleep(100 * time.Millisecond)
	if got := first.Load(); got != 0 {
		t.Errorf("replaced callback fired %d times, want 0", got)
	}
}

func TestTimer_RestartMeasuresFromRestart(t *testing.T) {
	tm := NewTimer(nil)

	var fired atomic.Int32
	tm.Start(200*time.Millisecond, func() { fired.Add(1) })

	time.Sleep(100 * time.Millisecond)
	tm.Start(200*time.Millisecond, func() { fired.Add(1) })

	// Past the original deadline but before the restarted one.
	time.Sleep(120 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Errorf("callback fired %d times before restarted deadline, want 0", got)
	}

	if !waitUntil(t, 2*time.Second, func() bool { return fired.Load() == 1 }) {
		t.Error("restarted callback never fired")
	}
}

// ─── Cancellation ────────────────────────────────────────────────────

func TestTimer_CancelPreventsCallback(t *testing.T) {
	tm := NewTimer(nil)

	var fired atomic.Int32
	tm.Start(30*time.Millisecond, func() { fired.Add(1) })
	tm.Cancel()

	if tm.IsWaiting() {
		t.Error("IsWaiting() = true after Cancel()")
	}

	time.Sleep(100 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Errorf("cancelled callback fired %d times, want 0", got)
	}
}

func TestTimer_CancelIdempotent(t *testing.T) {
	tm := NewTimer(nil)

	// Idle timer.
	tm.Cancel()
	tm.Cancel()

	// Fired timer.
	var fired atomic.Int32
	tm.Start(10*time.Millisecond, func() { fired.Add(1) })
	if !waitUntil(t, 2*time.Second, func() bool { return fired.Load() == 1 }) {
		t.Fatal("callback never fired")
	}
	tm.Cancel()
	tm.Cancel()

	if tm.IsWaiting() {
		t.Error("IsWaiting() = true after repeated Cancel()")
	}
}

// ─── State ───────────────────────────────────────────────────────────

func TestTimer_IsWaitingLifecycle(t *testing.T) {
	tm := NewTimer(nil)

	if tm.IsWaiting() {
		t.Error("new timer IsWaiting() = true")
	}

	var fired atomic.Int32
	tm.Start(30*time.Millisecond, func() { fired.Add(1) })
	if !tm.IsWaiting() {
		t.Error("IsWaiting() = false after Start()")
	}

	if !waitUntil(t, 2*time.Second, func() bool { return fired.Load() == 1 }) {
		t.Fatal("callback never fired")
	}
	if tm.IsWaiting() {
		t.Error("IsWaiting() = true after firing")
	}

	tm.Start(time.Hour, func() {})
	if !tm.IsWaiting() {
		t.Error("IsWaiting() = false after re-arming")
	}

	tm.Cancel()
	if tm.IsWaiting() {
		t.Error("IsWaiting() = true after Cancel()")
	}
}

func TestTimer_ReusableAfterFire(t *testing.T) {
	tm := NewTimer(nil)

	var fired atomic.Int32
	for i := 0; i < 3; i++ {
		tm.Start(10*time.Millisecond, func() { fired.Add(1) })
		want := int32(i + 1)
		if !waitUntil(t, 2*time.Second, func() bool { return fired.Load() == want }) {
			t.Fatalf("firing %d never happened", want)
		}
	}
}

// ─── Fault Isolation ─────────────────────────────────────────────────

func TestTimer_CallbackPanicLoggedAndTimerReusable(t *testing.T) {
	logger := &recordingLogger{}
	tm := NewTimer(logger)

	tm.Start(10*time.Millisecond, func() { panic("boom") })

	if !waitUntil(t, 2*time.Second, func() bool { return logger.errorCount() == 1 }) {
		t.Fatal("callback panic was not logged")
	}
	if tm.IsWaiting() {
		t.Error("IsWaiting() = true after panicking callback")
	}

	// The timer still counts as fired; a later Start works normally.
	var fired atomic.Int32
	tm.Start(10*time.Millisecond, func() { fired.Add(1) })
	if !waitUntil(t, 2*time.Second, func() bool { return fired.Load() == 1 }) {
		t.Error("timer unusable after callback panic")
	}
}

func TestTimer_InFlightCallbackUnaffected(t *testing.T) {
	tm := NewTimer(nil)

	started := make(chan struct{})
	release := make(chan struct{})
	var finished, second atomic.Int32

	tm.Start(5*time.Millisecond, func() {
		close(started)
		<-release
		finished.Add(1)
	})

	<-started

	// The callback is mid-execution: Cancel and Start must not stop it.
	tm.Cancel()
	tm.Start(5*time.Millisecond, func() { second.Add(1) })

	close(release)

	if !waitUntil(t, 2*time.Second, func() bool { return finished.Load() == 1 }) {
		t.Error("in-flight callback did not run to completion")
	}
	if !waitUntil(t, 2*time.Second, func() bool { return second.Load() == 1 }) {
		t.Error("re-armed callback never fired")
	}
}

func TestTimer_ConcurrentUse(t *testing.T) {
	tm := NewTimer(nil)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				tm.Start(time.Millisecond, func() {})
				tm.IsWaiting()
				tm.Cancel()
			}
		}()
	}
	wg.Wait()

	tm.Cancel()
	if tm.IsWaiting() {
		t.Error("IsWaiting() = true after final Cancel()")
	}
}
