package repeat

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return cond()
}

func TestNewDefaultInterval(t *testing.T) {
	for _, in := range []time.Duration{0, -time.Second} {
		if got := New(in).Interval(); got != DefaultInterval {
			t.Errorf("New(%v).Interval() = %v, want %v", in, got, DefaultInterval)
		}
	}
	if got := New(5 * time.Millisecond).Interval(); got != 5*time.Millisecond {
		t.Errorf("Interval() = %v, want 5ms", got)
	}
}

func TestStartCallsImmediately(t *testing.T) {
	task := New(time.Hour)
	defer task.Stop()

	var calls atomic.Int32
	task.Start(context.Background(), func() { calls.Add(1) })

	if calls.Load() != 1 {
		t.Errorf("calls after Start = %d, want 1", calls.Load())
	}
	if task.Ticks() != 1 {
		t.Errorf("Ticks() = %d, want 1", task.Ticks())
	}
	if !task.Active() {
		t.Error("Active() = false while running")
	}
}

func TestRepeatsUntilStopped(t *testing.T) {
	task := New(time.Millisecond)

	var calls atomic.Int32
	task.Start(context.Background(), func() { calls.Add(1) })

	if !waitFor(t, time.Second, func() bool { return calls.Load() >= 3 }) {
		t.Fatalf("calls = %d after 1s, want at least 3", calls.Load())
	}

	task.Stop()
	if task.Active() {
		t.Error("Active() = true after Stop")
	}

	after := calls.Load()
	time.Sleep(20 * time.Millisecond)
	if got := calls.Load(); got != after {
		t.Errorf("calls went from %d to %d after Stop", after, got)
	}
	if task.Ticks() != uint64(after) {
		t.Errorf("Ticks() = %d, want %d", task.Ticks(), after)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	task := New(time.Millisecond)

	// Stop before any Start should not block or panic
	task.Stop()

	task.Start(context.Background(), func() {})
	task.Stop()
	task.Stop()

	if task.Active() {
		t.Error("Active() = true after Stop")
	}
}

func TestStopWaitsForStepInProgress(t *testing.T) {
	task := New(time.Millisecond)

	var calls atomic.Int32
	var done atomic.Bool
	entered := make(chan struct{})
	release := make(chan struct{})
	task.Start(context.Background(), func() {
		// Block inside the first repeated step.
		if calls.Add(1) != 2 {
			return
		}
		close(entered)
		<-release
		done.Store(true)
	})

	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("repeated step never started")
	}

	stopped := make(chan struct{})
	go func() {
		task.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a step was running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-stopped
	if !done.Load() {
		t.Error("step did not finish")
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestRestartReplacesLoop(t *testing.T) {
	task := New(time.Millisecond)
	defer task.Stop()

	var first, second atomic.Int32
	task.Start(context.Background(), func() { first.Add(1) })
	waitFor(t, time.Second, func() bool { return first.Load() >= 2 })

	task.Start(context.Background(), func() { second.Add(1) })
	frozen := first.Load()

	if !waitFor(t, time.Second, func() bool { return second.Load() >= 2 }) {
		t.Fatalf("second loop did not run: %d calls", second.Load())
	}
	if got := first.Load(); got != frozen {
		t.Errorf("first loop kept running after restart: %d -> %d", frozen, got)
	}
	if task.Ticks() > uint64(second.Load()) {
		t.Errorf("Ticks() = %d counts more than the current loop (%d)", task.Ticks(), second.Load())
	}
}

func TestContextCancelStopsLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	task := New(time.Millisecond)
	task.Start(ctx, func() {})

	cancel()
	if !waitFor(t, time.Second, func() bool { return !task.Active() }) {
		t.Error("Active() = true after context cancellation")
	}
	task.Stop()
}
