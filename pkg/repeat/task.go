// Package repeat runs a step function repeatedly while a control is held.
//
// A [Task] models a press-and-hold button: Start performs the first step
// right away and keeps stepping once per interval until Stop is called or
// the context ends. Stopping never interrupts a step in progress and never
// delivers a step that was scheduled but not yet started.
package repeat

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultInterval is one display refresh at 60Hz.
const DefaultInterval = 16 * time.Millisecond

// Task repeats a function at a fixed interval. The zero value is not usable;
// create tasks with New.
type Task struct {
	interval time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}

	ticks atomic.Uint64
}

// New returns an idle task. A non-positive interval selects DefaultInterval.
func New(interval time.Duration) *Task {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Task{interval: interval}
}

// Interval returns the time between steps.
func (t *Task) Interval() time.Duration { return t.interval }

// Start stops any running loop, calls fn once synchronously and then once
// per interval in a background goroutine.
func (t *Task) Start(ctx context.Context, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()

	runCtx, cancel := context.WithCancel(ctx)
	stopped := make(chan struct{})
	t.cancel, t.stopped = cancel, stopped
	t.ticks.Store(1)
	fn()

	go func() {
		defer close(stopped)
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				// A tick and a Stop can be ready together; Stop wins.
				if runCtx.Err() != nil {
					return
				}
				t.ticks.Add(1)
				fn()
			}
		}
	}()
}

// Stop ends the running loop and waits for it to exit. It is safe to call
// on an idle task and to call more than once.
func (t *Task) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Task) stopLocked() {
	if t.cancel == nil {
		return
	}
	t.cancel()
	<-t.stopped
	t.cancel = nil
}

// Active reports whether a loop is running. A loop whose context was
// cancelled is no longer active.
func (t *Task) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped == nil {
		return false
	}
	select {
	case <-t.stopped:
		return false
	default:
		return true
	}
}

// Ticks returns how many times fn ran in the current or last loop,
// including the immediate first call.
func (t *Task) Ticks() uint64 {
	return t.ticks.Load()
}
