package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	spinnerFrameRate = 80 * time.Millisecond

	// spinnerElapsedAfter is when the spinner starts showing how long it has
	// been waiting. Redis and MongoDB connects retry with backoff, so a
	// wait can run to the connect timeout.
	spinnerElapsedAfter = time.Second
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a waiting message on stderr until stopped or until its
// context ends.
type Spinner struct {
	w       io.Writer
	message string
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	started time.Time

	mu        sync.Mutex
	width     int  // widest line drawn, for clearing
	halted    bool // Stop was called
	cancelled bool // the context had ended when Stop was called
}

func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

// newSpinnerWithContext creates a spinner that stops when ctx ends.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       os.Stderr,
		message: message,
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// withWriter redirects the animation, e.g. to a buffer in tests.
func (s *Spinner) withWriter(w io.Writer) *Spinner {
	s.w = w
	return s
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.started = time.Now()
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(spinnerFrameRate)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)], time.Since(s.started))
			}
		}
	}()
}

func (s *Spinner) draw(frame string, waited time.Duration) {
	line := s.message + elapsedSuffix(waited)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = max(s.width, len(line)+2)
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(line))
}

// elapsedSuffix formats a wait longer than spinnerElapsedAfter as " (3s)".
func elapsedSuffix(d time.Duration) string {
	if d < spinnerElapsedAfter {
		return ""
	}
	return fmt.Sprintf(" (%ds)", int(d/time.Second))
}

// Stop ends the animation and clears the line. Calling it again is a no-op.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if s.halted {
		s.mu.Unlock()
		return
	}
	s.halted, s.cancelled = true, s.ctx.Err() != nil
	s.mu.Unlock()

	close(s.done)
	<-s.stopped
	s.cancel()
	s.clearLine()
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", max(s.width, len(s.message)+2)))
}

func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the spinner's context ended before Stop.
func (s *Spinner) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.halted {
		return s.cancelled
	}
	return s.ctx.Err() != nil
}
