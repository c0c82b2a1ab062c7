package output

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a progress message on interactive terminals.
// Callers should only start one in text mode; other modes stay silent.
type Spinner struct {
	w      io.Writer
	msg    string
	styles *Styles

	mu     sync.Mutex
	active bool
	done   chan struct{}
}

func newSpinner(w io.Writer, msg string, styles *Styles) *Spinner {
	return &Spinner{w: w, msg: msg, styles: styles}
}

// Start begins the animation. Starting an active spinner is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.active = true
	s.done = make(chan struct{})

	go func(done chan struct{}) {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		frame := 0
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				s.mu.Lock()
				if s.active {
					_, _ = fmt.Fprintf(s.w, "\r%s %s", s.styles.Info.Render(spinnerFrames[frame]), s.msg)
				}
				s.mu.Unlock()
				frame = (frame + 1) % len(spinnerFrames)
			}
		}
	}(s.done)
}

// Stop halts the animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Spinner) stopLocked() {
	if !s.active {
		return
	}
	s.active = false
	close(s.done)
	_, _ = fmt.Fprintf(s.w, "\r\033[K")
}

// Success stops the spinner and writes a final success line.
func (s *Spinner) Success(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	_, _ = fmt.Fprintf(s.w, "%s %s\n", s.styles.StatusSuccess.String(), msg)
}

// Fail stops the spinner and writes a final failure line.
func (s *Spinner) Fail(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	_, _ = fmt.Fprintf(s.w, "%s %s\n", s.styles.StatusFailed.String(), msg)
}
