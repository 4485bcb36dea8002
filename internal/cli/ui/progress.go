package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a message while an indeterminate operation runs, such as
// waiting on an LLM provider.
type Spinner struct {
	writer   io.Writer
	interval time.Duration
	noColor  bool

	mu      sync.Mutex
	message string
	done    chan struct{}
	stopped chan struct{}
}

// SpinnerOptions configures spinner behavior
type SpinnerOptions struct {
	Message  string
	NoColor  bool
	Interval time.Duration // Default: 100ms
}

// NewSpinner creates a new spinner
func NewSpinner(w io.Writer, opts SpinnerOptions) *Spinner {
	interval := opts.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &Spinner{
		writer:   w,
		interval: interval,
		noColor:  opts.NoColor,
		message:  opts.Message,
	}
}

// Start begins the animation. Starting a running spinner is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}
	s.done = make(chan struct{})
	s.stopped = make(chan struct{})
	go s.animate(s.done, s.stopped)
}

// Stop halts the animation and clears the line. It is safe to call more
// than once.
func (s *Spinner) Stop() {
	s.mu.Lock()
	done, stopped := s.done, s.stopped
	s.done, s.stopped = nil, nil
	s.mu.Unlock()

	if done == nil {
		return
	}
	close(done)
	<-stopped
	fmt.Fprint(s.writer, "\r\033[K")
}

// Success stops the spinner and shows a success message
func (s *Spinner) Success(message string) {
	s.Stop()
	WriteSuccess(s.writer, message, s.noColor)
}

// Error stops the spinner and shows an error message
func (s *Spinner) Error(message string) {
	s.Stop()
	paint(s.noColor, color.FgRed, color.Bold).Fprintf(s.writer, "❌ %s\n", message)
}

// UpdateMessage changes the spinner message
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

func (s *Spinner) animate(done <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	cyan := paint(s.noColor, color.FgCyan)
	for frame := 0; ; frame = (frame + 1) % len(spinnerFrames) {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.mu.Lock()
			msg := s.message
			s.mu.Unlock()
			cyan.Fprintf(s.writer, "\r%s %s", spinnerFrames[frame], msg)
		}
	}
}

// WithSpinner runs fn while a spinner shows message. When enabled is false
// fn runs without any animation, which keeps JSON output clean.
func WithSpinner(w io.Writer, message string, enabled, noColor bool, fn func() error) error {
	if !enabled {
		return fn()
	}

	spinner := NewSpinner(w, SpinnerOptions{Message: message, NoColor: noColor})
	spinner.Start()

	if err := fn(); err != nil {
		spinner.Error(fmt.Sprintf("%s failed", message))
		return err
	}
	spinner.Success(message)
	return nil
}
