package render

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// SpinnerFrames contains the braille spinner animation frames
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a single status line while an export or an assistant
// request is in flight.
type Spinner struct {
	writer   io.Writer
	frames   []string
	interval time.Duration

	mu      sync.Mutex
	running bool
	message string
	done    chan struct{}
}

func NewSpinner(writer io.Writer) *Spinner {
	return &Spinner{
		writer:   writer,
		frames:   SpinnerFrames,
		interval: 80 * time.Millisecond,
	}
}

// SetMessage sets the text shown after the frame.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

// Start begins the animation and returns a stop function. The stop function
// blocks until the line has been cleared.
func (s *Spinner) Start(ctx context.Context) func() {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return cancel
	}
	s.running = true
	done := make(chan struct{})
	s.done = done
	s.mu.Unlock()

	go s.run(ctx, done)

	return func() {
		cancel()
		<-done
	}
}

func (s *Spinner) run(ctx context.Context, done chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	frame := 0
	s.renderFrame(frame)

	for {
		select {
		case <-ctx.Done():
			fmt.Fprint(s.writer, "\r\033[K")
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			close(done)
			return
		case <-ticker.C:
			frame = (frame + 1) % len(s.frames)
			s.renderFrame(frame)
		}
	}
}

func (s *Spinner) renderFrame(index int) {
	s.mu.Lock()
	message := s.message
	s.mu.Unlock()

	styled := PendingStyle.Render(s.frames[index])
	if message != "" {
		fmt.Fprintf(s.writer, "\r\033[K%s %s", styled, message)
	} else {
		fmt.Fprintf(s.writer, "\r\033[K%s", styled)
	}
}
