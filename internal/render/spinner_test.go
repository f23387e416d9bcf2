package render

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// syncBuffer guards a bytes.Buffer shared with the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNewSpinner(t *testing.T) {
	var buf bytes.Buffer
	spinner := NewSpinner(&buf)

	assert.Equal(t, SpinnerFrames, spinner.frames)
	assert.Equal(t, 80*time.Millisecond, spinner.interval)
}

func TestSpinnerStartStop(t *testing.T) {
	buf := &syncBuffer{}
	spinner := NewSpinner(buf)
	spinner.SetMessage("Exporting...")

	stop := spinner.Start(context.Background())
	time.Sleep(100 * time.Millisecond)
	stop()

	output := buf.String()
	assert.Contains(t, output, "Exporting...")
	assert.True(t, strings.HasSuffix(output, "\r\033[K"), "line is cleared on stop")

	spinner.mu.Lock()
	assert.False(t, spinner.running)
	spinner.mu.Unlock()
}

func TestSpinnerStopsWithContext(t *testing.T) {
	buf := &syncBuffer{}
	spinner := NewSpinner(buf)

	ctx, cancel := context.WithCancel(context.Background())
	stop := spinner.Start(ctx)
	cancel()
	stop()

	assert.NotEmpty(t, buf.String())
}

func TestSpinnerDoubleStart(t *testing.T) {
	buf := &syncBuffer{}
	spinner := NewSpinner(buf)

	stop := spinner.Start(context.Background())
	second := spinner.Start(context.Background())
	second()
	stop()
}
