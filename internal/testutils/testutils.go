// Package testutils provides shared helpers for tests
package testutils

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
)

// DefaultTimeout bounds contexts returned by Context
const DefaultTimeout = 10 * time.Second

// Context returns a context that is canceled after DefaultTimeout or when
// the test ends
func Context(t testing.TB) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	t.Cleanup(cancel)
	return ctx
}

// NewMockClock creates a mock clock for testing
func NewMockClock(t testing.TB) *quartz.Mock {
	return quartz.NewMock(t)
}

// AdvanceTimer waits for the next trapped timer, checks its duration, lets
// it be created and advances the clock so that it fires
func AdvanceTimer(ctx context.Context, t testing.TB, clock *quartz.Mock, trap *quartz.Trap, want time.Duration) {
	t.Helper()
	call := trap.MustWait(ctx)
	if call.Duration != want {
		t.Errorf("timer duration = %v, want %v", call.Duration, want)
	}
	call.MustRelease(ctx)
	clock.Advance(call.Duration).MustWait(ctx)
}

// LogBuffer collects slog output for assertions
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements io.Writer
func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns everything logged so far
func (b *LogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Reset discards the logged output
func (b *LogBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// NewLogger returns a debug-level text logger writing to a new LogBuffer
func NewLogger() (*slog.Logger, *LogBuffer) {
	buf := &LogBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, buf
}
