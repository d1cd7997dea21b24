package retry

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Event describes one step of an Execute call
type Event struct {
	// Name identifies the operation, "default" when unnamed
	Name string

	// Attempt is the 1-based number of the attempt that produced this event
	Attempt int

	// Err is the error of the attempt, nil on success
	Err error

	// Classification is the verdict for Err
	Classification Classification

	// Delay is the scheduled wait before the next attempt
	Delay time.Duration

	// Elapsed is the time since the first attempt started
	Elapsed time.Duration

	// Canceled is set when the context ended the call rather than an attempt
	Canceled bool
}

// Retries returns the number of retries performed before this event
func (e Event) Retries() int {
	if e.Attempt <= 0 {
		return 0
	}
	return e.Attempt - 1
}

// EventHandler handles retry events
type EventHandler interface {
	// OnRetryAttempt is called after a failed attempt, before waiting Delay
	OnRetryAttempt(ctx context.Context, evt Event)
	// OnRetrySuccess is called when an attempt succeeds
	OnRetrySuccess(ctx context.Context, evt Event)
	// OnRetryFailure is called when a fatal failure or cancellation ends the call
	OnRetryFailure(ctx context.Context, evt Event)
	// OnMaxAttemptsReached is called when retries are exhausted
	OnMaxAttemptsReached(ctx context.Context, evt Event)
}

// LogEventHandler logs retry events with slog
type LogEventHandler struct {
	logger *slog.Logger
}

// NewLogEventHandler creates a logging event handler, nil uses slog.Default()
func NewLogEventHandler(logger *slog.Logger) *LogEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEventHandler{logger: logger}
}

// OnRetryAttempt handles retry attempt events
func (h *LogEventHandler) OnRetryAttempt(ctx context.Context, evt Event) {
	h.logger.WarnContext(ctx, "retrying after error",
		"operation", evt.Name,
		"attempt", evt.Attempt,
		"classification", evt.Classification.Kind.String(),
		"delay", evt.Delay,
		"error", truncate(errString(evt.Err), 200))
}

// OnRetrySuccess handles retry success events
func (h *LogEventHandler) OnRetrySuccess(ctx context.Context, evt Event) {
	if evt.Retries() == 0 {
		return
	}
	h.logger.InfoContext(ctx, "succeeded after retries",
		"operation", evt.Name,
		"retries", evt.Retries(),
		"elapsed", evt.Elapsed)
}

// OnRetryFailure handles non-retryable failure events
func (h *LogEventHandler) OnRetryFailure(ctx context.Context, evt Event) {
	if evt.Canceled {
		h.logger.WarnContext(ctx, "retry canceled",
			"operation", evt.Name,
			"attempt", evt.Attempt,
			"error", errString(evt.Err))
		return
	}
	h.logger.ErrorContext(ctx, "non-retryable error",
		"operation", evt.Name,
		"attempt", evt.Attempt,
		"reason", evt.Classification.Reason,
		"error", errString(evt.Err))
}

// OnMaxAttemptsReached handles max attempts reached events
func (h *LogEventHandler) OnMaxAttemptsReached(ctx context.Context, evt Event) {
	h.logger.ErrorContext(ctx, "max retries exceeded",
		"operation", evt.Name,
		"retries", evt.Retries(),
		"classification", evt.Classification.Kind.String(),
		"error", errString(evt.Err))
}

// RetryStats contains retry statistics
type RetryStats struct {
	TotalAttempts   int64         // total attempt count
	TotalRetries    int64         // total retry count
	TotalSuccesses  int64         // total success count
	TotalFailures   int64         // total failure count
	TotalExhausted  int64         // calls that ran out of retries
	RateLimited     int64         // retries scheduled for rate-limited failures
	TotalRetryDelay time.Duration // total scheduled retry delay
	LastRetryDelay  time.Duration // most recent scheduled delay
}

// AverageAttempts returns the mean number of attempts per finished call
func (s RetryStats) AverageAttempts() float64 {
	finished := s.TotalSuccesses + s.TotalFailures
	if finished == 0 {
		return 0
	}
	return float64(s.TotalAttempts) / float64(finished)
}

// StatsHandler accumulates RetryStats from events
type StatsHandler struct {
	mu    sync.Mutex
	stats RetryStats
}

// NewStatsHandler creates a statistics event handler
func NewStatsHandler() *StatsHandler {
	return &StatsHandler{}
}

// OnRetryAttempt handles retry attempt events
func (h *StatsHandler) OnRetryAttempt(_ context.Context, evt Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stats.TotalAttempts++
	h.stats.TotalRetries++
	h.stats.TotalRetryDelay += evt.Delay
	h.stats.LastRetryDelay = evt.Delay
	if evt.Classification.Kind == RateLimited {
		h.stats.RateLimited++
	}
}

// OnRetrySuccess handles retry success events
func (h *StatsHandler) OnRetrySuccess(_ context.Context, _ Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stats.TotalAttempts++
	h.stats.TotalSuccesses++
}

// OnRetryFailure handles non-retryable failure events
func (h *StatsHandler) OnRetryFailure(_ context.Context, evt Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !evt.Canceled {
		h.stats.TotalAttempts++
	}
	h.stats.TotalFailures++
}

// OnMaxAttemptsReached handles max attempts reached events
func (h *StatsHandler) OnMaxAttemptsReached(_ context.Context, _ Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stats.TotalAttempts++
	h.stats.TotalFailures++
	h.stats.TotalExhausted++
}

// Stats returns a snapshot of the statistics
func (h *StatsHandler) Stats() RetryStats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stats
}

// Reset clears the statistics
func (h *StatsHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stats = RetryStats{}
}

// MultiEventHandler forwards events to every handler in order
type MultiEventHandler []EventHandler

// OnRetryAttempt handles retry attempt events
func (m MultiEventHandler) OnRetryAttempt(ctx context.Context, evt Event) {
	for _, h := range m {
		h.OnRetryAttempt(ctx, evt)
	}
}

// OnRetrySuccess handles retry success events
func (m MultiEventHandler) OnRetrySuccess(ctx context.Context, evt Event) {
	for _, h := range m {
		h.OnRetrySuccess(ctx, evt)
	}
}

// OnRetryFailure handles non-retryable failure events
func (m MultiEventHandler) OnRetryFailure(ctx context.Context, evt Event) {
	for _, h := range m {
		h.OnRetryFailure(ctx, evt)
	}
}

// OnMaxAttemptsReached handles max attempts reached events
func (m MultiEventHandler) OnMaxAttemptsReached(ctx context.Context, evt Event) {
	for _, h := range m {
		h.OnMaxAttemptsReached(ctx, evt)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
