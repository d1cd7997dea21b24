// Package metrics exports retry and duplicate-detection activity as
// Prometheus metrics.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jzx17/callguard/pkg/retry"
)

const (
	namespace = "callguard"

	outcomeSuccess   = "success"
	outcomeFatal     = "fatal"
	outcomeCanceled  = "canceled"
	outcomeExhausted = "exhausted"
)

// RetryCollector records retry events. It implements retry.EventHandler and
// is usually combined with a retry.LogEventHandler through
// retry.MultiEventHandler.
type RetryCollector struct {
	// Attempts counts attempts by operation
	Attempts *prometheus.CounterVec
	// Retries counts scheduled retries by operation and classification
	Retries *prometheus.CounterVec
	// Outcomes counts finished calls by operation and outcome
	Outcomes *prometheus.CounterVec
	// Backoff observes scheduled waits in seconds
	Backoff *prometheus.HistogramVec
}

var _ retry.EventHandler = (*RetryCollector)(nil)

// NewRetryCollector creates the retry metrics and registers them with reg.
// A nil reg leaves the metrics unregistered.
func NewRetryCollector(reg prometheus.Registerer) *RetryCollector {
	factory := promauto.With(reg)

	return &RetryCollector{
		Attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "retry",
			Name:      "attempts_total",
			Help:      "Total attempts made by operation",
		}, []string{"operation"}),
		Retries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "retry",
			Name:      "retries_total",
			Help:      "Total retries scheduled by operation and classification",
		}, []string{"operation", "classification"}),
		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "retry",
			Name:      "outcomes_total",
			Help:      "Finished calls by operation and outcome (success, fatal, canceled, exhausted)",
		}, []string{"operation", "outcome"}),
		Backoff: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "retry",
			Name:      "backoff_seconds",
			Help:      "Scheduled wait before the next attempt in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 32, 60, 120},
		}, []string{"operation"}),
	}
}

// OnRetryAttempt implements retry.EventHandler
func (c *RetryCollector) OnRetryAttempt(_ context.Context, evt retry.Event) {
	c.Attempts.WithLabelValues(evt.Name).Inc()
	c.Retries.WithLabelValues(evt.Name, evt.Classification.Kind.String()).Inc()
	c.Backoff.WithLabelValues(evt.Name).Observe(evt.Delay.Seconds())
}

// OnRetrySuccess implements retry.EventHandler
func (c *RetryCollector) OnRetrySuccess(_ context.Context, evt retry.Event) {
	c.Attempts.WithLabelValues(evt.Name).Inc()
	c.Outcomes.WithLabelValues(evt.Name, outcomeSuccess).Inc()
}

// OnRetryFailure implements retry.EventHandler
func (c *RetryCollector) OnRetryFailure(_ context.Context, evt retry.Event) {
	if evt.Canceled {
		c.Outcomes.WithLabelValues(evt.Name, outcomeCanceled).Inc()
		return
	}
	c.Attempts.WithLabelValues(evt.Name).Inc()
	c.Outcomes.WithLabelValues(evt.Name, outcomeFatal).Inc()
}

// OnMaxAttemptsReached implements retry.EventHandler
func (c *RetryCollector) OnMaxAttemptsReached(_ context.Context, evt retry.Event) {
	c.Attempts.WithLabelValues(evt.Name).Inc()
	c.Outcomes.WithLabelValues(evt.Name, outcomeExhausted).Inc()
}
