// Package retry provides retry executor implementation
package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/coder/quartz"

	"github.com/jzx17/callguard/pkg/types"
)

// Operation is the function type to retry
type Operation[T any] func(ctx context.Context) (T, error)

// Executor runs operations under a retry policy. It holds only configuration and is
// safe for concurrent use; retries of concurrent calls are not coordinated.
type Executor struct {
	classifier   Classifier
	clock        quartz.Clock
	eventHandler EventHandler
	random       RandomFunc
}

// ExecutorOption is a configuration option for the executor
type ExecutorOption func(*Executor)

// WithClassifier sets the failure classifier
func WithClassifier(classifier Classifier) ExecutorOption {
	return func(r *Executor) {
		if classifier != nil {
			r.classifier = classifier
		}
	}
}

// WithClock sets the clock used for waiting and timing
func WithClock(clock quartz.Clock) ExecutorOption {
	return func(r *Executor) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithEventHandler sets the event handler
func WithEventHandler(handler EventHandler) ExecutorOption {
	return func(r *Executor) {
		r.eventHandler = handler
	}
}

// WithRandom sets the jitter source; it must be safe for concurrent use if the
// executor is shared
func WithRandom(random RandomFunc) ExecutorOption {
	return func(r *Executor) {
		if random != nil {
			r.random = random
		}
	}
}

// NewExecutor creates a retry executor
func NewExecutor(opts ...ExecutorOption) *Executor {
	executor := &Executor{
		classifier: DefaultClassifier,
		clock:      quartz.NewReal(),
		random:     rand.Float64,
	}

	for _, opt := range opts {
		opt(executor)
	}

	return executor
}

// Classify returns the executor's verdict for err
func (r *Executor) Classify(err error) Classification {
	return r.classifier(err)
}

// Execute runs fn under policy
func Execute[T any](ctx context.Context, r *Executor, policy Policy, fn Operation[T]) (T, error) {
	return ExecuteNamed(ctx, r, "default", policy, fn)
}

// ExecuteNamed runs fn under policy, naming it in events.
//
// Fatal errors and the error of the final attempt are returned unchanged. A context
// cancelled before an attempt, during an attempt that then fails, or during a wait
// returns ctx.Err().
func ExecuteNamed[T any](ctx context.Context, r *Executor, name string, policy Policy, fn Operation[T]) (T, error) {
	var zero T
	if policy.IsZero() {
		policy = DefaultPolicy()
	}

	start := r.clock.Now()
	retries := 0

	for {
		// check if context is cancelled
		if err := ctx.Err(); err != nil {
			r.emitFailure(ctx, Event{
				Name: name, Attempt: retries, Err: err,
				Elapsed: r.clock.Since(start), Canceled: true,
			})
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			if r.eventHandler != nil {
				r.eventHandler.OnRetrySuccess(ctx, Event{
					Name: name, Attempt: retries + 1, Elapsed: r.clock.Since(start),
				})
			}
			return result, nil
		}

		// the caller's own deadline ends the loop even if err looks transient
		if ctxErr := ctx.Err(); ctxErr != nil {
			r.emitFailure(ctx, Event{
				Name: name, Attempt: retries + 1, Err: ctxErr,
				Elapsed: r.clock.Since(start), Canceled: true,
			})
			return zero, ctxErr
		}

		class := r.classifier(err)
		evt := Event{
			Name:           name,
			Attempt:        retries + 1,
			Err:            err,
			Classification: class,
		}

		if !class.IsRetryable() {
			evt.Elapsed = r.clock.Since(start)
			r.emitFailure(ctx, evt)
			return zero, err
		}

		if retries >= policy.MaxAttempts() {
			evt.Elapsed = r.clock.Since(start)
			if r.eventHandler != nil {
				r.eventHandler.OnMaxAttemptsReached(ctx, evt)
			}
			return zero, err
		}

		evt.Delay = Backoff(policy, retries, class, r.random)
		evt.Elapsed = r.clock.Since(start)
		if r.eventHandler != nil {
			r.eventHandler.OnRetryAttempt(ctx, evt)
		}

		if err := r.wait(ctx, evt.Delay); err != nil {
			r.emitFailure(ctx, Event{
				Name: name, Attempt: retries + 1, Err: err,
				Elapsed: r.clock.Since(start), Canceled: true,
			})
			return zero, err
		}
		retries++
	}
}

// Do runs an operation without a result under policy
func Do(ctx context.Context, r *Executor, policy Policy, fn func(ctx context.Context) error) error {
	_, err := Execute(ctx, r, policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Wrap returns an operation that runs fn under policy on every call
func Wrap[T any](r *Executor, name string, policy Policy, fn Operation[T]) Operation[T] {
	return func(ctx context.Context) (T, error) {
		return ExecuteNamed(ctx, r, name, policy, fn)
	}
}

// ExecuteAsync runs fn under policy in a new goroutine
func ExecuteAsync[T any](ctx context.Context, r *Executor, policy Policy, fn Operation[T]) <-chan types.Result[T] {
	resultChan := make(chan types.Result[T], 1)

	go func() {
		defer close(resultChan)

		start := r.clock.Now()
		value, err := Execute(ctx, r, policy, fn)

		resultChan <- types.Result[T]{
			Value:    value,
			Error:    err,
			Duration: r.clock.Since(start),
		}
	}()

	return resultChan
}

// wait blocks for d or until ctx is done
func (r *Executor) wait(ctx context.Context, d time.Duration) error {
	timer := r.clock.NewTimer(d, "retry", "backoff")
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *Executor) emitFailure(ctx context.Context, evt Event) {
	if r.eventHandler != nil {
		r.eventHandler.OnRetryFailure(ctx, evt)
	}
}
