// Package retry provides retry executor implementation
package retry

import (
	"context"
	"sync"
	"time"

	"github.com/graphback/graphback/pkg/types"
)

// Executor implements retry execution logic
type Executor struct {
	policy       RetryPolicy
	eventHandler EventHandler
	stats        Stats
	clock        types.Clock
}

// ExecuteFunc is the function type to retry
type ExecuteFunc[T any] func(ctx context.Context) (T, error)

// Stats contains retry statistics
type Stats struct {
	TotalAttempts  int64 // total attempt count
	TotalRetries   int64 // total operations that needed at least one retry
	TotalSuccesses int64 // total success count
	TotalFailures  int64 // total failure count
	mu             sync.RWMutex
}

// EventHandler handles retry events
type EventHandler interface {
	OnRetryAttempt(ctx context.Context, name string, attempt int, err error)
	OnRetrySuccess(ctx context.Context, name string, attempt int, duration time.Duration)
	OnMaxAttemptsReached(ctx context.Context, name string, attempt int, err error)
}

// NewExecutor creates a retry executor
func NewExecutor(policy RetryPolicy, opts ...ExecutorOption) *Executor {
	executor := &Executor{
		policy: policy,
		clock:  types.NewRealClock(),
	}

	for _, opt := range opts {
		opt(executor)
	}

	return executor
}

// Execute executes a function with retry logic
func Execute[T any](r *Executor, ctx context.Context, fn ExecuteFunc[T]) (T, error) {
	return ExecuteWithName(r, ctx, "default", fn)
}

// ExecuteWithName executes a function with retry logic. The name tags the
// operation in events and in the error surfaced on exhaustion.
func ExecuteWithName[T any](r *Executor, ctx context.Context, name string, fn ExecuteFunc[T]) (T, error) {
	var zero T
	attempt := 0

	for {
		attempt++

		r.updateStats(func(stats *Stats) {
			stats.TotalAttempts++
		})

		// check if context is cancelled
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		if r.eventHandler != nil && attempt > 1 {
			r.eventHandler.OnRetryAttempt(ctx, name, attempt, nil)
		}

		// execute function
		executeStart := r.clock.Now()
		result, err := fn(ctx)
		executeDuration := r.clock.Since(executeStart)

		// execution successful
		if err == nil {
			r.updateStats(func(stats *Stats) {
				stats.TotalSuccesses++
				if attempt > 1 {
					stats.TotalRetries++
				}
			})

			if r.eventHandler != nil && attempt > 1 {
				r.eventHandler.OnRetrySuccess(ctx, name, attempt, executeDuration)
			}

			return result, nil
		}

		// check if should retry
		if !r.policy.ShouldRetry(err, attempt) {
			// reached max attempts or should not retry
			r.updateStats(func(stats *Stats) {
				stats.TotalFailures++
				if attempt > 1 {
					stats.TotalRetries++
				}
			})

			if r.eventHandler != nil && attempt >= r.policy.MaxAttempts() {
				r.eventHandler.OnMaxAttemptsReached(ctx, name, attempt, err)
			}

			return zero, r.wrapError(name, err, attempt)
		}

		// wait for retry delay
		delay := r.policy.NextDelay(attempt)
		if delay > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-r.clock.After(delay):
				// continue retrying
			}
		}
	}
}

// GetStats gets retry statistics
func (r *Executor) GetStats() Stats {
	r.stats.mu.RLock()
	defer r.stats.mu.RUnlock()
	return Stats{
		TotalAttempts:  r.stats.TotalAttempts,
		TotalRetries:   r.stats.TotalRetries,
		TotalSuccesses: r.stats.TotalSuccesses,
		TotalFailures:  r.stats.TotalFailures,
		// don't copy mutex
	}
}

// updateStats updates statistics (thread-safe)
func (r *Executor) updateStats(fn func(*Stats)) {
	r.stats.mu.Lock()
	defer r.stats.mu.Unlock()
	fn(&r.stats)
}

// wrapError wraps error with retry information
func (r *Executor) wrapError(name string, err error, attempts int) error {
	retryErr := types.NewBackupError(name, err)
	retryErr.WithContext("retry_attempts", attempts)
	retryErr.WithContext("max_attempts", r.policy.MaxAttempts())
	return retryErr
}

// ExecutorOption is a configuration option for retry executor
type ExecutorOption func(*Executor)

// WithEventHandler sets the event handler
func WithEventHandler(handler EventHandler) ExecutorOption {
	return func(r *Executor) {
		r.eventHandler = handler
	}
}

// WithClock sets the clock for time operations
func WithClock(clock types.Clock) ExecutorOption {
	return func(r *Executor) {
		r.clock = clock
	}
}

// LogEventHandler logs retry events through a types.Logger
type LogEventHandler struct {
	logger types.Logger
}

// NewLogEventHandler creates an event handler backed by a logger
func NewLogEventHandler(logger types.Logger) *LogEventHandler {
	return &LogEventHandler{logger: logger}
}

// OnRetryAttempt handles retry attempt events
func (h *LogEventHandler) OnRetryAttempt(ctx context.Context, name string, attempt int, err error) {
	if h.logger != nil {
		h.logger.Debugf("retry attempt %d starting for %s", attempt, name)
	}
}

// OnRetrySuccess handles retry success events
func (h *LogEventHandler) OnRetrySuccess(ctx context.Context, name string, attempt int, duration time.Duration) {
	if h.logger != nil {
		h.logger.Infof("%s succeeded on attempt %d after %v", name, attempt, duration)
	}
}

// OnMaxAttemptsReached handles max attempts reached events
func (h *LogEventHandler) OnMaxAttemptsReached(ctx context.Context, name string, attempt int, err error) {
	if h.logger != nil {
		h.logger.Errorf("max retry attempts (%d) reached for %s, final error: %v", attempt, name, err)
	}
}
