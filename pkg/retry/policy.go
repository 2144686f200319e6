// Package retry provides retry mechanism strategies and implementations
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/graphback/graphback/pkg/types"
)

// RetryPolicy defines the retry strategy interface
type RetryPolicy interface {
	// ShouldRetry determines whether to retry
	ShouldRetry(err error, attempt int) bool

	// NextDelay returns the delay for the next retry
	NextDelay(attempt int) time.Duration

	// MaxAttempts returns the maximum retry attempts
	MaxAttempts() int
}

// RetryCondition is a function that determines retry conditions
type RetryCondition func(error) bool

// BaseRetryPolicy provides common retry functionality
type BaseRetryPolicy struct {
	maxAttempts    int
	retryCondition RetryCondition
	jitter         bool
	jitterFactor   float64
	mu             sync.RWMutex
}

// NewBaseRetryPolicy creates a base retry policy
func NewBaseRetryPolicy(maxAttempts int, opts ...PolicyOption) *BaseRetryPolicy {
	policy := &BaseRetryPolicy{
		maxAttempts:    maxAttempts,
		retryCondition: DefaultRetryCondition,
		jitter:         false,
		jitterFactor:   0.1,
	}

	for _, opt := range opts {
		opt(policy)
	}

	return policy
}

// ShouldRetry determines whether to retry
func (p *BaseRetryPolicy) ShouldRetry(err error, attempt int) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if attempt >= p.maxAttempts {
		return false
	}

	return p.retryCondition(err)
}

// MaxAttempts returns the maximum retry attempts
func (p *BaseRetryPolicy) MaxAttempts() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.maxAttempts
}

// applyJitter applies jitter to delay
func (p *BaseRetryPolicy) applyJitter(delay time.Duration) time.Duration {
	if !p.jitter {
		return delay
	}

	jitterRange := float64(delay) * p.jitterFactor
	jitterAmount := (rand.Float64() - 0.5) * 2 * jitterRange

	result := delay + time.Duration(jitterAmount)
	if result < 0 {
		result = delay / 2
	}

	return result
}

// FixedDelayRetry implements fixed delay retry strategy
type FixedDelayRetry struct {
	*BaseRetryPolicy
	delay time.Duration
}

// NewFixedDelayRetry creates a fixed delay retry policy
func NewFixedDelayRetry(maxAttempts int, delay time.Duration, opts ...PolicyOption) *FixedDelayRetry {
	return &FixedDelayRetry{
		BaseRetryPolicy: NewBaseRetryPolicy(maxAttempts, opts...),
		delay:           delay,
	}
}

// NextDelay returns the delay for the next retry
func (p *FixedDelayRetry) NextDelay(attempt int) time.Duration {
	return p.applyJitter(p.delay)
}

// ExponentialBackoffRetry implements exponential backoff retry strategy
type ExponentialBackoffRetry struct {
	*BaseRetryPolicy
	initialDelay time.Duration
	multiplier   float64
	maxDelay     time.Duration
}

// NewExponentialBackoffRetry creates an exponential backoff retry policy
func NewExponentialBackoffRetry(maxAttempts int, initialDelay time.Duration, opts ...PolicyOption) *ExponentialBackoffRetry {
	return &ExponentialBackoffRetry{
		BaseRetryPolicy: NewBaseRetryPolicy(maxAttempts, opts...),
		initialDelay:    initialDelay,
		multiplier:      2.0,
		maxDelay:        30 * time.Second,
	}
}

// NextDelay returns the delay for the next retry
func (p *ExponentialBackoffRetry) NextDelay(attempt int) time.Duration {
	delay := time.Duration(float64(p.initialDelay) * math.Pow(p.multiplier, float64(attempt-1)))
	if delay > p.maxDelay {
		delay = p.maxDelay
	}
	return p.applyJitter(delay)
}

// PolicyOption is a configuration option for retry policies
type PolicyOption func(*BaseRetryPolicy)

// WithRetryCondition sets the retry condition
func WithRetryCondition(condition RetryCondition) PolicyOption {
	return func(p *BaseRetryPolicy) {
		p.retryCondition = condition
	}
}

// WithJitter enables jitter
func WithJitter(enabled bool, factor float64) PolicyOption {
	return func(p *BaseRetryPolicy) {
		p.jitter = enabled
		if factor > 0 && factor <= 1.0 {
			p.jitterFactor = factor
		}
	}
}

// DefaultRetryCondition is the default retry condition. Errors carrying an
// explicit retryable classification from the graph client are honored;
// unclassified errors are treated as permanent and fail fast without
// consuming the retry budget.
func DefaultRetryCondition(err error) bool {
	if err == nil {
		return false
	}

	// context-related errors are never retried
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	// honor explicit classification from the client
	var retryableErr *types.RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	// known transient conditions
	return errors.Is(err, types.ErrTimeout) || errors.Is(err, types.ErrServerBusy)
}
