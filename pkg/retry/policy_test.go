package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/graphback/graphback/pkg/types"
)

func TestFixedDelayRetry_NextDelay(t *testing.T) {
	policy := NewFixedDelayRetry(3, 100*time.Millisecond)

	for attempt := 1; attempt <= 3; attempt++ {
		if d := policy.NextDelay(attempt); d != 100*time.Millisecond {
			t.Errorf("Expected 100ms delay on attempt %d, got %v", attempt, d)
		}
	}
}

func TestFixedDelayRetry_ShouldRetry(t *testing.T) {
	policy := NewFixedDelayRetry(3, time.Millisecond)

	transient := types.Transient(errors.New("connection refused"))

	if !policy.ShouldRetry(transient, 1) {
		t.Error("Expected retry on attempt 1")
	}
	if !policy.ShouldRetry(transient, 2) {
		t.Error("Expected retry on attempt 2")
	}
	if policy.ShouldRetry(transient, 3) {
		t.Error("Expected no retry once max attempts reached")
	}
}

func TestExponentialBackoffRetry_NextDelay(t *testing.T) {
	policy := NewExponentialBackoffRetry(5, 100*time.Millisecond)

	expected := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
	}
	for i, want := range expected {
		if got := policy.NextDelay(i + 1); got != want {
			t.Errorf("Attempt %d: expected %v, got %v", i+1, want, got)
		}
	}
}

func TestExponentialBackoffRetry_MaxDelayCap(t *testing.T) {
	policy := NewExponentialBackoffRetry(20, time.Second)

	if d := policy.NextDelay(15); d != 30*time.Second {
		t.Errorf("Expected delay capped at 30s, got %v", d)
	}
}

func TestWithJitter_DelayBounds(t *testing.T) {
	policy := NewFixedDelayRetry(3, 100*time.Millisecond, WithJitter(true, 0.1))

	for i := 0; i < 100; i++ {
		d := policy.NextDelay(1)
		if d < 90*time.Millisecond || d > 110*time.Millisecond {
			t.Fatalf("Jittered delay %v outside [90ms, 110ms]", d)
		}
	}
}

func TestDefaultRetryCondition(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"transient classification", types.Transient(errors.New("boom")), true},
		{"permanent classification", types.Permanent(errors.New("bad request")), false},
		{"unclassified error", errors.New("boom"), false},
		{"timeout sentinel", types.ErrTimeout, true},
		{"server busy sentinel", types.ErrServerBusy, true},
		{"context canceled", context.Canceled, false},
		{"context deadline", context.DeadlineExceeded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultRetryCondition(tt.err); got != tt.want {
				t.Errorf("DefaultRetryCondition(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestWithRetryCondition_Custom(t *testing.T) {
	sentinel := errors.New("flaky")
	policy := NewFixedDelayRetry(3, time.Millisecond,
		WithRetryCondition(func(err error) bool {
			return errors.Is(err, sentinel)
		}))

	if !policy.ShouldRetry(sentinel, 1) {
		t.Error("Expected custom condition to allow retry")
	}
	if policy.ShouldRetry(errors.New("other"), 1) {
		t.Error("Expected custom condition to reject other errors")
	}
}
