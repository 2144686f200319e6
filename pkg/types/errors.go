// Package types defines error types
package types

import (
	"errors"
	"fmt"
	"time"
)

// Predefined errors
var (
	// ErrUnknownEntityType indicates an unrecognized backup entity type
	ErrUnknownEntityType = errors.New("unknown entity type")

	// ErrTimeout indicates operation timeout
	ErrTimeout = errors.New("operation timeout")

	// ErrServerBusy indicates the graph server rejected a request under load
	ErrServerBusy = errors.New("server busy")

	// ErrWorkerPoolFull indicates the worker pool queue is full
	ErrWorkerPoolFull = errors.New("worker pool is full")

	// ErrPoolClosed indicates the worker pool is closed
	ErrPoolClosed = errors.New("worker pool is closed")

	// ErrPoolNotStarted indicates the worker pool has not been started
	ErrPoolNotStarted = errors.New("worker pool is not started")
)

// BackupError represents an error in backup processing
type BackupError struct {
	// Operation is the name of the operation where the error occurred
	Operation string

	// Cause is the underlying error
	Cause error

	// Context contains error context information
	Context map[string]interface{}
}

// Error implements the error interface
func (e *BackupError) Error() string {
	return fmt.Sprintf("backup error in operation %s: %v", e.Operation, e.Cause)
}

// Unwrap returns the underlying error
func (e *BackupError) Unwrap() error {
	return e.Cause
}

// Is checks if the error is a specific error
func (e *BackupError) Is(target error) bool {
	return errors.Is(e.Cause, target)
}

// NewBackupError creates a new backup error
func NewBackupError(operation string, cause error) *BackupError {
	return &BackupError{
		Operation: operation,
		Cause:     cause,
		Context:   make(map[string]interface{}),
	}
}

// WithContext adds error context
func (e *BackupError) WithContext(key string, value interface{}) *BackupError {
	e.Context[key] = value
	return e
}

// RetryableError carries an explicit retryable classification supplied by
// the graph client. Transient network/server-busy conditions are marked
// retryable; malformed-request or authentication failures are not.
type RetryableError struct {
	// Err is the underlying error
	Err error

	// Retryable indicates whether the error is retryable
	Retryable bool

	// RetryAfter is the suggested retry delay
	RetryAfter time.Duration
}

// Error implements the error interface
func (e *RetryableError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error
func (e *RetryableError) Unwrap() error {
	return e.Err
}

// Transient wraps err as a retryable error
func Transient(err error) *RetryableError {
	return &RetryableError{Err: err, Retryable: true}
}

// Permanent wraps err as a non-retryable error
func Permanent(err error) *RetryableError {
	return &RetryableError{Err: err, Retryable: false}
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}
	return false
}

// GetRetryDelay returns the suggested retry delay
func GetRetryDelay(err error) time.Duration {
	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.RetryAfter
	}
	return 0
}
