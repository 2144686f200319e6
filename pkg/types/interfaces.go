// Package types defines core interfaces shared by the backup components
package types

import (
	"context"
	"log"
	"os"
)

// Task is an asynchronous unit of work executed by the worker pool
type Task interface {
	// Execute runs the task
	Execute(ctx context.Context) error

	// ID returns the task identifier
	ID() string
}

// ErrorHandler handles task errors funneled out of the worker pool.
// Returning a non-nil error indicates the error could not be handled;
// the pool logs it and keeps processing.
type ErrorHandler func(error) error

// WorkerPoolStats contains basic worker pool statistics
type WorkerPoolStats struct {
	PoolSize      int
	ActiveWorkers int
	QueueSize     int
	QueueCapacity int
}

// Logger interface for logging
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// stdLogger adapts the standard library logger to the Logger interface
type stdLogger struct {
	l     *log.Logger
	debug bool
}

// NewStdLogger creates a Logger writing to stderr with the given prefix
func NewStdLogger(prefix string, debug bool) Logger {
	return &stdLogger{
		l:     log.New(os.Stderr, prefix, log.LstdFlags),
		debug: debug,
	}
}

func (s *stdLogger) Debugf(format string, args ...interface{}) {
	if s.debug {
		s.l.Printf("DEBUG "+format, args...)
	}
}

func (s *stdLogger) Infof(format string, args ...interface{}) {
	s.l.Printf("INFO "+format, args...)
}

func (s *stdLogger) Warnf(format string, args ...interface{}) {
	s.l.Printf("WARN "+format, args...)
}

func (s *stdLogger) Errorf(format string, args ...interface{}) {
	s.l.Printf("ERROR "+format, args...)
}

// NopLogger discards all log output
type NopLogger struct{}

func (NopLogger) Debugf(format string, args ...interface{}) {}
func (NopLogger) Infof(format string, args ...interface{})  {}
func (NopLogger) Warnf(format string, args ...interface{})  {}
func (NopLogger) Errorf(format string, args ...interface{}) {}
