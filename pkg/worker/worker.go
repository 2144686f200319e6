package worker

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/graphback/graphback/pkg/types"
)

// WorkerState defines the state of a Worker
type WorkerState int32

const (
	// WorkerStateIdle represents idle worker state
	WorkerStateIdle WorkerState = iota
	// WorkerStateWorking represents working worker state
	WorkerStateWorking
	// WorkerStateStopped represents stopped worker state
	WorkerStateStopped
)

// String returns the string representation of WorkerState
func (ws WorkerState) String() string {
	switch ws {
	case WorkerStateIdle:
		return "idle"
	case WorkerStateWorking:
		return "working"
	case WorkerStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Worker represents a single worker goroutine
type Worker struct {
	id       int
	state    int32 // atomic state
	taskChan chan types.Task
	quit     chan struct{}
	done     chan struct{}

	// statistics
	totalProcessed int64
	totalFailed    int64

	// error handling
	errorHandler types.ErrorHandler

	// time operations
	clock types.Clock

	// synchronization
	mu sync.RWMutex
}

// NewWorker creates a new Worker
func NewWorker(id int, taskChan chan types.Task, clock types.Clock) *Worker {
	if clock == nil {
		clock = types.NewRealClock()
	}

	return &Worker{
		id:       id,
		state:    int32(WorkerStateIdle),
		taskChan: taskChan,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		clock:    clock,
	}
}

// ID returns the Worker ID
func (w *Worker) ID() int {
	return w.id
}

// State returns the current Worker state
func (w *Worker) State() WorkerState {
	return WorkerState(atomic.LoadInt32(&w.state))
}

// SetErrorHandler sets the error handler
func (w *Worker) SetErrorHandler(handler types.ErrorHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.errorHandler = handler
}

// Start starts the Worker
func (w *Worker) Start(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			atomic.StoreInt32(&w.state, int32(WorkerStateStopped))
			return
		case <-w.quit:
			atomic.StoreInt32(&w.state, int32(WorkerStateStopped))
			return
		case task, ok := <-w.taskChan:
			if !ok {
				atomic.StoreInt32(&w.state, int32(WorkerStateStopped))
				return
			}
			w.processTask(ctx, task)
		}
	}
}

// processTask processes a single task
func (w *Worker) processTask(ctx context.Context, task types.Task) {
	atomic.StoreInt32(&w.state, int32(WorkerStateWorking))
	defer atomic.StoreInt32(&w.state, int32(WorkerStateIdle))

	err := w.executeTask(ctx, task)

	if err != nil {
		atomic.AddInt64(&w.totalFailed, 1)
		w.handleError(err)
	} else {
		atomic.AddInt64(&w.totalProcessed, 1)
	}
}

// executeTask executes a task with panic recovery support
func (w *Worker) executeTask(ctx context.Context, task types.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			// record panic information
			var buf [4096]byte
			n := runtime.Stack(buf[:], false)

			switch v := r.(type) {
			case error:
				err = v
			case string:
				err = types.NewBackupError(task.ID(), fmt.Errorf("panic: %s", v))
			default:
				err = types.NewBackupError(task.ID(), fmt.Errorf("panic: %v", v))
			}

			// add stack trace to error context
			if be, ok := err.(*types.BackupError); ok {
				be.WithContext("stack_trace", string(buf[:n]))
				be.WithContext("worker_id", w.id)
			}
		}
	}()

	return task.Execute(ctx)
}

// handleError funnels a task error to the configured handler
func (w *Worker) handleError(err error) {
	w.mu.RLock()
	handler := w.errorHandler
	w.mu.RUnlock()

	if handler != nil {
		// a task error never crashes the worker; unhandled errors are dropped
		_ = handler(err)
	}
}

// Stop stops the Worker
func (w *Worker) Stop() error {
	select {
	case <-w.quit:
		// already stopped
		return nil
	default:
		close(w.quit)
	}

	// wait for Worker to complete current task
	select {
	case <-w.done:
		return nil
	case <-w.clock.After(5 * time.Second):
		return fmt.Errorf("worker %d stop timeout", w.id)
	}
}

// Stats gets Worker statistics
func (w *Worker) Stats() WorkerStats {
	return WorkerStats{
		ID:             w.id,
		State:          w.State(),
		TotalProcessed: atomic.LoadInt64(&w.totalProcessed),
		TotalFailed:    atomic.LoadInt64(&w.totalFailed),
	}
}

// WorkerStats defines Worker statistics
type WorkerStats struct {
	ID             int
	State          WorkerState
	TotalProcessed int64
	TotalFailed    int64
}
