package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/graphback/graphback/pkg/types"
)

// PoolConfig defines configuration for the fixed worker pool
type PoolConfig struct {
	// PoolSize is the size of the worker pool
	PoolSize int

	// QueueSize is the task queue size
	QueueSize int

	// SubmitTimeout is the task submission timeout
	SubmitTimeout time.Duration

	// Clock for time operations (optional, defaults to real clock)
	Clock types.Clock

	// ErrorHandler is the error handler for failed tasks
	ErrorHandler types.ErrorHandler
}

// DefaultPoolConfig returns default configuration
func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		PoolSize:      10,
		QueueSize:     100,
		SubmitTimeout: 30 * time.Second,
		Clock:         types.NewRealClock(),
	}
}

// Pool implements a fixed-size worker pool with a phase barrier. AwaitAll
// blocks until every task submitted since the last barrier has finished,
// which is how the backup engine separates entity-type phases.
type Pool struct {
	config   *PoolConfig
	workers  []*Worker
	taskChan chan types.Task

	// phase barrier over submitted tasks
	phase sync.WaitGroup

	// state management
	state     int32 // 0: stopped, 1: running, 2: closed
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewPool creates a new fixed worker pool
func NewPool(config *PoolConfig) (*Pool, error) {
	if config == nil {
		config = DefaultPoolConfig()
	}

	// parameter validation
	if config.PoolSize <= 0 {
		return nil, fmt.Errorf("pool size must be positive, got %d", config.PoolSize)
	}
	if config.QueueSize <= 0 {
		return nil, fmt.Errorf("queue size must be positive, got %d", config.QueueSize)
	}

	if config.Clock == nil {
		config.Clock = types.NewRealClock()
	}

	taskChan := make(chan types.Task, config.QueueSize)
	workers := make([]*Worker, config.PoolSize)

	pool := &Pool{
		config:   config,
		workers:  workers,
		taskChan: taskChan,
	}

	// create workers
	for i := 0; i < config.PoolSize; i++ {
		worker := NewWorker(i, taskChan, config.Clock)
		if config.ErrorHandler != nil {
			worker.SetErrorHandler(config.ErrorHandler)
		}
		workers[i] = worker
	}

	return pool, nil
}

// Start starts the worker pool
func (p *Pool) Start(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&p.state, 0, 1) {
		state := atomic.LoadInt32(&p.state)
		if state == 1 {
			return fmt.Errorf("worker pool is already running")
		}
		return types.ErrPoolClosed
	}

	p.ctx, p.cancel = context.WithCancel(ctx)

	// start all workers
	for _, worker := range p.workers {
		go worker.Start(p.ctx)
	}
	go p.drainOnCancel(p.ctx, p.taskChan)

	return nil
}

// drainOnCancel aborts queued tasks once the pool context is cancelled.
// Workers exit on cancellation without emptying the queue; without the
// drain, tasks left in the channel would hold the phase barrier open and
// AwaitAll would never return. Aborted tasks are reported to the error
// handler, not executed. Exits when Close closes the task channel.
func (p *Pool) drainOnCancel(ctx context.Context, taskChan chan types.Task) {
	<-ctx.Done()

	for task := range taskChan {
		if p.config.ErrorHandler != nil {
			_ = p.config.ErrorHandler(types.NewBackupError(task.ID(), ctx.Err()))
		}
		// release the barrier last so AwaitAll returns only after the
		// abort has been reported
		if bt, ok := task.(*barrierTask); ok {
			bt.abort()
		}
	}
}

// barrierTask wraps a task so the phase barrier observes its completion
// on every exit path, including panics.
type barrierTask struct {
	types.Task
	wg *sync.WaitGroup
}

func (t *barrierTask) Execute(ctx context.Context) error {
	defer t.wg.Done()
	return t.Task.Execute(ctx)
}

// abort releases the barrier for a task that will never run.
func (t *barrierTask) abort() {
	t.wg.Done()
}

// Submit submits a task to the worker pool
func (p *Pool) Submit(task types.Task) error {
	return p.SubmitWithTimeout(task, p.config.SubmitTimeout)
}

// SubmitWithTimeout submits a task to the worker pool with timeout
func (p *Pool) SubmitWithTimeout(task types.Task, timeout time.Duration) error {
	// check pool state
	state := atomic.LoadInt32(&p.state)
	if state != 1 {
		if state == 0 {
			return types.ErrPoolNotStarted
		}
		return types.ErrPoolClosed
	}

	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}

	// reject submissions once the pool context is cancelled; a task slipping
	// through the remaining race window is picked up by drainOnCancel
	if err := p.ctx.Err(); err != nil {
		return err
	}

	p.phase.Add(1)
	wrapped := &barrierTask{Task: task, wg: &p.phase}

	// if no timeout, try to send directly
	if timeout <= 0 {
		select {
		case p.taskChan <- wrapped:
			return nil
		default:
			p.phase.Done()
			return types.ErrWorkerPoolFull
		}
	}

	// task submission with timeout
	timer := p.config.Clock.NewTimer(timeout)
	defer timer.Stop()

	select {
	case p.taskChan <- wrapped:
		return nil
	case <-timer.C():
		p.phase.Done()
		return types.ErrTimeout
	case <-p.ctx.Done():
		p.phase.Done()
		return p.ctx.Err()
	}
}

// AwaitAll blocks until every task submitted since the last AwaitAll call
// has finished, success or failure. This is the phase barrier between
// entity types. When the pool context is cancelled, queued tasks are
// aborted and the call returns once in-flight tasks complete.
func (p *Pool) AwaitAll() {
	p.phase.Wait()
}

// Stop stops the worker pool
func (p *Pool) Stop() error {
	if !atomic.CompareAndSwapInt32(&p.state, 1, 0) {
		state := atomic.LoadInt32(&p.state)
		if state == 0 {
			return fmt.Errorf("worker pool is not running")
		}
		return types.ErrPoolClosed
	}

	// cancel context to notify all workers to stop
	if p.cancel != nil {
		p.cancel()
	}

	// wait for all workers to stop
	var wg sync.WaitGroup
	for _, worker := range p.workers {
		wg.Add(1)
		go func(w *Worker) {
			defer wg.Done()
			_ = w.Stop()
		}(worker)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-p.config.Clock.After(10 * time.Second):
		return fmt.Errorf("timeout waiting for workers to stop")
	}
}

// Close closes the worker pool and releases resources
func (p *Pool) Close() error {
	var closeErr error

	p.closeOnce.Do(func() {
		// stop the pool first
		if err := p.Stop(); err != nil {
			closeErr = err
			return
		}

		atomic.StoreInt32(&p.state, 2)

		close(p.taskChan)
		p.workers = nil
		p.taskChan = nil
	})

	return closeErr
}

// Size returns the worker pool size
func (p *Pool) Size() int {
	return p.config.PoolSize
}

// Stats gets basic worker pool statistics
func (p *Pool) Stats() types.WorkerPoolStats {
	var activeWorkers int
	for _, worker := range p.workers {
		if worker.State() == WorkerStateWorking {
			activeWorkers++
		}
	}

	return types.WorkerPoolStats{
		PoolSize:      p.config.PoolSize,
		ActiveWorkers: activeWorkers,
		QueueSize:     len(p.taskChan),
		QueueCapacity: p.config.QueueSize,
	}
}

// IsRunning checks if the worker pool is running
func (p *Pool) IsRunning() bool {
	return atomic.LoadInt32(&p.state) == 1
}
