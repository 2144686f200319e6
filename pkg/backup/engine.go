package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/graphback/graphback/pkg/client"
	"github.com/graphback/graphback/pkg/keylock"
	"github.com/graphback/graphback/pkg/retry"
	"github.com/graphback/graphback/pkg/types"
	"github.com/graphback/graphback/pkg/worker"
)

// Config defines configuration for the backup engine
type Config struct {
	// Workers is the worker pool size; bulk output files are spread over
	// this many suffixes per kind
	Workers int

	// QueueSize is the worker pool task queue size
	QueueSize int

	// SubmitTimeout bounds enqueueing one shard job
	SubmitTimeout time.Duration

	// SplitSize is the requested entry count per server-issued shard
	SplitSize int64

	// MaxAttempts is the retry budget for one shard fetch
	MaxAttempts int

	// RetryDelay is the delay between fetch attempts
	RetryDelay time.Duration

	// RetrySchema also retries schema-kind fetches. The original tool
	// fetched schema without retry; this keeps that the default.
	RetrySchema bool

	// Clock for time operations (optional, defaults to real clock)
	Clock types.Clock

	// Logger for progress and error reporting
	Logger types.Logger
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Workers:       runtime.NumCPU(),
		QueueSize:     256,
		SubmitTimeout: 30 * time.Second,
		SplitSize:     1 << 20,
		MaxAttempts:   3,
		RetryDelay:    time.Second,
		Clock:         types.NewRealClock(),
		Logger:        types.NopLogger{},
	}
}

// Engine drives a backup run: for each requested entity kind it either
// shards and parallelizes retrieval (bulk kinds) or fetches and writes
// directly (schema kinds), tracking per-kind counters and reporting a
// final summary. An Engine is reusable; each Backup call owns its pool,
// lock registry and counters.
type Engine struct {
	client  client.GraphClient
	cfg     *Config
	retrier *retry.Executor
	clock   types.Clock
	logger  types.Logger
}

// NewEngine creates a backup engine for the given graph client.
func NewEngine(c client.GraphClient, cfg *Config) (*Engine, error) {
	if c == nil {
		return nil, fmt.Errorf("graph client is required")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	// parameter validation
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("worker count must be positive, got %d", cfg.Workers)
	}
	if cfg.SplitSize <= 0 {
		return nil, fmt.Errorf("split size must be positive, got %d", cfg.SplitSize)
	}
	if cfg.MaxAttempts <= 0 {
		return nil, fmt.Errorf("max attempts must be positive, got %d", cfg.MaxAttempts)
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Clock == nil {
		cfg.Clock = types.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = types.NopLogger{}
	}

	policy := retry.NewFixedDelayRetry(cfg.MaxAttempts, cfg.RetryDelay)
	retrier := retry.NewExecutor(policy,
		retry.WithClock(cfg.Clock),
		retry.WithEventHandler(retry.NewLogEventHandler(cfg.Logger)))

	return &Engine{
		client:  c,
		cfg:     cfg,
		retrier: retrier,
		clock:   cfg.Clock,
		logger:  cfg.Logger,
	}, nil
}

// run holds the per-run state shared by concurrent jobs.
type run struct {
	engine   *Engine
	pool     *worker.Pool
	writer   *ShardWriter
	counters *counterSet
}

// Backup exports the requested entity kinds into outputDir and returns the
// run summary. Configuration errors (unknown kind, unusable output
// directory) are fatal and abort before any work; everything else is
// contained at the job level, so a completed run may still report dropped
// batches in its summary. Cancelling ctx abandons the run and returns the
// context error.
func (e *Engine) Backup(ctx context.Context, kinds []types.EntityType, outputDir string) (*Summary, error) {
	if len(kinds) == 0 {
		return nil, fmt.Errorf("no entity types requested")
	}
	for _, kind := range kinds {
		if !kind.Valid() {
			return nil, fmt.Errorf("%w: %q", types.ErrUnknownEntityType, kind)
		}
	}
	if err := ensureDirectory(outputDir); err != nil {
		return nil, err
	}

	pool, err := worker.NewPool(&worker.PoolConfig{
		PoolSize:      e.cfg.Workers,
		QueueSize:     e.cfg.QueueSize,
		SubmitTimeout: e.cfg.SubmitTimeout,
		Clock:         e.clock,
		ErrorHandler: func(err error) error {
			e.logger.Errorf("backup job failed: %v", err)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	if err := pool.Start(ctx); err != nil {
		return nil, err
	}
	defer pool.Close()

	r := &run{
		engine:   e,
		pool:     pool,
		writer:   NewShardWriter(keylock.New(), e.client.Serializer(), e.logger),
		counters: newCounterSet(),
	}

	started := e.clock.Now()
	for _, kind := range kinds {
		if ctx.Err() != nil {
			break
		}
		prefix := filepath.Join(outputDir, kind.String())
		switch kind {
		case types.Vertex:
			backupBulk(ctx, r, types.Vertex, prefix, e.client.Traverser().Vertices)
		case types.Edge:
			backupBulk(ctx, r, types.Edge, prefix, e.client.Traverser().Edges)
		case types.PropertyKey:
			backupSchema(ctx, r, types.PropertyKey, prefix, e.client.Schema().PropertyKeys)
		case types.VertexLabel:
			backupSchema(ctx, r, types.VertexLabel, prefix, e.client.Schema().VertexLabels)
		case types.EdgeLabel:
			backupSchema(ctx, r, types.EdgeLabel, prefix, e.client.Schema().EdgeLabels)
		case types.IndexLabel:
			backupSchema(ctx, r, types.IndexLabel, prefix, e.client.Schema().IndexLabels)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("backup run cancelled: %w", err)
	}
	finished := e.clock.Now()

	summary := r.summarize(kinds, outputDir, started, finished)
	summary.Log(e.logger)
	return summary, nil
}

// backupBulk fans one shard list out over the pool: each job fetches its
// shard with retry, then appends the batch to the file for the shard's
// suffix. Retry exhaustion or a write failure drops the batch and the run
// continues; the phase barrier at the end keeps entity kinds sequential.
func backupBulk[T any](ctx context.Context, r *run, kind types.EntityType, prefix string,
	fetch func(context.Context, types.Shard) ([]T, error)) {

	e := r.engine
	shards, err := r.listShards(ctx, kind)
	if err != nil {
		e.logger.Errorf("listing %s shards failed: %v", kind, err)
		r.counters.addDropped(kind, 1)
		return
	}
	e.logger.Debugf("backing up %s collection in %d shards", kind, len(shards))

	fetchName := "backing up " + kind.String() + " shard"
	for i, shard := range shards {
		j := i + 1
		shard := shard
		path := fmt.Sprintf("%s%d", prefix, j%e.cfg.Workers)

		task := worker.NewBasicTaskWithID(fmt.Sprintf("%s-shard-%d", kind, j),
			func(ctx context.Context) error {
				entities, err := retry.ExecuteWithName(e.retrier, ctx, fetchName,
					func(ctx context.Context) ([]T, error) {
						return fetch(ctx, shard)
					})
				if err != nil {
					r.counters.addDropped(kind, 1)
					return err
				}
				if len(entities) == 0 {
					return nil
				}
				if err := r.writer.Write(path, kind, entities); err != nil {
					r.counters.addDropped(kind, 1)
					return err
				}
				r.counters.addWritten(kind, int64(len(entities)))
				return nil
			})

		if err := r.pool.Submit(task); err != nil {
			e.logger.Errorf("submitting %s shard %d failed: %v", kind, j, err)
			r.counters.addDropped(kind, 1)
		}
	}
	r.pool.AwaitAll()
}

// backupSchema fetches a schema kind in one call and writes it to a single
// file, retrying only when the engine is configured to.
func backupSchema[T any](ctx context.Context, r *run, kind types.EntityType, path string,
	fetch func(context.Context) ([]T, error)) {

	e := r.engine
	name := "backing up " + kind.String()

	var list []T
	var err error
	if e.cfg.RetrySchema {
		list, err = retry.ExecuteWithName(e.retrier, ctx, name, fetch)
	} else {
		list, err = fetch(ctx)
	}
	if err != nil {
		e.logger.Errorf("%s failed: %v", name, err)
		r.counters.addDropped(kind, 1)
		return
	}

	if list == nil {
		list = []T{}
	}
	if err := r.writer.Write(path, kind, list); err != nil {
		r.counters.addDropped(kind, 1)
		return
	}
	r.counters.addWritten(kind, int64(len(list)))
}

// listShards requests the shard list for a bulk kind, with retry.
func (r *run) listShards(ctx context.Context, kind types.EntityType) ([]types.Shard, error) {
	e := r.engine
	name := "listing " + kind.String() + " shards"
	return retry.ExecuteWithName(e.retrier, ctx, name,
		func(ctx context.Context) ([]types.Shard, error) {
			if kind == types.Vertex {
				return e.client.Traverser().VertexShards(ctx, e.cfg.SplitSize)
			}
			return e.client.Traverser().EdgeShards(ctx, e.cfg.SplitSize)
		})
}

// summarize snapshots the counters for the requested kinds.
func (r *run) summarize(kinds []types.EntityType, outputDir string, started, finished time.Time) *Summary {
	written, dropped := r.counters.snapshot()

	summary := &Summary{
		RunID:      uuid.NewString(),
		OutputDir:  outputDir,
		StartedAt:  started,
		FinishedAt: finished,
		Elapsed:    finished.Sub(started),
		Written:    make(map[types.EntityType]int64, len(kinds)),
		Dropped:    make(map[types.EntityType]int64, len(kinds)),
	}
	for _, kind := range kinds {
		summary.Written[kind] = written[kind]
		summary.Dropped[kind] = dropped[kind]
	}
	return summary
}

// ensureDirectory validates the output directory, creating it if absent.
// A regular file occupying the path is a fatal configuration error.
func ensureDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("can't use %q as output directory: a file with the same name exists", dir)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %q: %w", dir, err)
	}
	return nil
}
