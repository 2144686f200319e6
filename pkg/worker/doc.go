/*
Package worker provides the bounded worker pool that executes backup jobs.

# Overview

The pool runs a fixed set of worker goroutines over a buffered task queue.
Submitted tasks are fetch+write backup jobs; tasks never crash a worker.
Panics are recovered and funneled, together with ordinary task errors, to a
configurable ErrorHandler so the pool keeps processing remaining jobs.

# Phase barrier

AwaitAll blocks the submitting goroutine until every task submitted since
the last AwaitAll call has finished, success or failure. The backup engine
uses this as the barrier between entity-type phases: all vertex shards
finish before the first edge shard starts, bounding peak connection and
open-file-handle use.

# Usage

	pool, err := worker.NewPool(&worker.PoolConfig{
		PoolSize:  8,
		QueueSize: 256,
	})
	if err != nil {
		return err
	}
	if err := pool.Start(ctx); err != nil {
		return err
	}
	defer pool.Close()

	for _, shard := range shards {
		task := worker.NewBasicTask(func(ctx context.Context) error {
			return backupShard(ctx, shard)
		})
		if err := pool.Submit(task); err != nil {
			// queue full or pool shutting down
		}
	}
	pool.AwaitAll()

All components pass the race detector and are safe for concurrent use.
*/
package worker
