// Package retry provides bounded retry-with-delay for fallible operations,
// with pluggable policies and explicit failure classification.
//
// Retry policies:
//   - FixedDelayRetry: fixed delay between attempts
//   - ExponentialBackoffRetry: exponentially growing delay with a cap
//
// Failure classification:
//
// The default retry condition honors the explicit classification carried by
// types.RetryableError: transient network/server-busy conditions are
// retried, permanent request-shape or authentication failures fail fast
// without consuming the retry budget. Context cancellation always aborts.
//
// Basic usage:
//
//	policy := retry.NewFixedDelayRetry(3, time.Second)
//	executor := retry.NewExecutor(policy)
//
//	vertices, err := retry.ExecuteWithName(executor, ctx, "backing up vertices",
//		func(ctx context.Context) ([]types.GraphVertex, error) {
//			return traverser.Vertices(ctx, shard)
//		})
//
// On exhaustion the last failure is surfaced wrapped in a types.BackupError
// tagged with the operation name and attempt counts; the caller decides
// whether that is fatal or a skip.
//
// All public types and methods are thread-safe.
package retry
