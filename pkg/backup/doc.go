// Package backup implements the backup orchestration engine.
//
// The engine exports the contents of a remote graph database into a set of
// local files, one entity kind at a time. Bulk kinds (vertices, edges) are
// partitioned into server-issued shards and fetched in parallel over a
// bounded worker pool; each shard job retries transient fetch failures and
// appends its batch to `<outputDir>/<kind><N>` where N is the shard index
// modulo the worker count. Schema kinds (property keys, vertex labels,
// edge labels, index labels) are fetched directly and written once to
// `<outputDir>/<kind>`.
//
// Output files hold one standalone JSON object per line, of the shape
// {"<kind>": [ <entity>, ... ]}. Files are append-only and never
// truncated; line order among shards is not guaranteed, only mutual
// exclusion per file.
//
// Backups are best-effort: fatal configuration errors (unknown kind,
// unusable output directory) abort before any work, while shard fetches
// that exhaust their retry budget and per-batch write failures are logged,
// counted as dropped in the summary, and do not fail the run.
package backup
