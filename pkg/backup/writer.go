package backup

import (
	"bytes"
	"fmt"
	"os"

	"github.com/graphback/graphback/pkg/client"
	"github.com/graphback/graphback/pkg/keylock"
	"github.com/graphback/graphback/pkg/types"
)

// ShardWriter serializes entity batches into newline-delimited JSON
// envelopes and appends them to output files. Writes to the same path are
// serialized through the engine-owned KeyLock; files are created on first
// write and never truncated, so multiple shards accumulate into the same
// file across lines.
type ShardWriter struct {
	locks  *keylock.KeyLock
	ser    client.Serializer
	logger types.Logger
}

// NewShardWriter creates a writer guarded by locks.
func NewShardWriter(locks *keylock.KeyLock, ser client.Serializer, logger types.Logger) *ShardWriter {
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &ShardWriter{
		locks:  locks,
		ser:    ser,
		logger: logger,
	}
}

// Write appends one envelope line {"<kind>": [...]} for the batch to path.
// A serialization or I/O failure is logged and returned; the caller counts
// the batch as dropped and the run continues.
func (w *ShardWriter) Write(path string, kind types.EntityType, list interface{}) error {
	handle := w.locks.Lock(path)
	defer handle.Unlock()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "{%q: ", kind.String())
	if err := w.ser.EncodeList(&buf, list); err != nil {
		w.logger.Errorf("failed to serialize %s batch: %v", kind, err)
		return types.NewBackupError("serializing "+kind.String(), err)
	}
	buf.WriteString("}\n")

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		w.logger.Errorf("failed to open %s: %v", path, err)
		return types.NewBackupError("writing "+kind.String(), err)
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		w.logger.Errorf("failed to write %s batch to %s: %v", kind, path, err)
		return types.NewBackupError("writing "+kind.String(), err)
	}
	return f.Close()
}
