package backup

import (
	"sync/atomic"

	"github.com/graphback/graphback/pkg/types"
)

// counterSet tracks per-kind written-entity and dropped-shard counts.
// Counts are updated atomically by concurrent jobs and read only after the
// pool barrier for the kind has been passed.
type counterSet struct {
	written map[types.EntityType]*int64
	dropped map[types.EntityType]*int64
}

func newCounterSet() *counterSet {
	c := &counterSet{
		written: make(map[types.EntityType]*int64),
		dropped: make(map[types.EntityType]*int64),
	}
	for _, kind := range types.AllEntityTypes() {
		c.written[kind] = new(int64)
		c.dropped[kind] = new(int64)
	}
	return c
}

// addWritten adds n successfully written entities for kind.
func (c *counterSet) addWritten(kind types.EntityType, n int64) {
	atomic.AddInt64(c.written[kind], n)
}

// addDropped records a permanently failed batch for kind.
func (c *counterSet) addDropped(kind types.EntityType, n int64) {
	atomic.AddInt64(c.dropped[kind], n)
}

func (c *counterSet) snapshot() (written, dropped map[types.EntityType]int64) {
	written = make(map[types.EntityType]int64, len(c.written))
	dropped = make(map[types.EntityType]int64, len(c.dropped))
	for kind, v := range c.written {
		written[kind] = atomic.LoadInt64(v)
	}
	for kind, v := range c.dropped {
		dropped[kind] = atomic.LoadInt64(v)
	}
	return written, dropped
}
