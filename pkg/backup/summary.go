package backup

import (
	"fmt"
	"strings"
	"time"

	"github.com/graphback/graphback/pkg/types"
)

// Summary reports the outcome of one backup run. Written counts cover only
// successfully written batches; Dropped counts the shards (or schema lists)
// lost after exhausting retries, so operators can detect incomplete
// backups.
type Summary struct {
	RunID      string
	OutputDir  string
	StartedAt  time.Time
	FinishedAt time.Time
	Elapsed    time.Duration
	Written    map[types.EntityType]int64
	Dropped    map[types.EntityType]int64
}

// TotalWritten returns the total entity count across all kinds.
func (s *Summary) TotalWritten() int64 {
	var total int64
	for _, n := range s.Written {
		total += n
	}
	return total
}

// TotalDropped returns the total dropped batch count across all kinds.
func (s *Summary) TotalDropped() int64 {
	var total int64
	for _, n := range s.Dropped {
		total += n
	}
	return total
}

// Complete reports whether no batch was dropped.
func (s *Summary) Complete() bool {
	return s.TotalDropped() == 0
}

// String renders the per-kind counters and elapsed time.
func (s *Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "backup run %s:", s.RunID)
	for _, kind := range types.AllEntityTypes() {
		written, ok := s.Written[kind]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, " %s=%d", kind, written)
		if dropped := s.Dropped[kind]; dropped > 0 {
			fmt.Fprintf(&b, "(-%d dropped)", dropped)
		}
	}
	fmt.Fprintf(&b, " elapsed=%v", s.Elapsed.Round(time.Millisecond))
	return b.String()
}

// Log writes the summary through the logger, one line per kind plus a
// total line, warning when batches were dropped.
func (s *Summary) Log(logger types.Logger) {
	for _, kind := range types.AllEntityTypes() {
		written, ok := s.Written[kind]
		if !ok {
			continue
		}
		logger.Infof("%s backup: %d written, %d dropped", kind, written, s.Dropped[kind])
	}
	if !s.Complete() {
		logger.Warnf("backup run %s incomplete: %d batches dropped after exhausting retries",
			s.RunID, s.TotalDropped())
	}
	logger.Infof("backup run %s finished in %v, %d entities written",
		s.RunID, s.Elapsed.Round(time.Millisecond), s.TotalWritten())
}
