package testutil

import (
	"fmt"
	"sync"
	"time"
)

// SequentialIDs hands out run identifiers run-0001, run-0002, ... so stored
// runs and golden snapshots are reproducible.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialIDs struct {
	mu  sync.Mutex
	seq int
}

// NewSequentialIDs creates a generator whose first ID is run-0001.
func NewSequentialIDs() *SequentialIDs {
	return &SequentialIDs{}
}

// NewID returns the next identifier.
func (g *SequentialIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("run-%04d", g.seq)
}

// Reset restarts the sequence. The next call to NewID returns run-0001.
func (g *SequentialIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}

// FixedTime is the timestamp FixedClock reports.
var FixedTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

// FixedClock always returns FixedTime.
func FixedClock() time.Time {
	return FixedTime
}
