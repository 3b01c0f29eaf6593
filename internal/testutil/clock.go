package testutil

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// BuildEpoch is the start time of every build driven by a FixedClock.
var BuildEpoch = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// ManualClock only moves when Advance is called.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// FixedClock returns a ManualClock stopped at BuildEpoch.
func FixedClock() *ManualClock {
	return &ManualClock{now: BuildEpoch}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new time.
func (c *ManualClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// SequentialIDs hands out build IDs "build-1", "build-2", ... in call order.
type SequentialIDs struct {
	n atomic.Int64
}

func NewSequentialIDs() *SequentialIDs {
	return &SequentialIDs{}
}

func (g *SequentialIDs) New() string {
	return "build-" + strconv.FormatInt(g.n.Add(1), 10)
}
