package testutil

import (
	"strconv"
	"sync"
	"time"
)

// ManualClock is a bench.Clock that only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// FixedClock starts a ManualClock at 2024-01-15 10:30:00 UTC.
func FixedClock() *ManualClock {
	return &ManualClock{now: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set jumps to t.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Advance adds d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// SequentialIDs is a bench.IDGenerator yielding "event-1", "event-2", ...
type SequentialIDs struct {
	mu   sync.Mutex
	next int
}

func NewSequentialIDs() *SequentialIDs {
	return &SequentialIDs{}
}

func (g *SequentialIDs) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return "event-" + strconv.Itoa(g.next)
}
