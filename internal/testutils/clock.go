// Package testutils provides fakes and fixtures for XeWe OS tests: a scripted
// console, a recording restarter, a deterministic clock and a ready-made
// module.Env over the in-memory store.
package testutils

import (
	"sync"
	"time"
)

// BaseTime is where every FakeClock starts: 2025-01-01T00:00:00Z.
var BaseTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// FakeClock is a thread-safe clock that only moves when told to.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a clock set to BaseTime.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: BaseTime}
}

// Now implements ostypes.Clock.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
