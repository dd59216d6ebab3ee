// Package clock provides the monotonic time sources of the decoding pipeline.
package clock

import (
	"sync"
	"time"
)

// Clock is the time source used by bit capture, framing and keypad timing.
type Clock interface {
	// Micros returns a monotonic microsecond counter.
	Micros() uint64
	// Millis returns a monotonic millisecond counter.
	Millis() uint64
	// Now returns the wall clock time, used to stamp reported events.
	Now() time.Time
}

// Real reads the monotonic clock of the time package.
// The counters start at zero when the Real clock is created.
type Real struct {
	start time.Time
}

// New returns a Real clock starting now.
func New() *Real {
	return &Real{start: time.Now()}
}

func (c *Real) Micros() uint64 {
	return uint64(time.Since(c.start) / time.Microsecond)
}

func (c *Real) Millis() uint64 {
	return uint64(time.Since(c.start) / time.Millisecond)
}

func (c *Real) Now() time.Time {
	return time.Now()
}

// Mock is a manually controlled clock for testing.
type Mock struct {
	mu     sync.Mutex
	micros uint64
	wall   time.Time
}

// NewMock returns a Mock clock set to the given microsecond counter.
func NewMock(micros uint64) *Mock {
	return &Mock{micros: micros, wall: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Set sets the counter to an absolute microsecond value.
func (c *Mock) Set(micros uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.micros = micros
}

// Advance moves the clock forward by d.
func (c *Mock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.micros += uint64(d / time.Microsecond)
}

func (c *Mock) Micros() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.micros
}

func (c *Mock) Millis() uint64 {
	return c.Micros() / 1000
}

func (c *Mock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wall.Add(time.Duration(c.micros) * time.Microsecond)
}
