package wiegand

import "sync"

// Framing selects the timestamp the quiet period is measured from.
type Framing int

const (
	// FromLastBit closes a frame once no bit arrived for the quiet period.
	FromLastBit Framing = iota
	// FromFirstBit closes a frame once the quiet period elapsed since its first bit.
	FromFirstBit
)

// ParseFraming maps the configuration value ("last" or "first") to a Framing.
func ParseFraming(s string) (Framing, error) {
	switch s {
	case "", "last":
		return FromLastBit, nil
	case "first":
		return FromFirstBit, nil
	default:
		return FromLastBit, ErrInvalidFraming
	}
}

// Frame is a completed burst of bits taken from a channel.
type Frame struct {
	// Bits holds the received bits, the most recent bit in bit 0.
	Bits uint32
	// Count is the number of bits received, saturated at CredentialWidth+1.
	Count int
	// First and Last are the microsecond timestamps of the first and last bit.
	First uint64
	Last  uint64
}

// State is a copy of the capture state of a channel.
type State struct {
	Open  bool   `json:"open"`
	Bits  uint32 `json:"bits"`
	Count int    `json:"count"`
	First uint64 `json:"first"`
	Last  uint64 `json:"last"`
}

// Channel is the capture state of one reader.
// Capture is called from the edge handler and take from the polling loop.
// Both hold mu only for a handful of instructions; mu is never shared with
// the other channel.
type Channel struct {
	mu     sync.Mutex
	buffer uint32
	count  int
	open   bool
	first  uint64
	last   uint64
}

// Capture appends one bit to the frame in progress, opening a new frame
// when none is open.
func (c *Channel) Capture(bit uint32, now uint64) {
	c.mu.Lock()
	if !c.open {
		c.open = true
		c.buffer = 0
		c.count = 0
		c.first = now
	}
	c.buffer = c.buffer<<1 | bit&1
	if c.count <= CredentialWidth {
		c.count++
	}
	c.last = now
	c.mu.Unlock()
}

// take returns the open frame and resets the channel once the quiet period
// elapsed. A bit captured after now was read keeps the frame open.
func (c *Channel) take(now, quiet uint64, framing Framing) (Frame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return Frame{}, false
	}

	ref := c.last
	if framing == FromFirstBit {
		ref = c.first
	}
	if now < ref || now-ref <= quiet {
		return Frame{}, false
	}

	f := Frame{Bits: c.buffer, Count: c.count, First: c.first, Last: c.last}
	c.buffer = 0
	c.count = 0
	c.open = false
	return f, true
}

func (c *Channel) state() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Open: c.open, Bits: c.buffer, Count: c.count, First: c.first, Last: c.last}
}
