// Package port holds the definition of the physical reader and output ports
package port

import "time"

// Line identifies one of the two data lines of a Wiegand reader.
//
// A pulse on the zero line carries a 0 bit, a pulse on the one line a 1 bit.
type Line int

const (
	// LineZero is the DATA0 line of a reader.
	LineZero Line = iota
	// LineOne is the DATA1 line of a reader.
	LineOne
)

// Bit returns the bit value carried by a pulse on the line.
func (l Line) Bit() uint32 {
	if l == LineOne {
		return 1
	}
	return 0
}

func (l Line) String() string {
	if l == LineOne {
		return "DATA1"
	}
	return "DATA0"
}

// Event is a pulse detected on a reader data line.
type Event struct {
	// Channel is the reader channel (1 or 2).
	Channel int
	// Line is the data line the pulse was detected on.
	Line Line
	// Timestamp is the kernel time the event was detected, kept for
	// diagnostics only. Bits are stamped by the reader clock on arrival.
	Timestamp time.Duration
}

type StateType int

const (
	// High indicates a logical 1.
	High StateType = 1
	// Low indicates a logical 0.
	Low StateType = 0
)

// Output is a single digital output line (relay, LED, buzzer).
type Output interface {
	Write(StateType) error
	Close() error
}
