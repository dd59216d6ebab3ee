// Package wiegand is the decoder of the Wiegand reader protocol.
//
// Every pulse on a data line appends one bit to the frame of its channel.
// The protocol has no end-of-frame marker: a frame is complete once the
// channel stayed quiet for the quiet period. Complete frames of
// CredentialWidth bits are card credentials, all other frames are keypad
// buttons.
package wiegand

import (
	"errors"

	"accx/pkg/clock"
	"accx/pkg/port"
)

const (
	// Channels is the number of reader channels.
	Channels = 2
	// QuietPeriod is the default frame delimiter in microseconds.
	QuietPeriod = 75000
)

var (
	ErrUnknownFormat  = errors.New("unknown card format")
	ErrInvalidFraming = errors.New("invalid framing, expected first or last")
)

// Reader holds the capture state of both reader channels.
type Reader struct {
	channels [Channels]Channel
	clock    clock.Clock
}

// NewReader returns a Reader with both channels idle.
func NewReader(c clock.Clock) *Reader {
	return &Reader{clock: c}
}

// Edge records a pulse on a data line of a channel (1 or 2).
// It is called from the edge handler and must stay short: it neither logs
// nor allocates. Pulses of unknown channels are dropped.
func (r *Reader) Edge(channel int, line port.Line) {
	if channel < 1 || channel > Channels {
		return
	}
	r.channels[channel-1].Capture(line.Bit(), r.clock.Micros())
}

// HandleEvent records an edge event of the gpio line watcher.
func (r *Reader) HandleEvent(evt port.Event) {
	r.Edge(evt.Channel, evt.Line)
}

// Snapshot returns the capture state of both channels.
func (r *Reader) Snapshot() [Channels]State {
	var s [Channels]State
	for i := range r.channels {
		s[i] = r.channels[i].state()
	}
	return s
}
