package wiegand

import (
	"context"
	"time"

	"accx/pkg/report"

	"github.com/womat/debug"
)

// keypadMask keeps the button code of a keypad frame.
const keypadMask = 0x0F

// ButtonHandler receives keypad button codes.
type ButtonHandler interface {
	Press(channel int, code int)
}

// Reassembler polls the Reader for complete frames and routes them.
type Reassembler struct {
	reader  *Reader
	format  Format
	buttons ButtonHandler
	report  report.Reporter

	// quiet is the quiet period in microseconds
	quiet   uint64
	framing Framing
}

// Option configures a Reassembler.
type Option func(*Reassembler)

// WithQuietPeriod overrides the default quiet period.
func WithQuietPeriod(d time.Duration) Option {
	return func(a *Reassembler) {
		if d > 0 {
			a.quiet = uint64(d / time.Microsecond)
		}
	}
}

// WithFraming selects the timestamp the quiet period is measured from.
func WithFraming(f Framing) Option {
	return func(a *Reassembler) {
		a.framing = f
	}
}

// NewReassembler routes card frames through format to rep and all other
// frames to buttons.
func NewReassembler(r *Reader, format Format, buttons ButtonHandler, rep report.Reporter, opts ...Option) *Reassembler {
	a := &Reassembler{
		reader:  r,
		format:  format,
		buttons: buttons,
		report:  rep,
		quiet:   QuietPeriod,
		// the door firmware measures from the first bit, see WithFraming(FromFirstBit)
		framing: FromLastBit,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Poll classifies every frame whose quiet period has elapsed.
// It must be called from a single goroutine.
func (a *Reassembler) Poll() {
	now := a.reader.clock.Micros()
	for i := range a.reader.channels {
		if f, ok := a.reader.channels[i].take(now, a.quiet, a.framing); ok {
			a.route(i+1, f)
		}
	}
}

// route classifies a complete frame, outside of the channel lock.
func (a *Reassembler) route(channel int, f Frame) {
	if f.Count == CredentialWidth {
		c := a.format.Decode(f.Bits)
		if !c.ParityOK {
			debug.DebugLog.Printf("reader %d: parity mismatch in frame %026b", channel, f.Bits&frameMask)
		}
		a.report.CredentialDecoded(c.ID, channel)
		return
	}

	debug.TraceLog.Printf("reader %d: %d bit frame %b, keypad code %d", channel, f.Count, f.Bits, f.Bits&keypadMask)
	a.buttons.Press(channel, int(f.Bits&keypadMask))
}

// Run polls every interval until ctx is done.
func (a *Reassembler) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			a.Poll()
		}
	}
}
