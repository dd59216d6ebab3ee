// Package keypad accumulates keypad buttons of the reader channels into passcodes.
package keypad

import (
	"time"

	"accx/pkg/clock"
	"accx/pkg/port"
	"accx/pkg/report"

	"github.com/womat/debug"
)

const (
	// Escape discards the passcode typed so far.
	Escape = 10
	// Enter submits the passcode typed so far.
	Enter = 11

	// Timeout is the default time between two buttons before a passcode is discarded.
	Timeout = 2000 * time.Millisecond

	// auxPrefix as first character of a submitted passcode asserts the auxiliary output.
	auxPrefix = '8'

	channels = 2
)

// Result is the outcome of a button press.
type Result int

const (
	Accumulated Result = iota
	Escaped
	Submitted
)

// Session is the passcode in progress of one channel.
type Session struct {
	digits       Buffer
	accumulating bool
	// last is the millisecond timestamp of the last button
	last uint64
}

// Press processes a button code at time now (ms). For Submitted the typed
// passcode is returned.
func (s *Session) Press(code int, now, timeout uint64) (Result, string) {
	if s.accumulating && now-s.last > timeout {
		s.reset()
	}
	s.last = now

	switch code {
	case Escape:
		s.reset()
		return Escaped, ""
	case Enter:
		digits := s.digits.String()
		s.reset()
		return Submitted, digits
	}

	s.accumulating = true
	c := byte(code) + '0'
	if err := s.digits.Append(c); err != nil {
		// on overflow the first character stays, writing restarts at index 1
		s.digits.Truncate(1)
		_ = s.digits.Append(c)
	}
	return Accumulated, ""
}

// Digits returns the passcode typed so far.
func (s *Session) Digits() string {
	return s.digits.String()
}

func (s *Session) reset() {
	s.digits.Reset()
	s.accumulating = false
}

// Pad holds the sessions of both channels.
// Press must be called from a single goroutine.
type Pad struct {
	sessions [channels]Session
	clock    clock.Clock
	report   report.Reporter
	// aux are the auxiliary outputs of the channels, nil entries are skipped
	aux     [channels]port.Output
	timeout uint64
}

// New returns a Pad reporting submitted passcodes to rep.
func New(c clock.Clock, rep report.Reporter, timeout time.Duration) *Pad {
	if timeout <= 0 {
		timeout = Timeout
	}
	return &Pad{clock: c, report: rep, timeout: uint64(timeout / time.Millisecond)}
}

// SetAux sets the auxiliary output of a channel (1 or 2).
func (p *Pad) SetAux(channel int, o port.Output) {
	if channel >= 1 && channel <= channels {
		p.aux[channel-1] = o
	}
}

// Press processes a button of a channel (1 or 2).
func (p *Pad) Press(channel int, code int) {
	if channel < 1 || channel > channels {
		return
	}

	s := &p.sessions[channel-1]
	r, digits := s.Press(code, p.clock.Millis(), p.timeout)

	switch r {
	case Escaped:
		debug.TraceLog.Printf("keypad %d: escape", channel)
	case Submitted:
		p.setAux(channel, len(digits) > 0 && digits[0] == auxPrefix)
		p.report.PasscodeSubmitted(digits, channel)
	}
}

// Digits returns the passcode in progress of a channel.
func (p *Pad) Digits(channel int) string {
	if channel < 1 || channel > channels {
		return ""
	}
	return p.sessions[channel-1].Digits()
}

func (p *Pad) setAux(channel int, on bool) {
	o := p.aux[channel-1]
	if o == nil {
		return
	}

	v := port.Low
	if on {
		v = port.High
	}
	if err := o.Write(v); err != nil {
		debug.ErrorLog.Printf("keypad %d: can't write aux output: %v", channel, err)
	}
}
