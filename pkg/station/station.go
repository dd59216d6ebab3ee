// Package station runs the main loop of the door station.
package station

import (
	"context"
	"time"

	"github.com/womat/debug"
)

// DefaultInterval is the default poll interval of the loop.
const DefaultInterval = time.Millisecond

// Feeder consumes input bytes of the serial link.
type Feeder interface {
	Feed(b byte)
}

// Poller classifies complete reader frames.
type Poller interface {
	Poll()
}

// Loop is the main loop. Command input and frame classification run on
// the loop goroutine only; pending input is always processed before frames
// are polled, so an event line is never written between a command and its
// reply.
type Loop struct {
	in       <-chan byte
	console  Feeder
	poller   Poller
	interval time.Duration
}

// New returns a Loop feeding in to console and polling poller every interval.
func New(in <-chan byte, console Feeder, poller Poller, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{in: in, console: console, poller: poller, interval: interval}
}

// Run runs the loop until ctx is done.
func (l *Loop) Run(ctx context.Context) {
	t := time.NewTicker(l.interval)
	defer t.Stop()

	debug.InfoLog.Printf("station loop started, poll interval %v", l.interval)
	for {
		select {
		case <-ctx.Done():
			debug.InfoLog.Print("station loop stopped")
			return
		case b, open := <-l.in:
			if !open {
				l.in = nil
				continue
			}
			l.console.Feed(b)
		case <-t.C:
			l.drain()
			l.poller.Poll()
		}
	}
}

// drain feeds all pending input bytes.
func (l *Loop) drain() {
	for {
		select {
		case b, open := <-l.in:
			if !open {
				l.in = nil
				return
			}
			l.console.Feed(b)
		default:
			return
		}
	}
}
