//go:build linux

// Package raspberry is the access to the gpio lines of the reader data
// lines and the station outputs.
package raspberry

import (
	"fmt"

	"accx/pkg/port"

	"github.com/warthog618/gpiod"
)

// DefaultChip is the gpio chip of the Raspberry Pi header.
const DefaultChip = "gpiochip0"

// Chip represents a single GPIO chip that controls a set of lines.
type Chip struct {
	gpiodChip *gpiod.Chip
}

// Line represents a single requested line.
type Line struct {
	gpiodLine *gpiod.Line
}

// Open opens a GPIO character device.
func Open(name string) (*Chip, error) {
	if name == "" {
		name = DefaultChip
	}
	c, err := gpiod.NewChip(name)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %q: %w", name, err)
	}
	return &Chip{gpiodChip: c}, nil
}

// WatchLine requests a reader data line and calls handler on every pulse.
//   The data lines idle high, a pulse is detected on its falling edge.
//   handler runs on the event goroutine of the chip and must return quickly.
func (c *Chip) WatchLine(gpio int, bias string, channel int, line port.Line, handler func(port.Event)) (*Line, error) {
	var err error
	l := &Line{}

	eh := func(evt gpiod.LineEvent) {
		handler(port.Event{Channel: channel, Line: line, Timestamp: evt.Timestamp})
	}

	switch bias {
	case "pullup":
		l.gpiodLine, err = c.gpiodChip.RequestLine(gpio, gpiod.WithEventHandler(eh),
			gpiod.WithFallingEdge, gpiod.AsInput, gpiod.WithPullUp)
	case "pulldown":
		l.gpiodLine, err = c.gpiodChip.RequestLine(gpio, gpiod.WithEventHandler(eh),
			gpiod.WithFallingEdge, gpiod.AsInput, gpiod.WithPullDown)
	case "none", "":
		l.gpiodLine, err = c.gpiodChip.RequestLine(gpio, gpiod.WithEventHandler(eh),
			gpiod.WithFallingEdge, gpiod.AsInput)
	default:
		return nil, fmt.Errorf("bias %q: %w", bias, ErrInvalidParam)
	}

	if err != nil {
		return nil, fmt.Errorf("request gpio %d: %w", gpio, err)
	}
	return l, nil
}

// OutputLine requests an output line, initially low.
func (c *Chip) OutputLine(gpio int) (port.Output, error) {
	l, err := c.gpiodChip.RequestLine(gpio, gpiod.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request gpio %d: %w", gpio, err)
	}
	return &Line{gpiodLine: l}, nil
}

// Write sets the level of an output line.
func (l *Line) Write(st port.StateType) error {
	return l.gpiodLine.SetValue(int(st))
}

// Close releases the Chip.
//
// It does not release any lines which may be requested - they must be closed
// independently.
func (c *Chip) Close() error {
	return c.gpiodChip.Close()
}

// Close releases all resources held by the requested line.
//
// Note that this includes waiting for any running event handler to return.
// As a consequence the Close must not be called from the context of the event
// handler - the Close should be called from a different goroutine.
func (l *Line) Close() error {
	return l.gpiodLine.Close()
}
