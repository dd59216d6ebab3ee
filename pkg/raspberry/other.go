//go:build !linux

package raspberry

import "accx/pkg/port"

// DefaultChip is the gpio chip of the Raspberry Pi header.
const DefaultChip = "gpiochip0"

// Chip is not available on this platform, use the simulator instead.
type Chip struct{}

// Line is not available on this platform.
type Line struct{}

// Mem is not available on this platform.
type Mem struct{}

func Open(string) (*Chip, error) { return nil, ErrNotSupported }

func (c *Chip) WatchLine(int, string, int, port.Line, func(port.Event)) (*Line, error) {
	return nil, ErrNotSupported
}

func (c *Chip) OutputLine(int) (port.Output, error) { return nil, ErrNotSupported }

func (c *Chip) Close() error { return nil }

func (l *Line) Close() error { return nil }

func OpenMem() (*Mem, error) { return nil, ErrNotSupported }

func (m *Mem) OutputLine(int) (port.Output, error) { return nil, ErrNotSupported }

func (m *Mem) Close() error { return nil }
