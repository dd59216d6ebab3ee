// Package sim simulates Wiegand readers: it encodes cards and keypad buttons
// into frames and replays them as data line pulses.
package sim

import (
	"errors"
	"fmt"
	"math/bits"
	"time"

	"accx/pkg/port"
)

const (
	// CardWidth is the bit length of a card frame.
	CardWidth = 26
	// KeyWidth is the bit length of a keypad frame.
	KeyWidth = 4

	// BitGap is the default time between two pulses of a frame.
	BitGap = 2 * time.Millisecond
	// FrameGap is the default time after a frame, longer than the quiet period.
	FrameGap = 100 * time.Millisecond

	escapeCode = 10
	enterCode  = 11
)

var ErrInvalidKey = errors.New("invalid key")

// Encode26 returns the 26 bit frame of a 24 bit card id: an even parity bit
// over the upper 12 id bits, the id, an odd parity bit over the lower 12.
func Encode26(id uint32) uint32 {
	id &= 1<<24 - 1
	v := id << 1
	if bits.OnesCount32(id>>12)%2 == 1 {
		v |= 1 << 25
	}
	if bits.OnesCount32(id&0xFFF)%2 == 0 {
		v |= 1
	}
	return v
}

// KeyCode returns the button code of a key: '0'..'9', '*' escape and '#' enter.
func KeyCode(k rune) (int, error) {
	switch {
	case k >= '0' && k <= '9':
		return int(k - '0'), nil
	case k == '*':
		return escapeCode, nil
	case k == '#':
		return enterCode, nil
	default:
		return 0, fmt.Errorf("%q: %w", k, ErrInvalidKey)
	}
}

// Edger receives data line pulses.
type Edger interface {
	Edge(channel int, line port.Line)
}

// Player replays frames as pulses.
type Player struct {
	target Edger
	// BitGap is the time between two pulses, FrameGap the time after a frame.
	BitGap   time.Duration
	FrameGap time.Duration
	// Sleep waits between pulses, time.Sleep unless replaced.
	Sleep func(time.Duration)
}

// NewPlayer returns a Player sending pulses to target.
func NewPlayer(target Edger) *Player {
	return &Player{target: target, BitGap: BitGap, FrameGap: FrameGap, Sleep: time.Sleep}
}

// Frame sends the lower width bits of v, most significant bit first.
func (p *Player) Frame(channel int, v uint32, width int) {
	for i := width - 1; i >= 0; i-- {
		line := port.LineZero
		if i < 32 && v>>uint(i)&1 == 1 {
			line = port.LineOne
		}
		p.target.Edge(channel, line)
		if i > 0 {
			p.Sleep(p.BitGap)
		}
	}
	p.Sleep(p.FrameGap)
}

// Card sends the card frame of id.
func (p *Player) Card(channel int, id uint32) {
	p.Frame(channel, Encode26(id), CardWidth)
}

// Keys sends one keypad frame per key.
func (p *Player) Keys(channel int, keys string) error {
	codes := make([]int, 0, len(keys))
	for _, k := range keys {
		c, err := KeyCode(k)
		if err != nil {
			return err
		}
		codes = append(codes, c)
	}

	for _, c := range codes {
		p.Frame(channel, uint32(c), KeyWidth)
	}
	return nil
}
