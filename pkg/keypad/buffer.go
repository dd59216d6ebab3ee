package keypad

import "errors"

// MaxDigits is the capacity of a passcode buffer.
const MaxDigits = 19

var ErrCapacityExceeded = errors.New("passcode buffer capacity exceeded")

// Buffer is a fixed capacity character buffer.
type Buffer struct {
	b [MaxDigits]byte
	n int
}

// Append adds c, or returns ErrCapacityExceeded when the buffer is full.
func (b *Buffer) Append(c byte) error {
	if b.n >= len(b.b) {
		return ErrCapacityExceeded
	}
	b.b[b.n] = c
	b.n++
	return nil
}

// Truncate discards all characters from position n on.
func (b *Buffer) Truncate(n int) {
	if n >= 0 && n < b.n {
		b.n = n
	}
}

// Reset empties the buffer.
func (b *Buffer) Reset() {
	b.n = 0
}

func (b *Buffer) String() string {
	return string(b.b[:b.n])
}
