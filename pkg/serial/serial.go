// Package serial is the transport of the line protocol to the host.
package serial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/womat/debug"
	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the baud rate the host expects.
	DefaultBaudRate = 57600

	// readTimeout bounds a single read so that Run notices a cancelled context.
	readTimeout = 100 * time.Millisecond

	// Stdio selects standard input and output instead of a serial device.
	Stdio = "stdio"
)

// Porter defines the minimal interface needed for a serial port.
type Porter interface {
	io.ReadWriter
	io.Closer
}

// timeoutPorter is implemented by ports with a configurable read timeout.
type timeoutPorter interface {
	SetReadTimeout(t time.Duration) error
}

// Open opens the serial device at path with 8N1 framing.
// The path Stdio opens standard input and output.
func Open(path string, baud int) (Porter, error) {
	if path == Stdio {
		return stdio{}, nil
	}

	if baud == 0 {
		baud = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	p, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %q: %w", path, err)
	}
	return p, nil
}

type stdio struct{}

func (stdio) Read(b []byte) (int, error)  { return os.Stdin.Read(b) }
func (stdio) Write(b []byte) (int, error) { return os.Stdout.Write(b) }
func (stdio) Close() error                { return nil }

// Link forwards the bytes received on a port to channel C and writes to the port.
type Link struct {
	port Porter
	// C receives the input bytes, it is closed when Run returns.
	C chan byte
}

// New returns a Link on p.
func New(p Porter) *Link {
	return &Link{port: p, C: make(chan byte, 64)}
}

// Write writes b to the port.
func (l *Link) Write(b []byte) (int, error) {
	return l.port.Write(b)
}

// Run reads from the port until ctx is done or the port fails.
// End of input is not an error.
func (l *Link) Run(ctx context.Context) error {
	defer close(l.C)

	if t, ok := l.port.(timeoutPorter); ok {
		if err := t.SetReadTimeout(readTimeout); err != nil {
			debug.ErrorLog.Printf("can't set serial read timeout: %v", err)
		}
	}

	buf := make([]byte, 64)
	for {
		if ctx.Err() != nil {
			return nil
		}

		n, err := l.port.Read(buf)
		for _, b := range buf[:n] {
			select {
			case l.C <- b:
			case <-ctx.Done():
				return nil
			}
		}

		switch {
		case errors.Is(err, io.EOF):
			debug.InfoLog.Print("serial input closed")
			return nil
		case err != nil:
			return fmt.Errorf("read serial port: %w", err)
		}
	}
}

// Close closes the port.
func (l *Link) Close() error {
	return l.port.Close()
}
