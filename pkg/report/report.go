// Package report formats decoded events as lines of the serial text protocol.
//
// Every line starts with a one character tag followed by comma separated
// fields:
//
//	F<id>,<channel>      card credential
//	P<digits>,<channel>  submitted keypad passcode
//	G<raw>               garbage or unrecognized input
package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/womat/debug"
)

// EOL terminates every line on the serial link.
const EOL = "\r\n"

// Reporter receives the decoded events of the reader channels.
type Reporter interface {
	CredentialDecoded(id uint32, channel int)
	PasscodeSubmitted(digits string, channel int)
}

// FormatCredential returns the line of a decoded card.
func FormatCredential(id uint32, channel int) string {
	return fmt.Sprintf("F%d,%d", id, channel)
}

// FormatPasscode returns the line of a submitted passcode.
func FormatPasscode(digits string, channel int) string {
	return fmt.Sprintf("P%s,%d", digits, channel)
}

// FormatGarbage returns the line of unrecognized input.
func FormatGarbage(raw string) string {
	return "G" + raw
}

// Line writes events as protocol lines to w.
// It is safe for concurrent use; lines are never interleaved.
type Line struct {
	mu sync.Mutex
	w  io.Writer
	// err is the last write error, nil after a successful write
	err error
}

// NewLine returns a Line reporter writing to w.
func NewLine(w io.Writer) *Line {
	return &Line{w: w}
}

func (l *Line) CredentialDecoded(id uint32, channel int) {
	if err := l.Println(FormatCredential(id, channel)); err != nil {
		debug.ErrorLog.Printf("report credential of reader %d: %v", channel, err)
	}
}

func (l *Line) PasscodeSubmitted(digits string, channel int) {
	if err := l.Println(FormatPasscode(digits, channel)); err != nil {
		debug.ErrorLog.Printf("report passcode of reader %d: %v", channel, err)
	}
}

// Println writes s terminated by EOL.
func (l *Line) Println(s string) error {
	return l.Print(s + EOL)
}

// Print writes s as is. A failed write does not affect later writes.
func (l *Line) Print(s string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.err = nil
	if _, err := io.WriteString(l.w, s); err != nil {
		l.err = fmt.Errorf("write line: %w", err)
	}
	return l.err
}

// Err returns the error of the last write.
func (l *Line) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Multi fans events out to several reporters in order.
type Multi []Reporter

func (m Multi) CredentialDecoded(id uint32, channel int) {
	for _, r := range m {
		r.CredentialDecoded(id, channel)
	}
}

func (m Multi) PasscodeSubmitted(digits string, channel int) {
	for _, r := range m {
		r.PasscodeSubmitted(digits, channel)
	}
}
