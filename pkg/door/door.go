// Package door drives the outputs of the door station: relays, reader LEDs,
// buzzers and the status LED.
package door

import (
	"errors"
	"fmt"
	"sync"

	"accx/pkg/port"

	"github.com/womat/debug"
)

const (
	// Relays is the number of relay outputs (door 1, door 2, strobe, siren).
	Relays = 4
	// Readers is the number of reader channels with LED and buzzer.
	Readers = 2
)

var ErrInvalidRelay = errors.New("invalid relay number")

// Outputs are the output lines of the station. Nil lines are not connected.
type Outputs struct {
	Relays  [Relays]port.Output
	LEDs    [Readers]port.Output
	Buzzers [Readers]port.Output
	Status  port.Output
}

// Station drives the outputs.
type Station struct {
	mu  sync.Mutex
	out Outputs
}

// New returns a Station with every connected output driven low.
func New(o Outputs) (*Station, error) {
	s := &Station{out: o}
	for _, l := range s.lines() {
		if err := l.Write(port.Low); err != nil {
			return s, fmt.Errorf("initialize output: %w", err)
		}
	}
	return s, nil
}

// Relay drives relay n (1..4).
func (s *Station) Relay(n int, st port.StateType) error {
	if n < 1 || n > Relays {
		return ErrInvalidRelay
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	debug.DebugLog.Printf("relay %d: %v", n, st)
	return write(s.out.Relays[n-1], st)
}

// SetLEDs switches the green LEDs of both readers. The LEDs are active low.
func (s *Station) SetLEDs(on bool) error {
	st := port.High
	if on {
		st = port.Low
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.out.LEDs {
		if err := write(l, st); err != nil {
			return err
		}
	}
	return nil
}

// Aux returns the auxiliary output asserted by keypad codes.
func (s *Station) Aux() port.Output {
	return s.out.Status
}

// Close releases all output lines.
func (s *Station) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	for _, l := range s.lines() {
		if e := l.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

func (s *Station) lines() []port.Output {
	var l []port.Output
	for _, o := range s.out.Relays {
		l = append(l, o)
	}
	for _, o := range s.out.LEDs {
		l = append(l, o)
	}
	for _, o := range s.out.Buzzers {
		l = append(l, o)
	}
	l = append(l, s.out.Status)

	connected := l[:0]
	for _, o := range l {
		if o != nil {
			connected = append(connected, o)
		}
	}
	return connected
}

func write(o port.Output, st port.StateType) error {
	if o == nil {
		return nil
	}
	return o.Write(st)
}

// Memory is an output line that only keeps its state.
// It stands in for hardware in the simulator.
type Memory struct {
	mu    sync.Mutex
	Name  string
	state port.StateType
}

func (m *Memory) Write(st port.StateType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != st {
		debug.TraceLog.Printf("output %s: %v", m.Name, st)
	}
	m.state = st
	return nil
}

// State returns the last written state.
func (m *Memory) State() port.StateType {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Memory) Close() error {
	return nil
}
