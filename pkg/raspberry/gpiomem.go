//go:build linux

package raspberry

import (
	"accx/pkg/port"

	"github.com/warthog618/gpio"
)

// Mem drives output pins through the GPIO memory range of /dev/gpiomem.
type Mem struct{}

// MemPin is an output pin of Mem.
type MemPin struct {
	gpioPin *gpio.Pin
}

// OpenMem maps the GPIO memory range.
func OpenMem() (*Mem, error) {
	if err := gpio.Open(); err != nil {
		return nil, err
	}
	return &Mem{}, nil
}

// OutputLine sets the pin (BCM number) as output, initially low.
func (m *Mem) OutputLine(pin int) (port.Output, error) {
	p := gpio.NewPin(pin)
	p.Low()
	p.Output()
	return &MemPin{gpioPin: p}, nil
}

// Close unmaps GPIO memory.
func (m *Mem) Close() error {
	return gpio.Close()
}

// Write sets the pin level.
func (p *MemPin) Write(st port.StateType) error {
	if st == port.High {
		p.gpioPin.High()
	} else {
		p.gpioPin.Low()
	}
	return nil
}

// Close returns the pin to input.
func (p *MemPin) Close() error {
	p.gpioPin.Input()
	return nil
}
