package console

import (
	"fmt"

	"accx/pkg/port"

	"github.com/womat/debug"
)

func (c *Console) help(byte) {
	c.println("Help:")
	for _, cmd := range c.commands {
		c.println(fmt.Sprintf("\t%c : %s", cmd.Code, cmd.Help))
	}
}

// setEcho handles "e0" and "e1".
func (c *Console) setEcho(rc byte) {
	if len(c.input) != 2 {
		c.garbage()
		return
	}

	c.echo = c.input[1] == '1'
	v := 0
	if c.echo {
		v = 1
	}
	c.println(fmt.Sprintf("%c%d", rc, v))
}

func (c *Console) deviceInfo(rc byte) {
	c.println(fmt.Sprintf("%cm:%s,v:%s,s:%d,r:%d", rc, c.device.Model, c.device.Version, c.device.Scanners, c.device.Relays))
}

// openRelay handles "o<n>", the relay is released (driven low).
func (c *Console) openRelay(rc byte) {
	c.relay(rc, port.Low)
}

// closeRelay handles "c<n>", the relay is energized (driven high).
func (c *Console) closeRelay(rc byte) {
	c.relay(rc, port.High)
}

func (c *Console) relay(rc byte, st port.StateType) {
	n, ok := c.number()
	if !ok || len(c.input) != 2 {
		c.garbage()
		return
	}

	if err := c.outputs.Relay(n, st); err != nil {
		debug.ErrorLog.Printf("relay %d: %v", n, err)
		c.garbage()
		return
	}
	c.println(fmt.Sprintf("%c%d", rc, n))
}

// setLED handles "l<n>,<0|1>".
func (c *Console) setLED(rc byte) {
	n, ok := c.number()
	if !ok || len(c.input) != 4 {
		c.garbage()
		return
	}

	if err := c.outputs.SetLEDs(c.input[3] == '1'); err != nil {
		debug.ErrorLog.Printf("led %d: %v", n, err)
		c.garbage()
		return
	}
	c.println(fmt.Sprintf("%c%d", rc, n))
}

// number returns the relay or led number (1..4) following the command code.
func (c *Console) number() (int, bool) {
	if len(c.input) < 2 {
		return 0, false
	}
	n := int(c.input[1]) - '0'
	return n, n >= 1 && n <= 4
}
