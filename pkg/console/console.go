// Package console is the line oriented command interpreter of the serial link.
//
// Input arrives byte by byte. A carriage return ends the command line, whose
// first character selects the command from a table built by New. Replies
// and unrecognized input are written as single lines, see package report.
package console

import (
	"fmt"

	"accx/pkg/port"
	"accx/pkg/report"

	"github.com/womat/debug"
)

// maxInput is the length at which an unterminated command line is dropped as garbage.
const maxInput = 20

// Writer writes to the serial link.
type Writer interface {
	Print(s string) error
	Println(s string) error
}

// Outputs are the station outputs the commands act on.
type Outputs interface {
	Relay(n int, st port.StateType) error
	SetLEDs(on bool) error
}

// Device describes the station for the device info command.
type Device struct {
	Model    string
	Version  string
	Scanners int
	Relays   int
}

// Command is an entry of the command table.
type Command struct {
	// Code is the first character of the command line.
	Code byte
	// Response is the first character of the reply.
	Response byte
	Help     string
	Handler  func(c *Console, response byte)
}

// Console interprets command lines.
// Feed must be called from a single goroutine.
type Console struct {
	w        Writer
	outputs  Outputs
	device   Device
	commands []Command

	input []byte
	echo  bool
}

// New returns a Console with the default command table and echo on.
func New(w Writer, o Outputs, d Device) *Console {
	c := &Console{
		w:       w,
		outputs: o,
		device:  d,
		input:   make([]byte, 0, maxInput),
		echo:    true,
	}
	c.commands = []Command{
		{Code: '?', Response: '?', Help: "show this help", Handler: (*Console).help},
		{Code: 'e', Response: 'E', Help: "configure echo: 0=off, 1=on", Handler: (*Console).setEcho},
		{Code: 'i', Response: 'I', Help: "get device info", Handler: (*Console).deviceInfo},
		{Code: 'o', Response: 'O', Help: "open relay: relay num", Handler: (*Console).openRelay},
		{Code: 'c', Response: 'C', Help: "close relay: relay num", Handler: (*Console).closeRelay},
		{Code: 'l', Response: 'L', Help: "set LED: led num, 0=off, 1=on", Handler: (*Console).setLED},
	}
	return c
}

// Start writes the startup banner. The host waits for its last line.
func (c *Console) Start() {
	c.println("Firmware version " + c.device.Version)
	c.println(fmt.Sprintf("Num commands: %d", len(c.commands)))
	c.println("Ready. Enter ? for help")
}

// Feed processes one input byte.
func (c *Console) Feed(b byte) {
	if c.echo {
		c.print(string(b))
	}

	if b != '\r' {
		c.input = append(c.input, b)
		if len(c.input) == maxInput {
			c.garbage()
			c.clear()
		}
		return
	}

	if c.echo {
		c.print("\n")
	}
	c.dispatch()
	c.clear()
}

func (c *Console) dispatch() {
	if len(c.input) > 0 {
		for _, cmd := range c.commands {
			if cmd.Code == c.input[0] {
				cmd.Handler(c, cmd.Response)
				return
			}
		}
	}
	c.garbage()
}

func (c *Console) clear() {
	c.input = c.input[:0]
}

func (c *Console) garbage() {
	c.println(report.FormatGarbage(string(c.input)))
}

func (c *Console) print(s string) {
	if err := c.w.Print(s); err != nil {
		debug.ErrorLog.Printf("console: %v", err)
	}
}

func (c *Console) println(s string) {
	if err := c.w.Println(s); err != nil {
		debug.ErrorLog.Printf("console: %v", err)
	}
}
