package app

import (
	"fmt"

	"accx/pkg/door"
	"accx/pkg/port"
	"accx/pkg/raspberry"

	"github.com/womat/debug"
)

// outputOpener requests output lines by gpio number.
type outputOpener interface {
	OutputLine(gpio int) (port.Output, error)
}

// openGPIO watches the data lines of the configured readers and requests
// the output lines.
func (app *App) openGPIO() (o door.Outputs, err error) {
	if app.chip, err = raspberry.Open(app.config.Readers.Chip); err != nil {
		return o, err
	}

	for i, r := range app.config.Readers.Channels {
		ch := i + 1
		for _, d := range []struct {
			gpio int
			line port.Line
		}{{r.Data0, port.LineZero}, {r.Data1, port.LineOne}} {
			l, err := app.chip.WatchLine(d.gpio, app.config.Readers.Bias, ch, d.line, app.reader.HandleEvent)
			if err != nil {
				return o, fmt.Errorf("reader %d %v: %w", ch, d.line, err)
			}
			debug.DebugLog.Printf("reader %d %v on gpio %d", ch, d.line, d.gpio)
			app.lines = append(app.lines, l)
		}
	}

	var opener outputOpener = app.chip
	if app.config.Outputs.Driver == "gpiomem" {
		if app.mem, err = raspberry.OpenMem(); err != nil {
			return o, err
		}
		opener = app.mem
	}

	open := func(gpio int) (port.Output, error) {
		if gpio <= 0 {
			return nil, nil
		}
		return opener.OutputLine(gpio)
	}

	for i, gpio := range app.config.Outputs.Relays {
		if o.Relays[i], err = open(gpio); err != nil {
			return o, fmt.Errorf("relay %d: %w", i+1, err)
		}
	}
	for i, gpio := range app.config.Outputs.LEDs {
		if o.LEDs[i], err = open(gpio); err != nil {
			return o, fmt.Errorf("led %d: %w", i+1, err)
		}
	}
	for i, gpio := range app.config.Outputs.Buzzers {
		if o.Buzzers[i], err = open(gpio); err != nil {
			return o, fmt.Errorf("buzzer %d: %w", i+1, err)
		}
	}
	if o.Status, err = open(app.config.Outputs.Status); err != nil {
		return o, fmt.Errorf("status: %w", err)
	}

	return o, nil
}

// closeGPIO releases the data lines and the chips.
// The output lines are released by the door station.
func (app *App) closeGPIO() {
	for _, l := range app.lines {
		_ = l.Close()
	}
	app.lines = nil

	if app.chip != nil {
		_ = app.chip.Close()
	}
	if app.mem != nil {
		_ = app.mem.Close()
	}
}
