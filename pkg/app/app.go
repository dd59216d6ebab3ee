package app

import (
	"context"
	"io"
	"net/url"
	"os"
	"strconv"

	"accx/pkg/app/config"
	"accx/pkg/clock"
	"accx/pkg/console"
	"accx/pkg/door"
	"accx/pkg/keypad"
	"accx/pkg/mqtt"
	"accx/pkg/raspberry"
	"accx/pkg/report"
	"accx/pkg/serial"
	"accx/pkg/sim"
	"accx/pkg/station"
	"accx/pkg/wiegand"

	"github.com/denisbrodbeck/machineid"
	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
)

// inputBuffer is the console input queue of the simulator.
const inputBuffer = 64

// App is the main application struct.
// App is where the application is wired up.
type App struct {
	// web is the fiber web framework instance
	web *fiber.App

	// config is the application configuration
	config *config.Config

	// urlParsed contains the parsed Config.Url parameter
	// and makes it easier to get params out of e.g.
	// url: https://0.0.0.0:7844/?minTls=1.2&bodyLimit=50MB
	urlParsed *url.URL

	// simulate replaces the gpio lines and the serial port by the simulator
	simulate bool

	clock clock.Clock

	// reader captures the pulses of the data lines
	reader *wiegand.Reader
	// reassembler turns captured pulses into credentials and buttons
	reassembler *wiegand.Reassembler
	pad         *keypad.Pad

	// report fans out to the serial link, the history and mqtt
	report  report.Multi
	line    *report.Line
	history *report.History

	// mqtt is the handler to the mqtt broker
	mqtt *mqtt.Handler

	// gpio lines, nil in the simulator
	chip  *raspberry.Chip
	mem   *raspberry.Mem
	lines []*raspberry.Line

	door    *door.Station
	console *console.Console

	// link is the serial host link, nil in the simulator
	link *serial.Link
	// input carries the console input bytes
	input chan byte
	loop  *station.Loop

	cancel context.CancelFunc
	// shutdown signals application shutdown
	shutdown chan struct{}
}

// New checks the Web server URL and initialize the main app structure
// driving the gpio lines and the serial port.
func New(config *config.Config) (*App, error) {
	return newApp(config, false)
}

// NewSim initializes the main app structure for the simulator: the outputs
// are kept in memory and the console is on stdout.
func NewSim(config *config.Config) (*App, error) {
	return newApp(config, true)
}

func newApp(config *config.Config, simulate bool) (*App, error) {
	u, err := url.Parse(config.Webserver.URL)
	if err != nil {
		debug.ErrorLog.Printf("Error parsing url %q: %s", config.Webserver.URL, err.Error())
		return &App{}, err
	}

	clk := clock.New()
	return &App{
		config:    config,
		urlParsed: u,
		simulate:  simulate,

		clock:   clk,
		reader:  wiegand.NewReader(clk),
		history: report.NewHistory(config.History, clk.Now),
		web:     fiber.New(fiber.Config{DisableStartupMessage: true}),
		mqtt:    mqtt.New(),

		shutdown: make(chan struct{}),
	}, nil
}

// Run starts the application.
func (app *App) Run() error {
	if err := app.init(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel

	app.console.Start()

	go app.mqtt.Service()
	go app.runWebServer()
	if app.link != nil {
		go func() {
			if err := app.link.Run(ctx); err != nil {
				debug.ErrorLog.Print(err)
			}
		}()
	}
	go func() {
		app.loop.Run(ctx)
		close(app.shutdown)
	}()

	return nil
}

// init initializes the application.
func (app *App) init() (err error) {
	var w io.Writer = os.Stdout
	var out door.Outputs

	if app.simulate {
		out = simOutputs()
		app.input = make(chan byte, inputBuffer)
	} else {
		if out, err = app.openGPIO(); err != nil {
			debug.ErrorLog.Printf("can't open gpio: %v", err)
			return err
		}

		var p serial.Porter
		if p, err = serial.Open(app.config.Serial.Port, app.config.Serial.BaudRate); err != nil {
			debug.ErrorLog.Printf("can't open serial port: %v", err)
			return err
		}
		app.link = serial.New(p)
		app.input = app.link.C
		w = app.link
	}

	if app.door, err = door.New(out); err != nil {
		debug.ErrorLog.Printf("can't initialize outputs: %v", err)
		return err
	}

	if err = app.mqtt.Connect(app.config.MQTT.Connection, clientID()); err != nil {
		debug.ErrorLog.Printf("can't open mqtt broker %v", err)
		return err
	}

	if err = app.initPipeline(w); err != nil {
		return err
	}

	// initDefaultRoutes should be always called last because it may access things like app.history
	// which must be initialized before in initPipeline()
	app.initDefaultRoutes()

	return nil
}

// initPipeline wires the decoding pipeline, the outputs and the console.
func (app *App) initPipeline(w io.Writer) error {
	format, err := wiegand.FormatByID(app.config.Wiegand.CardFormat)
	if err != nil {
		return err
	}

	app.line = report.NewLine(w)
	app.report = report.Multi{
		app.line,
		app.history,
		mqtt.NewReporter(app.mqtt.C, app.config.MQTT.Topic, app.clock.Now),
	}

	app.pad = keypad.New(app.clock, app.report, app.config.Keypad.Timeout)
	if aux := app.door.Aux(); aux != nil {
		for ch := 1; ch <= wiegand.Channels; ch++ {
			app.pad.SetAux(ch, aux)
		}
	}

	app.reassembler = wiegand.NewReassembler(app.reader, format, app.pad, app.report,
		wiegand.WithQuietPeriod(app.config.Wiegand.QuietPeriod),
		wiegand.WithFraming(app.config.Wiegand.Framing))

	app.console = console.New(app.line, app.door, console.Device{
		Model:    MODEL,
		Version:  FIRMWARE,
		Scanners: wiegand.Channels,
		Relays:   door.Relays,
	})

	app.loop = station.New(app.input, app.console, app.reassembler, app.config.Wiegand.Poll)
	return nil
}

// Player returns a pulse player feeding the data lines of the readers.
func (app *App) Player() *sim.Player {
	return sim.NewPlayer(app.reader)
}

// Input returns the console input of the simulator.
func (app *App) Input() chan<- byte {
	return app.input
}

// Shutdown returns the read only shutdown channel.
// Shutdown is closed when the station loop ended. (see cmd/accx.go)
func (app *App) Shutdown() <-chan struct{} {
	return app.shutdown
}

func (app *App) Close() error {
	if app.cancel != nil {
		app.cancel()
	}

	if app.web != nil {
		_ = app.web.Shutdown()
	}

	if app.mqtt != nil {
		_ = app.mqtt.Disconnect()
	}

	if app.link != nil {
		_ = app.link.Close()
	}

	if app.door != nil {
		_ = app.door.Close()
	}

	app.closeGPIO()
	return nil
}

// clientID returns the mqtt client id derived from the machine id.
func clientID() string {
	id, err := machineid.ProtectedID(MODULE)
	if err != nil {
		debug.DebugLog.Printf("can't read machine id: %v", err)
		return MODULE
	}
	return MODULE + "-" + id[:12]
}

// simOutputs returns memory outputs for every station output.
func simOutputs() door.Outputs {
	var o door.Outputs
	for i := range o.Relays {
		o.Relays[i] = &door.Memory{Name: "relay" + strconv.Itoa(i+1)}
	}
	for i := range o.LEDs {
		o.LEDs[i] = &door.Memory{Name: "led" + strconv.Itoa(i+1)}
		o.Buzzers[i] = &door.Memory{Name: "buzzer" + strconv.Itoa(i+1)}
	}
	o.Status = &door.Memory{Name: "status"}
	return o
}
