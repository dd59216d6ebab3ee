package main

import (
	"os"
	"os/signal"
	"sort"
	"syscall"

	"accx/pkg/app"
	"accx/pkg/app/config"
	"accx/pkg/sim"

	"github.com/urfave/cli/v2"
	"github.com/womat/debug"
)

const defaultConfigFile = "/opt/womat/config/" + app.MODULE + ".yaml"

func main() {
	exitCode := 1
	defer func() {
		os.Exit(exitCode)
	}()

	// cfg holds the application configuration
	cfg := config.NewConfig()

	cliApp := &cli.App{
		Name:    app.MODULE,
		Usage:   "Door station for two Wiegand card readers with keypad",
		Version: app.VERSION,
		Description: "Decode the card and keypad frames of two Wiegand readers, report them over the serial host link" +
			"\n and drive the door relays and reader LEDs on command of the host.",
		UsageText: "accx [--config <file>] [--log standard|debug|trace] [sim]" +
			"\n\nEXAMPLE:" +
			"\n\tstart the door station and use the configuration file accx.yaml" +
			"\n\t\taccx --config /opt/womat/accx.yaml" +
			"\n\tstart the simulator without gpio and serial port" +
			"\n\t\taccx --config accx.yaml sim",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Destination: &cfg.Flag.ConfigFile, Value: defaultConfigFile, Usage: "load configuration from `FILE`"},
			&cli.StringFlag{Name: "log", Aliases: []string{"l"}, Destination: &cfg.Flag.Debug, Usage: "`LEVEL` defines the log level (standard|debug|trace)"},
		},
		Action: func(ctx *cli.Context) error {
			return run(cfg, false)
		},
		Commands: []*cli.Command{
			{
				Name:  "sim",
				Usage: "simulate readers and console in an interactive shell",
				Action: func(ctx *cli.Context) error {
					return run(cfg, true)
				},
			},
		},
	}

	// we expect to have more command line flags in the future - sort them
	sort.Sort(cli.FlagsByName(cliApp.Flags))
	sort.Sort(cli.CommandsByName(cliApp.Commands))

	err := cliApp.Run(os.Args)
	if err != nil {
		debug.FatalLog.Print(err)
		exitCode = 1
		return
	}

	exitCode = 0
}

// run starts the door station, or the simulator shell, and waits for its end.
func run(cfg *config.Config, simulate bool) error {
	if err := cfg.LoadConfig(); err != nil {
		return err
	}

	debug.SetDebug(cfg.Debug.File, cfg.Debug.Flag)
	defer func() {
		debug.InfoLog.Printf("closing debug file %s", cfg.Debug.FileString)
		_ = cfg.Debug.File.Close()
	}()

	newApp := app.New
	if simulate {
		newApp = app.NewSim
	}

	a, err := newApp(cfg)
	defer func() {
		debug.InfoLog.Printf("closing app %s", app.Version())
		_ = a.Close()
	}()

	if err != nil {
		return err
	}

	debug.InfoLog.Printf("starting app %s", app.Version())
	if err = a.Run(); err != nil {
		return err
	}

	if simulate {
		sim.NewShell(a.Player(), a.Input()).Run()
		return nil
	}

	// capture exit signals to ensure resources are released on exit.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	// wait for am os.Interrupt signal (CTRL C)
	select {
	case sig := <-quit:
		debug.InfoLog.Printf("Got %s signal. Aborting...", sig)
	case <-a.Shutdown():
		debug.InfoLog.Print("station loop ended")
	}

	return nil
}
