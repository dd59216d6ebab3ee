package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"accx/pkg/door"
	"accx/pkg/wiegand"

	"github.com/womat/debug"
	"gopkg.in/yaml.v2"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the application configuration. Attention!
// To make it possible to overwrite fields with the -overwrite command
// line option each of the struct fields must be in the format
// first letter uppercase -> followed by CamelCase as in the config file.
// Config defines the struct of global config and the struct of the configuration file
type Config struct {
	Readers   ReadersConfig   `yaml:"readers"`
	Outputs   OutputsConfig   `yaml:"outputs"`
	Wiegand   WiegandConfig   `yaml:"wiegand"`
	Keypad    KeypadConfig    `yaml:"keypad"`
	Serial    SerialConfig    `yaml:"serial"`
	History   int             `yaml:"history"`
	Flag      FlagConfig      `yaml:"-"`
	Debug     DebugConfig     `yaml:"debug"`
	Webserver WebserverConfig `yaml:"webserver"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
}

// FlagConfig defines the configured flags (parameters)
type FlagConfig struct {
	Debug      string
	ConfigFile string
}

// ReadersConfig defines the gpio lines of the reader channels.
// Channels[0] is channel 1.
type ReadersConfig struct {
	Chip     string         `yaml:"chip"`
	Bias     string         `yaml:"bias"`
	Channels []ReaderConfig `yaml:"channels"`
}

// ReaderConfig defines the data lines of one reader.
type ReaderConfig struct {
	Data0 int `yaml:"data0"`
	Data1 int `yaml:"data1"`
}

// OutputsConfig defines the gpio lines of the station outputs.
// A gpio of 0 leaves the output unconnected.
type OutputsConfig struct {
	Driver  string `yaml:"driver"`
	Relays  []int  `yaml:"relays"`
	LEDs    []int  `yaml:"leds"`
	Buzzers []int  `yaml:"buzzers"`
	Status  int    `yaml:"status"`
}

// WiegandConfig defines the frame decoding.
type WiegandConfig struct {
	QuietPeriodInt int             `yaml:"quietperiod"`
	QuietPeriod    time.Duration   `yaml:"-"`
	FramingString  string          `yaml:"framing"`
	Framing        wiegand.Framing `yaml:"-"`
	CardFormat     int             `yaml:"cardformat"`
	PollInt        int             `yaml:"poll"`
	Poll           time.Duration   `yaml:"-"`
}

// KeypadConfig defines the keypad sessions.
type KeypadConfig struct {
	TimeoutInt int           `yaml:"timeout"`
	Timeout    time.Duration `yaml:"-"`
}

// SerialConfig defines the host link.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baudrate"`
}

// WebserverConfig defines the struct of the webserver and webservice configuration and configuration file
type WebserverConfig struct {
	URL         string          `yaml:"url"`
	Webservices map[string]bool `yaml:"webservices"`
}

// MQTTConfig defines the struct of the mqtt client configuration and configuration file
type MQTTConfig struct {
	Connection string `yaml:"connection"`
	Topic      string `yaml:"topic"`
}

// DebugConfig defines the struct of the debug configuration and configuration file
type DebugConfig struct {
	File       io.WriteCloser `yaml:"-"`
	Flag       int            `yaml:"-"`
	FlagString string         `yaml:"flag"`
	FileString string         `yaml:"file"`
}

func NewConfig() *Config {
	return &Config{
		Readers: ReadersConfig{
			Chip: "gpiochip0",
			Bias: "pullup",
			Channels: []ReaderConfig{
				{Data0: 17, Data1: 18},
				{Data0: 22, Data1: 23},
			},
		},
		Outputs: OutputsConfig{
			Driver:  "gpiod",
			Relays:  []int{5, 6, 13, 19},
			LEDs:    []int{20, 21},
			Buzzers: []int{12, 16},
			Status:  26,
		},
		Wiegand: WiegandConfig{
			QuietPeriodInt: wiegand.QuietPeriod,
			FramingString:  "last",
			CardFormat:     1,
			PollInt:        1,
		},
		Keypad: KeypadConfig{
			TimeoutInt: 2000,
		},
		Serial: SerialConfig{
			Port:     "/dev/ttyAMA0",
			BaudRate: 57600,
		},
		History: 100,
		Flag:    FlagConfig{},
		Debug: DebugConfig{
			FileString: "stderr",
			FlagString: "standard",
		},
		Webserver: WebserverConfig{
			URL: "http://0.0.0.0:4000",
			Webservices: map[string]bool{
				"version":  true,
				"health":   true,
				"events":   true,
				"channels": true,
			},
		},
		MQTT: MQTTConfig{
			Topic: "accx",
		},
	}
}

// LoadConfig reads the configuration file over the defaults.
// Without a configuration file the defaults are used.
func (c *Config) LoadConfig() error {
	if c.Flag.ConfigFile != "" {
		if err := c.readConfigFile(); err != nil {
			return fmt.Errorf("error reading config file %q: %w", c.Flag.ConfigFile, err)
		}
	}

	if c.Flag.Debug != "" {
		c.Debug.FlagString = c.Flag.Debug
	}
	if err := c.setDebugConfig(); err != nil {
		return fmt.Errorf("unable to open debug file %q: %w", c.Debug.FileString, err)
	}

	return c.derive()
}

func (c *Config) readConfigFile() error {
	file, err := os.Open(c.Flag.ConfigFile)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	decoder := yaml.NewDecoder(file)
	if err = decoder.Decode(c); err != nil {
		return err
	}

	return nil
}

// derive computes and checks the fields not read from the file.
func (c *Config) derive() (err error) {
	c.Wiegand.QuietPeriod = time.Duration(c.Wiegand.QuietPeriodInt) * time.Microsecond
	c.Wiegand.Poll = time.Duration(c.Wiegand.PollInt) * time.Millisecond
	c.Keypad.Timeout = time.Duration(c.Keypad.TimeoutInt) * time.Millisecond

	if c.Wiegand.Framing, err = wiegand.ParseFraming(c.Wiegand.FramingString); err != nil {
		return fmt.Errorf("wiegand framing %q: %w", c.Wiegand.FramingString, err)
	}
	if _, err = wiegand.FormatByID(c.Wiegand.CardFormat); err != nil {
		return err
	}

	switch {
	case c.Wiegand.QuietPeriod <= 0:
		return fmt.Errorf("wiegand quietperiod %d: %w", c.Wiegand.QuietPeriodInt, ErrInvalidConfig)
	case c.Wiegand.Poll <= 0:
		return fmt.Errorf("wiegand poll %d: %w", c.Wiegand.PollInt, ErrInvalidConfig)
	case c.Keypad.Timeout <= 0:
		return fmt.Errorf("keypad timeout %d: %w", c.Keypad.TimeoutInt, ErrInvalidConfig)
	case len(c.Readers.Channels) > wiegand.Channels:
		return fmt.Errorf("%d reader channels: %w", len(c.Readers.Channels), ErrInvalidConfig)
	case len(c.Outputs.Relays) > door.Relays:
		return fmt.Errorf("%d relays: %w", len(c.Outputs.Relays), ErrInvalidConfig)
	case len(c.Outputs.LEDs) > door.Readers, len(c.Outputs.Buzzers) > door.Readers:
		return fmt.Errorf("leds or buzzers exceed %d readers: %w", door.Readers, ErrInvalidConfig)
	}

	switch c.Outputs.Driver {
	case "gpiod", "gpiomem":
	default:
		return fmt.Errorf("output driver %q: %w", c.Outputs.Driver, ErrInvalidConfig)
	}

	if c.History < 1 {
		c.History = 1
	}
	return nil
}

func (c *Config) setDebugConfig() (err error) {
	// defines Debug section of global.Config
	switch c.Debug.FlagString {
	case "trace", "full":
		c.Debug.Flag = debug.Full
	case "debug":
		c.Debug.Flag = debug.Warning | debug.Info | debug.Error | debug.Fatal | debug.Debug
	case "standard":
		c.Debug.Flag = debug.Standard
	}

	switch c.Debug.FileString {
	case "stderr":
		c.Debug.File = os.Stderr
	case "stdout":
		c.Debug.File = os.Stdout
	default:
		if c.Debug.File, err = os.OpenFile(c.Debug.FileString, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666); err != nil {
			return
		}
	}

	return
}
