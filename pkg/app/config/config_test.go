package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"accx/pkg/wiegand"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/womat/debug"
)

func writeConfig(t *testing.T, s string) string {
	t.Helper()
	f := filepath.Join(t.TempDir(), "accx.yaml")
	require.NoError(t, os.WriteFile(f, []byte(s), 0o644))
	return f
}

func TestLoadConfig_Defaults(t *testing.T) {
	c := NewConfig()
	require.NoError(t, c.LoadConfig())

	assert.Equal(t, 75*time.Millisecond, c.Wiegand.QuietPeriod)
	assert.Equal(t, wiegand.FromLastBit, c.Wiegand.Framing)
	assert.Equal(t, time.Millisecond, c.Wiegand.Poll)
	assert.Equal(t, 2*time.Second, c.Keypad.Timeout)
	assert.Equal(t, debug.Standard, c.Debug.Flag)
	assert.Equal(t, os.Stderr, c.Debug.File)
	assert.Len(t, c.Readers.Channels, 2)
}

func TestLoadConfig_File(t *testing.T) {
	c := NewConfig()
	c.Flag.ConfigFile = writeConfig(t, `
readers:
  bias: none
  channels:
    - data0: 4
      data1: 5
wiegand:
  quietperiod: 50000
  framing: first
  cardformat: 0
keypad:
  timeout: 5000
serial:
  port: stdio
outputs:
  driver: gpiomem
  relays: [7, 8]
debug:
  flag: debug
  file: stdout
mqtt:
  connection: tcp://127.0.0.1:1883
  topic: door/accx
`)
	require.NoError(t, c.LoadConfig())

	assert.Equal(t, "none", c.Readers.Bias)
	assert.Equal(t, []ReaderConfig{{Data0: 4, Data1: 5}}, c.Readers.Channels)
	assert.Equal(t, 50*time.Millisecond, c.Wiegand.QuietPeriod)
	assert.Equal(t, wiegand.FromFirstBit, c.Wiegand.Framing)
	assert.Equal(t, 0, c.Wiegand.CardFormat)
	assert.Equal(t, 5*time.Second, c.Keypad.Timeout)
	assert.Equal(t, "stdio", c.Serial.Port)
	assert.Equal(t, 57600, c.Serial.BaudRate)
	assert.Equal(t, "gpiomem", c.Outputs.Driver)
	assert.Equal(t, []int{7, 8}, c.Outputs.Relays)
	assert.Equal(t, os.Stdout, c.Debug.File)
	assert.NotZero(t, c.Debug.Flag&debug.Debug)
	assert.Equal(t, "door/accx", c.MQTT.Topic)
	// untouched defaults survive
	assert.True(t, c.Webserver.Webservices["events"])
}

func TestLoadConfig_FlagOverridesDebug(t *testing.T) {
	c := NewConfig()
	c.Flag.Debug = "trace"
	require.NoError(t, c.LoadConfig())
	assert.Equal(t, debug.Full, c.Debug.Flag)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		err  error
	}{
		{"framing", "wiegand:\n  framing: middle\n", wiegand.ErrInvalidFraming},
		{"cardformat", "wiegand:\n  cardformat: 7\n", wiegand.ErrUnknownFormat},
		{"quietperiod", "wiegand:\n  quietperiod: 0\n", ErrInvalidConfig},
		{"timeout", "keypad:\n  timeout: -1\n", ErrInvalidConfig},
		{"relays", "outputs:\n  relays: [1, 2, 3, 4, 5]\n", ErrInvalidConfig},
		{"driver", "outputs:\n  driver: sysfs\n", ErrInvalidConfig},
		{"channels", "readers:\n  channels: [{data0: 1}, {data0: 2}, {data0: 3}]\n", ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConfig()
			c.Flag.ConfigFile = writeConfig(t, tt.yaml)
			assert.ErrorIs(t, c.LoadConfig(), tt.err)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	c := NewConfig()
	c.Flag.ConfigFile = filepath.Join(t.TempDir(), "missing.yaml")
	assert.Error(t, c.LoadConfig())
}
