package keypad

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"accx/pkg/clock"
	"accx/pkg/port"
	"accx/pkg/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/womat/debug"
)

func TestMain(m *testing.M) {
	debug.SetDebug(os.Stderr, debug.Standard)
	os.Exit(m.Run())
}

type lines []string

func (l *lines) CredentialDecoded(id uint32, channel int) {
	*l = append(*l, report.FormatCredential(id, channel))
}

func (l *lines) PasscodeSubmitted(digits string, channel int) {
	*l = append(*l, report.FormatPasscode(digits, channel))
}

type output struct {
	states []port.StateType
	err    error
}

func (o *output) Write(s port.StateType) error {
	o.states = append(o.states, s)
	return o.err
}

func (o *output) Close() error { return nil }

func newTestPad() (*Pad, *clock.Mock, *lines) {
	c := clock.NewMock(0)
	l := &lines{}
	return New(c, l, Timeout), c, l
}

func pressAll(p *Pad, c *clock.Mock, channel int, codes ...int) {
	for _, code := range codes {
		p.Press(channel, code)
		c.Advance(500 * time.Millisecond)
	}
}

func TestPad_ScenarioB(t *testing.T) {
	p, c, l := newTestPad()
	pressAll(p, c, 2, 1, 2, 3, Enter)
	assert.Equal(t, lines{"P123,2"}, *l)
	assert.Empty(t, p.Digits(2))
}

func TestPad_ScenarioC(t *testing.T) {
	p, c, l := newTestPad()
	aux := &output{}
	p.SetAux(1, aux)

	pressAll(p, c, 1, 8, 8, Enter)
	pressAll(p, c, 1, 1, Enter)

	assert.Equal(t, lines{"P88,1", "P1,1"}, *l)
	assert.Equal(t, []port.StateType{port.High, port.Low}, aux.states)
}

func TestPad_AuxWriteErrorStillReports(t *testing.T) {
	p, c, l := newTestPad()
	p.SetAux(2, &output{err: errors.New("i/o")})

	pressAll(p, c, 2, 8, Enter)
	assert.Equal(t, lines{"P8,2"}, *l)
}

func TestPad_EmptyEnter(t *testing.T) {
	p, c, l := newTestPad()
	aux := &output{}
	p.SetAux(1, aux)

	pressAll(p, c, 1, Enter)
	assert.Equal(t, lines{"P,1"}, *l)
	assert.Equal(t, []port.StateType{port.Low}, aux.states)
}

func TestPad_Escape(t *testing.T) {
	p, c, l := newTestPad()
	pressAll(p, c, 1, 4, 5, Escape, 6, Enter)
	assert.Equal(t, lines{"P6,1"}, *l)
}

func TestPad_SessionTimeout(t *testing.T) {
	p, c, l := newTestPad()

	pressAll(p, c, 1, 1, 2)
	c.Advance(Timeout)
	p.Press(1, 3)
	assert.Equal(t, "3", p.Digits(1))

	pressAll(p, c, 1, Enter)
	assert.Equal(t, lines{"P3,1"}, *l)
}

func TestPad_NoTimeoutAtBound(t *testing.T) {
	p, c, l := newTestPad()

	p.Press(1, 1)
	c.Advance(Timeout)
	p.Press(1, 2)
	p.Press(1, Enter)
	assert.Equal(t, lines{"P12,1"}, *l)
}

func TestPad_DigitsAfterEscapeStartNewSession(t *testing.T) {
	p, c, l := newTestPad()

	p.Press(1, 1)
	c.Advance(1500 * time.Millisecond)
	p.Press(1, Escape)
	p.Press(1, 2)
	c.Advance(1500 * time.Millisecond)
	p.Press(1, 3)
	p.Press(1, Enter)
	assert.Equal(t, lines{"P23,1"}, *l)
}

func TestPad_ChannelIndependence(t *testing.T) {
	p, c, l := newTestPad()

	p.Press(1, 1)
	p.Press(2, 9)
	c.Advance(time.Second)
	p.Press(1, 2)
	p.Press(2, Enter)
	c.Advance(time.Second)
	p.Press(1, Enter)

	assert.Equal(t, lines{"P9,2", "P12,1"}, *l)
}

func TestPad_UnknownChannel(t *testing.T) {
	p, _, l := newTestPad()
	p.Press(0, 1)
	p.Press(3, Enter)
	p.SetAux(5, &output{})
	assert.Empty(t, *l)
	assert.Empty(t, p.Digits(3))
}

func TestSession_OverwriteFromSecondPosition(t *testing.T) {
	var s Session
	var want []byte

	for i := 0; i < MaxDigits; i++ {
		code := i % 10
		r, _ := s.Press(code, 0, 2000)
		require.Equal(t, Accumulated, r)
		want = append(want, byte(code)+'0')
	}
	assert.Equal(t, string(want), s.Digits())

	// the 20th digit overwrites index 1 and truncates there
	s.Press(7, 0, 2000)
	assert.Equal(t, "07", s.Digits())
	s.Press(8, 0, 2000)
	assert.Equal(t, "078", s.Digits())

	for i := 0; i < 3*MaxDigits; i++ {
		s.Press(5, 0, 2000)
		require.LessOrEqual(t, len(s.Digits()), MaxDigits)
		require.Equal(t, byte('0'), s.Digits()[0])
	}

	r, digits := s.Press(Enter, 0, 2000)
	assert.Equal(t, Submitted, r)
	assert.True(t, strings.HasPrefix(digits, "0"))
}

func TestBuffer(t *testing.T) {
	var b Buffer
	assert.Equal(t, "", b.String())

	for i := 0; i < MaxDigits; i++ {
		require.NoError(t, b.Append('1'))
	}
	assert.ErrorIs(t, b.Append('2'), ErrCapacityExceeded)
	assert.Equal(t, strings.Repeat("1", MaxDigits), b.String())

	b.Truncate(1)
	assert.Equal(t, "1", b.String())
	b.Truncate(5)
	assert.Equal(t, "1", b.String())

	b.Reset()
	assert.Equal(t, "", b.String())
}
