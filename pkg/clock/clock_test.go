package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReal_Monotonic(t *testing.T) {
	c := New()
	a := c.Micros()
	time.Sleep(2 * time.Millisecond)
	b := c.Micros()

	require.Greater(t, b, a)
	assert.GreaterOrEqual(t, b-a, uint64(2000))
	assert.GreaterOrEqual(t, c.Millis(), uint64(2))
}

func TestMock_Advance(t *testing.T) {
	c := NewMock(1000)
	assert.Equal(t, uint64(1000), c.Micros())
	assert.Equal(t, uint64(1), c.Millis())

	c.Advance(75 * time.Millisecond)
	assert.Equal(t, uint64(76000), c.Micros())
	assert.Equal(t, uint64(76), c.Millis())

	c.Set(5)
	assert.Equal(t, uint64(5), c.Micros())
	assert.Equal(t, uint64(0), c.Millis())
}

func TestMock_NowFollowsCounter(t *testing.T) {
	c := NewMock(0)
	t0 := c.Now()
	c.Advance(time.Second)
	assert.Equal(t, time.Second, c.Now().Sub(t0))
}
