package serial

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/womat/debug"
)

func TestMain(m *testing.M) {
	debug.SetDebug(os.Stderr, debug.Standard)
	os.Exit(m.Run())
}

// mockPort implements Porter for testing.
type mockPort struct {
	readData    []byte
	readError   error
	written     []byte
	closed      bool
	readTimeout time.Duration
}

func (m *mockPort) Read(p []byte) (int, error) {
	if len(m.readData) == 0 {
		if m.readError != nil {
			return 0, m.readError
		}
		return 0, io.EOF
	}
	n := copy(p, m.readData)
	m.readData = m.readData[n:]
	return n, nil
}

func (m *mockPort) Write(p []byte) (int, error) {
	m.written = append(m.written, p...)
	return len(p), nil
}

func (m *mockPort) Close() error {
	m.closed = true
	return nil
}

func (m *mockPort) SetReadTimeout(t time.Duration) error {
	m.readTimeout = t
	return nil
}

func collect(l *Link) <-chan []byte {
	res := make(chan []byte, 1)
	go func() {
		var got []byte
		for b := range l.C {
			got = append(got, b)
		}
		res <- got
	}()
	return res
}

func TestLink_Run(t *testing.T) {
	p := &mockPort{readData: []byte("o1\rc1\r")}
	l := New(p)
	got := collect(l)

	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, []byte("o1\rc1\r"), <-got)
	assert.Equal(t, readTimeout, p.readTimeout)
}

func TestLink_RunReadError(t *testing.T) {
	p := &mockPort{readData: []byte("i"), readError: errors.New("device removed")}
	l := New(p)
	got := collect(l)

	err := l.Run(context.Background())
	assert.ErrorContains(t, err, "device removed")
	assert.Equal(t, []byte("i"), <-got)
}

func TestLink_RunCancelled(t *testing.T) {
	p := &mockPort{readData: []byte("i\r")}
	l := New(p)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, l.Run(ctx))
	_, open := <-l.C
	assert.False(t, open)
}

func TestLink_WriteAndClose(t *testing.T) {
	p := &mockPort{}
	l := New(p)

	n, err := l.Write([]byte("F5,1\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, "F5,1\r\n", string(p.written))

	require.NoError(t, l.Close())
	assert.True(t, p.closed)
}

func TestOpen_Stdio(t *testing.T) {
	p, err := Open(Stdio, 0)
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}
