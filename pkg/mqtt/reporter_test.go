package mqtt

import (
	"encoding/json"
	"os"
	"sync"
	"testing"
	"time"

	"accx/pkg/report"

	mqttlib "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/womat/debug"
)

func TestMain(m *testing.M) {
	debug.SetDebug(os.Stderr, debug.Standard)
	os.Exit(m.Run())
}

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func now() time.Time { return epoch }

func TestReporter_Credential(t *testing.T) {
	c := make(chan Message, 1)
	r := NewReporter(c, "door/accx", now)

	r.CredentialDecoded(5, 1)

	require.Len(t, c, 1)
	msg := <-c
	assert.Equal(t, "door/accx/credential", msg.Topic)

	var e report.Event
	require.NoError(t, json.Unmarshal(msg.Payload, &e))
	assert.Equal(t, report.KindCredential, e.Kind)
	assert.Equal(t, uint32(5), e.Credential)
	assert.Equal(t, 1, e.Channel)
	assert.Equal(t, "F5,1", e.Line)
	assert.True(t, epoch.Equal(e.Time))
	assert.NotEmpty(t, e.ID)
}

func TestReporter_Passcode(t *testing.T) {
	c := make(chan Message, 1)
	r := NewReporter(c, "door", now)

	r.PasscodeSubmitted("8123", 2)

	msg := <-c
	assert.Equal(t, "door/passcode", msg.Topic)

	var e report.Event
	require.NoError(t, json.Unmarshal(msg.Payload, &e))
	assert.Equal(t, "8123", e.Digits)
	assert.Equal(t, "P8123,2", e.Line)
}

func TestReporter_NoTopic(t *testing.T) {
	c := make(chan Message, 1)
	NewReporter(c, "", now).CredentialDecoded(5, 1)
	assert.Len(t, c, 0)
}

func TestReporter_FullQueueDoesNotBlock(t *testing.T) {
	c := make(chan Message)
	r := NewReporter(c, "door", now)

	done := make(chan struct{})
	go func() {
		r.CredentialDecoded(5, 1)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reporter blocked on a full queue")
	}
}

func TestHandler_ServiceWithoutBroker(t *testing.T) {
	h := New()
	require.NoError(t, h.Connect("", "accx"))

	done := make(chan struct{})
	go func() {
		h.Service()
		close(done)
	}()

	h.C <- Message{Topic: "door/credential", Payload: []byte("{}")}
	close(h.C)
	<-done
	assert.NoError(t, h.Disconnect())
}

type doneToken struct {
	mqttlib.Token
	done chan struct{}
}

func (t *doneToken) Done() <-chan struct{} { return t.done }
func (t *doneToken) Error() error          { return nil }

// slowClient connects after a delay and counts its connection attempts.
type slowClient struct {
	mqttlib.Client
	mu        sync.Mutex
	connected bool
	connects  int
}

func (c *slowClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *slowClient) Connect() mqttlib.Token {
	c.mu.Lock()
	c.connects++
	c.mu.Unlock()

	t := &doneToken{done: make(chan struct{})}
	go func() {
		time.Sleep(10 * time.Millisecond)
		c.mu.Lock()
		c.connected = true
		c.mu.Unlock()
		close(t.done)
	}()
	return t
}

func TestHandler_ReConnectIsSerialized(t *testing.T) {
	c := &slowClient{}
	h := &Handler{handler: c}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, h.ReConnect())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, c.connects)
	assert.True(t, c.IsConnected())
}
