package mqtt

import (
	"encoding/json"
	"path"
	"time"

	"accx/pkg/report"

	"github.com/womat/debug"
)

// Reporter publishes every reported credential and passcode as a json
// encoded report.Event on <topic>/<kind>.
type Reporter struct {
	c     chan<- Message
	topic string
	now   func() time.Time
}

// NewReporter returns a Reporter sending to the channel of a Handler.
// An empty topic disables publishing.
func NewReporter(c chan<- Message, topic string, now func() time.Time) *Reporter {
	return &Reporter{c: c, topic: topic, now: now}
}

func (r *Reporter) CredentialDecoded(id uint32, channel int) {
	r.send(report.NewCredentialEvent(r.now(), id, channel))
}

func (r *Reporter) PasscodeSubmitted(digits string, channel int) {
	r.send(report.NewPasscodeEvent(r.now(), digits, channel))
}

// send never blocks the caller: a message is dropped when the queue is full.
func (r *Reporter) send(e report.Event) {
	if r.topic == "" {
		return
	}

	debug.TraceLog.Printf("prepare mqtt message %v", e)

	b, err := json.Marshal(e)
	if err != nil {
		debug.ErrorLog.Printf("mqtt marshal: %v", err)
		return
	}

	msg := Message{
		Qos:     0,
		Topic:   path.Join(r.topic, string(e.Kind)),
		Payload: b,
	}

	select {
	case r.c <- msg:
	default:
		debug.ErrorLog.Printf("mqtt queue full, dropping %v event", e.Kind)
	}
}
