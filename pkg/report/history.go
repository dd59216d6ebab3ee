package report

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind is the type of a reported event.
type Kind string

const (
	KindCredential Kind = "credential"
	KindPasscode   Kind = "passcode"
)

// Event is a reported event as kept in the History and published to mqtt.
type Event struct {
	ID         string    `json:"id"`
	Time       time.Time `json:"time"`
	Kind       Kind      `json:"kind"`
	Channel    int       `json:"channel"`
	Credential uint32    `json:"credential,omitempty"`
	Digits     string    `json:"digits,omitempty"`
	// Line is the event as written to the serial link.
	Line string `json:"line"`
}

// NewCredentialEvent returns the Event of a decoded card.
func NewCredentialEvent(t time.Time, id uint32, channel int) Event {
	return Event{
		ID:         uuid.New().String(),
		Time:       t,
		Kind:       KindCredential,
		Channel:    channel,
		Credential: id,
		Line:       FormatCredential(id, channel),
	}
}

// NewPasscodeEvent returns the Event of a submitted passcode.
func NewPasscodeEvent(t time.Time, digits string, channel int) Event {
	return Event{
		ID:      uuid.New().String(),
		Time:    t,
		Kind:    KindPasscode,
		Channel: channel,
		Digits:  digits,
		Line:    FormatPasscode(digits, channel),
	}
}

// History keeps the most recent events in a ring of fixed size.
type History struct {
	sync.Mutex
	now    func() time.Time
	events []Event
	// next is the ring position of the next event
	next int
	full bool
}

// NewHistory returns a History keeping up to size events.
func NewHistory(size int, now func() time.Time) *History {
	if size < 1 {
		size = 1
	}
	return &History{now: now, events: make([]Event, size)}
}

func (h *History) CredentialDecoded(id uint32, channel int) {
	h.add(NewCredentialEvent(h.now(), id, channel))
}

func (h *History) PasscodeSubmitted(digits string, channel int) {
	h.add(NewPasscodeEvent(h.now(), digits, channel))
}

func (h *History) add(e Event) {
	h.Lock()
	defer h.Unlock()

	h.events[h.next] = e
	h.next = (h.next + 1) % len(h.events)
	if h.next == 0 {
		h.full = true
	}
}

// Events returns the kept events, oldest first.
func (h *History) Events() []Event {
	h.Lock()
	defer h.Unlock()

	if !h.full {
		return append([]Event{}, h.events[:h.next]...)
	}
	return append(append([]Event{}, h.events[h.next:]...), h.events[:h.next]...)
}
