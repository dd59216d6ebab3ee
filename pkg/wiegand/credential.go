package wiegand

import (
	"fmt"
	"math/bits"
)

const (
	// CredentialWidth is the bit length of a card frame.
	CredentialWidth = 26

	// frameMask keeps the bits of a card frame.
	frameMask = 1<<CredentialWidth - 1
	// leadingParity is the position of the first received bit of a card frame.
	leadingParity = CredentialWidth - 1
	// the leading parity covers bits 13..24, the trailing parity bits 1..12
	leadingMask  = frameMask &^ (1<<13 - 1)
	trailingMask = 1<<13 - 1
)

// Credential is a decoded card frame.
type Credential struct {
	// ID is the card number.
	ID uint32
	// Raw is the frame as captured.
	Raw uint32
	// ParityOK reports whether both parity bits match the payload.
	// A mismatch is reported but never rejected.
	ParityOK bool
}

// Format decodes a card frame into a Credential.
type Format interface {
	Decode(raw uint32) Credential
}

// Passthrough is card format 0: the raw frame is the id.
type Passthrough struct{}

func (Passthrough) Decode(raw uint32) Credential {
	return Credential{ID: raw, Raw: raw, ParityOK: true}
}

// Parity26 is card format 1: a 26 bit frame with an even leading and an
// odd trailing parity bit around a 24 bit id.
type Parity26 struct{}

func (Parity26) Decode(raw uint32) Credential {
	v := raw & frameMask
	return Credential{
		ID:       (v &^ (1 << leadingParity)) >> 1,
		Raw:      raw,
		ParityOK: bits.OnesCount32(v&leadingMask)%2 == 0 && bits.OnesCount32(v&trailingMask)%2 == 1,
	}
}

// FormatByID returns the card format selected by the configuration.
func FormatByID(id int) (Format, error) {
	switch id {
	case 0:
		return Passthrough{}, nil
	case 1:
		return Parity26{}, nil
	default:
		return nil, fmt.Errorf("card format %d: %w", id, ErrUnknownFormat)
	}
}
