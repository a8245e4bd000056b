package domain

import (
	"fmt"
	"unicode/utf8"
)

type payloadKind uint8

const (
	payloadInvalid payloadKind = iota
	payloadText
	payloadRaw
)

// Payload is caller-supplied data: either text or raw bytes.
// Text is always encoded as UTF-8. The zero Payload is invalid.
type Payload struct {
	kind payloadKind
	text string
	raw  []byte
}

// Text wraps a string. It must be valid UTF-8.
func Text(s string) Payload {
	return Payload{kind: payloadText, text: s}
}

// Raw wraps a byte slice. The slice is not copied.
func Raw(b []byte) Payload {
	return Payload{kind: payloadRaw, raw: b}
}

// IsText reports whether p holds text.
func (p Payload) IsText() bool { return p.kind == payloadText }

// IsRaw reports whether p holds raw bytes.
func (p Payload) IsRaw() bool { return p.kind == payloadRaw }

// Bytes returns the encoded form of the payload.
// Returns ErrInvalidPayload for the zero Payload or text that is not UTF-8.
func (p Payload) Bytes() ([]byte, error) {
	switch p.kind {
	case payloadText:
		if !utf8.ValidString(p.text) {
			return nil, fmt.Errorf("%w: text is not valid UTF-8", ErrInvalidPayload)
		}
		return []byte(p.text), nil
	case payloadRaw:
		return p.raw, nil
	default:
		return nil, fmt.Errorf("%w: payload must be text or raw bytes", ErrInvalidPayload)
	}
}
