package atrng

import (
	"github.com/atdevs/atrng/internal/app"
	"github.com/atdevs/atrng/internal/domain"
	"github.com/atdevs/atrng/internal/ports"
	"github.com/atdevs/atrng/pkg/log"
)

// Payload is data accepted by Discard and SendDataToServer: either UTF-8
// text or raw bytes. The zero Payload is invalid.
type Payload = domain.Payload

// Text wraps a string payload.
func Text(s string) Payload { return domain.Text(s) }

// Raw wraps a byte payload.
func Raw(b []byte) Payload { return domain.Raw(b) }

// Digest is a SHA-512 digest.
type Digest = domain.Digest

// Sum returns the SHA-512 digest of data.
func Sum(data []byte) (Digest, error) { return domain.Sum(data) }

// Errors returned by the client. Check them with errors.Is.
var (
	ErrAlreadyRunning  = domain.ErrAlreadyRunning
	ErrNotRunning      = domain.ErrNotRunning
	ErrShutdownTimeout = domain.ErrShutdownTimeout
	ErrInvalidConfig   = domain.ErrInvalidConfig
	ErrInvalidPayload  = domain.ErrInvalidPayload
	ErrNotConnected    = domain.ErrNotConnected
	ErrHandshake       = domain.ErrHandshake
	ErrFetch           = domain.ErrFetch
	ErrDigest          = domain.ErrDigest
)

// State is the lifecycle state of a Client.
type State = app.State

const (
	StateStopped  = app.StateStopped
	StateStarting = app.StateStarting
	StateRunning  = app.StateRunning
	StateStopping = app.StateStopping
	StateCrashed  = app.StateCrashed
)

// Message kinds reported in send events.
const (
	KindKeepalive = app.KindKeepalive
	KindDiscard   = app.KindDiscard
	KindDirect    = app.KindDirect
)

type (
	// Logger is the structured logger used by the client.
	Logger = log.Logger

	// HTTPClient performs entropy requests. *http.Client satisfies it.
	HTTPClient = ports.HTTPClient

	// Dialer opens channels to the collection endpoint.
	Dialer = ports.Dialer

	// Channel is an open connection to the collection endpoint.
	Channel = ports.Channel
)

// Stats is a snapshot of client counters.
type Stats struct {
	DialAttempts uint64
	DialFailures uint64
	Sent         uint64
	SentBytes    uint64
	Dropped      uint64
	SendFailures uint64

	// Buffered is the number of bytes waiting for the next discard flush.
	Buffered int
}
