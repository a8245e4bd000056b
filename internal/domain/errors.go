package domain

import "errors"

// Domain errors represent error conditions in the atrng domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running client.
	ErrAlreadyRunning = errors.New("atrng: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped client.
	ErrNotRunning = errors.New("atrng: not running")

	// ErrShutdownTimeout is returned when the schedulers do not stop in time.
	ErrShutdownTimeout = errors.New("atrng: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("atrng: invalid configuration")

	// ErrInvalidPayload is returned when data handed to Discard or
	// SendDataToServer is neither UTF-8 text nor raw bytes.
	ErrInvalidPayload = errors.New("atrng: invalid payload")

	// ErrNotConnected is returned when a send is dropped because no live
	// connection to the collection endpoint exists.
	ErrNotConnected = errors.New("atrng: not connected")

	// ErrHandshake is returned when the collection endpoint rejects or
	// garbles the connection handshake.
	ErrHandshake = errors.New("atrng: handshake failed")

	// ErrFetch is returned when the entropy source cannot be read.
	ErrFetch = errors.New("atrng: entropy fetch failed")

	// ErrDigest is returned when a digest cannot be computed.
	ErrDigest = errors.New("atrng: digest failed")
)
