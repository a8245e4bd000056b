package ports

import "context"

// Dialer opens real-time channels to the collection endpoint.
type Dialer interface {
	// Dial connects to endpoint and completes the protocol handshake.
	// It must give up when ctx is done.
	Dial(ctx context.Context, endpoint string) (Channel, error)
}

// Channel is an open real-time connection.
// Implementations must be safe for concurrent use.
type Channel interface {
	// Emit sends payload as a single binary message on the named event.
	// It does not wait for any acknowledgment from the peer.
	Emit(event string, payload []byte) error

	// Connected reports whether the channel is still usable.
	// It must not block.
	Connected() bool

	// Close tears the channel down. Safe to call more than once.
	Close() error
}
