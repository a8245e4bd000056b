package atrng

import (
	"crypto/rand"
	"io"

	"github.com/atdevs/atrng/pkg/log"
)

// Option configures optional behavior of a Client.
type Option func(*options)

type options struct {
	httpClient   HTTPClient
	dialer       Dialer
	logger       Logger
	random       io.Reader
	eventHandler EventHandler
	plugins      []Plugin
}

func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
		random: rand.Reader,
	}
}

// WithHTTPClient sets the client used for entropy requests.
// If not provided, an HTTP/2-capable client with the configured timeout is used.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithDialer replaces the Socket.IO dialer, mostly for tests.
func WithDialer(dialer Dialer) Option {
	return func(o *options) {
		o.dialer = dialer
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRandom sets the source of keepalive bytes. Defaults to crypto/rand.
func WithRandom(r io.Reader) Option {
	return func(o *options) {
		o.random = r
	}
}

// WithEventHandler sets a handler for client events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized when the client starts.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}
