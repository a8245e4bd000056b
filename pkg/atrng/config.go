package atrng

import (
	"fmt"
	"net/url"
	"time"

	httpAdapter "github.com/atdevs/atrng/internal/adapters/http"
	"github.com/atdevs/atrng/internal/app"
	"github.com/atdevs/atrng/internal/domain"
)

// DefaultEndpoint is the collection endpoint randomness is streamed to.
const DefaultEndpoint = "wss://rng-dump.atdevs.org"

// Config holds the settings of a Client. Zero fields are filled in by
// SetDefaults.
type Config struct {
	// Endpoint is the Socket.IO collection endpoint (ws, wss, http or https).
	Endpoint string

	// EntropyURL serves RandomnessAsText and RandomnessAsNumber.
	EntropyURL string

	KeepaliveInterval time.Duration
	DiscardInterval   time.Duration

	// KeepaliveSize is the number of random bytes per keepalive.
	KeepaliveSize int

	DialTimeout time.Duration
	HTTPTimeout time.Duration

	// MaxEntropyBytes caps the entropy response body.
	MaxEntropyBytes int64

	// DisableKeepalive and DisableDiscard keep Start from launching the
	// corresponding scheduler.
	DisableKeepalive bool
	DisableDiscard   bool
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	var cfg Config
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills zero fields with their default values.
func (c *Config) SetDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.EntropyURL == "" {
		c.EntropyURL = httpAdapter.DefaultEntropyURL
	}
	if c.KeepaliveInterval == 0 {
		c.KeepaliveInterval = app.DefaultKeepaliveInterval
	}
	if c.DiscardInterval == 0 {
		c.DiscardInterval = app.DefaultDiscardInterval
	}
	if c.KeepaliveSize == 0 {
		c.KeepaliveSize = app.DefaultKeepaliveSize
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = app.DefaultDialTimeout
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = 15 * time.Second
	}
	if c.MaxEntropyBytes == 0 {
		c.MaxEntropyBytes = httpAdapter.DefaultMaxEntropyBytes
	}
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("%w: endpoint: %v", domain.ErrInvalidConfig, err)
	}
	switch u.Scheme {
	case "ws", "wss", "http", "https":
	default:
		return fmt.Errorf("%w: endpoint scheme %q not supported", domain.ErrInvalidConfig, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: endpoint has no host", domain.ErrInvalidConfig)
	}

	if c.KeepaliveInterval < 0 || c.DiscardInterval < 0 {
		return fmt.Errorf("%w: intervals must be positive", domain.ErrInvalidConfig)
	}
	if c.KeepaliveSize < 0 {
		return fmt.Errorf("%w: keepalive size must be positive", domain.ErrInvalidConfig)
	}
	if c.DialTimeout < 0 || c.HTTPTimeout < 0 {
		return fmt.Errorf("%w: timeouts must be positive", domain.ErrInvalidConfig)
	}
	if c.MaxEntropyBytes < 0 {
		return fmt.Errorf("%w: max entropy bytes must be positive", domain.ErrInvalidConfig)
	}
	return nil
}
