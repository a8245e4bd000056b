package cliconfig

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/atdevs/atrng/internal/domain"
)

// DefaultEndpoint is the collection endpoint randomness is streamed to.
const DefaultEndpoint = "wss://rng-dump.atdevs.org"

// DefaultEntropyURL is the endpoint randomness requests are served from.
const DefaultEntropyURL = "https://rng-api.atdevs.org/random"

// Config holds CLI configuration for atrng.
type Config struct {
	Endpoint   string
	EntropyURL string

	KeepaliveInterval time.Duration
	DiscardInterval   time.Duration
	KeepaliveSize     int

	DialTimeout     time.Duration
	HTTPTimeout     time.Duration
	MaxEntropyBytes int

	Keepalive   bool
	Discard     bool
	WatchConfig bool

	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Endpoint:          DefaultEndpoint,
		EntropyURL:        DefaultEntropyURL,
		KeepaliveInterval: 10 * time.Second,
		DiscardInterval:   10 * time.Second,
		KeepaliveSize:     128,
		DialTimeout:       10 * time.Second,
		HTTPTimeout:       15 * time.Second,
		MaxEntropyBytes:   1 << 20, // 1MiB
		Keepalive:         true,
		Discard:           true,
		LogLevel:          "info",
	}
}

// Validate checks the configuration for errors and normalizes it.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("%w: endpoint is required", domain.ErrInvalidConfig)
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("%w: endpoint: %v", domain.ErrInvalidConfig, err)
	}
	switch u.Scheme {
	case "ws", "wss", "http", "https":
	default:
		return fmt.Errorf("%w: endpoint scheme %q not supported", domain.ErrInvalidConfig, u.Scheme)
	}

	if c.EntropyURL == "" {
		c.EntropyURL = DefaultEntropyURL
	}

	if c.KeepaliveInterval <= 0 {
		return fmt.Errorf("%w: keepalive interval must be positive", domain.ErrInvalidConfig)
	}
	if c.DiscardInterval <= 0 {
		return fmt.Errorf("%w: discard interval must be positive", domain.ErrInvalidConfig)
	}
	if c.KeepaliveSize <= 0 {
		return fmt.Errorf("%w: keepalive size must be positive", domain.ErrInvalidConfig)
	}
	if c.DialTimeout <= 0 {
		return fmt.Errorf("%w: dial timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.MaxEntropyBytes <= 0 {
		return fmt.Errorf("%w: max entropy bytes must be positive", domain.ErrInvalidConfig)
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level: %v", domain.ErrInvalidConfig, err)
	}

	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
