package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (ATRNG_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("endpoint", os.Getenv("ATRNG_ENDPOINT"), &cfg.Endpoint)
	s.setString("entropy-url", os.Getenv("ATRNG_ENTROPY_URL"), &cfg.EntropyURL)
	s.setString("log-level", os.Getenv("ATRNG_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("keepalive-interval", os.Getenv("ATRNG_KEEPALIVE_INTERVAL"), &cfg.KeepaliveInterval); err != nil {
		return err
	}
	if err := s.setDuration("discard-interval", os.Getenv("ATRNG_DISCARD_INTERVAL"), &cfg.DiscardInterval); err != nil {
		return err
	}
	if err := s.setDuration("dial-timeout", os.Getenv("ATRNG_DIAL_TIMEOUT"), &cfg.DialTimeout); err != nil {
		return err
	}
	if err := s.setDuration("timeout", os.Getenv("ATRNG_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}

	if err := s.setIntFromString("keepalive-size", os.Getenv("ATRNG_KEEPALIVE_SIZE"), &cfg.KeepaliveSize); err != nil {
		return err
	}
	if err := s.setIntFromString("max-entropy-bytes", os.Getenv("ATRNG_MAX_ENTROPY_BYTES"), &cfg.MaxEntropyBytes); err != nil {
		return err
	}

	s.setBoolFromString("keepalive", os.Getenv("ATRNG_KEEPALIVE"), &cfg.Keepalive)
	s.setBoolFromString("discard", os.Getenv("ATRNG_DISCARD"), &cfg.Discard)
	s.setBoolFromString("watch-config", os.Getenv("ATRNG_WATCH_CONFIG"), &cfg.WatchConfig)

	return nil
}
