package configwatcher

import "github.com/atdevs/atrng/pkg/atrng"

// WithConfigWatcher returns an atrng Option that reloads intervals when the
// config file changes.
//
// Usage:
//
//	c, err := atrng.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        Path:          "/etc/atrng/config.toml",
//	        DebounceDelay: 100 * time.Millisecond,
//	    }),
//	)
func WithConfigWatcher(cfg Config) atrng.Option {
	return atrng.WithPlugin(New(cfg))
}

// WithDefaultConfigWatcher watches ~/.atrng/config.toml.
func WithDefaultConfigWatcher() atrng.Option {
	return WithConfigWatcher(DefaultConfig())
}
