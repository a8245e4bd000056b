package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config but uses strings for durations to make TOML
// and YAML friendly.
type FileConfig struct {
	Endpoint          string `toml:"endpoint" yaml:"endpoint"`
	EntropyURL        string `toml:"entropy_url" yaml:"entropy_url"`
	KeepaliveInterval string `toml:"keepalive_interval" yaml:"keepalive_interval"`
	DiscardInterval   string `toml:"discard_interval" yaml:"discard_interval"`
	KeepaliveSize     int    `toml:"keepalive_size" yaml:"keepalive_size"`
	DialTimeout       string `toml:"dial_timeout" yaml:"dial_timeout"`
	HTTPTimeout       string `toml:"http_timeout" yaml:"http_timeout"`
	MaxEntropyBytes   int    `toml:"max_entropy_bytes" yaml:"max_entropy_bytes"`
	Keepalive         *bool  `toml:"keepalive" yaml:"keepalive"`
	Discard           *bool  `toml:"discard" yaml:"discard"`
	WatchConfig       *bool  `toml:"watch_config" yaml:"watch_config"`
	LogLevel          string `toml:"log_level" yaml:"log_level"`
}

// LoadFileConfig reads a config file. Files ending in .yaml or .yml are
// parsed as YAML, everything else as TOML.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml %s: %w", path, err)
		}
	default:
		if err := toml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse toml %s: %w", path, err)
		}
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.atrng/config.toml, or "" when the home
// directory is unknown.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".atrng", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("endpoint", fc.Endpoint, &cfg.Endpoint)
	s.setString("entropy-url", fc.EntropyURL, &cfg.EntropyURL)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("keepalive-interval", fc.KeepaliveInterval, &cfg.KeepaliveInterval); err != nil {
		return err
	}
	if err := s.setDuration("discard-interval", fc.DiscardInterval, &cfg.DiscardInterval); err != nil {
		return err
	}
	if err := s.setDuration("dial-timeout", fc.DialTimeout, &cfg.DialTimeout); err != nil {
		return err
	}
	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}

	s.setInt("keepalive-size", fc.KeepaliveSize, &cfg.KeepaliveSize)
	s.setInt("max-entropy-bytes", fc.MaxEntropyBytes, &cfg.MaxEntropyBytes)

	s.setBool("keepalive", fc.Keepalive, &cfg.Keepalive)
	s.setBool("discard", fc.Discard, &cfg.Discard)
	s.setBool("watch-config", fc.WatchConfig, &cfg.WatchConfig)

	return nil
}

// Load builds a Config from defaults, the file at path (when it exists) and
// the environment, honoring flags in changed.
func Load(base Config, path string, changed map[string]bool) (Config, error) {
	cfg := base
	if path != "" && FileExists(path) {
		fc, err := LoadFileConfig(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		if err := ApplyFileConfig(&cfg, fc, changed); err != nil {
			return cfg, err
		}
	}
	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
