package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true
	falseVal := false

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "handles all field types correctly",
			fileConfig: FileConfig{
				Endpoint:          "wss://collector.example.com",
				EntropyURL:        "https://entropy.example.com/random",
				KeepaliveInterval: "15s",
				DiscardInterval:   "45s",
				KeepaliveSize:     64,
				DialTimeout:       "3s",
				HTTPTimeout:       "30s",
				MaxEntropyBytes:   2048,
				Keepalive:         &falseVal,
				Discard:           &trueVal,
				WatchConfig:       &trueVal,
				LogLevel:          "warn",
			},
			changed: map[string]bool{},
			initial: Config{Keepalive: true},
			expected: Config{
				Endpoint:          "wss://collector.example.com",
				EntropyURL:        "https://entropy.example.com/random",
				KeepaliveInterval: 15 * time.Second,
				DiscardInterval:   45 * time.Second,
				KeepaliveSize:     64,
				DialTimeout:       3 * time.Second,
				HTTPTimeout:       30 * time.Second,
				MaxEntropyBytes:   2048,
				Keepalive:         false,
				Discard:           true,
				WatchConfig:       true,
				LogLevel:          "warn",
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				Endpoint:        "wss://file.example.com",
				DiscardInterval: "1m",
			},
			changed: map[string]bool{"endpoint": true},
			initial: Config{Endpoint: "wss://flag.example.com"},
			expected: Config{
				Endpoint:        "wss://flag.example.com", // unchanged because flag was set
				DiscardInterval: time.Minute,
			},
		},
		{
			name:       "unset bools keep current value",
			fileConfig: FileConfig{},
			changed:    map[string]bool{},
			initial:    Config{Keepalive: true, Discard: true},
			expected:   Config{Keepalive: true, Discard: true},
		},
		{
			name:       "invalid duration",
			fileConfig: FileConfig{KeepaliveInterval: "soon"},
			changed:    map[string]bool{},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyFileConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyFileConfig() unexpected error: %v", err)
			}
			if cfg != tt.expected {
				t.Errorf("ApplyFileConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "toml",
			file: "config.toml",
			content: `
endpoint = "wss://collector.example.com"
keepalive_interval = "5s"
keepalive_size = 64
discard = false
`,
		},
		{
			name: "yaml",
			file: "config.yaml",
			content: `
endpoint: wss://collector.example.com
keepalive_interval: 5s
keepalive_size: 64
discard: false
`,
		},
		{
			name: "yml",
			file: "config.yml",
			content: `
endpoint: "wss://collector.example.com"
keepalive_interval: "5s"
keepalive_size: 64
discard: false
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to create test config file: %v", err)
			}

			fc, err := LoadFileConfig(path)
			if err != nil {
				t.Fatalf("LoadFileConfig() error = %v", err)
			}
			if fc.Endpoint != "wss://collector.example.com" {
				t.Errorf("Endpoint = %v, want wss://collector.example.com", fc.Endpoint)
			}
			if fc.KeepaliveInterval != "5s" {
				t.Errorf("KeepaliveInterval = %v, want 5s", fc.KeepaliveInterval)
			}
			if fc.KeepaliveSize != 64 {
				t.Errorf("KeepaliveSize = %v, want 64", fc.KeepaliveSize)
			}
			if fc.Discard == nil || *fc.Discard {
				t.Errorf("Discard = %v, want false", fc.Discard)
			}
			if fc.Keepalive != nil {
				t.Errorf("Keepalive = %v, want unset", *fc.Keepalive)
			}
		})
	}
}

func TestLoadFileConfig_InvalidFile(t *testing.T) {
	_, err := LoadFileConfig("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("LoadFileConfig() expected error for nonexistent file")
	}
}

func TestLoadFileConfig_InvalidContent(t *testing.T) {
	tests := []struct {
		file    string
		content string
	}{
		{"invalid.toml", "endpoint = \"x\"\nthis is not valid toml\n"},
		{"invalid.yaml", "endpoint: [unclosed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to create test config file: %v", err)
			}
			if _, err := LoadFileConfig(path); err == nil {
				t.Errorf("LoadFileConfig() expected error for %s", tt.file)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "keepalive_interval = \"20s\"\ndiscard_interval = \"40s\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}
	t.Setenv("ATRNG_DISCARD_INTERVAL", "50s")

	cfg, err := Load(DefaultConfig(), path, map[string]bool{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.KeepaliveInterval != 20*time.Second {
		t.Errorf("KeepaliveInterval = %v, want 20s", cfg.KeepaliveInterval)
	}
	if cfg.DiscardInterval != 50*time.Second {
		t.Errorf("DiscardInterval = %v, want 50s", cfg.DiscardInterval)
	}

	// missing file falls through to defaults
	cfg, err = Load(DefaultConfig(), filepath.Join(t.TempDir(), "absent.toml"), map[string]bool{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.KeepaliveInterval != 10*time.Second {
		t.Errorf("KeepaliveInterval = %v, want 10s", cfg.KeepaliveInterval)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()

	if path != "" && !strings.HasSuffix(path, filepath.Join(".atrng", "config.toml")) {
		t.Errorf("DefaultConfigPath() = %v, should end in .atrng/config.toml", path)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "exists.txt")

	if err := os.WriteFile(existingFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if !FileExists(existingFile) {
		t.Error("FileExists() = false, want true for existing file")
	}
	if FileExists(filepath.Join(tmpDir, "nonexistent.txt")) {
		t.Error("FileExists() = true, want false for nonexistent file")
	}
}
