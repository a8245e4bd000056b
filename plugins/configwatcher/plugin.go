// Package configwatcher reloads scheduler intervals when the atrng config
// file changes on disk.
package configwatcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/atdevs/atrng/internal/cliconfig"
	"github.com/atdevs/atrng/pkg/atrng"
	"github.com/atdevs/atrng/pkg/log"
)

// Plugin watches one config file and applies its keepalive and discard
// intervals to the running client.
type Plugin struct {
	mu sync.Mutex

	path          string
	debounceDelay time.Duration
	base          cliconfig.Config
	changed       map[string]bool

	logger    log.Logger
	intervals atrng.IntervalSetter
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	debounce  *time.Timer
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// Path is the config file to watch. The plugin is disabled when empty.
	Path string

	// DebounceDelay is the delay to wait after a file change before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration

	// Base is the configuration the file is layered on, normally defaults
	// plus flags.
	Base cliconfig.Config

	// Changed lists flags set on the command line; the file never overrides them.
	Changed map[string]bool
}

// DefaultConfig returns a Config watching the default config path.
func DefaultConfig() Config {
	return Config{
		Path:          cliconfig.DefaultConfigPath(),
		DebounceDelay: 100 * time.Millisecond,
		Base:          cliconfig.DefaultConfig(),
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	if cfg.Changed == nil {
		cfg.Changed = map[string]bool{}
	}
	return &Plugin{
		path:          cfg.Path,
		debounceDelay: cfg.DebounceDelay,
		base:          cfg.Base,
		changed:       cfg.Changed,
		logger:        log.NewNoopLogger(),
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize starts watching the directory holding the config file.
func (p *Plugin) Initialize(ctx context.Context, cfg atrng.PluginConfig) error {
	p.mu.Lock()
	if cfg.Logger != nil {
		p.logger = cfg.Logger
	}
	p.intervals = cfg.Intervals
	p.mu.Unlock()

	if p.path == "" || p.intervals == nil {
		p.logger.Warn("config watcher disabled: no config path")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(p.path), err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.ctx = watchCtx
	p.cancel = cancel
	p.mu.Unlock()

	p.logger.Info("config watcher started", log.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)
	return nil
}

// Shutdown stops the watcher and any pending reload.
func (p *Plugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	cancel := p.cancel
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
	return nil
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	target := filepath.Clean(p.path)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.debounceReload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceReload() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		p.mu.Lock()
		ctx := p.ctx
		p.mu.Unlock()
		if ctx != nil && ctx.Err() != nil {
			return
		}
		if err := p.Reload(); err != nil {
			p.logger.Warn("config reload failed, keeping previous intervals", log.Err(err))
		}
	})
}

// Reload reads the config file and applies its intervals. On error the
// client keeps its current intervals.
func (p *Plugin) Reload() error {
	p.mu.Lock()
	intervals := p.intervals
	p.mu.Unlock()
	if intervals == nil {
		return fmt.Errorf("plugin not initialized")
	}

	cfg, err := cliconfig.Load(p.base, p.path, p.changed)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	intervals.SetIntervals(cfg.KeepaliveInterval, cfg.DiscardInterval)
	p.logger.Info("config reloaded",
		log.String("path", p.path),
		log.Duration("keepalive_interval", cfg.KeepaliveInterval),
		log.Duration("discard_interval", cfg.DiscardInterval),
	)
	return nil
}

var _ atrng.Plugin = (*Plugin)(nil)
