package atrng

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	httpAdapter "github.com/atdevs/atrng/internal/adapters/http"
	"github.com/atdevs/atrng/internal/adapters/socketio"
	"github.com/atdevs/atrng/internal/app"
	"github.com/atdevs/atrng/internal/domain"
	"github.com/atdevs/atrng/pkg/log"
)

// Client streams randomness to the collection endpoint and answers
// randomness requests. Use New to create one, then Start.
type Client struct {
	config    Config
	lifecycle *app.Lifecycle
	conn      *app.ConnectionManager
	buffer    *app.Buffer
	keepalive *app.Keepalive
	discarder *app.Discarder
	entropy   *app.EntropyService
	emitter   *eventEmitterWrapper
	logger    log.Logger

	plugins []Plugin

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New creates a Client in StateStopped. No connection is opened until the
// first scheduler tick, Start or SendDataToServer.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.NewNoopLogger()
	}
	if o.httpClient == nil {
		client, err := httpAdapter.NewClient(cfg.HTTPTimeout)
		if err != nil {
			return nil, err
		}
		o.httpClient = client
	}
	if o.dialer == nil {
		o.dialer = socketio.NewDialer(o.logger)
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler}
	conn := app.NewConnectionManager(o.dialer, cfg.Endpoint, cfg.DialTimeout, o.logger)
	buffer := app.NewBuffer()
	fetcher := httpAdapter.NewEntropyFetcher(o.httpClient, cfg.EntropyURL, cfg.MaxEntropyBytes, o.logger)

	return &Client{
		config:    cfg,
		lifecycle: app.NewLifecycle(o.logger, emitter),
		conn:      conn,
		buffer:    buffer,
		keepalive: app.NewKeepalive(conn, o.random, cfg.KeepaliveInterval, cfg.KeepaliveSize, o.logger, emitter),
		discarder: app.NewDiscarder(conn, buffer, cfg.DiscardInterval, o.logger, emitter),
		entropy:   app.NewEntropyService(fetcher, o.logger),
		emitter:   emitter,
		logger:    o.logger,
		plugins:   o.plugins,
	}, nil
}

// Start connects to the collection endpoint, initializes plugins and starts
// the enabled schedulers. A failed connection is logged, not returned: the
// schedulers retry on their next tick.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := c.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	pluginCfg := PluginConfig{
		Logger:    c.logger,
		Intervals: c,
	}
	for _, p := range c.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			c.logger.Error("plugin initialization failed",
				log.String("plugin", p.Name()),
				log.Err(err))
			cancel()
			_ = c.lifecycle.TransitionTo(app.StateCrashed, "plugin init failed: "+p.Name())
			return fmt.Errorf("plugin %s: %w", p.Name(), err)
		}
		c.logger.Info("plugin initialized", log.String("plugin", p.Name()))
	}

	c.conn.EnsureConnected(runCtx)

	if !c.config.DisableKeepalive {
		c.keepalive.Start(runCtx)
	}
	if !c.config.DisableDiscard {
		c.discarder.Start(runCtx)
	}

	return c.lifecycle.TransitionTo(app.StateRunning, "schedulers started")
}

// Stop stops both schedulers, waiting for in-flight ticks up to
// ShutdownTimeout, closes the connection and shuts plugins down.
// Returns nil on graceful shutdown, ErrShutdownTimeout if a tick is stuck.
func (c *Client) Stop() error {
	c.mu.Lock()

	if !c.lifecycle.CanStop() {
		c.mu.Unlock()
		return domain.ErrNotRunning
	}
	if err := c.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()

	c.lifecycle.AddWorker()
	go func() {
		defer c.lifecycle.WorkerDone()
		c.stopSchedulers()
	}()
	err := c.lifecycle.WaitWithTimeout(app.ShutdownTimeout)

	if closeErr := c.conn.Close(); closeErr != nil {
		c.logger.Warn("close connection", log.Err(closeErr))
	}

	shutdownCtx := context.Background()
	for i := len(c.plugins) - 1; i >= 0; i-- {
		p := c.plugins[i]
		if shutdownErr := p.Shutdown(shutdownCtx); shutdownErr != nil {
			c.logger.Error("plugin shutdown failed",
				log.String("plugin", p.Name()),
				log.Err(shutdownErr))
		} else {
			c.logger.Info("plugin shutdown complete", log.String("plugin", p.Name()))
		}
	}

	if err != nil {
		_ = c.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	} else {
		_ = c.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}
	return err
}

// Close stops both schedulers and closes the connection without going
// through the lifecycle. Use it after one-shot calls made without Start.
func (c *Client) Close() error {
	c.stopSchedulers()
	return c.conn.Close()
}

func (c *Client) stopSchedulers() {
	c.keepalive.Stop()
	c.discarder.Stop()
}

// StartKeepalive starts the keepalive scheduler. It is a no-op if the
// scheduler is already running.
func (c *Client) StartKeepalive(ctx context.Context) {
	c.keepalive.Start(ctx)
}

// StopKeepalive stops the keepalive scheduler. No keepalive is sent after
// it returns.
func (c *Client) StopKeepalive() {
	c.keepalive.Stop()
}

// StartDiscardLoop starts the discard flush scheduler. It is a no-op if the
// scheduler is already running.
func (c *Client) StartDiscardLoop(ctx context.Context) {
	c.discarder.Start(ctx)
}

// StopDiscardLoop stops the discard flush scheduler. Buffered data stays
// buffered until the loop is started again.
func (c *Client) StopDiscardLoop() {
	c.discarder.Stop()
}

// Discard buffers p. The next discard tick sends the SHA-512 digest of
// everything buffered since the previous flush.
func (c *Client) Discard(p Payload) error {
	return c.discarder.Discard(p)
}

// SendDataToServer sends the SHA-512 digest of p right away, bypassing the
// discard buffer. It connects first if needed.
func (c *Client) SendDataToServer(ctx context.Context, p Payload) error {
	b, err := p.Bytes()
	if err != nil {
		return err
	}
	digest, err := domain.Sum(b)
	if err != nil {
		return err
	}

	c.conn.EnsureConnected(ctx)
	return app.Deliver(c.conn, c.emitter, app.KindDirect, digest.Bytes())
}

// RandomnessAsText fetches entropy and returns its SHA-512 digest as
// 128 lowercase hex characters.
func (c *Client) RandomnessAsText(ctx context.Context) (string, error) {
	return c.entropy.Text(ctx)
}

// RandomnessAsNumber fetches entropy and returns its SHA-512 digest as an
// unsigned big-endian integer.
func (c *Client) RandomnessAsNumber(ctx context.Context) (*big.Int, error) {
	return c.entropy.Number(ctx)
}

// SetIntervals changes the scheduler periods. Running schedulers restart
// with the new period. Non-positive values leave that period unchanged.
func (c *Client) SetIntervals(keepalive, discard time.Duration) {
	c.keepalive.Task().SetPeriod(keepalive)
	c.discarder.Task().SetPeriod(discard)
	c.logger.Info("intervals updated",
		log.Duration("keepalive", c.keepalive.Task().Period()),
		log.Duration("discard", c.discarder.Task().Period()),
	)
}

// Intervals returns the current keepalive and discard periods.
func (c *Client) Intervals() (keepalive, discard time.Duration) {
	return c.keepalive.Task().Period(), c.discarder.Task().Period()
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (c *Client) Status() State {
	return c.lifecycle.State()
}

// Connected reports whether a live connection exists. It never blocks.
func (c *Client) Connected() bool {
	return c.conn.IsConnected()
}

// Stats returns a snapshot of the client counters.
func (c *Client) Stats() Stats {
	s := c.conn.Stats()
	return Stats{
		DialAttempts: s.DialAttempts,
		DialFailures: s.DialFailures,
		Sent:         s.Sent,
		SentBytes:    s.SentBytes,
		Dropped:      s.Dropped,
		SendFailures: s.SendFailures,
		Buffered:     c.buffer.Len(),
	}
}

var _ IntervalSetter = (*Client)(nil)
