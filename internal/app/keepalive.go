package app

import (
	"context"
	"io"
	"time"

	"github.com/atdevs/atrng/pkg/log"
)

// Keepalive defaults.
const (
	DefaultKeepaliveInterval = 10 * time.Second
	DefaultKeepaliveSize     = 128
)

// Keepalive periodically sends a block of fresh random bytes so the
// collection endpoint sees a live connection. The block is sent unhashed.
// The first block goes out as soon as the scheduler starts.
type Keepalive struct {
	conn    *ConnectionManager
	random  io.Reader
	size    int
	logger  log.Logger
	emitter SendEventEmitter
	task    *Task
}

// NewKeepalive creates a stopped keepalive scheduler reading its blocks
// from random (normally crypto/rand.Reader).
func NewKeepalive(conn *ConnectionManager, random io.Reader, interval time.Duration, size int, logger log.Logger, emitter SendEventEmitter) *Keepalive {
	if interval <= 0 {
		interval = DefaultKeepaliveInterval
	}
	if size <= 0 {
		size = DefaultKeepaliveSize
	}

	k := &Keepalive{
		conn:    conn,
		random:  random,
		size:    size,
		logger:  logger,
		emitter: emitter,
	}
	k.task = NewTask(KindKeepalive, interval, k.tick, logger, WithImmediateTick())
	return k
}

// Start begins ticking. It is a no-op if already running.
func (k *Keepalive) Start(ctx context.Context) {
	if k.task.Start(ctx) {
		k.logger.Info("keepalive started", log.Duration("interval", k.task.Period()))
	}
}

// Stop cancels the scheduler and waits for any in-flight tick.
func (k *Keepalive) Stop() {
	if k.task.Stop() {
		k.logger.Info("keepalive stopped")
	}
}

// Task exposes the underlying periodic task.
func (k *Keepalive) Task() *Task {
	return k.task
}

func (k *Keepalive) tick(ctx context.Context) {
	k.conn.EnsureConnected(ctx)
	if !k.conn.IsConnected() {
		return
	}

	block := make([]byte, k.size)
	if _, err := io.ReadFull(k.random, block); err != nil {
		k.logger.Error("keepalive: random read failed", log.Err(err))
		return
	}

	if err := Deliver(k.conn, k.emitter, KindKeepalive, block); err != nil {
		k.logger.Warn("keepalive: send failed", log.Err(err))
		return
	}
	k.logger.Debug("keepalive: sent random block", log.Int("bytes", len(block)))
}
