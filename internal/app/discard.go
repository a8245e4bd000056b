package app

import (
	"context"
	"time"

	"github.com/atdevs/atrng/internal/domain"
	"github.com/atdevs/atrng/pkg/log"
)

// DefaultDiscardInterval is the default flush period of the discard loop.
const DefaultDiscardInterval = 10 * time.Second

// Discarder accumulates caller data and periodically sends its SHA-512
// digest. Drained bytes whose send fails are lost, not re-buffered.
type Discarder struct {
	conn    *ConnectionManager
	buffer  *Buffer
	logger  log.Logger
	emitter SendEventEmitter
	task    *Task
}

// NewDiscarder creates a stopped discard loop over buffer.
func NewDiscarder(conn *ConnectionManager, buffer *Buffer, interval time.Duration, logger log.Logger, emitter SendEventEmitter) *Discarder {
	if interval <= 0 {
		interval = DefaultDiscardInterval
	}

	d := &Discarder{
		conn:    conn,
		buffer:  buffer,
		logger:  logger,
		emitter: emitter,
	}
	d.task = NewTask(KindDiscard, interval, d.flush, logger)
	return d
}

// Discard appends the payload's bytes to the buffer.
// Returns ErrInvalidPayload without buffering anything if p is invalid.
func (d *Discarder) Discard(p domain.Payload) error {
	b, err := p.Bytes()
	if err != nil {
		return err
	}
	d.buffer.Append(b)
	return nil
}

// Start begins flushing. It is a no-op if already running.
func (d *Discarder) Start(ctx context.Context) {
	if d.task.Start(ctx) {
		d.logger.Info("discard loop started", log.Duration("interval", d.task.Period()))
	}
}

// Stop cancels the loop and waits for any in-flight flush.
func (d *Discarder) Stop() {
	if d.task.Stop() {
		d.logger.Info("discard loop stopped")
	}
}

// Task exposes the underlying periodic task.
func (d *Discarder) Task() *Task {
	return d.task
}

// flush is one tick. The connection lock and the buffer lock are taken
// one after the other, never together.
func (d *Discarder) flush(ctx context.Context) {
	d.conn.EnsureConnected(ctx)

	data := d.buffer.Drain()
	if len(data) == 0 {
		return
	}

	digest, err := domain.Sum(data)
	if err != nil {
		d.logger.Error("discard: digest failed, drained data lost",
			log.Int("bytes", len(data)),
			log.Err(err),
		)
		return
	}

	if err := Deliver(d.conn, d.emitter, KindDiscard, digest.Bytes()); err != nil {
		d.logger.Warn("discard: send failed, drained data lost",
			log.Int("bytes", len(data)),
			log.Err(err),
		)
		return
	}
	d.logger.Info("discard: sent SHA-512 digest", log.Int("bytes", len(data)))
}
