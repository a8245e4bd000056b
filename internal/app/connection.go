package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/atdevs/atrng/internal/domain"
	"github.com/atdevs/atrng/internal/ports"
	"github.com/atdevs/atrng/pkg/log"
)

// EventName is the channel event every payload is emitted on.
const EventName = "message"

// DefaultDialTimeout bounds a single connection attempt.
const DefaultDialTimeout = 10 * time.Second

// ConnState is the state of the shared connection.
type ConnState int32

const (
	ConnDisconnected ConnState = iota
	ConnConnecting
	ConnConnected
)

// String returns a human-readable representation of the state.
func (s ConnState) String() string {
	switch s {
	case ConnDisconnected:
		return "Disconnected"
	case ConnConnecting:
		return "Connecting"
	case ConnConnected:
		return "Connected"
	default:
		return "Unknown"
	}
}

// ConnStats is a snapshot of connection counters.
type ConnStats struct {
	DialAttempts uint64
	DialFailures uint64
	Sent         uint64
	SentBytes    uint64
	Dropped      uint64
	SendFailures uint64
}

// liveChannel boxes the interface so it can sit behind an atomic.Pointer.
type liveChannel struct {
	ports.Channel
}

// ConnectionManager owns the single outbound channel shared by every sender.
// The channel is opened lazily and replaced only by EnsureConnected.
type ConnectionManager struct {
	dialer      ports.Dialer
	endpoint    string
	dialTimeout time.Duration
	logger      log.Logger

	// mu serializes check-and-dial; readers never take it.
	mu      sync.Mutex
	channel atomic.Pointer[liveChannel]
	dialing atomic.Bool

	dialAttempts atomic.Uint64
	dialFailures atomic.Uint64
	sent         atomic.Uint64
	sentBytes    atomic.Uint64
	dropped      atomic.Uint64
	sendFailures atomic.Uint64
}

// NewConnectionManager creates a manager that dials endpoint on demand.
// A non-positive dialTimeout selects DefaultDialTimeout.
func NewConnectionManager(dialer ports.Dialer, endpoint string, dialTimeout time.Duration, logger log.Logger) *ConnectionManager {
	if dialTimeout <= 0 {
		dialTimeout = DefaultDialTimeout
	}
	return &ConnectionManager{
		dialer:      dialer,
		endpoint:    endpoint,
		dialTimeout: dialTimeout,
		logger:      logger,
	}
}

// EnsureConnected opens the channel unless a live one already exists.
// At most one dial is in flight at a time; callers queued behind a
// successful dial return without dialing again. Failures are logged and
// counted, never returned: check IsConnected afterwards.
func (m *ConnectionManager) EnsureConnected(ctx context.Context) {
	if m.IsConnected() {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.IsConnected() {
		return
	}

	if dead := m.channel.Swap(nil); dead != nil {
		_ = dead.Close()
	}

	m.dialing.Store(true)
	defer m.dialing.Store(false)

	m.dialAttempts.Add(1)

	dialCtx, cancel := context.WithTimeout(ctx, m.dialTimeout)
	defer cancel()

	start := time.Now()
	ch, err := m.dialer.Dial(dialCtx, m.endpoint)
	if err != nil {
		m.dialFailures.Add(1)
		m.logger.Warn("connection failed",
			log.String("endpoint", m.endpoint),
			log.Err(err),
		)
		return
	}

	m.channel.Store(&liveChannel{ch})
	m.logger.Info("connected to server",
		log.String("endpoint", m.endpoint),
		log.Duration("duration", time.Since(start)),
	)
}

// IsConnected reports whether a live channel exists. It never blocks.
func (m *ConnectionManager) IsConnected() bool {
	lc := m.channel.Load()
	return lc != nil && lc.Connected()
}

// State returns the current connection state.
func (m *ConnectionManager) State() ConnState {
	if m.dialing.Load() {
		return ConnConnecting
	}
	if m.IsConnected() {
		return ConnConnected
	}
	return ConnDisconnected
}

// Send emits payload on EventName without waiting for acknowledgment.
// When no live channel exists the payload is dropped and ErrNotConnected
// is returned; nothing is queued.
func (m *ConnectionManager) Send(payload []byte) error {
	lc := m.channel.Load()
	if lc == nil || !lc.Connected() {
		m.dropped.Add(1)
		m.logger.Warn("send dropped, not connected",
			log.Int("bytes", len(payload)),
		)
		return domain.ErrNotConnected
	}

	if err := lc.Emit(EventName, payload); err != nil {
		m.sendFailures.Add(1)
		m.logger.Error("emit failed",
			log.Int("bytes", len(payload)),
			log.Err(err),
		)
		return fmt.Errorf("emit %s: %w", EventName, err)
	}

	m.sent.Add(1)
	m.sentBytes.Add(uint64(len(payload)))
	return nil
}

// Close tears down the channel. A later EnsureConnected dials again.
func (m *ConnectionManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lc := m.channel.Swap(nil)
	if lc == nil {
		return nil
	}
	m.logger.Info("connection closed", log.String("endpoint", m.endpoint))
	return lc.Close()
}

// Stats returns a snapshot of the connection counters.
func (m *ConnectionManager) Stats() ConnStats {
	return ConnStats{
		DialAttempts: m.dialAttempts.Load(),
		DialFailures: m.dialFailures.Load(),
		Sent:         m.sent.Load(),
		SentBytes:    m.sentBytes.Load(),
		Dropped:      m.dropped.Load(),
		SendFailures: m.sendFailures.Load(),
	}
}
