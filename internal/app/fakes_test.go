package app

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/atdevs/atrng/internal/ports"
	"github.com/atdevs/atrng/pkg/log"
)

// mockLogger discards everything.
type mockLogger struct{}

func (mockLogger) Debug(msg string, fields ...log.Field) {}
func (mockLogger) Info(msg string, fields ...log.Field)  {}
func (mockLogger) Warn(msg string, fields ...log.Field)  {}
func (mockLogger) Error(msg string, fields ...log.Field) {}

// fakeChannel records emitted payloads.
type fakeChannel struct {
	mu        sync.Mutex
	events    []string
	payloads  [][]byte
	emitErr   error
	connected atomic.Bool
	closed    atomic.Bool
}

func newFakeChannel() *fakeChannel {
	ch := &fakeChannel{}
	ch.connected.Store(true)
	return ch
}

func (c *fakeChannel) Emit(event string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.emitErr != nil {
		return c.emitErr
	}
	c.events = append(c.events, event)
	c.payloads = append(c.payloads, bytes.Clone(payload))
	return nil
}

func (c *fakeChannel) Connected() bool { return c.connected.Load() && !c.closed.Load() }

func (c *fakeChannel) Close() error {
	c.closed.Store(true)
	return nil
}

func (c *fakeChannel) setEmitErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emitErr = err
}

func (c *fakeChannel) sent() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte{}, c.payloads...)
}

// fakeDialer hands out fakeChannels and counts dial attempts.
type fakeDialer struct {
	calls atomic.Int32
	delay time.Duration
	gate  chan struct{}

	mu       sync.Mutex
	err      error
	channels []*fakeChannel
}

func (d *fakeDialer) Dial(ctx context.Context, endpoint string) (ports.Channel, error) {
	d.calls.Add(1)

	if d.gate != nil {
		select {
		case <-d.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if d.delay > 0 {
		select {
		case <-time.After(d.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	ch := newFakeChannel()
	d.channels = append(d.channels, ch)
	return ch, nil
}

func (d *fakeDialer) setErr(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = err
}

func (d *fakeDialer) last() *fakeChannel {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.channels) == 0 {
		return nil
	}
	return d.channels[len(d.channels)-1]
}

// sent returns every payload emitted on any channel, in dial order.
func (d *fakeDialer) sent() [][]byte {
	d.mu.Lock()
	chans := append([]*fakeChannel{}, d.channels...)
	d.mu.Unlock()

	var out [][]byte
	for _, ch := range chans {
		out = append(out, ch.sent()...)
	}
	return out
}

var errDialRefused = errors.New("connection refused")

// mockSendEmitter records send events.
type mockSendEmitter struct {
	mu       sync.Mutex
	success  []string
	failures []string
}

func (m *mockSendEmitter) OnSendSuccess(kind string, bytes int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.success = append(m.success, kind)
}

func (m *mockSendEmitter) OnSendError(kind string, err error, bytes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, kind)
}

func (m *mockSendEmitter) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.success), len(m.failures)
}

// waitFor polls cond until it holds or the timeout expires.
func waitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return cond()
}

func newTestManager(d *fakeDialer) *ConnectionManager {
	return NewConnectionManager(d, "wss://collector.test", time.Second, &mockLogger{})
}
