package app

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atdevs/atrng/internal/domain"
)

func newTestDiscarder(d *fakeDialer, emitter SendEventEmitter) (*Discarder, *Buffer, *ConnectionManager) {
	conn := newTestManager(d)
	buf := NewBuffer()
	return NewDiscarder(conn, buf, time.Hour, &mockLogger{}, emitter), buf, conn
}

func TestDiscarder_FlushSendsDigestOfAppendsInOrder(t *testing.T) {
	d := &fakeDialer{}
	disc, buf, _ := newTestDiscarder(d, nil)

	if err := disc.Discard(domain.Text("ab")); err != nil {
		t.Fatalf("Discard() error = %v", err)
	}
	if err := disc.Discard(domain.Raw([]byte("cd"))); err != nil {
		t.Fatalf("Discard() error = %v", err)
	}

	disc.Task().Tick(context.Background())

	sent := d.sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sent))
	}
	want, _ := domain.Sum([]byte("abcd"))
	if !bytes.Equal(sent[0], want.Bytes()) {
		t.Errorf("digest = %x, want %x", sent[0], want.Bytes())
	}
	if len(sent[0]) != domain.DigestSize {
		t.Errorf("digest size = %d, want %d", len(sent[0]), domain.DigestSize)
	}
	if buf.Len() != 0 {
		t.Errorf("buffer Len() = %d after flush, want 0", buf.Len())
	}
}

func TestDiscarder_EmptyFlushSendsNothing(t *testing.T) {
	d := &fakeDialer{}
	disc, buf, _ := newTestDiscarder(d, nil)

	disc.Task().Tick(context.Background())

	if got := len(d.sent()); got != 0 {
		t.Errorf("sent %d messages on empty buffer, want 0", got)
	}
	if buf.Len() != 0 {
		t.Errorf("buffer Len() = %d, want 0", buf.Len())
	}
	if got := d.calls.Load(); got != 1 {
		t.Errorf("dial calls = %d, flush should still ensure the connection", got)
	}
}

func TestDiscarder_ConsecutiveFlushesWithoutDiscard(t *testing.T) {
	d := &fakeDialer{}
	disc, _, _ := newTestDiscarder(d, nil)

	_ = disc.Discard(domain.Text("seed"))
	disc.Task().Tick(context.Background())
	disc.Task().Tick(context.Background())

	if got := len(d.sent()); got != 1 {
		t.Errorf("sent %d messages over two flushes, want 1", got)
	}
}

func TestDiscarder_FlushWhileDisconnectedLosesData(t *testing.T) {
	d := &fakeDialer{}
	d.setErr(errDialRefused)
	emitter := &mockSendEmitter{}
	disc, buf, conn := newTestDiscarder(d, emitter)

	_ = disc.Discard(domain.Text("gone"))
	disc.Task().Tick(context.Background())

	if buf.Len() != 0 {
		t.Errorf("buffer Len() = %d, drained data must not be re-buffered", buf.Len())
	}
	if got := conn.Stats().Dropped; got != 1 {
		t.Errorf("Dropped = %d, want 1", got)
	}
	if _, failed := emitter.counts(); failed != 1 {
		t.Errorf("error events = %d, want 1", failed)
	}

	// The next flush proceeds normally with new data only.
	d.setErr(nil)
	_ = disc.Discard(domain.Text("fresh"))
	disc.Task().Tick(context.Background())

	sent := d.sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sent))
	}
	want, _ := domain.Sum([]byte("fresh"))
	if !bytes.Equal(sent[0], want.Bytes()) {
		t.Error("second flush should hash only the data appended after the failure")
	}
}

func TestDiscarder_EmitFailureDoesNotStopLoop(t *testing.T) {
	d := &fakeDialer{}
	disc, _, conn := newTestDiscarder(d, nil)
	conn.EnsureConnected(context.Background())
	d.last().setEmitErr(errors.New("broken pipe"))

	_ = disc.Discard(domain.Text("x"))
	disc.Task().Tick(context.Background())

	if got := conn.Stats().SendFailures; got != 1 {
		t.Errorf("SendFailures = %d, want 1", got)
	}

	d.last().setEmitErr(nil)
	_ = disc.Discard(domain.Text("y"))
	disc.Task().Tick(context.Background())
	if got := conn.Stats().Sent; got != 1 {
		t.Errorf("Sent = %d, want 1", got)
	}
}

func TestDiscarder_DiscardRejectsInvalidPayload(t *testing.T) {
	d := &fakeDialer{}
	disc, buf, _ := newTestDiscarder(d, nil)

	tests := []struct {
		name    string
		payload domain.Payload
	}{
		{"zero payload", domain.Payload{}},
		{"invalid utf8", domain.Text(string([]byte{0xc3, 0x28}))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := disc.Discard(tt.payload)
			if !errors.Is(err, domain.ErrInvalidPayload) {
				t.Errorf("Discard() error = %v, want ErrInvalidPayload", err)
			}
		})
	}
	if buf.Len() != 0 {
		t.Errorf("buffer Len() = %d after rejected discards, want 0", buf.Len())
	}
}

func TestDiscarder_StartStop(t *testing.T) {
	d := &fakeDialer{}
	conn := newTestManager(d)
	disc := NewDiscarder(conn, NewBuffer(), 5*time.Millisecond, &mockLogger{}, nil)

	disc.Start(context.Background())
	_ = disc.Discard(domain.Text("periodic"))

	if !waitFor(time.Second, func() bool { return len(d.sent()) == 1 }) {
		t.Fatalf("sent %d digests, want 1", len(d.sent()))
	}

	disc.Stop()
	_ = disc.Discard(domain.Text("after stop"))
	time.Sleep(30 * time.Millisecond)

	if got := len(d.sent()); got != 1 {
		t.Errorf("sent %d digests after Stop, want 1", got)
	}
}
