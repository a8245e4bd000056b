package atrng

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type orderRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *orderRecorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, s)
}

func (r *orderRecorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.calls...)
}

type testPlugin struct {
	name    string
	rec     *orderRecorder
	initErr error
	cfg     PluginConfig
}

func (p *testPlugin) Name() string { return p.name }

func (p *testPlugin) Initialize(ctx context.Context, cfg PluginConfig) error {
	p.rec.add("init:" + p.name)
	p.cfg = cfg
	return p.initErr
}

func (p *testPlugin) Shutdown(ctx context.Context) error {
	p.rec.add("shutdown:" + p.name)
	return nil
}

func TestClient_PluginOrder(t *testing.T) {
	rec := &orderRecorder{}
	a := &testPlugin{name: "a", rec: rec}
	b := &testPlugin{name: "b", rec: rec}

	c, _ := newTestClient(t, Config{}, WithPlugin(a), WithPlugin(b))

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := c.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	want := []string{"init:a", "init:b", "shutdown:b", "shutdown:a"}
	got := rec.get()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %s, want %s", i, got[i], want[i])
		}
	}

	if a.cfg.Intervals == nil || a.cfg.Logger == nil {
		t.Fatal("plugin config missing Intervals or Logger")
	}
	a.cfg.Intervals.SetIntervals(time.Minute, 2*time.Minute)
	if k, d := c.Intervals(); k != time.Minute || d != 2*time.Minute {
		t.Errorf("Intervals() = %v/%v, want 1m/2m", k, d)
	}
}

func TestClient_PluginInitFailure(t *testing.T) {
	rec := &orderRecorder{}
	boom := errors.New("boom")
	c, dialer := newTestClient(t, Config{}, WithPlugin(&testPlugin{name: "bad", rec: rec, initErr: boom}))

	err := c.Start(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Start() error = %v, want boom", err)
	}
	if c.Status() != StateCrashed {
		t.Errorf("Status() = %v, want Crashed", c.Status())
	}
	if dialer.calls.Load() != 0 {
		t.Error("client dialed despite plugin failure")
	}

	// a crashed client can be started again
	c.plugins = nil
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("restart error = %v", err)
	}
	_ = c.Stop()
}
