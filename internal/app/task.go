package app

import (
	"context"
	"sync"
	"time"

	"github.com/atdevs/atrng/pkg/log"
)

// TickFunc is the body of a periodic task.
type TickFunc func(ctx context.Context)

// TaskOption configures a Task.
type TaskOption func(*Task)

// WithImmediateTick makes Start run the first tick right away instead of
// one period later. A restart caused by SetPeriod still waits a period.
func WithImmediateTick() TaskOption {
	return func(t *Task) {
		t.immediate = true
	}
}

// Task runs a TickFunc on a fixed period in its own goroutine.
// By default the first tick fires one period after Start. Ticks never overlap.
type Task struct {
	name      string
	tick      TickFunc
	logger    log.Logger
	immediate bool

	// ctl serializes Start, Stop and SetPeriod as whole operations.
	ctl sync.Mutex

	mu     sync.Mutex
	period time.Duration
	parent context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTask creates a stopped task. period must be positive.
func NewTask(name string, period time.Duration, tick TickFunc, logger log.Logger, opts ...TaskOption) *Task {
	t := &Task{
		name:   name,
		period: period,
		tick:   tick,
		logger: logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the task name.
func (t *Task) Name() string {
	return t.name
}

// Start launches the task. Returns false if it is already running.
// The task stops when ctx is cancelled or Stop is called; after either,
// Start may be called again.
func (t *Task) Start(ctx context.Context) bool {
	t.ctl.Lock()
	defer t.ctl.Unlock()
	return t.start(ctx, t.immediate)
}

func (t *Task) start(ctx context.Context, immediate bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done != nil {
		return false
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.parent = ctx
	t.cancel = cancel
	t.done = done

	go t.loop(runCtx, t.period, immediate, done)
	return true
}

// Stop cancels the task and waits for its goroutine to exit. A tick
// already in progress finishes first; no tick runs after Stop returns.
// Returns false if the task was not running.
// Stop must not be called from inside the task's own tick.
func (t *Task) Stop() bool {
	t.ctl.Lock()
	defer t.ctl.Unlock()
	return t.stop()
}

func (t *Task) stop() bool {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return false
	}
	cancel()
	<-done
	return true
}

// Running reports whether the task loop is active.
func (t *Task) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done != nil
}

// Period returns the tick period.
func (t *Task) Period() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.period
}

// SetPeriod changes the tick period. A running task is restarted so the
// next tick fires one new period from now. Non-positive values are ignored.
func (t *Task) SetPeriod(period time.Duration) {
	if period <= 0 {
		return
	}

	t.ctl.Lock()
	defer t.ctl.Unlock()

	t.mu.Lock()
	if t.period == period {
		t.mu.Unlock()
		return
	}
	t.period = period
	parent := t.parent
	t.mu.Unlock()

	if t.stop() {
		t.start(parent, false)
	}
}

// Tick runs one tick synchronously in the caller's goroutine.
// A panic in the tick is logged and swallowed.
func (t *Task) Tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("tick panicked",
				log.String("task", t.name),
				log.Any("panic", r),
			)
		}
	}()
	t.tick(ctx)
}

func (t *Task) loop(ctx context.Context, period time.Duration, immediate bool, done chan struct{}) {
	defer close(done)
	defer t.release(done)

	if immediate && ctx.Err() == nil {
		t.Tick(ctx)
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// cancellation wins a race with the ticker
			if ctx.Err() != nil {
				return
			}
			t.Tick(ctx)
		}
	}
}

// release clears the handle when the loop exits on its own, which happens
// when the parent context is cancelled.
func (t *Task) release(done chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done != done {
		return
	}
	t.cancel()
	t.cancel, t.done = nil, nil
}
