package app

import (
	"sync"
	"time"

	"github.com/atdevs/atrng/internal/domain"
	"github.com/atdevs/atrng/pkg/log"
)

// ShutdownTimeout is the maximum time to wait for the schedulers to stop.
const ShutdownTimeout = 30 * time.Second

// State represents the lifecycle state of the client.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// EventEmitter is called when lifecycle state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// Lifecycle manages the client state machine and tracks shutdown workers.
type Lifecycle struct {
	mu           sync.RWMutex
	state        State
	wg           sync.WaitGroup
	logger       log.Logger
	eventEmitter EventEmitter
}

// NewLifecycle creates a new lifecycle manager in StateStopped.
func NewLifecycle(logger log.Logger, emitter EventEmitter) *Lifecycle {
	return &Lifecycle{
		state:        StateStopped,
		logger:       logger,
		eventEmitter: emitter,
	}
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TransitionTo attempts to transition to a new state.
// Returns an error if the transition is not valid.
func (l *Lifecycle) TransitionTo(newState State, reason string) error {
	l.mu.Lock()
	oldState := l.state

	if err := validTransition(oldState, newState); err != nil {
		l.mu.Unlock()
		return err
	}

	l.state = newState
	l.mu.Unlock()

	// Emit event outside of lock
	if l.eventEmitter != nil {
		l.eventEmitter.OnStateChange(oldState, newState, reason)
	}

	l.logger.Info("state transition",
		log.String("from", oldState.String()),
		log.String("to", newState.String()),
		log.String("reason", reason),
	)

	return nil
}

func validTransition(from, to State) error {
	switch from {
	case StateStopped, StateCrashed:
		if to != StateStarting {
			return domain.ErrNotRunning
		}
	case StateStarting:
		// Stopping covers Stop() racing a slow Start()
		if to != StateRunning && to != StateStopping && to != StateCrashed {
			return domain.ErrAlreadyRunning
		}
	case StateRunning:
		if to != StateStopping && to != StateCrashed {
			return domain.ErrAlreadyRunning
		}
	case StateStopping:
		if to != StateStopped && to != StateCrashed {
			return domain.ErrAlreadyRunning
		}
	}
	return nil
}

// CanStart returns true if Start() can be called.
func (l *Lifecycle) CanStart() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateStopped || l.state == StateCrashed
}

// CanStop returns true if Stop() can be called.
func (l *Lifecycle) CanStop() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateRunning || l.state == StateStarting
}

// AddWorker increments the worker count.
func (l *Lifecycle) AddWorker() {
	l.wg.Add(1)
}

// WorkerDone decrements the worker count.
func (l *Lifecycle) WorkerDone() {
	l.wg.Done()
}

// WaitWithTimeout waits for all workers to finish with a timeout.
// Returns ErrShutdownTimeout if the timeout expires.
func (l *Lifecycle) WaitWithTimeout(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		l.logger.Warn("shutdown timeout, schedulers still running",
			log.Duration("timeout", timeout),
		)
		return domain.ErrShutdownTimeout
	}
}
