package atrng

import (
	"time"

	"github.com/atdevs/atrng/internal/app"
)

// EventHandler receives client notifications. Methods are called
// synchronously from the goroutine doing the work and should return quickly.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnSendSuccess(event SendSuccessEvent)
	OnSendError(event SendErrorEvent)
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to handle
// only some events.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent) {}
func (BaseEventHandler) OnSendSuccess(SendSuccessEvent) {}
func (BaseEventHandler) OnSendError(SendErrorEvent)     {}

// StateChangeEvent describes a lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// SendSuccessEvent describes a message handed to the connection.
type SendSuccessEvent struct {
	Kind      string
	BytesSent int
	Duration  time.Duration
}

// SendErrorEvent describes a message that could not be sent.
type SendErrorEvent struct {
	Kind  string
	Error error
	Bytes int
}

// eventEmitterWrapper adapts EventHandler to the internal emitter interfaces.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: previous,
		Current:  current,
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnSendSuccess(kind string, bytes int, duration time.Duration) {
	if e.handler == nil {
		return
	}
	e.handler.OnSendSuccess(SendSuccessEvent{
		Kind:      kind,
		BytesSent: bytes,
		Duration:  duration,
	})
}

func (e *eventEmitterWrapper) OnSendError(kind string, err error, bytes int) {
	if e.handler == nil {
		return
	}
	e.handler.OnSendError(SendErrorEvent{
		Kind:  kind,
		Error: err,
		Bytes: bytes,
	})
}
