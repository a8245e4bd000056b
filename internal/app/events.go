package app

import "time"

// Message kinds, used in logs and send events.
const (
	KindKeepalive = "keepalive"
	KindDiscard   = "discard"
	KindDirect    = "direct"
)

// SendEventEmitter is called on send success or failure.
type SendEventEmitter interface {
	OnSendSuccess(kind string, bytes int, duration time.Duration)
	OnSendError(kind string, err error, bytes int)
}

// Deliver sends payload through conn and reports the outcome to emitter,
// which may be nil.
func Deliver(conn *ConnectionManager, emitter SendEventEmitter, kind string, payload []byte) error {
	start := time.Now()
	err := conn.Send(payload)
	if emitter == nil {
		return err
	}

	if err != nil {
		emitter.OnSendError(kind, err, len(payload))
	} else {
		emitter.OnSendSuccess(kind, len(payload), time.Since(start))
	}
	return err
}
