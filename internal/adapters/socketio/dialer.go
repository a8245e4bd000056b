// Package socketio implements ports.Dialer as a minimal Socket.IO v4 client
// over WebSocket. Only what the collection endpoint needs is supported:
// joining a namespace, answering heartbeats and emitting binary events.
package socketio

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/atdevs/atrng/internal/domain"
	"github.com/atdevs/atrng/internal/ports"
	"github.com/atdevs/atrng/pkg/log"
)

const defaultHandshakeTimeout = 10 * time.Second

// Dialer opens Socket.IO channels.
type Dialer struct {
	ws        *websocket.Dialer
	namespace string
	logger    log.Logger
}

// Option configures a Dialer.
type Option func(*Dialer)

// WithNamespace joins namespace instead of the default "/".
func WithNamespace(namespace string) Option {
	return func(d *Dialer) {
		d.namespace = namespace
	}
}

// WithWebsocketDialer replaces the underlying gorilla dialer.
func WithWebsocketDialer(ws *websocket.Dialer) Option {
	return func(d *Dialer) {
		d.ws = ws
	}
}

// NewDialer creates a Dialer.
func NewDialer(logger log.Logger, opts ...Option) *Dialer {
	d := &Dialer{
		ws: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: defaultHandshakeTimeout,
		},
		namespace: "/",
		logger:    logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dial connects to endpoint, completes the Engine.IO and Socket.IO
// handshakes and starts the heartbeat reader.
func (d *Dialer) Dial(ctx context.Context, endpoint string) (ports.Channel, error) {
	target, err := socketURL(endpoint)
	if err != nil {
		return nil, err
	}

	conn, resp, err := d.ws.DialContext(ctx, target, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", target, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}

	// Abort a stuck handshake when ctx ends.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	open, err := d.handshake(ctx, conn)
	if !stop() {
		// ctx fired and closed the conn
		if err == nil {
			err = ctx.Err()
		}
	}
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	d.logger.Debug("socket.io handshake complete",
		log.String("sid", open.SID),
		log.Int("ping_interval_ms", open.PingInterval),
		log.Int("ping_timeout_ms", open.PingTimeout),
	)

	return newChannel(conn, d.namespace, open, d.logger), nil
}

func (d *Dialer) handshake(ctx context.Context, conn *websocket.Conn) (openPacket, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	}

	_, msg, err := conn.ReadMessage()
	if err != nil {
		return openPacket{}, fmt.Errorf("%w: read open packet: %v", domain.ErrHandshake, err)
	}
	open, err := parseOpen(msg)
	if err != nil {
		return openPacket{}, fmt.Errorf("%w: %v", domain.ErrHandshake, err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, connectPacket(d.namespace)); err != nil {
		return openPacket{}, fmt.Errorf("%w: send connect: %v", domain.ErrHandshake, err)
	}

	for {
		typ, msg, err := conn.ReadMessage()
		if err != nil {
			return openPacket{}, fmt.Errorf("%w: await connect ack: %v", domain.ErrHandshake, err)
		}
		if typ != websocket.TextMessage || len(msg) == 0 {
			continue
		}

		switch {
		case msg[0] == eioPing:
			if err := conn.WriteMessage(websocket.TextMessage, []byte{eioPong}); err != nil {
				return openPacket{}, fmt.Errorf("%w: pong: %v", domain.ErrHandshake, err)
			}
		case msg[0] == eioClose:
			return openPacket{}, fmt.Errorf("%w: server closed during connect", domain.ErrHandshake)
		case len(msg) >= 2 && msg[0] == eioMessage && msg[1] == sioConnect:
			_ = conn.SetReadDeadline(time.Time{})
			return open, nil
		case len(msg) >= 2 && msg[0] == eioMessage && msg[1] == sioConnectError:
			return openPacket{}, fmt.Errorf("%w: connect rejected: %s", domain.ErrHandshake, truncate(msg[2:]))
		}
	}
}
