package socketio

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/atdevs/atrng/internal/domain"
	"github.com/atdevs/atrng/pkg/log"
)

const closeGracePeriod = time.Second

// Channel is a joined Socket.IO namespace on one WebSocket connection.
type Channel struct {
	conn      *websocket.Conn
	namespace string
	heartbeat time.Duration
	logger    log.Logger

	// gorilla allows one concurrent writer
	writeMu sync.Mutex

	alive     atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
}

func newChannel(conn *websocket.Conn, namespace string, open openPacket, logger log.Logger) *Channel {
	c := &Channel{
		conn:      conn,
		namespace: namespace,
		heartbeat: open.heartbeatWindow(),
		logger:    logger,
		done:      make(chan struct{}),
	}
	c.alive.Store(true)
	go c.readLoop()
	return c
}

// Emit sends payload as a binary event: a text header frame followed by
// one binary attachment frame. No acknowledgment is requested.
func (c *Channel) Emit(event string, payload []byte) error {
	if !c.Connected() {
		return domain.ErrNotConnected
	}

	header, err := binaryEventHeader(c.namespace, event)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.WriteMessage(websocket.TextMessage, header); err != nil {
		c.markDead(err)
		return fmt.Errorf("write event header: %w", err)
	}
	if err := c.conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
		c.markDead(err)
		return fmt.Errorf("write attachment: %w", err)
	}
	return nil
}

// Connected reports whether the channel can still emit.
func (c *Channel) Connected() bool {
	return c.alive.Load()
}

// Done is closed once the read loop has exited.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Close leaves the namespace and closes the WebSocket.
func (c *Channel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if c.alive.Swap(false) {
			c.writeMu.Lock()
			_ = c.conn.WriteMessage(websocket.TextMessage, []byte{eioMessage, sioDisconnect})
			c.writeMu.Unlock()
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(closeGracePeriod))
		}
		err = c.conn.Close()
	})
	return err
}

// readLoop answers pings and watches for the server going away.
func (c *Channel) readLoop() {
	defer close(c.done)

	for {
		if c.heartbeat > 0 {
			_ = c.conn.SetReadDeadline(time.Now().Add(c.heartbeat))
		}

		typ, msg, err := c.conn.ReadMessage()
		if err != nil {
			c.markDead(err)
			return
		}
		if typ != websocket.TextMessage || len(msg) == 0 {
			continue
		}

		switch msg[0] {
		case eioPing:
			c.writeMu.Lock()
			err := c.conn.WriteMessage(websocket.TextMessage, []byte{eioPong})
			c.writeMu.Unlock()
			if err != nil {
				c.markDead(err)
				return
			}
		case eioClose:
			c.markDead(fmt.Errorf("server sent close"))
			return
		case eioMessage:
			if len(msg) >= 2 && msg[1] == sioDisconnect {
				c.markDead(fmt.Errorf("server left namespace"))
				return
			}
		}
	}
}

func (c *Channel) markDead(reason error) {
	if c.alive.Swap(false) {
		c.logger.Warn("connection lost", log.Err(reason))
	}
	_ = c.conn.Close()
}
