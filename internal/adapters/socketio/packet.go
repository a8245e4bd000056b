package socketio

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// Engine.IO v4 packet types, the first byte of every text frame.
const (
	eioOpen    = '0'
	eioClose   = '1'
	eioPing    = '2'
	eioPong    = '3'
	eioMessage = '4'
)

// Socket.IO v5 packet types, the byte following eioMessage.
const (
	sioConnect      = '0'
	sioDisconnect   = '1'
	sioConnectError = '4'
	sioBinaryEvent  = '5'
)

// openPacket is the payload of the Engine.IO open packet.
type openPacket struct {
	SID          string `json:"sid"`
	PingInterval int    `json:"pingInterval"`
	PingTimeout  int    `json:"pingTimeout"`
	MaxPayload   int    `json:"maxPayload"`
}

func (o openPacket) heartbeatWindow() time.Duration {
	return time.Duration(o.PingInterval+o.PingTimeout) * time.Millisecond
}

func parseOpen(msg []byte) (openPacket, error) {
	var o openPacket
	if len(msg) == 0 || msg[0] != eioOpen {
		return o, fmt.Errorf("expected open packet, got %q", truncate(msg))
	}
	if err := json.Unmarshal(msg[1:], &o); err != nil {
		return o, fmt.Errorf("decode open packet: %w", err)
	}
	if o.SID == "" {
		return o, fmt.Errorf("open packet without sid")
	}
	return o, nil
}

// connectPacket asks to join namespace.
func connectPacket(namespace string) []byte {
	if namespace == "" || namespace == "/" {
		return []byte{eioMessage, sioConnect}
	}
	return []byte(string([]byte{eioMessage, sioConnect}) + namespace + ",")
}

type placeholder struct {
	Placeholder bool `json:"_placeholder"`
	Num         int  `json:"num"`
}

// binaryEventHeader encodes the text half of a binary event carrying one
// attachment, e.g. 451-["message",{"_placeholder":true,"num":0}].
// The attachment follows as a separate binary frame.
func binaryEventHeader(namespace, event string) ([]byte, error) {
	args, err := json.Marshal([]interface{}{event, placeholder{Placeholder: true, Num: 0}})
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", event, err)
	}

	header := []byte{eioMessage, sioBinaryEvent, '1', '-'}
	if namespace != "" && namespace != "/" {
		header = append(header, namespace...)
		header = append(header, ',')
	}
	return append(header, args...), nil
}

// socketURL maps a collection endpoint to its Engine.IO WebSocket URL.
func socketURL(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}

	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported endpoint scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("endpoint %q has no host", endpoint)
	}

	if u.Path == "" || u.Path == "/" {
		u.Path = "/socket.io/"
	}
	q := u.Query()
	q.Set("EIO", "4")
	q.Set("transport", "websocket")
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func truncate(b []byte) []byte {
	const max = 64
	if len(b) > max {
		return b[:max]
	}
	return b
}
