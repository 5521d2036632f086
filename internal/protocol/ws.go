package protocol

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// WSTransport frames messages as websocket text messages, one frame per
// message. The server wraps each accepted connection in its own transport;
// the client dials one connection per session.
type WSTransport struct {
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
}

// NewWSTransport wraps an established websocket connection.
func NewWSTransport(conn *websocket.Conn) *WSTransport {
	return &WSTransport{conn: conn}
}

// DialWS connects to a websocket server endpoint, e.g. "ws://localhost:3001/mcp".
func DialWS(url string) (*WSTransport, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return NewWSTransport(conn), nil
}

func (t *WSTransport) Send(frame []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrTransportClosed
	}
	if err := t.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

func (t *WSTransport) Receive() ([]byte, error) {
	for {
		kind, frame, err := t.conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransportClosed, err)
		}
		if kind != websocket.TextMessage || len(frame) == 0 {
			continue
		}
		return frame, nil
	}
}

func (t *WSTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	return t.conn.Close()
}
