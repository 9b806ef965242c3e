package sharedbws

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Socket wraps a *websocket.Conn so it satisfies sharedb.Socket.
// Writes are serialized with a mutex (gorilla's Conn forbids
// concurrent writers); reads happen only from the connection's own
// read-loop goroutine, so ReadMessage needs no locking of its own.
type Socket struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// Dial opens a WebSocket connection to url and wraps it as a Socket.
// handshakeTimeout bounds the initial upgrade request; zero uses the
// gorilla default dialer's timeout.
func Dial(url string, handshakeTimeout time.Duration) (*Socket, error) {
	dialer := websocket.DefaultDialer
	if handshakeTimeout > 0 {
		d := *websocket.DefaultDialer
		d.HandshakeTimeout = handshakeTimeout
		dialer = &d
	}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("sharedbws: dial %s: %w", url, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Socket{conn: conn, ctx: ctx, cancel: cancel}, nil
}

// WriteMessage sends raw as a single text frame.
func (s *Socket) WriteMessage(raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.ctx.Done():
		return fmt.Errorf("sharedbws: write after close")
	default:
	}
	return s.conn.WriteMessage(websocket.TextMessage, raw)
}

// ReadMessage blocks for the next text frame. Callers must only call
// this from one goroutine (the connection's read loop), matching
// gorilla/websocket's single-reader requirement.
func (s *Socket) ReadMessage() ([]byte, error) {
	_, raw, err := s.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("sharedbws: read: %w", err)
	}
	return raw, nil
}

// Close cancels the socket's context and closes the underlying
// connection after sending a close control frame.
func (s *Socket) Close() error {
	s.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	deadline := time.Now().Add(time.Second)
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return s.conn.Close()
}
