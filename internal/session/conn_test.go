package session

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"ctchen222/roomserver/pkg/proto"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

var errConnClosed = errors.New("use of closed connection")

type frame struct {
	kind int
	data []byte
}

// fakeConn is an in-memory player.Connection. Frames pushed with the send
// helpers are returned by ReadMessage; control frames go through the
// registered handlers the way gorilla does.
type fakeConn struct {
	in     chan frame
	out    chan frame
	closed chan struct{}

	closeOnce sync.Once
	mu        sync.Mutex
	onPing    func(string) error
	onPong    func(string) error
	readLimit int64
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan frame, 16),
		out:    make(chan frame, 256),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	for {
		select {
		case <-c.closed:
			return 0, nil, errConnClosed
		case f := <-c.in:
			c.mu.Lock()
			onPing, onPong := c.onPing, c.onPong
			c.mu.Unlock()
			switch f.kind {
			case websocket.PingMessage:
				if onPing != nil {
					_ = onPing(string(f.data))
				}
				continue
			case websocket.PongMessage:
				if onPong != nil {
					_ = onPong(string(f.data))
				}
				continue
			}
			c.mu.Lock()
			limit := c.readLimit
			c.mu.Unlock()
			if limit > 0 && int64(len(f.data)) > limit {
				_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseMessageTooBig, ""))
				return 0, nil, websocket.ErrReadLimit
			}
			return f.kind, f.data, nil
		}
	}
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	select {
	case <-c.closed:
		return errConnClosed
	case c.out <- frame{kind: messageType, data: data}:
		return nil
	}
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) SetPingHandler(h func(string) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onPing = h
}

func (c *fakeConn) SetPongHandler(h func(string) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onPong = h
}

func (c *fakeConn) SetReadLimit(limit int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readLimit = limit
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) sendText(t *testing.T, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	c.sendRaw(data)
}

func (c *fakeConn) sendRaw(data []byte) {
	c.in <- frame{kind: websocket.TextMessage, data: data}
}

// nextFrame returns the next written frame of the given kind, skipping others.
func (c *fakeConn) nextFrame(t *testing.T, kind int) frame {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case f := <-c.out:
			if f.kind == kind {
				return f
			}
		case <-timeout:
			t.Fatalf("no frame of kind %d written", kind)
		}
	}
}

// nextNotice decodes the next text frame written by the session.
func (c *fakeConn) nextNotice(t *testing.T) *proto.ServerToClientMessage {
	t.Helper()
	f := c.nextFrame(t, websocket.TextMessage)
	var msg proto.ServerToClientMessage
	require.NoError(t, json.Unmarshal(f.data, &msg))
	return &msg
}
