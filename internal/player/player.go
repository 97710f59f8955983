package player

import (
	"time"

	"ctchen222/roomserver/pkg/proto"
)

// Connection is an interface that abstracts the websocket connection.
// *websocket.Conn satisfies it.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	SetWriteDeadline(t time.Time) error
	SetPingHandler(h func(appData string) error)
	SetPongHandler(h func(appData string) error)
	SetReadLimit(limit int64)
	Close() error
}

// Handle is the outbound side of a connected player as seen by the hub.
// Deliver must never block: a full or closed handle returns an error
// wrapping apperror.ErrDeliveryFailure.
type Handle interface {
	Deliver(msg *proto.ServerToClientMessage) error
}
