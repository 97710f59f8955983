package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"ctchen222/roomserver/internal/apperror"
	"ctchen222/roomserver/pkg/proto"

	"github.com/gorilla/websocket"
)

// readPump decodes inbound frames and queues well-formed commands. Control
// frames are consumed by the connection's ping and pong handlers.
func (s *Session) readPump(ctx context.Context) {
	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			if errors.Is(err, websocket.ErrReadLimit) {
				slog.WarnContext(ctx, "Frame exceeded transport limit", "player.id", s.userID, "limit", s.cfg.MaxMessageSize*frameLimitFactor)
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				slog.WarnContext(ctx, "Unexpected websocket close", "player.id", s.userID, "error", err)
			}
			s.close(err)
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		if int64(len(data)) > s.cfg.MaxMessageSize {
			slog.DebugContext(ctx, "Rejected oversized client message", "player.id", s.userID, "size", len(data))
			s.reply(ctx, proto.ErrorMessage(clientMessage(apperror.ErrMessageTooLarge)))
			continue
		}

		cmd, err := decodeCommand(data)
		if err != nil {
			slog.DebugContext(ctx, "Rejected client message", "player.id", s.userID, "error", err)
			s.reply(ctx, proto.ErrorMessage(clientMessage(err)))
			continue
		}

		select {
		case s.commands <- cmd:
		case <-s.done:
			return
		}
	}
}

// writePump is the only writer on the connection. It also runs the liveness
// check: a peer that has not answered a ping within the timeout is dropped.
func (s *Session) writePump(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return

		case msg := <-s.send:
			data, err := json.Marshal(msg)
			if err != nil {
				slog.ErrorContext(ctx, "Could not marshal notice", "player.id", s.userID, "message.type", msg.Type, "error", err)
				continue
			}
			if err := s.write(websocket.TextMessage, data); err != nil {
				s.close(err)
				return
			}

		case appData := <-s.pongs:
			if err := s.write(websocket.PongMessage, []byte(appData)); err != nil {
				s.close(err)
				return
			}

		case <-ticker.C:
			if idle := s.idle(); idle > s.cfg.LivenessTimeout {
				getMetrics().livenessTimeouts.Add(ctx, 1)
				slog.WarnContext(ctx, "Heartbeat failed, disconnecting", "player.id", s.userID, "idle", idle)
				s.close(apperror.ErrLivenessTimeout)
				return
			}
			if err := s.write(websocket.PingMessage, nil); err != nil {
				s.close(err)
				return
			}
		}
	}
}

func (s *Session) write(messageType int, data []byte) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(messageType, data)
}

// reply delivers a notice produced by the session itself. Failures only
// matter for logging; Deliver already closes a saturated session.
func (s *Session) reply(ctx context.Context, msg *proto.ServerToClientMessage) {
	if err := s.Deliver(msg); err != nil {
		slog.DebugContext(ctx, "Dropped reply", "player.id", s.userID, "message.type", msg.Type, "error", err)
	}
}
