package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"ctchen222/roomserver/internal/apperror"
	"ctchen222/roomserver/internal/validator"
	"ctchen222/roomserver/pkg/proto"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	invalidJSONText = "invalid json command"
	internalText    = "internal server error"
)

// command is a decoded client message. roomID is always set for move and
// leave; for join it is nil when the client asked for a fresh room.
type command struct {
	kind     string
	roomID   *uuid.UUID
	position int
}

func decodeCommand(data []byte) (command, error) {
	var msg proto.ClientToServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return command{}, fmt.Errorf("%w: %v", apperror.ErrMalformedCommand, err)
	}
	if err := validator.Check(msg); err != nil {
		return command{}, fmt.Errorf("%w: %v", apperror.ErrMalformedCommand, err)
	}

	cmd := command{kind: msg.Type}
	if msg.Type != proto.CommandJoin && msg.RoomID == nil {
		return command{}, fmt.Errorf("%w: %s requires room_id", apperror.ErrMalformedCommand, msg.Type)
	}
	if msg.RoomID != nil {
		id, err := uuid.Parse(*msg.RoomID)
		if err != nil {
			return command{}, fmt.Errorf("%w: %q", apperror.ErrInvalidRoomID, *msg.RoomID)
		}
		cmd.roomID = &id
	}
	if msg.Type == proto.CommandMove {
		if msg.Position == nil {
			return command{}, fmt.Errorf("%w: move requires position", apperror.ErrMalformedCommand)
		}
		cmd.position = *msg.Position
	}
	return cmd, nil
}

// clientMessage renders err for the error notice. Internal failures are
// not described to the client.
func clientMessage(err error) string {
	switch {
	case errors.Is(err, apperror.ErrInvalidRoomID):
		return apperror.ErrInvalidRoomID.Error()
	case errors.Is(err, apperror.ErrMessageTooLarge):
		return apperror.ErrMessageTooLarge.Error()
	case errors.Is(err, apperror.ErrMalformedCommand):
		return invalidJSONText
	case errors.Is(err, apperror.ErrRoomNotFound),
		errors.Is(err, apperror.ErrRoomFull),
		errors.Is(err, apperror.ErrNotInRoom),
		errors.Is(err, apperror.ErrNoAssignedMark),
		errors.Is(err, apperror.ErrIllegalMove):
		return err.Error()
	}
	return internalText
}

// commandLoop hands commands to the registry strictly one at a time.
func (s *Session) commandLoop(ctx context.Context) {
	for {
		select {
		case <-s.done:
			return
		case cmd := <-s.commands:
			s.handleCommand(ctx, cmd)
		}
	}
}

func (s *Session) handleCommand(ctx context.Context, cmd command) {
	ctx, span := tracer.Start(ctx, "session.handleCommand", trace.WithAttributes(
		attribute.String("player.id", s.userID.String()),
		attribute.String("command.type", cmd.kind),
	))
	defer span.End()
	if cmd.roomID != nil {
		span.SetAttributes(attribute.String("room.id", cmd.roomID.String()))
	}

	var err error
	switch cmd.kind {
	case proto.CommandJoin:
		var roomID uuid.UUID
		roomID, err = s.registry.Join(ctx, cmd.roomID, s.userID, s)
		if err == nil {
			s.roomID = &roomID
		}

	case proto.CommandMove:
		span.SetAttributes(attribute.Int("move.position", cmd.position))
		err = s.registry.Move(ctx, *cmd.roomID, s.userID, cmd.position)

	case proto.CommandLeave:
		s.registry.Leave(ctx, *cmd.roomID, s.userID)
		if s.roomID != nil && *s.roomID == *cmd.roomID {
			s.roomID = nil
		}
		s.reply(ctx, &proto.ServerToClientMessage{Type: proto.NoticeLeft, RoomID: cmd.roomID.String()})
	}

	if err != nil {
		slog.InfoContext(ctx, "Command failed", "player.id", s.userID, "command.type", cmd.kind, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Command failed")
		s.reply(ctx, proto.ErrorMessage(clientMessage(err)))
	}
}
