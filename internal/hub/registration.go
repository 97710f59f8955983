package hub

import (
	"context"
	"log/slog"

	"ctchen222/roomserver/internal/apperror"
	"ctchen222/roomserver/internal/events"
	"ctchen222/roomserver/internal/player"
	"ctchen222/roomserver/internal/room"
	"ctchen222/roomserver/pkg/proto"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func (h *Hub) handleJoin(ctx context.Context, requested *uuid.UUID, userID uuid.UUID, handle player.Handle) (uuid.UUID, error) {
	ctx, span := tracer.Start(ctx, "hub.handleJoin", trace.WithAttributes(
		attribute.String("player.id", userID.String()),
		attribute.Bool("room.requested", requested != nil),
	))
	defer span.End()

	if roomID, ok := h.handleReconnection(ctx, userID, handle); ok {
		span.SetAttributes(attribute.String("room.id", roomID.String()), attribute.Bool("player.rejoined", true))
		return roomID, nil
	}

	var r *room.Room
	if requested != nil {
		existing, ok := h.rooms[*requested]
		if !ok {
			span.SetStatus(codes.Error, "Room not found")
			return uuid.Nil, apperror.ErrRoomNotFound
		}
		r = existing
	} else {
		r = room.NewRoom(h.newRoomID())
	}
	span.SetAttributes(attribute.String("room.id", r.ID.String()))

	if r.IsFull() {
		slog.InfoContext(ctx, "Join rejected, room is full", "room.id", r.ID, "player.id", userID)
		span.SetStatus(codes.Error, "Room is full")
		return uuid.Nil, apperror.ErrRoomFull
	}

	if requested == nil {
		h.rooms[r.ID] = r
		h.metrics.roomsActive.Add(ctx, 1)
		h.publish(ctx, events.TypeRoomCreated, events.RoomCreatedPayload{RoomID: r.ID.String()})
		slog.InfoContext(ctx, "Room created", "room.id", r.ID, "player.id", userID)
	}

	r.AddPlayer(userID, handle)
	h.userRooms[userID] = r.ID
	if r.StartGameIfReady() {
		slog.InfoContext(ctx, "Game started", "room.id", r.ID)
	}

	mark := r.MarkFor(userID)
	snapshot := r.Snapshot()
	h.deliver(ctx, r, userID, &proto.ServerToClientMessage{
		Type:     proto.NoticeJoined,
		RoomID:   r.ID.String(),
		UserID:   userID.String(),
		Mark:     mark,
		Snapshot: snapshot,
	})
	h.broadcast(ctx, r, &proto.ServerToClientMessage{
		Type:     proto.NoticePlayerJoined,
		RoomID:   r.ID.String(),
		UserID:   userID.String(),
		Snapshot: snapshot,
	}, userID)

	h.publish(ctx, events.TypePlayerJoined, events.PlayerJoinedPayload{
		RoomID:   r.ID.String(),
		PlayerID: userID.String(),
		Mark:     string(mark),
	})
	slog.InfoContext(ctx, "Player joined room", "room.id", r.ID, "player.id", userID, "player.mark", mark, "players.count", len(r.Players))

	return r.ID, nil
}

// handleReconnection re-attaches an indexed user to its room with a new
// handle. The last handle wins; membership is left untouched.
func (h *Hub) handleReconnection(ctx context.Context, userID uuid.UUID, handle player.Handle) (uuid.UUID, bool) {
	roomID, ok := h.userRooms[userID]
	if !ok {
		return uuid.Nil, false
	}

	ctx, span := tracer.Start(ctx, "hub.handleReconnection", trace.WithAttributes(
		attribute.String("player.id", userID.String()),
		attribute.String("room.id", roomID.String()),
	))
	defer span.End()

	r, ok := h.rooms[roomID]
	if !ok || !r.Contains(userID) {
		slog.ErrorContext(ctx, "User index points at a room the player is not in, dropping entry", "room.id", roomID, "player.id", userID)
		span.SetStatus(codes.Error, "Stale user index entry")
		delete(h.userRooms, userID)
		return uuid.Nil, false
	}

	r.Rebind(userID, handle)
	h.deliver(ctx, r, userID, &proto.ServerToClientMessage{
		Type:     proto.NoticeRejoined,
		RoomID:   r.ID.String(),
		UserID:   userID.String(),
		Mark:     r.MarkFor(userID),
		Snapshot: r.Snapshot(),
	})
	slog.InfoContext(ctx, "Player re-attached to room", "room.id", r.ID, "player.id", userID)

	return r.ID, true
}
