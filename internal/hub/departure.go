package hub

import (
	"context"
	"log/slog"

	"ctchen222/roomserver/internal/events"
	"ctchen222/roomserver/internal/player"
	"ctchen222/roomserver/pkg/proto"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func (h *Hub) handleLeave(ctx context.Context, roomID, userID uuid.UUID, handle player.Handle) {
	ctx, span := tracer.Start(ctx, "hub.handleLeave", trace.WithAttributes(
		attribute.String("player.id", userID.String()),
		attribute.String("room.id", roomID.String()),
		attribute.Bool("leave.disconnect", handle != nil),
	))
	defer span.End()

	r, ok := h.rooms[roomID]
	if !ok || !r.Contains(userID) {
		slog.DebugContext(ctx, "Leave ignored, player not in room", "room.id", roomID, "player.id", userID)
		return
	}
	if handle != nil {
		if bound, ok := r.Handles[userID]; ok && bound != handle {
			slog.InfoContext(ctx, "Disconnect ignored, player re-attached with a newer connection", "room.id", roomID, "player.id", userID)
			span.SetAttributes(attribute.Bool("leave.stale", true))
			return
		}
	}

	r.RemovePlayer(userID)
	delete(h.userRooms, userID)
	slog.InfoContext(ctx, "Player left room", "room.id", roomID, "player.id", userID, "players.count", len(r.Players))
	h.publish(ctx, events.TypePlayerLeft, events.PlayerLeftPayload{
		RoomID:    roomID.String(),
		PlayerID:  userID.String(),
		Remaining: len(r.Players),
	})

	if r.IsEmpty() {
		delete(h.rooms, roomID)
		h.metrics.roomsActive.Add(ctx, -1)
		h.publish(ctx, events.TypeRoomClosed, events.RoomClosedPayload{RoomID: roomID.String()})
		slog.InfoContext(ctx, "Room closed due to no players", "room.id", roomID)
		return
	}

	// Seats shift on departure, so the old game cannot continue.
	r.ResetGame()
	h.broadcast(ctx, r, &proto.ServerToClientMessage{
		Type:     proto.NoticePlayerLeft,
		RoomID:   roomID.String(),
		UserID:   userID.String(),
		Snapshot: r.Snapshot(),
	}, uuid.Nil)
}
