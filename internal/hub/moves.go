package hub

import (
	"context"
	"log/slog"
	"time"

	"ctchen222/roomserver/internal/apperror"
	"ctchen222/roomserver/internal/events"
	"ctchen222/roomserver/internal/game"
	"ctchen222/roomserver/internal/room"
	"ctchen222/roomserver/pkg/proto"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func (h *Hub) handleMove(ctx context.Context, roomID, userID uuid.UUID, cell int) error {
	ctx, span := tracer.Start(ctx, "hub.handleMove", trace.WithAttributes(
		attribute.String("player.id", userID.String()),
		attribute.String("room.id", roomID.String()),
		attribute.Int("move.position", cell),
	))
	defer span.End()

	err := h.applyMove(ctx, roomID, userID, cell)
	if err != nil {
		h.metrics.movesRejected.Add(ctx, 1)
		slog.WarnContext(ctx, "Move rejected", "room.id", roomID, "player.id", userID, "move.position", cell, "error", err)
		span.SetAttributes(attribute.Bool("move.valid", false))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Move rejected")
		return err
	}
	span.SetAttributes(attribute.Bool("move.valid", true))
	return nil
}

func (h *Hub) applyMove(ctx context.Context, roomID, userID uuid.UUID, cell int) error {
	r, ok := h.rooms[roomID]
	if !ok {
		return apperror.ErrRoomNotFound
	}
	if !r.Contains(userID) {
		return apperror.ErrNotInRoom
	}
	mark := r.MarkFor(userID)
	if mark == game.None {
		return apperror.ErrNoAssignedMark
	}
	if r.Game == nil {
		return game.ErrNotStarted
	}
	if err := r.Game.ApplyMove(cell, mark); err != nil {
		return err
	}
	h.metrics.movesApplied.Add(ctx, 1)

	snapshot := r.Snapshot()
	snapshot.LastMove = &proto.Move{
		PlayerID: userID.String(),
		Mark:     mark,
		Position: cell,
	}
	h.broadcast(ctx, r, &proto.ServerToClientMessage{
		Type:     proto.NoticePlayerMoved,
		RoomID:   r.ID.String(),
		Snapshot: snapshot,
	}, uuid.Nil)

	if r.Game.IsOver() {
		h.publishGameFinished(ctx, r)
	}
	return nil
}

func (h *Hub) publishGameFinished(ctx context.Context, r *room.Room) {
	board := make([]string, len(r.Game.Board))
	for i, m := range r.Game.Board {
		board[i] = string(m)
	}
	slog.InfoContext(ctx, "Game finished", "room.id", r.ID, "game.status", r.Game.Status, "game.winner", r.Game.Winner)
	h.publish(ctx, events.TypeGameFinished, events.GameFinishedPayload{
		RoomID:     r.ID.String(),
		PlayerXID:  r.Players[0].String(),
		PlayerOID:  r.Players[1].String(),
		Status:     string(r.Game.Status),
		Winner:     string(r.Game.Winner),
		Board:      board,
		Moves:      r.Game.Moves,
		FinishedAt: time.Now().UTC(),
	})
}
