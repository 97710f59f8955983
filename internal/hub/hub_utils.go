package hub

import (
	"context"
	"fmt"
	"log/slog"

	"ctchen222/roomserver/internal/events"
	"ctchen222/roomserver/internal/room"
	"ctchen222/roomserver/pkg/proto"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// deliver pushes msg to one participant. A failing handle is unbound so the
// hub never retries it; the player stays seated until its session leaves or
// rejoins.
func (h *Hub) deliver(ctx context.Context, r *room.Room, userID uuid.UUID, msg *proto.ServerToClientMessage) {
	handle, ok := r.Handles[userID]
	if !ok {
		return
	}
	if err := handle.Deliver(msg); err != nil {
		h.metrics.deliveryFailures.Add(ctx, 1)
		slog.WarnContext(ctx, "Dropping handle after failed delivery", "room.id", r.ID, "player.id", userID, "message.type", msg.Type, "error", err)
		trace.SpanFromContext(ctx).RecordError(err)
		delete(r.Handles, userID)
	}
}

// broadcast sends msg to every participant in seat order, skipping except.
func (h *Hub) broadcast(ctx context.Context, r *room.Room, msg *proto.ServerToClientMessage, except uuid.UUID) {
	for _, id := range r.Players {
		if id == except {
			continue
		}
		h.deliver(ctx, r, id, msg)
	}
}

func (h *Hub) publish(ctx context.Context, eventType string, payload any) {
	event, err := events.New(eventType, payload)
	if err != nil {
		slog.ErrorContext(ctx, "Could not build event", "event.type", eventType, "error", err)
		return
	}
	if err := h.publisher.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "Could not publish event", "event.type", eventType, "error", err)
	}
}

// verify runs after every request. It checks what the request touched: the
// acting user's index entry against room membership, and the room itself if
// it is still registered.
func (h *Hub) verify(ctx context.Context, userID, roomID uuid.UUID) {
	if err := h.checkTouched(userID, roomID); err != nil {
		h.metrics.invariantViolations.Add(ctx, 1)
		slog.ErrorContext(ctx, "Registry invariant violated", "room.id", roomID, "player.id", userID, "error", err)
		trace.SpanFromContext(ctx).RecordError(err)
	}
}

func (h *Hub) checkTouched(userID, roomID uuid.UUID) error {
	if indexed, ok := h.userRooms[userID]; ok {
		r, exists := h.rooms[indexed]
		if !exists {
			return fmt.Errorf("player %s indexed to missing room %s", userID, indexed)
		}
		if !r.Contains(userID) {
			return fmt.Errorf("player %s indexed to room %s but not seated", userID, indexed)
		}
	}
	if r, ok := h.rooms[roomID]; ok {
		if r.Contains(userID) && h.userRooms[userID] != roomID {
			return fmt.Errorf("player %s seated in room %s but indexed to %s", userID, roomID, h.userRooms[userID])
		}
		return h.checkRoom(r)
	}
	return nil
}

func (h *Hub) checkRoom(r *room.Room) error {
	if len(r.Players) > room.Capacity {
		return fmt.Errorf("room %s seats %d players", r.ID, len(r.Players))
	}
	if r.IsEmpty() {
		return fmt.Errorf("room %s is empty but registered", r.ID)
	}
	for _, id := range r.Players {
		if h.userRooms[id] != r.ID {
			return fmt.Errorf("player %s in room %s is indexed to %s", id, r.ID, h.userRooms[id])
		}
	}
	return nil
}

// checkInvariants validates the whole registry in both directions.
func (h *Hub) checkInvariants() error {
	for id, r := range h.rooms {
		if id != r.ID {
			return fmt.Errorf("room %s stored under %s", r.ID, id)
		}
		if err := h.checkRoom(r); err != nil {
			return err
		}
	}
	for userID, roomID := range h.userRooms {
		r, ok := h.rooms[roomID]
		if !ok {
			return fmt.Errorf("player %s indexed to missing room %s", userID, roomID)
		}
		if !r.Contains(userID) {
			return fmt.Errorf("player %s indexed to room %s but not seated", userID, roomID)
		}
	}
	return nil
}
