package hub

import (
	"context"
	"log/slog"

	"ctchen222/roomserver/internal/apperror"
	"ctchen222/roomserver/internal/events"
	"ctchen222/roomserver/internal/player"
	"ctchen222/roomserver/internal/room"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
)

const defaultInboxSize = 256

var tracer = otel.Tracer("hub")

// Hub owns every room and the user-to-room index. All mutations are funnelled
// through inbox and applied one at a time by Run, so no locks are taken.
type Hub struct {
	rooms     map[uuid.UUID]*room.Room
	userRooms map[uuid.UUID]uuid.UUID
	inbox     chan request
	done      chan struct{}
	publisher events.Publisher
	metrics   *hubMetrics
	newRoomID func() uuid.UUID
}

// Option configures a Hub.
type Option func(*Hub)

// WithPublisher sets the sink for room lifecycle events. Publish must not block.
func WithPublisher(p events.Publisher) Option {
	return func(h *Hub) {
		if p != nil {
			h.publisher = p
		}
	}
}

// WithInboxSize sets how many requests may queue before callers wait.
func WithInboxSize(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.inbox = make(chan request, n)
		}
	}
}

// NewHub creates a new hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		rooms:     make(map[uuid.UUID]*room.Room),
		userRooms: make(map[uuid.UUID]uuid.UUID),
		inbox:     make(chan request, defaultInboxSize),
		done:      make(chan struct{}),
		publisher: events.Discard,
		metrics:   newHubMetrics(),
		newRoomID: uuid.New,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run processes requests until ctx is cancelled. Each request is handled to
// completion, broadcasts included, before the next one is read.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	slog.InfoContext(ctx, "Hub started")

	for {
		select {
		case <-ctx.Done():
			slog.Info("Hub stopped", "rooms.count", len(h.rooms))
			return
		case req := <-h.inbox:
			req.process(h)
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Join seats userID in roomID, or in a fresh room when roomID is nil. A user
// already indexed to a room is re-attached to it with handle instead.
// Once the request is accepted the call waits for the hub's answer even if
// ctx is cancelled, so the caller always learns where it was seated.
func (h *Hub) Join(ctx context.Context, roomID *uuid.UUID, userID uuid.UUID, handle player.Handle) (uuid.UUID, error) {
	req := &joinRequest{
		ctx:    ctx,
		roomID: roomID,
		userID: userID,
		handle: handle,
		reply:  make(chan joinResult, 1),
	}
	if err := h.enqueue(ctx, req); err != nil {
		return uuid.Nil, err
	}
	select {
	case res := <-req.reply:
		return res.roomID, res.err
	case <-h.done:
		return uuid.Nil, apperror.ErrHubClosed
	}
}

// Move applies a move for userID in roomID and broadcasts the result.
func (h *Hub) Move(ctx context.Context, roomID, userID uuid.UUID, cell int) error {
	req := &moveRequest{
		ctx:    ctx,
		roomID: roomID,
		userID: userID,
		cell:   cell,
		reply:  make(chan error, 1),
	}
	if err := h.enqueue(ctx, req); err != nil {
		return err
	}
	select {
	case err := <-req.reply:
		return err
	case <-h.done:
		return apperror.ErrHubClosed
	}
}

// Leave removes userID from roomID. It does not wait for the hub and never
// reports failure; an unknown room is a no-op.
func (h *Hub) Leave(ctx context.Context, roomID, userID uuid.UUID) {
	h.leave(ctx, &leaveRequest{ctx: ctx, roomID: roomID, userID: userID})
}

// Disconnect is Leave issued on behalf of a dying connection. It is ignored
// when userID has since been re-attached to a different handle.
func (h *Hub) Disconnect(ctx context.Context, roomID, userID uuid.UUID, handle player.Handle) {
	h.leave(ctx, &leaveRequest{ctx: ctx, roomID: roomID, userID: userID, handle: handle})
}

func (h *Hub) leave(ctx context.Context, req *leaveRequest) {
	if err := h.enqueue(ctx, req); err != nil {
		slog.WarnContext(ctx, "Leave request dropped", "room.id", req.roomID, "player.id", req.userID, "error", err)
	}
}

func (h *Hub) enqueue(ctx context.Context, req request) error {
	select {
	case h.inbox <- req:
		return nil
	case <-h.done:
		return apperror.ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}
