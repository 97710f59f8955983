package hub

import (
	"context"

	"ctchen222/roomserver/internal/player"

	"github.com/google/uuid"
)

type request interface {
	process(h *Hub)
}

type joinResult struct {
	roomID uuid.UUID
	err    error
}

type joinRequest struct {
	ctx    context.Context
	roomID *uuid.UUID
	userID uuid.UUID
	handle player.Handle
	reply  chan joinResult
}

func (r *joinRequest) process(h *Hub) {
	roomID, err := h.handleJoin(r.ctx, r.roomID, r.userID, r.handle)
	h.verify(r.ctx, r.userID, roomID)
	r.reply <- joinResult{roomID: roomID, err: err}
}

type moveRequest struct {
	ctx    context.Context
	roomID uuid.UUID
	userID uuid.UUID
	cell   int
	reply  chan error
}

func (r *moveRequest) process(h *Hub) {
	err := h.handleMove(r.ctx, r.roomID, r.userID, r.cell)
	h.verify(r.ctx, r.userID, r.roomID)
	r.reply <- err
}

type leaveRequest struct {
	ctx    context.Context
	roomID uuid.UUID
	userID uuid.UUID
	handle player.Handle // set only for disconnects
}

func (r *leaveRequest) process(h *Hub) {
	h.handleLeave(r.ctx, r.roomID, r.userID, r.handle)
	h.verify(r.ctx, r.userID, r.roomID)
}
