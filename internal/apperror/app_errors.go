package apperror

import "errors"

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room is full")
	ErrNotInRoom        = errors.New("player is not in room")
	ErrNoAssignedMark   = errors.New("player has no assigned mark")
	ErrIllegalMove      = errors.New("illegal move")
	ErrMalformedCommand = errors.New("malformed command")
	ErrInvalidRoomID    = errors.New("invalid room id")
	ErrMessageTooLarge  = errors.New("message too large")

	// Internal only, never rendered to a client.
	ErrLivenessTimeout = errors.New("liveness timeout")
	ErrDeliveryFailure = errors.New("delivery failure")
	ErrHubClosed       = errors.New("hub is closed")
)
