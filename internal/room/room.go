package room

import (
	"ctchen222/roomserver/internal/game"
	"ctchen222/roomserver/internal/player"

	"github.com/google/uuid"
)

// Capacity is the number of players a room seats.
const Capacity = 2

// Room represents a game room. It has no network or hub knowledge and is
// mutated only by the hub goroutine.
type Room struct {
	ID      uuid.UUID
	Players []uuid.UUID
	Handles map[uuid.UUID]player.Handle
	Game    *game.Game
}

// NewRoom creates an empty room.
func NewRoom(id uuid.UUID) *Room {
	return &Room{
		ID:      id,
		Players: make([]uuid.UUID, 0, Capacity),
		Handles: make(map[uuid.UUID]player.Handle, Capacity),
	}
}

// IsFull reports whether both seats are taken.
func (r *Room) IsFull() bool {
	return len(r.Players) == Capacity
}

// IsEmpty reports whether the room has no players left.
func (r *Room) IsEmpty() bool {
	return len(r.Players) == 0
}

// Contains reports whether userID is a participant.
func (r *Room) Contains(userID uuid.UUID) bool {
	for _, id := range r.Players {
		if id == userID {
			return true
		}
	}
	return false
}

// MarkFor returns X for the first joined player, O for the second and None otherwise.
func (r *Room) MarkFor(userID uuid.UUID) game.PlayerMark {
	switch {
	case len(r.Players) > 0 && r.Players[0] == userID:
		return game.PlayerX
	case len(r.Players) > 1 && r.Players[1] == userID:
		return game.PlayerO
	}
	return game.None
}

// AddPlayer seats userID and binds its handle. The caller checks capacity.
func (r *Room) AddPlayer(userID uuid.UUID, h player.Handle) {
	r.Players = append(r.Players, userID)
	r.Handles[userID] = h
}

// Rebind replaces the handle of an existing participant.
func (r *Room) Rebind(userID uuid.UUID, h player.Handle) {
	r.Handles[userID] = h
}

// RemovePlayer drops userID and its handle. It reports whether the player was seated.
func (r *Room) RemovePlayer(userID uuid.UUID) bool {
	for i, id := range r.Players {
		if id == userID {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			delete(r.Handles, userID)
			return true
		}
	}
	return false
}

// StartGameIfReady starts a fresh game once two players are seated. It is a
// no-op when a game already exists.
func (r *Room) StartGameIfReady() bool {
	if !r.IsFull() || r.Game != nil {
		return false
	}
	r.Game = game.NewGame()
	return true
}

// ResetGame discards the current game; a new one starts when the room fills again.
func (r *Room) ResetGame() {
	r.Game = nil
}
