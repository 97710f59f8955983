package room

import (
	"ctchen222/roomserver/internal/game"
	"ctchen222/roomserver/pkg/proto"
)

// Snapshot renders the room's current game state. A room that is still
// waiting for its second player reports an empty board and status waiting.
func (r *Room) Snapshot() *proto.Snapshot {
	snap := &proto.Snapshot{
		Board:   make([]game.PlayerMark, game.CellCount),
		Status:  game.StatusWaiting,
		Players: len(r.Players),
	}
	if r.Game == nil {
		return snap
	}

	copy(snap.Board, r.Game.Board[:])
	snap.Turn = r.Game.CurrentTurn
	snap.Status = r.Game.Status
	if r.Game.Winner != game.None {
		winner := r.Game.Winner
		snap.Winner = &winner
	}
	return snap
}
