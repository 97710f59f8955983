package room

import (
	"testing"

	"ctchen222/roomserver/internal/game"
	"ctchen222/roomserver/pkg/proto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopHandle struct{}

func (nopHandle) Deliver(*proto.ServerToClientMessage) error { return nil }

func TestRoom_MarkFor(t *testing.T) {
	r := NewRoom(uuid.New())
	a, b, stranger := uuid.New(), uuid.New(), uuid.New()

	assert.Equal(t, game.None, r.MarkFor(a))

	r.AddPlayer(a, nopHandle{})
	r.AddPlayer(b, nopHandle{})

	assert.Equal(t, game.PlayerX, r.MarkFor(a))
	assert.Equal(t, game.PlayerO, r.MarkFor(b))
	assert.Equal(t, game.None, r.MarkFor(stranger))
	assert.True(t, r.IsFull())
}

func TestRoom_StartGameIfReady(t *testing.T) {
	r := NewRoom(uuid.New())
	r.AddPlayer(uuid.New(), nopHandle{})

	require.False(t, r.StartGameIfReady())
	require.Nil(t, r.Game)

	r.AddPlayer(uuid.New(), nopHandle{})
	require.True(t, r.StartGameIfReady())
	require.NotNil(t, r.Game)
	assert.Equal(t, game.PlayerX, r.Game.CurrentTurn)

	started := r.Game
	require.NoError(t, started.ApplyMove(0, game.PlayerX))
	assert.False(t, r.StartGameIfReady(), "second call must be a no-op")
	assert.Same(t, started, r.Game)
}

func TestRoom_RemovePlayer(t *testing.T) {
	r := NewRoom(uuid.New())
	a, b := uuid.New(), uuid.New()
	r.AddPlayer(a, nopHandle{})
	r.AddPlayer(b, nopHandle{})

	assert.True(t, r.RemovePlayer(a))
	assert.False(t, r.RemovePlayer(a))
	assert.Equal(t, []uuid.UUID{b}, r.Players)
	assert.NotContains(t, r.Handles, a)
	assert.Equal(t, game.PlayerX, r.MarkFor(b))

	assert.True(t, r.RemovePlayer(b))
	assert.True(t, r.IsEmpty())
}

func TestRoom_Snapshot(t *testing.T) {
	r := NewRoom(uuid.New())
	r.AddPlayer(uuid.New(), nopHandle{})

	snap := r.Snapshot()
	assert.Equal(t, game.StatusWaiting, snap.Status)
	assert.Len(t, snap.Board, game.CellCount)
	assert.Nil(t, snap.Winner)
	assert.Equal(t, 1, snap.Players)

	r.AddPlayer(uuid.New(), nopHandle{})
	r.StartGameIfReady()
	for i, cell := range []int{0, 3, 1, 4, 2} {
		mark := game.PlayerX
		if i%2 == 1 {
			mark = game.PlayerO
		}
		require.NoError(t, r.Game.ApplyMove(cell, mark))
	}

	snap = r.Snapshot()
	assert.Equal(t, game.StatusWon, snap.Status)
	require.NotNil(t, snap.Winner)
	assert.Equal(t, game.PlayerX, *snap.Winner)
	assert.Equal(t, game.PlayerX, snap.Board[2])
}
