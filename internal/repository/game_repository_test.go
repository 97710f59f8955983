package repository

import (
	"context"
	"testing"
	"time"

	"ctchen222/roomserver/internal/db"
	"ctchen222/roomserver/internal/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGameRepository(t *testing.T) *GameRepository {
	t.Helper()
	pool, err := db.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	return NewGameRepository(pool)
}

func finishedEvent(t *testing.T, roomID, winner string, finishedAt time.Time) events.Event {
	t.Helper()
	event, err := events.New(events.TypeGameFinished, events.GameFinishedPayload{
		RoomID:     roomID,
		PlayerXID:  uuid.NewString(),
		PlayerOID:  uuid.NewString(),
		Status:     "won",
		Winner:     winner,
		Board:      []string{"X", "X", "X", "O", "O", "", "", "", ""},
		Moves:      5,
		FinishedAt: finishedAt,
	})
	require.NoError(t, err)
	return event
}

func TestGameRepository_ArchivesFinishedGames(t *testing.T) {
	ctx := context.Background()
	repo := newTestGameRepository(t)
	roomID := uuid.NewString()
	finishedAt := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	require.NoError(t, repo.Publish(ctx, finishedEvent(t, roomID, "X", finishedAt)))

	games, err := repo.FindByRoom(ctx, roomID)
	require.NoError(t, err)
	require.Len(t, games, 1)

	got := games[0]
	assert.Equal(t, roomID, got.RoomID)
	assert.Equal(t, "won", got.Status)
	assert.Equal(t, "X", got.Winner)
	assert.Equal(t, 5, got.Moves)
	assert.WithinDuration(t, finishedAt, got.FinishedAt, time.Second)

	cells, err := got.Cells()
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "X", "X", "O", "O", "", "", "", ""}, cells)
}

func TestGameRepository_IgnoresOtherEvents(t *testing.T) {
	ctx := context.Background()
	repo := newTestGameRepository(t)
	roomID := uuid.NewString()

	for _, eventType := range []string{events.TypeRoomCreated, events.TypePlayerJoined, events.TypePlayerLeft, events.TypeRoomClosed} {
		event, err := events.New(eventType, events.RoomClosedPayload{RoomID: roomID})
		require.NoError(t, err)
		require.NoError(t, repo.Publish(ctx, event))
	}

	games, err := repo.FindByRoom(ctx, roomID)
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestGameRepository_RejectsBrokenPayload(t *testing.T) {
	repo := newTestGameRepository(t)

	err := repo.Publish(context.Background(), events.Event{Type: events.TypeGameFinished, Payload: []byte(`{"moves":"five"}`)})
	assert.Error(t, err)
}

func TestGameRepository_Recent(t *testing.T) {
	ctx := context.Background()
	repo := newTestGameRepository(t)
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	rooms := []string{uuid.NewString(), uuid.NewString(), uuid.NewString()}
	for i, roomID := range rooms {
		require.NoError(t, repo.Publish(ctx, finishedEvent(t, roomID, "O", base.Add(time.Duration(i)*time.Minute))))
	}

	games, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, rooms[2], games[0].RoomID)
	assert.Equal(t, rooms[1], games[1].RoomID)
}
