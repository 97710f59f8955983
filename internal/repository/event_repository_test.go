package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ctchen222/roomserver/internal/events"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newRedisContainer(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)

	rdb := redis.NewClient(opts)
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestEventPublisher_PublishesEnvelope(t *testing.T) {
	rdb := newRedisContainer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sub := rdb.Subscribe(ctx, "channel:test-events")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	event, err := events.New(events.TypePlayerJoined, events.PlayerJoinedPayload{RoomID: "r1", PlayerID: "p1", Mark: "X"})
	require.NoError(t, err)
	require.NoError(t, NewEventPublisher(rdb, "channel:test-events").Publish(ctx, event))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var got struct {
		Event   string                     `json:"event"`
		Payload events.PlayerJoinedPayload `json:"payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
	assert.Equal(t, events.TypePlayerJoined, got.Event)
	assert.Equal(t, events.PlayerJoinedPayload{RoomID: "r1", PlayerID: "p1", Mark: "X"}, got.Payload)
}

func TestEventPublisher_DefaultChannel(t *testing.T) {
	p := NewEventPublisher(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), "")
	assert.Equal(t, events.EventsChannel, p.channel)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	event, err := events.New(events.TypeRoomClosed, events.RoomClosedPayload{RoomID: "r1"})
	require.NoError(t, err)
	assert.Error(t, p.Publish(ctx, event))
}
