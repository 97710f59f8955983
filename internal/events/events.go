package events

//go:generate mockgen -source=events.go -destination=mocks/mock_publisher.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Pub/Sub channel constants
const (
	EventsChannel = "channel:events"
)

// Event types emitted by the hub.
const (
	TypeRoomCreated  = "room_created"
	TypePlayerJoined = "player_joined"
	TypePlayerLeft   = "player_left"
	TypeGameFinished = "game_finished"
	TypeRoomClosed   = "room_closed"
)

// Event represents a room lifecycle message.
type Event struct {
	Type    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// RoomCreatedPayload is the payload for the "room_created" event.
type RoomCreatedPayload struct {
	RoomID string `json:"room_id"`
}

// PlayerJoinedPayload is the payload for the "player_joined" event.
type PlayerJoinedPayload struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
	Mark     string `json:"mark"`
}

// PlayerLeftPayload is the payload for the "player_left" event.
type PlayerLeftPayload struct {
	RoomID    string `json:"room_id"`
	PlayerID  string `json:"player_id"`
	Remaining int    `json:"remaining"`
}

// GameFinishedPayload is the payload for the "game_finished" event.
type GameFinishedPayload struct {
	RoomID     string    `json:"room_id"`
	PlayerXID  string    `json:"player_x_id"`
	PlayerOID  string    `json:"player_o_id"`
	Status     string    `json:"status"`
	Winner     string    `json:"winner"`
	Board      []string  `json:"board"`
	Moves      int       `json:"moves"`
	FinishedAt time.Time `json:"finished_at"`
}

// RoomClosedPayload is the payload for the "room_closed" event.
type RoomClosedPayload struct {
	RoomID string `json:"room_id"`
}

// New wraps payload into an Event of the given type.
func New(eventType string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Event{Type: eventType, Payload: data}, nil
}

// Publisher receives room lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Discard is a Publisher that drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(context.Context, Event) error { return nil }
