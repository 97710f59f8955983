package proto

import "ctchen222/roomserver/internal/game"

// Client command types.
const (
	CommandJoin  = "join"
	CommandMove  = "move"
	CommandLeave = "leave"
)

// Server notice types.
const (
	NoticeConnected    = "connected"
	NoticeJoined       = "joined"
	NoticeRejoined     = "rejoined"
	NoticePlayerJoined = "player_joined"
	NoticePlayerLeft   = "player_left"
	NoticePlayerMoved  = "player_moved"
	NoticeLeft         = "left"
	NoticeError        = "error"
)

// ClientToServerMessage represents a message from the client to the server.
// Which fields are required depends on Type; see the session decoder.
type ClientToServerMessage struct {
	Type     string  `json:"type" validate:"required,oneof=join move leave"`
	RoomID   *string `json:"room_id"`
	Position *int    `json:"position" validate:"omitempty,min=0,max=8"`
}

// Move describes the move that produced a player_moved snapshot.
type Move struct {
	PlayerID string          `json:"player_id"`
	Mark     game.PlayerMark `json:"mark"`
	Position int             `json:"position"`
}

// Snapshot is a full rendering of a room's game state.
type Snapshot struct {
	Board    []game.PlayerMark `json:"board"`
	Turn     game.PlayerMark   `json:"turn"`
	Status   game.Status       `json:"status"`
	Winner   *game.PlayerMark  `json:"winner"`
	Players  int               `json:"players"`
	LastMove *Move             `json:"last_move,omitempty"`
}

// ServerToClientMessage represents a message from the server to the client.
// State-bearing notices embed a Snapshot, which is flattened into the object.
type ServerToClientMessage struct {
	Type    string          `json:"type"`
	RoomID  string          `json:"room_id,omitempty"`
	UserID  string          `json:"user_id,omitempty"`
	Mark    game.PlayerMark `json:"mark,omitempty"`
	Message string          `json:"message,omitempty"`
	*Snapshot
}

// ErrorMessage builds an error notice.
func ErrorMessage(message string) *ServerToClientMessage {
	return &ServerToClientMessage{Type: NoticeError, Message: message}
}
