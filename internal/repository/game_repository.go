package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ctchen222/roomserver/internal/events"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// FinishedGame is one archived game result.
type FinishedGame struct {
	ID         int64     `db:"id"`
	RoomID     string    `db:"room_id"`
	PlayerXID  string    `db:"player_x_id"`
	PlayerOID  string    `db:"player_o_id"`
	Status     string    `db:"status"`
	Winner     string    `db:"winner"`
	Board      string    `db:"board"` // JSON array of nine marks
	Moves      int       `db:"moves"`
	FinishedAt time.Time `db:"finished_at"`
}

// Cells decodes the archived board.
func (g FinishedGame) Cells() ([]string, error) {
	var cells []string
	if err := json.Unmarshal([]byte(g.Board), &cells); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board of game %d: %w", g.ID, err)
	}
	return cells, nil
}

// GameRepository stores finished games. It is a history log only; rooms
// are never restored from it.
type GameRepository struct {
	db *sqlx.DB
}

// NewGameRepository creates a SQLite-backed GameRepository.
func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

// Publish implements events.Publisher. Only game_finished events are
// archived; every other event is ignored.
func (r *GameRepository) Publish(ctx context.Context, event events.Event) error {
	if event.Type != events.TypeGameFinished {
		return nil
	}
	var payload events.GameFinishedPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal game_finished payload: %w", err)
	}
	return r.Archive(ctx, payload)
}

// Archive inserts one finished game.
func (r *GameRepository) Archive(ctx context.Context, game events.GameFinishedPayload) error {
	ctx, span := tracer.Start(ctx, "GameRepository.Archive", trace.WithAttributes(
		attribute.String("room.id", game.RoomID),
		attribute.String("game.status", game.Status),
	))
	defer span.End()

	board, err := json.Marshal(game.Board)
	if err != nil {
		return fmt.Errorf("failed to marshal board: %w", err)
	}

	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO finished_games (room_id, player_x_id, player_o_id, status, winner, board, moves, finished_at)
		VALUES (:room_id, :player_x_id, :player_o_id, :status, :winner, :board, :moves, :finished_at)`,
		FinishedGame{
			RoomID:     game.RoomID,
			PlayerXID:  game.PlayerXID,
			PlayerOID:  game.PlayerOID,
			Status:     game.Status,
			Winner:     game.Winner,
			Board:      string(board),
			Moves:      game.Moves,
			FinishedAt: game.FinishedAt.UTC(),
		})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to archive game")
		return fmt.Errorf("failed to archive game for room %s: %w", game.RoomID, err)
	}
	return nil
}

// FindByRoom returns every archived game played in roomID, oldest first.
func (r *GameRepository) FindByRoom(ctx context.Context, roomID string) ([]FinishedGame, error) {
	ctx, span := tracer.Start(ctx, "GameRepository.FindByRoom")
	defer span.End()

	var games []FinishedGame
	if err := r.db.SelectContext(ctx, &games, `SELECT * FROM finished_games WHERE room_id = ? ORDER BY id`, roomID); err != nil {
		return nil, fmt.Errorf("failed to query games for room %s: %w", roomID, err)
	}
	return games, nil
}

// Recent returns up to limit games, newest first.
func (r *GameRepository) Recent(ctx context.Context, limit int) ([]FinishedGame, error) {
	ctx, span := tracer.Start(ctx, "GameRepository.Recent")
	defer span.End()

	var games []FinishedGame
	if err := r.db.SelectContext(ctx, &games, `SELECT * FROM finished_games ORDER BY id DESC LIMIT ?`, limit); err != nil {
		return nil, fmt.Errorf("failed to query recent games: %w", err)
	}
	return games, nil
}
