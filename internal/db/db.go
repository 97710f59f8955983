package db

import (
	"context"
	"fmt"
	"log/slog"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
)

const driverName = "sqlite"

const finishedGamesSchema = `
CREATE TABLE IF NOT EXISTS finished_games (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id     TEXT    NOT NULL,
	player_x_id TEXT    NOT NULL,
	player_o_id TEXT    NOT NULL,
	status      TEXT    NOT NULL,
	winner      TEXT    NOT NULL DEFAULT '',
	board       TEXT    NOT NULL,
	moves       INTEGER NOT NULL,
	finished_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_finished_games_room ON finished_games (room_id);`

// Open opens the SQLite archive at path and makes sure the schema exists.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	pool, err := sqlx.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:" shared.
	pool.SetMaxOpenConns(1)

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database at %s: %w", path, err)
	}
	if err := InitSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	slog.InfoContext(ctx, "Database connection initialized and schema verified", "db.path", path)
	return pool, nil
}

// InitSchema creates the archive tables if they do not exist.
func InitSchema(ctx context.Context, pool *sqlx.DB) error {
	if _, err := pool.ExecContext(ctx, finishedGamesSchema); err != nil {
		return fmt.Errorf("failed to create finished_games table: %w", err)
	}
	return nil
}
