// Package persist stores the single saved game and the device settings
// in Postgres. Each device keeps one save slot; saving again overwrites it.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcdev12/wristchess/internal/models"
)

// ErrNotFound is returned when a device has no saved row.
var ErrNotFound = errors.New("persist: not found")

// SavedGame is the resumable game snapshot for one device.
type SavedGame struct {
	FEN     string              `json:"fen"`
	History []models.MoveRecord `json:"history"`
	Mode    models.Mode         `json:"mode"`
	Timers  *models.Timers      `json:"timers,omitempty"`
}

// Settings are the device preferences that survive restarts.
type Settings struct {
	Difficulty       int         `json:"difficulty"`
	ShowBoardMarkers bool        `json:"show_board_markers"`
	Mode             models.Mode `json:"mode"`
}

// DB is what the repository needs from the connection pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ DB = (*pgxpool.Pool)(nil)

// Repository implements saved-game and settings data access.
type Repository struct {
	db DB
}

// NewRepository creates a repository over a pgx pool or compatible handle.
func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

// Connect opens a pgx pool for the given config.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the tables when they do not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS saved_games (
    device_id  TEXT PRIMARY KEY,
    fen        TEXT NOT NULL,
    history    JSONB NOT NULL DEFAULT '[]',
    mode       TEXT NOT NULL,
    timers     JSONB,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS device_settings (
    device_id          TEXT PRIMARY KEY,
    difficulty         INT NOT NULL,
    show_board_markers BOOLEAN NOT NULL,
    mode               TEXT NOT NULL,
    updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);`
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// SaveGame upserts the device's save slot.
func (r *Repository) SaveGame(ctx context.Context, deviceID string, game SavedGame) error {
	history, err := json.Marshal(game.History)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	var timers []byte
	if game.Timers != nil {
		timers, err = json.Marshal(game.Timers)
		if err != nil {
			return fmt.Errorf("failed to marshal timers: %w", err)
		}
	}

	const q = `
INSERT INTO saved_games (device_id, fen, history, mode, timers, updated_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (device_id) DO UPDATE SET
    fen = EXCLUDED.fen,
    history = EXCLUDED.history,
    mode = EXCLUDED.mode,
    timers = EXCLUDED.timers,
    updated_at = now()`
	if _, err := r.db.Exec(ctx, q, deviceID, game.FEN, history, string(game.Mode), timers); err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}
	return nil
}

// LoadGame fetches the device's save slot.
func (r *Repository) LoadGame(ctx context.Context, deviceID string) (*SavedGame, error) {
	const q = `
SELECT fen, history, mode, timers
FROM saved_games
WHERE device_id = $1`

	var (
		game    SavedGame
		mode    string
		history []byte
		timers  []byte
	)
	err := r.db.QueryRow(ctx, q, deviceID).Scan(&game.FEN, &history, &mode, &timers)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}

	game.Mode = models.Mode(mode)
	if err := json.Unmarshal(history, &game.History); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	if len(timers) > 0 {
		game.Timers = &models.Timers{}
		if err := json.Unmarshal(timers, game.Timers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal timers: %w", err)
		}
	}
	return &game, nil
}

// DeleteGame drops the device's save slot.
func (r *Repository) DeleteGame(ctx context.Context, deviceID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM saved_games WHERE device_id = $1`, deviceID); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	return nil
}

// SaveSettings upserts the device preferences.
func (r *Repository) SaveSettings(ctx context.Context, deviceID string, s Settings) error {
	const q = `
INSERT INTO device_settings (device_id, difficulty, show_board_markers, mode, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (device_id) DO UPDATE SET
    difficulty = EXCLUDED.difficulty,
    show_board_markers = EXCLUDED.show_board_markers,
    mode = EXCLUDED.mode,
    updated_at = now()`
	if _, err := r.db.Exec(ctx, q, deviceID, s.Difficulty, s.ShowBoardMarkers, string(s.Mode)); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// LoadSettings fetches the device preferences.
func (r *Repository) LoadSettings(ctx context.Context, deviceID string) (*Settings, error) {
	const q = `
SELECT difficulty, show_board_markers, mode
FROM device_settings
WHERE device_id = $1`

	var (
		s    Settings
		mode string
	)
	err := r.db.QueryRow(ctx, q, deviceID).Scan(&s.Difficulty, &s.ShowBoardMarkers, &mode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	s.Mode = models.Mode(mode)
	return &s, nil
}
