// Package storage persists finished matches to PostgreSQL. The server
// runs fine without it; cmd/server only wires a repository when a
// database is configured.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS matches (
    id          BIGSERIAL PRIMARY KEY,
    game_id     TEXT        NOT NULL,
    player_one  TEXT        NOT NULL,
    player_two  TEXT        NOT NULL,
    winner      TEXT        NOT NULL,
    turns       INT         NOT NULL,
    finished_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS matches_player_one_idx ON matches (player_one);
CREATE INDEX IF NOT EXISTS matches_player_two_idx ON matches (player_two);
`

// MatchRecord is one finished game.
type MatchRecord struct {
	GameID     string    `json:"game_id"`
	PlayerOne  string    `json:"player_one"`
	PlayerTwo  string    `json:"player_two"`
	Winner     string    `json:"winner"`
	Turns      int       `json:"turns"`
	FinishedAt time.Time `json:"finished_at"`
}

// MatchRepository writes and reads match records.
type MatchRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// Connect opens a connection pool, verifies it, and ensures the schema
// exists.
func Connect(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*MatchRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	logger.Info("match repository initialized",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Name),
	)
	return &MatchRepository{pool: pool, logger: logger}, nil
}

// Close releases the connection pool.
func (r *MatchRepository) Close() {
	r.pool.Close()
}

// RecordMatch stores a finished game.
func (r *MatchRepository) RecordMatch(ctx context.Context, rec MatchRecord) error {
	if rec.FinishedAt.IsZero() {
		rec.FinishedAt = time.Now()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO matches (game_id, player_one, player_two, winner, turns, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.GameID, rec.PlayerOne, rec.PlayerTwo, rec.Winner, rec.Turns, rec.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("record match %s: %w", rec.GameID, err)
	}
	r.logger.Info("match recorded",
		zap.String("game_id", rec.GameID),
		zap.String("winner", rec.Winner),
		zap.Int("turns", rec.Turns),
	)
	return nil
}

// RecentMatches returns the newest matches involving playerID, most
// recent first. An empty playerID returns matches for all players.
func (r *MatchRepository) RecentMatches(ctx context.Context, playerID string, limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error
	if playerID == "" {
		rows, err = r.pool.Query(ctx, `
			SELECT game_id, player_one, player_two, winner, turns, finished_at
			FROM matches ORDER BY finished_at DESC LIMIT $1`, limit)
	} else {
		rows, err = r.pool.Query(ctx, `
			SELECT game_id, player_one, player_two, winner, turns, finished_at
			FROM matches WHERE player_one = $1 OR player_two = $1
			ORDER BY finished_at DESC LIMIT $2`, playerID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var out []MatchRecord
	for rows.Next() {
		var rec MatchRecord
		if err := rows.Scan(&rec.GameID, &rec.PlayerOne, &rec.PlayerTwo,
			&rec.Winner, &rec.Turns, &rec.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan match row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// WinCount returns how many recorded matches playerID has won.
func (r *MatchRepository) WinCount(ctx context.Context, playerID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM matches WHERE winner = $1`, playerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count wins for %s: %w", playerID, err)
	}
	return n, nil
}
