package db

import (
	"fmt"
	"time"
)

type GameRecord struct {
	ID              string
	SessionID       string
	RoundDurationMs int
	FinalScore      *int
	StartedAt       *time.Time
	EndedAt         *time.Time
	Abandoned       bool
	CreatedAt       time.Time
}

// CreateGame inserts a round under an id chosen by the caller, so shots can be
// queued against it before the insert lands.
func (d *DB) CreateGame(gameID, sessionID string, roundDurationMs int) error {
	_, err := d.conn.Exec(`
		INSERT INTO games (id, session_id, round_duration_ms, started_at)
		VALUES ($1, $2, $3, now())
	`, gameID, sessionID, roundDurationMs)
	if err != nil {
		return fmt.Errorf("creating game: %w", err)
	}
	return nil
}

func (d *DB) EndGame(gameID string, finalScore int) error {
	_, err := d.conn.Exec(`
		UPDATE games SET ended_at = now(), final_score = $2 WHERE id = $1
	`, gameID, finalScore)
	if err != nil {
		return fmt.Errorf("ending game: %w", err)
	}
	return nil
}

// AbandonGame closes a round that was cut short by a restart or a disconnect.
// It leaves rounds that already ended alone.
func (d *DB) AbandonGame(gameID string) error {
	_, err := d.conn.Exec(`
		UPDATE games SET ended_at = now(), abandoned = true
		WHERE id = $1 AND ended_at IS NULL
	`, gameID)
	if err != nil {
		return fmt.Errorf("abandoning game: %w", err)
	}
	return nil
}

func (d *DB) GetGame(gameID string) (*GameRecord, error) {
	var g GameRecord
	err := d.conn.QueryRow(`
		SELECT id, session_id, round_duration_ms, final_score, started_at, ended_at, abandoned, created_at
		FROM games WHERE id = $1
	`, gameID).Scan(&g.ID, &g.SessionID, &g.RoundDurationMs, &g.FinalScore, &g.StartedAt, &g.EndedAt, &g.Abandoned, &g.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting game: %w", err)
	}
	return &g, nil
}
