package db

import (
	"fmt"
	"time"
)

// ShotEvent is one processed shot. TargetID, TargetKind and ReactionMs are
// nil for misses.
type ShotEvent struct {
	GameID     string
	Hit        bool
	TargetID   *int
	TargetKind *string
	X          int
	Y          int
	ScoreAfter int
	ReactionMs *int
	ShotAt     time.Time
}

const insertShot = `
	INSERT INTO shot_events (game_id, hit, target_id, target_kind, x, y, score_after, reaction_ms, shot_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

func (d *DB) RecordShot(ev ShotEvent) error {
	_, err := d.conn.Exec(insertShot, ev.GameID, ev.Hit, ev.TargetID, ev.TargetKind, ev.X, ev.Y, ev.ScoreAfter, ev.ReactionMs, ev.ShotAt)
	if err != nil {
		return fmt.Errorf("recording shot: %w", err)
	}
	return nil
}

func (d *DB) BatchRecordShots(events []ShotEvent) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(insertShot)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.Exec(ev.GameID, ev.Hit, ev.TargetID, ev.TargetKind, ev.X, ev.Y, ev.ScoreAfter, ev.ReactionMs, ev.ShotAt); err != nil {
			return fmt.Errorf("recording shot in batch: %w", err)
		}
	}

	return tx.Commit()
}
