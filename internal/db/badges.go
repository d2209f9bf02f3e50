package db

import "fmt"

func (d *DB) AwardBadge(gameID, badgeID string) error {
	_, err := d.conn.Exec(`
		INSERT INTO game_badges (game_id, badge_id)
		VALUES ($1, $2)
		ON CONFLICT (game_id, badge_id) DO NOTHING
	`, gameID, badgeID)
	if err != nil {
		return fmt.Errorf("awarding badge: %w", err)
	}
	return nil
}

func (d *DB) GetGameBadges(gameID string) ([]string, error) {
	rows, err := d.conn.Query(`
		SELECT badge_id FROM game_badges WHERE game_id = $1 ORDER BY awarded_at
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("getting badges: %w", err)
	}
	defer rows.Close()

	var badges []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		badges = append(badges, id)
	}
	return badges, rows.Err()
}
