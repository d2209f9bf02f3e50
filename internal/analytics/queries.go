package analytics

import (
	"fmt"
	"time"

	"targetshot/internal/db"
)

type Queries struct {
	DB *db.DB
}

func NewQueries(database *db.DB) *Queries {
	return &Queries{DB: database}
}

// GetGameStats rebuilds a round's Stats from its recorded shots.
func (q *Queries) GetGameStats(gameID string) (*Stats, error) {
	stats := &Stats{}
	var avgReaction, bestReaction float64
	err := q.DB.QueryRow(`
		SELECT
			COUNT(*) as shots,
			COUNT(*) FILTER (WHERE hit) as hits,
			COALESCE(AVG(reaction_ms) FILTER (WHERE hit), 0) as avg_reaction,
			COALESCE(MIN(reaction_ms) FILTER (WHERE hit), 0) as best_reaction
		FROM shot_events
		WHERE game_id = $1
	`, gameID).Scan(&stats.Shots, &stats.Hits, &avgReaction, &bestReaction)
	if err != nil {
		return nil, fmt.Errorf("getting shot stats: %w", err)
	}
	stats.Misses = stats.Shots - stats.Hits
	stats.ReactionTotal = time.Duration(avgReaction*float64(stats.Hits)) * time.Millisecond
	stats.BestReaction = time.Duration(bestReaction) * time.Millisecond
	return stats, nil
}

func (q *Queries) GetGameRecap(gameID string) (*GameRecap, error) {
	g, err := q.DB.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	recap := &GameRecap{
		GameID:    g.ID,
		SessionID: g.SessionID,
		StartedAt: g.StartedAt,
		EndedAt:   g.EndedAt,
		Abandoned: g.Abandoned,
	}
	if g.FinalScore != nil {
		recap.FinalScore = *g.FinalScore
	}

	stats, err := q.GetGameStats(gameID)
	if err != nil {
		return nil, err
	}
	recap.Stats = *stats

	ids, err := q.DB.GetGameBadges(gameID)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if b, ok := AllBadges[BadgeID(id)]; ok {
			recap.Badges = append(recap.Badges, b)
		}
	}
	return recap, nil
}

// GetBestGames returns finished rounds ordered by final score.
func (q *Queries) GetBestGames(limit int) ([]GameRecap, error) {
	rows, err := q.DB.Query(`
		SELECT id, session_id, started_at, ended_at, final_score
		FROM games
		WHERE ended_at IS NOT NULL AND NOT abandoned
		ORDER BY final_score DESC, ended_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("getting best games: %w", err)
	}
	defer rows.Close()

	var games []GameRecap
	for rows.Next() {
		var r GameRecap
		if err := rows.Scan(&r.GameID, &r.SessionID, &r.StartedAt, &r.EndedAt, &r.FinalScore); err != nil {
			return nil, err
		}
		games = append(games, r)
	}
	return games, rows.Err()
}
