package analytics

import "time"

// Stats accumulates what happened during one round.
type Stats struct {
	Spawned       int           `json:"spawned"`
	Expired       int           `json:"expired"`
	Shots         int           `json:"shots"`
	Hits          int           `json:"hits"`
	Misses        int           `json:"misses"`
	ReactionTotal time.Duration `json:"-"`
	BestReaction  time.Duration `json:"-"`
}

func (s *Stats) RecordSpawn() {
	s.Spawned++
}

func (s *Stats) RecordExpire() {
	s.Expired++
}

// RecordHit counts a hit and the time between the target's spawn and the shot.
func (s *Stats) RecordHit(reaction time.Duration) {
	s.Shots++
	s.Hits++
	s.ReactionTotal += reaction
	if s.BestReaction == 0 || reaction < s.BestReaction {
		s.BestReaction = reaction
	}
}

func (s *Stats) RecordMiss() {
	s.Shots++
	s.Misses++
}

// Accuracy is the percentage of shots that hit.
func (s Stats) Accuracy() float64 {
	if s.Shots == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Shots) * 100
}

func (s Stats) AvgReactionMs() float64 {
	if s.Hits == 0 {
		return 0
	}
	return float64(s.ReactionTotal.Milliseconds()) / float64(s.Hits)
}

func (s Stats) ShotsPerSecond(roundSeconds int) float64 {
	if roundSeconds <= 0 {
		return 0
	}
	return float64(s.Shots) / float64(roundSeconds)
}

type GameRecap struct {
	GameID     string     `json:"game_id"`
	SessionID  string     `json:"session_id"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
	Abandoned  bool       `json:"abandoned,omitempty"`
	FinalScore int        `json:"final_score"`
	Stats      Stats      `json:"stats"`
	Badges     []Badge    `json:"badges,omitempty"`
}
