// Package events carries what the game core reports outward: display state,
// individual shots and the end-of-round result.
package events

import (
	"slices"
	"sync"
	"time"

	"targetshot/internal/analytics"
	"targetshot/internal/geom"
	"targetshot/internal/leaderboard"
)

// StateChange is published after every change to score, time or phase.
type StateChange struct {
	Phase    string `json:"phase"`
	Score    int    `json:"score"`
	TimeLeft int    `json:"timeLeft"`
	LowTime  bool   `json:"lowTime"`
}

type RoundStarted struct {
	RoundSeconds int
	At           time.Time
}

type Shot struct {
	At         geom.Point
	Hit        bool
	TargetID   int
	TargetKind string
	Reaction   time.Duration
	ScoreAfter int
	Time       time.Time
}

type GameOver struct {
	Score       int
	Leaderboard leaderboard.View
	Stats       analytics.Stats
	Badges      []analytics.Badge
}

// Bus delivers events synchronously, in subscription order, on the
// publisher's goroutine.
type Bus struct {
	mu       sync.Mutex
	states   []func(StateChange)
	starts   []func(RoundStarted)
	shots    []func(Shot)
	gameOver []func(GameOver)
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) OnState(fn func(StateChange)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.states = append(b.states, fn)
}

func (b *Bus) OnRoundStarted(fn func(RoundStarted)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.starts = append(b.starts, fn)
}

func (b *Bus) OnShot(fn func(Shot)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shots = append(b.shots, fn)
}

func (b *Bus) OnGameOver(fn func(GameOver)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gameOver = append(b.gameOver, fn)
}

func (b *Bus) PublishState(ev StateChange) {
	b.mu.Lock()
	handlers := slices.Clone(b.states)
	b.mu.Unlock()
	for _, fn := range handlers {
		fn(ev)
	}
}

func (b *Bus) PublishRoundStarted(ev RoundStarted) {
	b.mu.Lock()
	handlers := slices.Clone(b.starts)
	b.mu.Unlock()
	for _, fn := range handlers {
		fn(ev)
	}
}

func (b *Bus) PublishShot(ev Shot) {
	b.mu.Lock()
	handlers := slices.Clone(b.shots)
	b.mu.Unlock()
	for _, fn := range handlers {
		fn(ev)
	}
}

func (b *Bus) PublishGameOver(ev GameOver) {
	b.mu.Lock()
	handlers := slices.Clone(b.gameOver)
	b.mu.Unlock()
	for _, fn := range handlers {
		fn(ev)
	}
}
