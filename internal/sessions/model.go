package sessions

import (
	"context"
	"time"

	"targetshot/internal/broadcast"
	"targetshot/internal/gamedata"
	"targetshot/internal/sched"
	"targetshot/internal/wshub"
)

// Session is one connected player. Game, and everything it owns, is only
// touched from Loop's goroutine; use Do to get there.
type Session struct {
	ID          string
	Game        *gamedata.Game
	Loop        *sched.Loop
	Client      *wshub.Client
	View        *broadcast.View
	Broadcaster *broadcast.Broadcaster
	CreatedAt   time.Time
}

// Run drives the session's loop until ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	return s.Loop.Run(ctx)
}

// Do runs fn against the game on the session's loop.
func (s *Session) Do(ctx context.Context, fn func(g *gamedata.Game)) error {
	return s.Loop.Do(ctx, func() { fn(s.Game) })
}
