package gamedata

import (
	"context"
	"log"
	"time"

	"targetshot/internal/analytics"
	"targetshot/internal/events"
	"targetshot/internal/feedback"
	"targetshot/internal/geom"
	"targetshot/internal/leaderboard"
	"targetshot/internal/metrics"
	"targetshot/internal/sched"
	"targetshot/internal/targets"
)

type Phase string

const (
	PhaseIdle    = Phase("idle")
	PhasePlaying = Phase("playing")
	PhaseEnded   = Phase("ended")
)

type Outcome string

const (
	ShotIgnored = Outcome("ignored")
	ShotHit     = Outcome("hit")
	ShotMiss    = Outcome("miss")
)

const saveTimeout = 5 * time.Second

type Config struct {
	RoundDuration    int // seconds
	SpawnInterval    time.Duration
	TickInterval     time.Duration
	HitDelay         time.Duration
	LowTimeThreshold int // seconds
}

func DefaultConfig() Config {
	return Config{
		RoundDuration:    30,
		SpawnInterval:    1500 * time.Millisecond,
		TickInterval:     1000 * time.Millisecond,
		HitDelay:         300 * time.Millisecond,
		LowTimeThreshold: 10,
	}
}

// Snapshot is the display state of a session.
type Snapshot struct {
	Phase         Phase
	Score         int
	TimeLeft      int
	LowTime       bool
	NextTargetID  int
	ActiveTargets int
}

// Game runs one player's session. It is not safe for concurrent use: every
// method, and every task it schedules, must run on the scheduler's goroutine.
type Game struct {
	sched       sched.Scheduler
	Targets     *targets.Registry
	Feedback    *feedback.Emitter
	Leaderboard *leaderboard.Board
	Events      *events.Bus
	Metrics     *metrics.Recorder
	Config      Config

	phase     Phase
	score     int
	timeLeft  int
	stats     analytics.Stats
	spawnTask sched.Task
	tickTask  sched.Task
}

func NewGame(s sched.Scheduler, ts *targets.Registry, fb *feedback.Emitter, board *leaderboard.Board, bus *events.Bus, cfg Config) *Game {
	if cfg.RoundDuration <= 0 {
		cfg.RoundDuration = DefaultConfig().RoundDuration
	}
	g := &Game{
		sched:       s,
		Targets:     ts,
		Feedback:    fb,
		Leaderboard: board,
		Events:      bus,
		Config:      cfg,
		phase:       PhaseIdle,
		timeLeft:    cfg.RoundDuration,
	}
	ts.OnExpire = func(*targets.Target) {
		g.stats.RecordExpire()
		g.Metrics.Expire()
	}
	return g
}

func (g *Game) Phase() Phase {
	return g.phase
}

func (g *Game) Playing() bool {
	return g.phase == PhasePlaying
}

func (g *Game) Score() int {
	return g.score
}

func (g *Game) TimeLeft() int {
	return g.timeLeft
}

func (g *Game) Stats() analytics.Stats {
	return g.stats
}

func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		Phase:         g.phase,
		Score:         g.score,
		TimeLeft:      g.timeLeft,
		LowTime:       g.lowTime(),
		NextTargetID:  g.Targets.NextID(),
		ActiveTargets: g.Targets.Len(),
	}
}

func (g *Game) lowTime() bool {
	return g.timeLeft <= g.Config.LowTimeThreshold
}

// Start begins a fresh round. Calling it mid-round throws the current round
// away and starts over.
func (g *Game) Start() {
	g.cancelTasks()
	g.Targets.Reset()
	g.Feedback.ClearAll()

	g.phase = PhasePlaying
	g.score = 0
	g.timeLeft = g.Config.RoundDuration
	g.stats = analytics.Stats{}

	g.Metrics.GameStarted()
	g.Events.PublishRoundStarted(events.RoundStarted{RoundSeconds: g.Config.RoundDuration, At: g.sched.Now()})
	g.publishState()

	g.spawn()
	g.spawnTask = g.sched.Every(g.Config.SpawnInterval, g.spawn)
	g.tickTask = g.sched.Every(g.Config.TickInterval, g.tick)
}

func (g *Game) spawn() {
	if !g.Playing() {
		return
	}
	g.Targets.Spawn()
	g.stats.RecordSpawn()
	g.Metrics.Spawn()
}

func (g *Game) tick() {
	if !g.Playing() {
		return
	}
	g.timeLeft--
	g.publishState()
	if g.timeLeft <= 0 {
		g.EndGame()
	}
}

// Shoot processes a pointer press at p, given in play-area coordinates.
func (g *Game) Shoot(p geom.Point) Outcome {
	if !g.Playing() {
		return ShotIgnored
	}
	if t := g.Targets.FindContaining(p); t != nil {
		g.hit(t, p)
		return ShotHit
	}
	g.miss(p)
	return ShotMiss
}

func (g *Game) hit(t *targets.Target, p geom.Point) {
	g.Targets.MarkHit(t.ID)
	half := g.Targets.Config().Size / 2
	g.Feedback.Show(t.Pos.Add(half, half), "+1", feedback.KindHit)

	g.score++
	reaction := g.sched.Now().Sub(t.SpawnedAt)
	g.stats.RecordHit(reaction)
	g.Metrics.Hit()

	g.Events.PublishShot(events.Shot{
		At:         p,
		Hit:        true,
		TargetID:   t.ID,
		TargetKind: string(t.Kind),
		Reaction:   reaction,
		ScoreAfter: g.score,
		Time:       g.sched.Now(),
	})
	g.publishState()

	g.sched.After(g.Config.HitDelay, func() {
		g.Targets.Discard(t)
	})
}

func (g *Game) miss(p geom.Point) {
	g.Feedback.Show(p, "-1", feedback.KindMiss)

	g.score = max(0, g.score-1)
	g.stats.RecordMiss()
	g.Metrics.Miss()

	g.Events.PublishShot(events.Shot{
		At:         p,
		ScoreAfter: g.score,
		Time:       g.sched.Now(),
	})
	g.publishState()
}

// EndGame finishes the round: it stops the schedules, clears the board, saves
// the score and publishes the result. It does nothing outside a round.
func (g *Game) EndGame() {
	if !g.Playing() {
		return
	}
	g.phase = PhaseEnded
	g.cancelTasks()
	g.Targets.ClearAll()
	g.Feedback.ClearAll()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	var view leaderboard.View
	if entries, err := g.Leaderboard.Save(ctx, g.score); err != nil {
		log.Printf("[Game] Saving score failed: %v\n", err)
		view = g.Leaderboard.Render(ctx)
	} else {
		view = g.Leaderboard.View(entries)
	}

	g.Metrics.GameFinished(g.score)
	g.publishState()
	g.Events.PublishGameOver(events.GameOver{
		Score:       g.score,
		Leaderboard: view,
		Stats:       g.stats,
		Badges:      analytics.EvaluateBadges(g.stats, g.score, g.Config.RoundDuration),
	})
}

// Abort tears a session down without saving a score, for when the player goes
// away mid-round. It publishes the idle state.
func (g *Game) Abort() {
	g.cancelTasks()
	g.Targets.ClearAll()
	g.Feedback.ClearAll()
	g.phase = PhaseIdle
	g.publishState()
}

// Announce republishes the current state for a display that just attached.
func (g *Game) Announce() {
	g.publishState()
}

func (g *Game) cancelTasks() {
	if g.spawnTask != nil {
		g.spawnTask.Cancel()
		g.spawnTask = nil
	}
	if g.tickTask != nil {
		g.tickTask.Cancel()
		g.tickTask = nil
	}
}

func (g *Game) publishState() {
	snap := g.Snapshot()
	g.Events.PublishState(events.StateChange{
		Phase:    string(snap.Phase),
		Score:    snap.Score,
		TimeLeft: snap.TimeLeft,
		LowTime:  snap.LowTime,
	})
}
