package server

import (
	"context"
	"log"
	"time"

	"targetshot/internal/db"
	"targetshot/internal/events"
	"targetshot/internal/gamedata"

	"github.com/google/uuid"
)

const (
	historyBuffer   = 1000
	shotBatchSize   = 50
	shotFlushPeriod = 500 * time.Millisecond
)

// historyStore is the part of *db.DB the history writer needs.
type historyStore interface {
	CreateGame(gameID, sessionID string, roundDurationMs int) error
	EndGame(gameID string, finalScore int) error
	AbandonGame(gameID string) error
	AwardBadge(gameID, badgeID string) error
	RecordShot(ev db.ShotEvent) error
	BatchRecordShots(events []db.ShotEvent) error
}

type historyKind int

const (
	historyCreate historyKind = iota
	historyShot
	historyEnd
	historyAbandon
)

type historyOp struct {
	kind      historyKind
	gameID    string
	sessionID string
	roundMs   int
	shot      db.ShotEvent
	score     int
	badges    []string
}

// historyWriter records rounds and their shots in the background. Ops are
// applied in the order they were queued; shots are batched, and any pending
// batch is written before a round is created or closed.
type historyWriter struct {
	store historyStore
	ops   chan historyOp
}

func newHistoryWriter(store historyStore) *historyWriter {
	return &historyWriter{
		store: store,
		ops:   make(chan historyOp, historyBuffer),
	}
}

// Attach records every round the game plays. A round that is restarted or
// dropped before it ends is marked abandoned. Handlers run on the session's
// loop, so gameID needs no locking.
func (h *historyWriter) Attach(sessionID string, g *gamedata.Game) {
	var gameID string

	abandon := func() {
		if gameID == "" {
			return
		}
		h.enqueue(historyOp{kind: historyAbandon, gameID: gameID})
		gameID = ""
	}

	g.Events.OnRoundStarted(func(ev events.RoundStarted) {
		abandon()
		gameID = uuid.New().String()
		h.enqueue(historyOp{
			kind:      historyCreate,
			gameID:    gameID,
			sessionID: sessionID,
			roundMs:   ev.RoundSeconds * 1000,
		})
	})

	g.Events.OnShot(func(ev events.Shot) {
		if gameID == "" {
			return
		}
		shot := db.ShotEvent{
			GameID:     gameID,
			Hit:        ev.Hit,
			X:          ev.At.X,
			Y:          ev.At.Y,
			ScoreAfter: ev.ScoreAfter,
			ShotAt:     ev.Time,
		}
		if ev.Hit {
			id, kind, reaction := ev.TargetID, ev.TargetKind, int(ev.Reaction.Milliseconds())
			shot.TargetID, shot.TargetKind, shot.ReactionMs = &id, &kind, &reaction
		}
		h.enqueue(historyOp{kind: historyShot, shot: shot})
	})

	g.Events.OnGameOver(func(ev events.GameOver) {
		if gameID == "" {
			return
		}
		op := historyOp{kind: historyEnd, gameID: gameID, score: ev.Score}
		for _, b := range ev.Badges {
			op.badges = append(op.badges, string(b.ID))
		}
		h.enqueue(op)
		gameID = ""
	})

	g.Events.OnState(func(ev events.StateChange) {
		if ev.Phase == string(gamedata.PhaseIdle) {
			abandon()
		}
	})
}

func (h *historyWriter) enqueue(op historyOp) {
	select {
	case h.ops <- op:
	default:
		log.Println("[DB] History buffer full, dropping event")
	}
}

// Run applies queued ops until ctx is cancelled, then writes what is left.
func (h *historyWriter) Run(ctx context.Context) {
	ticker := time.NewTicker(shotFlushPeriod)
	defer ticker.Stop()

	batch := make([]db.ShotEvent, 0, shotBatchSize)
	flush := func() {
		switch len(batch) {
		case 0:
			return
		case 1:
			if err := h.store.RecordShot(batch[0]); err != nil {
				log.Printf("[DB] RecordShot error: %v\n", err)
			}
		default:
			if err := h.store.BatchRecordShots(batch); err != nil {
				log.Printf("[DB] BatchRecordShots error: %v\n", err)
			}
		}
		batch = batch[:0]
	}
	apply := func(op historyOp) {
		if op.kind == historyShot {
			batch = append(batch, op.shot)
			if len(batch) >= shotBatchSize {
				flush()
			}
			return
		}
		flush()
		h.apply(op)
	}

	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case op := <-h.ops:
					apply(op)
				default:
					flush()
					return
				}
			}
		case op := <-h.ops:
			apply(op)
		case <-ticker.C:
			flush()
		}
	}
}

func (h *historyWriter) apply(op historyOp) {
	switch op.kind {
	case historyCreate:
		if err := h.store.CreateGame(op.gameID, op.sessionID, op.roundMs); err != nil {
			log.Printf("[DB] CreateGame error: %v\n", err)
		}
	case historyEnd:
		if err := h.store.EndGame(op.gameID, op.score); err != nil {
			log.Printf("[DB] EndGame error: %v\n", err)
		}
		for _, id := range op.badges {
			if err := h.store.AwardBadge(op.gameID, id); err != nil {
				log.Printf("[DB] AwardBadge error: %v\n", err)
			}
		}
	case historyAbandon:
		if err := h.store.AbandonGame(op.gameID); err != nil {
			log.Printf("[DB] AbandonGame error: %v\n", err)
		}
	}
}
