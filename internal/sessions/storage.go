package sessions

import (
	"sync"
	"time"

	"targetshot/internal/broadcast"
	"targetshot/internal/events"
	"targetshot/internal/feedback"
	"targetshot/internal/gamedata"
	"targetshot/internal/geom"
	"targetshot/internal/leaderboard"
	"targetshot/internal/metrics"
	"targetshot/internal/sched"
	"targetshot/internal/targets"
	"targetshot/internal/wshub"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

const sendBuffer = 64

// Deps is what every session shares.
type Deps struct {
	Game           gamedata.Config
	Targets        targets.Config
	MarkerDuration time.Duration
	Leaderboard    *leaderboard.Board
	Metrics        *metrics.Recorder
	Hub            *wshub.Hub
}

type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	deps     Deps
}

func NewStore(deps Deps) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		deps:     deps,
	}
}

// Create builds a session for conn, which may be nil in tests, and registers
// its client with the hub. The caller runs the session and deletes it when
// the connection goes away.
func (s *Store) Create(conn *websocket.Conn) *Session {
	id := uuid.New().String()
	client := &wshub.Client{
		SessionID: id,
		Conn:      conn,
		Send:      make(chan []byte, sendBuffer),
	}

	loop := sched.NewLoop()
	bus := events.NewBus()
	size := s.deps.Targets.Size
	view := broadcast.NewView(geom.Size{W: size, H: size}, client)
	registry := targets.NewRegistry(loop, view, nil, s.deps.Targets)
	fb := feedback.NewEmitter(loop, view, s.deps.MarkerDuration)
	game := gamedata.NewGame(loop, registry, fb, s.deps.Leaderboard, bus, s.deps.Game)
	game.Metrics = s.deps.Metrics

	sess := &Session{
		ID:          id,
		Game:        game,
		Loop:        loop,
		Client:      client,
		View:        view,
		Broadcaster: broadcast.NewBroadcaster(bus, client, s.deps.Hub),
		CreatedAt:   time.Now(),
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	if s.deps.Hub != nil {
		s.deps.Hub.Register(client)
	}
	s.deps.Metrics.SessionOpened()
	return sess
}

// Delete forgets a session and closes its client's send channel. Deleting an
// unknown id does nothing.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return
	}
	if s.deps.Hub != nil {
		s.deps.Hub.Unregister(id)
	}
	s.deps.Metrics.SessionClosed()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
