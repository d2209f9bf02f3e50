package server

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"time"

	"targetshot/internal/db"
	"targetshot/internal/gamedata"
	"targetshot/internal/geom"
	"targetshot/internal/kv"
	"targetshot/internal/leaderboard"
	"targetshot/internal/sessions"
	"targetshot/internal/wshub"

	"github.com/coder/websocket"
)

const teardownTimeout = 2 * time.Second

type Server struct {
	Sessions    *sessions.Store
	Hub         *wshub.Hub
	Leaderboard *leaderboard.Board
	Store       kv.Store
	StoreName   string
	Area        geom.Size
	DB          *db.DB         // nil if no database configured
	History     *historyWriter // nil if no database configured
	Metrics     http.Handler   // nil disables /metrics
}

// pinger is implemented by the backends that hold a connection.
type pinger interface {
	Ping(ctx context.Context) error
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[HTTP] Encode error: %v\n", err)
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	page, err := fs.ReadFile(staticFS, "index.html")
	if err != nil {
		log.Println(err)
		http.Error(w, "Error rendering home page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(page); err != nil {
		log.Println(err)
	}
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Leaderboard.Render(r.Context()))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":   "ok",
		"store":    s.StoreName,
		"sessions": s.Sessions.Len(),
	}
	if p, ok := s.Store.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			resp["status"] = "store_error"
			resp["error"] = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}
	if s.DB != nil {
		if err := s.DB.Ping(r.Context()); err != nil {
			resp["status"] = "db_error"
			resp["error"] = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleWS runs one session for the lifetime of the connection.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("[WS] Accept error: %v\n", err)
		return
	}
	defer conn.CloseNow()

	sess := s.Sessions.Create(conn)
	log.Printf("[WS] Session %s connected\n", sess.ID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if s.History != nil {
		s.History.Attach(sess.ID, sess.Game)
	}

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		runLoop(ctx, sess)
	}()
	go sess.Client.WritePump(ctx)

	sess.Broadcaster.Hello(sess.ID, s.Area)
	sess.Broadcaster.Board(s.Leaderboard.Render(ctx))
	announce(ctx, sess)

	s.readLoop(ctx, conn, sess)

	// Stop the loop before the client's send channel is closed.
	teardown, stop := context.WithTimeout(context.Background(), teardownTimeout)
	defer stop()
	if err := sess.Do(teardown, (*gamedata.Game).Abort); err != nil {
		log.Printf("[WS] Session %s abort: %v\n", sess.ID, err)
	}
	cancel()
	<-loopDone
	s.Sessions.Delete(sess.ID)
	log.Printf("[WS] Session %s disconnected\n", sess.ID)
}

// runLoop runs the session's loop until ctx ends. Cancellation is the normal
// way out; anything else is logged.
func runLoop(ctx context.Context, sess *sessions.Session) {
	if err := sess.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("[WS] Session %s loop stopped: %v\n", sess.ID, err)
	}
}

func announce(ctx context.Context, sess *sessions.Session) {
	if err := sess.Do(ctx, (*gamedata.Game).Announce); err != nil {
		log.Printf("[WS] Session %s announce: %v\n", sess.ID, err)
	}
}

func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn, sess *sessions.Session) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}

		var msg wshub.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[WS] Bad message from %s: %v\n", sess.ID, err)
			continue
		}

		switch msg.Type {
		case wshub.MsgStart:
			err = sess.Do(ctx, (*gamedata.Game).Start)
		case wshub.MsgShot:
			p := geom.Pt(msg.X, msg.Y)
			err = sess.Do(ctx, func(g *gamedata.Game) { g.Shoot(p) })
		default:
			log.Printf("[WS] Unknown message type %q from %s\n", msg.Type, sess.ID)
		}
		if err != nil {
			return
		}
	}
}
