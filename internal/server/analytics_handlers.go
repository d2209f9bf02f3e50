package server

import (
	"log"
	"net/http"

	"targetshot/internal/analytics"

	"github.com/go-chi/chi/v5"
)

const bestGamesLimit = 10

func (s *Server) handleBestGames(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "Game history requires a database connection", http.StatusServiceUnavailable)
		return
	}

	q := analytics.NewQueries(s.DB)
	games, err := q.GetBestGames(bestGamesLimit)
	if err != nil {
		log.Printf("[Analytics] best games error: %v\n", err)
		http.Error(w, "Error loading games", http.StatusInternalServerError)
		return
	}
	if games == nil {
		games = []analytics.GameRecap{}
	}
	writeJSON(w, http.StatusOK, games)
}

func (s *Server) handleGameRecap(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "Game history requires a database connection", http.StatusServiceUnavailable)
		return
	}

	gameID := chi.URLParam(r, "id")
	q := analytics.NewQueries(s.DB)
	recap, err := q.GetGameRecap(gameID)
	if err != nil {
		log.Printf("[Analytics] game recap error: %v\n", err)
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, recap)
}
