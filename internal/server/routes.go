package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"targetshot/internal/config"
	"targetshot/internal/db"
	"targetshot/internal/feedback"
	"targetshot/internal/gamedata"
	"targetshot/internal/geom"
	"targetshot/internal/kv"
	"targetshot/internal/leaderboard"
	"targetshot/internal/metrics"
	"targetshot/internal/sessions"
	"targetshot/internal/targets"
	"targetshot/internal/wshub"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	apiTimeout       = 10 * time.Second
	shutdownTimeout  = 5 * time.Second
	dbConnectTimeout = 5 * time.Second
)

// Routes builds the HTTP surface. The WebSocket route sits outside the
// request timeout.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleHome)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	r.Get("/ws", s.handleWS)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(apiTimeout))
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/health", s.handleHealth)
		r.Get("/games", s.handleBestGames)
		r.Get("/games/{id}", s.handleGameRecap)
	})

	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics)
	}
	return r
}

func Run() error {
	appCfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional database connection
	var database *db.DB
	if appCfg.DatabaseURL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, dbConnectTimeout)
		conn, err := db.Connect(connectCtx, appCfg.DatabaseURL)
		cancel()
		if err != nil {
			log.Printf("[DB] Failed to connect: %v (running without database)\n", err)
		} else if err := conn.Migrate(); err != nil {
			log.Printf("[DB] Migration failed: %v (running without database)\n", err)
			conn.Close()
		} else {
			database = conn
			defer database.Close()
			log.Println("[DB] Database connected and migrations applied")
		}
	} else {
		log.Println("[DB] DATABASE_URL not set, running without database")
	}

	store, storeName, closeStore := openStore(ctx, appCfg, database)
	defer closeStore()
	log.Printf("[Store] Using %s backend\n", storeName)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec := metrics.New(reg)

	board := leaderboard.New(store)
	board.SetLocation(appCfg.Location)
	hub := wshub.NewHub()

	gameCfg := gamedata.DefaultConfig()
	gameCfg.RoundDuration = appCfg.RoundDuration
	targetCfg := targets.DefaultConfig()
	targetCfg.Area = geom.Size{W: appCfg.AreaWidth, H: appCfg.AreaHeight}

	srv := &Server{
		Sessions: sessions.NewStore(sessions.Deps{
			Game:           gameCfg,
			Targets:        targetCfg,
			MarkerDuration: feedback.DefaultDuration,
			Leaderboard:    board,
			Metrics:        rec,
			Hub:            hub,
		}),
		Hub:         hub,
		Leaderboard: board,
		Store:       store,
		StoreName:   storeName,
		Area:        targetCfg.Area,
		DB:          database,
		Metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}

	historyDone := make(chan struct{})
	if database != nil {
		srv.History = newHistoryWriter(database)
		go func() {
			defer close(historyDone)
			srv.History.Run(ctx)
		}()
	} else {
		close(historyDone)
	}

	httpSrv := &http.Server{
		Addr:        "0.0.0.0:" + appCfg.Port,
		Handler:     srv.Routes(),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("Server listening on http://localhost:%s\n", appCfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("[Server] Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	<-historyDone
	log.Println("[Server] Exited")
	return nil
}

// openStore picks the leaderboard backend. A backend that cannot be reached
// falls back to the file store, and the file store to memory.
func openStore(ctx context.Context, cfg config.Config, database *db.DB) (kv.Store, string, func()) {
	noop := func() {}

	switch cfg.StoreBackend {
	case config.BackendMemory:
		return kv.NewMemory(), config.BackendMemory, noop
	case config.BackendRedis:
		r, err := kv.NewRedis(ctx, kv.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err == nil {
			return r, config.BackendRedis, func() {
				if err := r.Close(); err != nil {
					log.Printf("[Store] Redis close error: %v\n", err)
				}
			}
		}
		log.Printf("[Store] %v (falling back to file store)\n", err)
	case config.BackendPostgres:
		if database != nil {
			return database, config.BackendPostgres, noop
		}
		log.Println("[Store] postgres backend needs DATABASE_URL (falling back to file store)")
	}

	f, err := kv.NewFile(cfg.DataDir)
	if err != nil {
		log.Printf("[Store] %v (falling back to memory store)\n", err)
		return kv.NewMemory(), config.BackendMemory, noop
	}
	return f, config.BackendFile, noop
}
