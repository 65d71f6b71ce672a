package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hilodev/csuodo/internal/api/handlers"
	"github.com/hilodev/csuodo/internal/config"
	"github.com/hilodev/csuodo/internal/odometer"
	"github.com/hilodev/csuodo/internal/scheduler"
)

// Server holds the HTTP server and all handler dependencies.
type Server struct {
	addr string
	srv  *http.Server
}

// New wires all routes and returns a Server ready to Run.
func New(
	addr string,
	db *sql.DB,
	cfg *config.Config,
	mgr *odometer.Manager,
	store odometer.Store,
	sched *scheduler.Scheduler,
	onSchedule func(expr string) error,
	version string,
) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	statusH := &handlers.StatusHandler{DB: db, Manager: mgr, Sched: sched, Paused: cfg.Paused, Version: version}
	runsH := &handlers.RunsHandler{DB: db, Manager: mgr}
	odoH := &handlers.OdometerHandler{DB: db}
	cacheH := &handlers.CacheHandler{Store: store}
	configH := &handlers.ConfigHandler{DB: db, Cfg: cfg, OnSchedule: onSchedule}

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", statusH.ServeHTTP)

		r.Post("/runs", runsH.Create)
		r.Get("/runs", runsH.List)
		r.Get("/runs/{id}", runsH.Get)
		r.Delete("/runs/current", runsH.Cancel)

		r.Get("/odometer", odoH.Bars)
		r.Get("/odometer/slits", odoH.Slits)

		r.Delete("/cache", cacheH.Delete)

		r.Get("/config", configH.Get)
		r.Patch("/config", configH.Update)
	})

	return &Server{
		addr: addr,
		srv:  &http.Server{Addr: addr, Handler: r},
	}
}

// Run starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", s.addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down HTTP server")
		return s.srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}
