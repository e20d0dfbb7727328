package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
)

// Config holds configuration for the development backend.
type Config struct {
	Store *Store
	Port  int
	// SimulateInterval advances running playbooks on every tick. Zero disables it.
	SimulateInterval time.Duration
	Logger           *slog.Logger
	Now              func() time.Time
}

// Server serves the playbook backend API.
type Server struct {
	store    *Store
	port     int
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewServer creates a new backend server.
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Server{
		store:    cfg.Store,
		port:     cfg.Port,
		interval: cfg.SimulateInterval,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(middleware.Recoverer)

	r.Get("/playbooks", s.listPlaybooks)
	r.Get("/playbooks/{id}/steps", s.listSteps)
	r.Get("/playbooks/{id}/logs", s.listLogs)

	return r
}

// Serve starts the backend and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting mock backend", "addr", fmt.Sprintf("http://localhost:%d", s.port), "simulate", s.interval)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.interval > 0 {
		eg.Go(func() error {
			return s.Simulate(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Simulate advances running playbooks on every tick until ctx is cancelled.
func (s *Server) Simulate(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.store.Advance(ctx, s.now()); err != nil && ctx.Err() == nil {
				s.logger.Error("simulation step failed", "error", err)
			}
		}
	}
}

func (s *Server) listPlaybooks(w http.ResponseWriter, r *http.Request) {
	playbooks, err := s.store.Playbooks(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playbooks)
}

func (s *Server) listSteps(w http.ResponseWriter, r *http.Request) {
	steps, err := s.store.Steps(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, steps)
}

func (s *Server) listLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.store.Logs(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrPlaybookNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	s.logger.Error("backend request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
