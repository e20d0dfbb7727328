// Package ui provides the web console for monitoring playbook runs.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/pbconsole/internal/auth"
	"github.com/leapstack-labs/pbconsole/internal/catalog"
	"github.com/leapstack-labs/pbconsole/internal/feed"
	"github.com/leapstack-labs/pbconsole/internal/ui/notifier"
	"github.com/leapstack-labs/pbconsole/internal/ui/router"
	"golang.org/x/sync/errgroup"
)

// Server is the web console server.
type Server struct {
	backend   feed.Backend
	systems   *catalog.Catalog
	auth      *auth.Manager
	port      int
	poll      feed.Options
	highlight time.Duration
	logger    *slog.Logger
	notifier  *notifier.Notifier[struct{}]
}

// Config holds configuration for the UI server.
type Config struct {
	Backend       feed.Backend
	Systems       *catalog.Catalog
	Port          int
	SessionSecret string
	Username      string
	Password      string
	Poll          feed.Options
	Highlight     time.Duration
	Logger        *slog.Logger
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400) // 1 day
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	authenticator := auth.StaticAuthenticator{Username: cfg.Username, Password: cfg.Password}

	return &Server{
		backend:   cfg.Backend,
		systems:   cfg.Systems,
		auth:      auth.NewManager(sessionStore, authenticator, logger),
		port:      cfg.Port,
		poll:      cfg.Poll,
		highlight: cfg.Highlight,
		logger:    logger,
		notifier:  notifier.New[struct{}](),
	}
}

// Handler builds the console's HTTP handler.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	err := router.SetupRoutes(r, router.Deps{
		Backend:   s.backend,
		Systems:   s.systems,
		Auth:      s.auth,
		Notifier:  s.notifier,
		Poll:      s.poll,
		Highlight: s.highlight,
		Logger:    s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting UI server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	handler, err := s.Handler()
	if err != nil {
		return err
	}

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Reload the systems catalog when its file changes.
	if s.systems != nil && s.systems.Path() != "" {
		eg.Go(func() error {
			return s.systems.Watch(egctx, s.logger, s.notifyClients)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown. Open update streams end with the base context.
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Notifier returns the server's notifier for home page updates.
func (s *Server) Notifier() *notifier.Notifier[struct{}] {
	return s.notifier
}

// notifyClients tells every open home page to re-render.
func (s *Server) notifyClients() {
	s.notifier.Broadcast(struct{}{})
}
