// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/pbconsole/internal/auth"
	"github.com/leapstack-labs/pbconsole/internal/catalog"
	"github.com/leapstack-labs/pbconsole/internal/feed"
	dashboardFeature "github.com/leapstack-labs/pbconsole/internal/ui/features/dashboard"
	homeFeature "github.com/leapstack-labs/pbconsole/internal/ui/features/home"
	loginFeature "github.com/leapstack-labs/pbconsole/internal/ui/features/login"
	"github.com/leapstack-labs/pbconsole/internal/ui/notifier"
	"github.com/leapstack-labs/pbconsole/internal/ui/resources"
)

// Deps are the services the feature routes are built from.
type Deps struct {
	Backend   feed.Backend
	Systems   *catalog.Catalog
	Auth      *auth.Manager
	Notifier  *notifier.Notifier[struct{}]
	Poll      feed.Options
	Highlight time.Duration
	Logger    *slog.Logger
}

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(router chi.Router, deps Deps) error {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}

	router.Use(deps.Auth.Attach)

	// Static assets
	router.Handle("/static/*", resources.Handler())

	if err := loginFeature.SetupRoutes(router, deps.Auth, deps.Logger); err != nil {
		return err
	}

	var err error
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(loginFeature.LoginPath))

		if err = homeFeature.SetupRoutes(r, deps.Backend, deps.Systems, deps.Notifier, deps.Logger); err != nil {
			return
		}
		err = dashboardFeature.SetupRoutes(r, deps.Backend, deps.Systems, deps.Auth, deps.Poll, deps.Highlight, deps.Logger)
	})
	return err
}
