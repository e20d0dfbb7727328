// Package dashboard provides the per-playbook dashboard and its live updates.
package dashboard

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/pbconsole/internal/auth"
	"github.com/leapstack-labs/pbconsole/internal/catalog"
	"github.com/leapstack-labs/pbconsole/internal/feed"
)

// SetupRoutes configures routes for the dashboard feature.
func SetupRoutes(
	router chi.Router,
	b feed.Backend,
	systems *catalog.Catalog,
	manager *auth.Manager,
	poll feed.Options,
	highlight time.Duration,
	logger *slog.Logger,
) error {
	handlers := NewHandlers(b, systems, manager, poll, highlight, logger)

	router.Get("/dashboard/{systemID}/{playbookID}", handlers.DashboardPage)
	router.Get("/dashboard/{systemID}/{playbookID}/updates", handlers.DashboardUpdates)
	router.Post("/dashboard/views/{viewID}/refresh", handlers.Refresh)

	return nil
}
