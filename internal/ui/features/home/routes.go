// Package home provides the systems and playbooks landing page.
package home

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/pbconsole/internal/catalog"
	"github.com/leapstack-labs/pbconsole/internal/ui/notifier"
)

// SetupRoutes configures routes for the home feature.
func SetupRoutes(
	router chi.Router,
	playbooks PlaybookLister,
	systems *catalog.Catalog,
	notify *notifier.Notifier[struct{}],
	logger *slog.Logger,
) error {
	handlers := NewHandlers(playbooks, systems, notify, logger)

	router.Get("/", handlers.HomePage)
	router.Get("/home", handlers.HomePage)
	router.Get("/updates", handlers.HomePageUpdates)

	return nil
}
