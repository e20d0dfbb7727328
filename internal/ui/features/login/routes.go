// Package login provides the login and logout endpoints.
package login

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/pbconsole/internal/auth"
)

// Paths used by the rest of the UI.
const (
	LoginPath  = "/login"
	LogoutPath = "/logout"
	HomePath   = "/home"
)

// SetupRoutes configures routes for the login feature. These routes are public.
func SetupRoutes(router chi.Router, manager *auth.Manager, logger *slog.Logger) error {
	handlers := NewHandlers(manager, logger)

	router.Get(LoginPath, handlers.LoginPage)
	router.Post(LoginPath, handlers.Login)
	router.Post(LogoutPath, handlers.Logout)

	return nil
}
