package login

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/leapstack-labs/pbconsole/internal/auth"
	"github.com/leapstack-labs/pbconsole/internal/ui/components"
	"github.com/leapstack-labs/pbconsole/internal/ui/features/common"
)

// Handlers provides HTTP handlers for the login feature.
type Handlers struct {
	auth   *auth.Manager
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(manager *auth.Manager, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{auth: manager, logger: logger}
}

// LoginPage renders the login form. Logged-in operators go straight home.
func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	if h.auth.State(r).Authenticated {
		http.Redirect(w, r, HomePath, http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, components.LoginData{})
}

// Login validates the form and signs the operator in.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	data := components.LoginData{Username: username}
	if fe := auth.ValidateForm(username, password); !fe.Empty() {
		data.Errors = fe
		h.render(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	if _, err := h.auth.Login(w, r, username, password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			data.Errors.Form = auth.MsgInvalidCredentials
			h.render(w, r, http.StatusUnauthorized, data)
			return
		}
		h.logger.Error("login failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, HomePath, http.StatusSeeOther)
}

// Logout clears the session and returns to the login page.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(w, r); err != nil {
		h.logger.Error("logout failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, data components.LoginData) {
	data.Layout = common.LayoutData{Title: "Login", CurrentPath: LoginPath}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := components.LoginPage(data).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render login page", "error", err)
	}
}
