// Package auth keeps the operator's login state in a cookie session and
// announces login and logout to interested views.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/pbconsole/internal/ui/notifier"
)

// SessionName is the cookie session holding the auth state.
const SessionName = "pbconsole"

// Session value keys.
const (
	keyAuthenticated = "isAuthenticated"
	keyUser          = "user"
	keySID           = "sid"
)

// Login form messages shown to the operator.
const (
	MsgUsernameRequired   = "Username is required"
	MsgPasswordRequired   = "Password is required"
	MsgInvalidCredentials = "Invalid username or password"
)

// ErrInvalidCredentials is returned by Login when the pair does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Authenticator checks a username/password pair.
type Authenticator interface {
	Check(username, password string) bool
}

// StaticAuthenticator accepts a single configured pair.
type StaticAuthenticator struct {
	Username string
	Password string
}

// Check compares both fields in constant time.
func (a StaticAuthenticator) Check(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.Password)) == 1
	return userOK && passOK
}

// State is the auth state of one browser session.
type State struct {
	Authenticated bool
	User          string
	SID           string
}

// EventKind tells subscribers what happened.
type EventKind string

// Event kinds.
const (
	LoggedIn  EventKind = "logged_in"
	LoggedOut EventKind = "logged_out"
)

// Event is published on every login and logout.
type Event struct {
	Kind EventKind
	SID  string
	User string
}

// FormErrors holds per-field validation messages for the login form.
type FormErrors struct {
	Username string
	Password string
	Form     string
}

// Empty reports whether there are no messages.
func (e FormErrors) Empty() bool {
	return e.Username == "" && e.Password == "" && e.Form == ""
}

// ValidateForm checks the required login fields.
func ValidateForm(username, password string) FormErrors {
	var fe FormErrors
	if strings.TrimSpace(username) == "" {
		fe.Username = MsgUsernameRequired
	}
	if password == "" {
		fe.Password = MsgPasswordRequired
	}
	return fe
}

// Manager reads and writes auth state and publishes auth events.
type Manager struct {
	store  sessions.Store
	auth   Authenticator
	events *notifier.Notifier[Event]
	logger *slog.Logger
}

// NewManager creates a Manager.
func NewManager(store sessions.Store, authenticator Authenticator, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		store:  store,
		auth:   authenticator,
		events: notifier.NewBuffered[Event](4),
		logger: logger,
	}
}

// Subscribe returns a channel of auth events. Call Unsubscribe when done.
func (m *Manager) Subscribe() chan Event {
	return m.events.Subscribe()
}

// Unsubscribe stops delivery to ch and closes it.
func (m *Manager) Unsubscribe(ch chan Event) {
	m.events.Unsubscribe(ch)
}

// State returns the auth state stored in the request's session.
// An unreadable cookie reads as logged out.
func (m *Manager) State(r *http.Request) State {
	sess, err := m.store.Get(r, SessionName)
	if err != nil {
		return State{}
	}
	authed, _ := sess.Values[keyAuthenticated].(bool)
	user, _ := sess.Values[keyUser].(string)
	sid, _ := sess.Values[keySID].(string)
	if !authed {
		return State{}
	}
	return State{Authenticated: true, User: user, SID: sid}
}

// Login checks the credentials and, on success, marks the session authenticated.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, username, password string) (State, error) {
	if !m.auth.Check(username, password) {
		m.logger.Info("login rejected", "user", username)
		return State{}, ErrInvalidCredentials
	}

	sess, err := m.store.Get(r, SessionName)
	if err != nil && sess == nil {
		return State{}, fmt.Errorf("failed to load session: %w", err)
	}

	st := State{Authenticated: true, User: username, SID: uuid.NewString()}
	sess.Values[keyAuthenticated] = true
	sess.Values[keyUser] = st.User
	sess.Values[keySID] = st.SID
	if err := sess.Save(r, w); err != nil {
		return State{}, fmt.Errorf("failed to save session: %w", err)
	}

	m.logger.Info("operator logged in", "user", st.User)
	m.events.Broadcast(Event{Kind: LoggedIn, SID: st.SID, User: st.User})
	return st, nil
}

// Logout clears the session and tells open views of that session.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	prev := m.State(r)

	sess, err := m.store.Get(r, SessionName)
	if err != nil && sess == nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	delete(sess.Values, keyAuthenticated)
	delete(sess.Values, keyUser)
	delete(sess.Values, keySID)
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	if prev.Authenticated {
		m.logger.Info("operator logged out", "user", prev.User)
		m.events.Broadcast(Event{Kind: LoggedOut, SID: prev.SID, User: prev.User})
	}
	return nil
}

type stateKey struct{}

// WithState returns a context carrying st.
func WithState(ctx context.Context, st State) context.Context {
	return context.WithValue(ctx, stateKey{}, st)
}

// FromContext returns the auth state attached by Attach.
func FromContext(ctx context.Context) State {
	st, _ := ctx.Value(stateKey{}).(State)
	return st
}

// Attach is middleware that puts the request's auth state into its context.
func (m *Manager) Attach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithState(r.Context(), m.State(r))))
	})
}

// RequireAuth is middleware that redirects unauthenticated requests to loginPath.
// It must run after Attach.
func RequireAuth(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !FromContext(r.Context()).Authenticated {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
