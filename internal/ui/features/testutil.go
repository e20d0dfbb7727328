// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/pbconsole/internal/auth"
	"github.com/leapstack-labs/pbconsole/internal/backend"
	"github.com/leapstack-labs/pbconsole/internal/catalog"
	"github.com/leapstack-labs/pbconsole/internal/testutil"
	"github.com/leapstack-labs/pbconsole/internal/ui/notifier"
	"github.com/leapstack-labs/pbconsole/pkg/core"
)

// Test credentials accepted by the fixture's auth manager.
const (
	TestUser     = "admin"
	TestPassword = "admin"
)

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Backend      *FakeBackend
	Client       *backend.Client
	Catalog      *catalog.Catalog
	Notifier     *notifier.Notifier[struct{}]
	SessionStore *sessions.CookieStore
	Auth         *auth.Manager

	t *testing.T
}

// SetupTestFixture creates a fixture backed by an httptest playbook backend
// seeded with the given playbooks. The catalog holds the built-in systems.
func SetupTestFixture(t *testing.T, playbooks ...core.Playbook) *TestFixture {
	t.Helper()

	logger := testutil.NewTestLogger(t)

	fb := NewFakeBackend(playbooks...)
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)

	client, err := backend.NewClient(srv.URL, backend.WithLogger(logger))
	require.NoError(t, err)

	store := NewTestSessionStore()

	return &TestFixture{
		Backend:      fb,
		Client:       client,
		Catalog:      catalog.Static(catalog.Defaults()),
		Notifier:     notifier.New[struct{}](),
		SessionStore: store,
		Auth:         auth.NewManager(store, auth.StaticAuthenticator{Username: TestUser, Password: TestPassword}, logger),
		t:            t,
	}
}

// LoginCookies logs the test user in and returns the resulting session cookies.
func (f *TestFixture) LoginCookies() []*http.Cookie {
	f.t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	rec := httptest.NewRecorder()
	_, err := f.Auth.Login(rec, req, TestUser, TestPassword)
	require.NoError(f.t, err)

	cookies := rec.Result().Cookies()
	require.NotEmpty(f.t, cookies)
	return cookies
}

// AuthedRequest builds a request carrying a logged-in session, with the auth
// state already attached to its context as the router middleware would.
func (f *TestFixture) AuthedRequest(method, target string, cookies []*http.Cookie) *http.Request {
	f.t.Helper()

	req := httptest.NewRequest(method, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	st := f.Auth.State(req)
	require.True(f.t, st.Authenticated, "cookies must belong to a logged-in session")
	return req.WithContext(auth.WithState(req.Context(), st))
}

// FormRequest builds a urlencoded POST request.
func FormRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// RequestWithPathParams wraps a request with chi URL params given as key/value pairs.
func RequestWithPathParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// RequestWithTimeout wraps a request with a context timeout released at test end.
func RequestWithTimeout(t *testing.T, r *http.Request, timeout time.Duration) *http.Request {
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	t.Cleanup(cancel)
	return r.WithContext(ctx)
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}

// FakeBackend is an in-memory playbook backend served over HTTP.
type FakeBackend struct {
	mu        sync.Mutex
	playbooks []core.Playbook
	steps     map[string][]core.Step
	logs      map[string][]any
	status    int

	playbookCalls int
	transitions   []transition
}

type transition struct {
	id    string
	state core.PlaybookState
	after int
}

// NewFakeBackend creates a backend holding playbooks.
func NewFakeBackend(playbooks ...core.Playbook) *FakeBackend {
	return &FakeBackend{
		playbooks: playbooks,
		steps:     make(map[string][]core.Step),
		logs:      make(map[string][]any),
	}
}

// SetSteps replaces the steps of a playbook.
func (b *FakeBackend) SetSteps(id string, steps []core.Step) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.steps[id] = steps
}

// SetLogs replaces the raw log records of a playbook.
func (b *FakeBackend) SetLogs(id string, logs ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logs[id] = logs
}

// SetPlaybooks replaces the playbook collection.
func (b *FakeBackend) SetPlaybooks(playbooks ...core.Playbook) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.playbooks = playbooks
}

// SetStateAfter switches a playbook to state once the collection has been
// served the given number of times.
func (b *FakeBackend) SetStateAfter(id string, state core.PlaybookState, calls int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transitions = append(b.transitions, transition{id: id, state: state, after: calls})
}

// Fail makes every endpoint answer with status. Zero restores normal answers.
func (b *FakeBackend) Fail(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = status
}

// PlaybookCalls returns how many times the collection was requested.
func (b *FakeBackend) PlaybookCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.playbookCalls
}

// ServeHTTP implements http.Handler.
func (b *FakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.status != 0 {
		w.WriteHeader(b.status)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	var body any
	switch {
	case len(parts) == 1 && parts[0] == "playbooks":
		b.playbookCalls++
		b.applyTransitions()
		body = b.playbooks
	case len(parts) == 3 && parts[0] == "playbooks" && parts[2] == "steps":
		body = nonNil(b.steps[parts[1]])
	case len(parts) == 3 && parts[0] == "playbooks" && parts[2] == "logs":
		body = nonNil(b.logs[parts[1]])
	default:
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func (b *FakeBackend) applyTransitions() {
	for _, tr := range b.transitions {
		if b.playbookCalls <= tr.after {
			continue
		}
		for i := range b.playbooks {
			if b.playbooks[i].ID == tr.id {
				b.playbooks[i].State = tr.state
			}
		}
	}
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
