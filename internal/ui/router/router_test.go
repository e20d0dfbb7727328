package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/pbconsole/internal/testutil"
	"github.com/leapstack-labs/pbconsole/internal/ui/features"
	"github.com/leapstack-labs/pbconsole/pkg/core"
)

func setupRouter(t *testing.T) (http.Handler, *features.TestFixture) {
	t.Helper()
	f := features.SetupTestFixture(t, core.Playbook{ID: "p1", Name: "Contain host"})

	r := chi.NewMux()
	require.NoError(t, SetupRoutes(r, Deps{
		Backend:  f.Client,
		Systems:  f.Catalog,
		Auth:     f.Auth,
		Notifier: f.Notifier,
		Logger:   testutil.NewTestLogger(t),
	}))
	return r, f
}

func TestGuardedRoutesRedirectToLogin(t *testing.T) {
	r, _ := setupRouter(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/"},
		{http.MethodGet, "/home"},
		{http.MethodGet, "/updates"},
		{http.MethodGet, "/dashboard/1/p1"},
		{http.MethodGet, "/dashboard/1/p1/updates"},
		{http.MethodPost, "/dashboard/views/v1/refresh"},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "/login", rec.Header().Get("Location"))
		})
	}
}

func TestPublicRoutes(t *testing.T) {
	r, _ := setupRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoggedInReachesHome(t *testing.T) {
	r, f := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/home", nil)
	for _, c := range f.LoginCookies() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Contain host")
	assert.Contains(t, rec.Body.String(), `href="/dashboard/1/p1"`)
}
