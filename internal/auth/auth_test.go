package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/pbconsole/internal/testutil"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	store := sessions.NewCookieStore([]byte("test-secret-0123456789abcdef"))
	return NewManager(store, StaticAuthenticator{Username: "admin", Password: "admin"}, testutil.NewTestLogger(t))
}

func loginCookies(t *testing.T, m *Manager) []*http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	_, err := m.Login(rec, req, "admin", "admin")
	require.NoError(t, err)
	return rec.Result().Cookies()
}

func requestWith(cookies []*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestValidateForm(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		want     FormErrors
	}{
		{name: "both present", username: "admin", password: "x", want: FormErrors{}},
		{name: "missing username", username: "  ", password: "x", want: FormErrors{Username: MsgUsernameRequired}},
		{name: "missing password", username: "admin", password: "", want: FormErrors{Password: MsgPasswordRequired}},
		{name: "both missing", want: FormErrors{Username: MsgUsernameRequired, Password: MsgPasswordRequired}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateForm(tt.username, tt.password)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want == FormErrors{}, got.Empty())
		})
	}
}

func TestStaticAuthenticator(t *testing.T) {
	a := StaticAuthenticator{Username: "admin", Password: "admin"}
	assert.True(t, a.Check("admin", "admin"))
	assert.False(t, a.Check("admin", "nope"))
	assert.False(t, a.Check("root", "admin"))
	assert.False(t, a.Check("", ""))
}

func TestManager_LoginAndState(t *testing.T) {
	m := newTestManager(t)

	assert.False(t, m.State(requestWith(nil)).Authenticated)

	cookies := loginCookies(t, m)
	st := m.State(requestWith(cookies))
	assert.True(t, st.Authenticated)
	assert.Equal(t, "admin", st.User)
	assert.NotEmpty(t, st.SID)
}

func TestManager_LoginRejectsBadCredentials(t *testing.T) {
	m := newTestManager(t)
	rec := httptest.NewRecorder()

	_, err := m.Login(rec, httptest.NewRequest(http.MethodPost, "/login", nil), "admin", "wrong")
	require.True(t, errors.Is(err, ErrInvalidCredentials))
	assert.Empty(t, rec.Result().Cookies())
}

func TestManager_LogoutClearsAndNotifies(t *testing.T) {
	m := newTestManager(t)
	cookies := loginCookies(t, m)
	sid := m.State(requestWith(cookies)).SID

	events := m.Subscribe()
	defer m.Unsubscribe(events)

	rec := httptest.NewRecorder()
	require.NoError(t, m.Logout(rec, requestWith(cookies)))

	select {
	case ev := <-events:
		assert.Equal(t, Event{Kind: LoggedOut, SID: sid, User: "admin"}, ev)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("logout event not delivered")
	}

	cleared := rec.Result().Cookies()
	require.NotEmpty(t, cleared)
	assert.True(t, cleared[0].MaxAge < 0, "cookie must be expired")
	assert.False(t, m.State(requestWith(cleared)).Authenticated)
}

func TestRequireAuth(t *testing.T) {
	m := newTestManager(t)
	protected := m.Attach(RequireAuth("/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello " + FromContext(r.Context()).User))
	})))

	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, requestWith(nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, requestWith(loginCookies(t, m)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello admin", rec.Body.String())
}
