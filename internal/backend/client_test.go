package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/pbconsole/pkg/core"
)

func newTestBackend(t *testing.T, routes map[string]string, status int) *Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/", WithClock(func() time.Time {
		return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	}))
	require.NoError(t, err)
	return c
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient("ftp://example.com")
	require.Error(t, err)

	_, err = NewClient("://bad")
	require.Error(t, err)
}

func TestClient_Playbooks(t *testing.T) {
	c := newTestBackend(t, map[string]string{
		"/playbooks": `[{"_id":"a","name":"Contain host","state":"RUNNING","playbook_type":"Mitigation"},{"_id":"b","name":"Rotate keys","state":"END"}]`,
	}, http.StatusOK)

	playbooks, err := c.Playbooks(context.Background())
	require.NoError(t, err)
	require.Len(t, playbooks, 2)
	assert.Equal(t, "a", playbooks[0].ID)
	assert.Equal(t, core.PlaybookRunning, playbooks[0].State)
	assert.Equal(t, "Mitigation", playbooks[0].Type)
	assert.Equal(t, core.PlaybookEnded, playbooks[1].State)
}

func TestClient_Playbook_Miss(t *testing.T) {
	c := newTestBackend(t, map[string]string{
		"/playbooks": `[{"_id":"a"},{"_id":"b"}]`,
	}, http.StatusOK)

	pb, err := c.Playbook(context.Background(), "c")
	require.NoError(t, err)
	assert.Nil(t, pb)

	pb, err = c.Playbook(context.Background(), "b")
	require.NoError(t, err)
	require.NotNil(t, pb)
	assert.Equal(t, "b", pb.ID)
}

func TestClient_Steps(t *testing.T) {
	c := newTestBackend(t, map[string]string{
		"/playbooks/p1/steps": `[{"id":"1","pb_id":"p1","name":"Isolate","active":true,"check":false},{"id":"2","pb_id":"p1","name":"Scan","active":false,"check":false}]`,
	}, http.StatusOK)

	steps, err := c.Steps(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, core.StepRunning, steps[0].Status())
	assert.Equal(t, core.StepNotStarted, steps[1].Status())
}

func TestClient_NumericIDs(t *testing.T) {
	c := newTestBackend(t, map[string]string{
		"/playbooks":         `[{"_id":1,"name":"Contain host","state":"RUNNING"},{"_id":2,"name":"Rotate keys","state":"END"}]`,
		"/playbooks/1/steps": `[{"id":1,"pb_id":1,"active":true},{"id":2,"pb_id":1,"check":true}]`,
	}, http.StatusOK)

	steps, err := c.Steps(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "1", steps[0].ID)
	assert.Equal(t, "1", steps[0].PlaybookID)
	assert.Equal(t, core.StepRunning, steps[0].Status())
	assert.Equal(t, "2", steps[1].ID)
	assert.Equal(t, core.StepCompleted, steps[1].Status())

	pb, err := c.Playbook(context.Background(), "2")
	require.NoError(t, err)
	require.NotNil(t, pb)
	assert.Equal(t, "Rotate keys", pb.Name)
}

func TestClient_Logs_Normalizes(t *testing.T) {
	c := newTestBackend(t, map[string]string{
		"/playbooks/p1/logs": `["hello",{"message":"x"},{"text":"y","timestamp":"T"}]`,
	}, http.StatusOK)

	logs, err := c.Logs(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, []core.LogEntry{
		{Text: "hello", Timestamp: "Fri, 02 Jan 2026 03:04:05 GMT"},
		{Text: "x", Timestamp: "Fri, 02 Jan 2026 03:04:05 GMT"},
		{Text: "y", Timestamp: "T"},
	}, logs)
}

func TestClient_NonSuccessStatus(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError} {
		c := newTestBackend(t, map[string]string{"/playbooks": `[]`}, status)

		_, err := c.Playbooks(context.Background())
		require.Error(t, err)

		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, status, statusErr.StatusCode)
	}
}

func TestClient_MalformedPayload(t *testing.T) {
	c := newTestBackend(t, map[string]string{
		"/playbooks/p1/steps": `{"not":"an array"}`,
	}, http.StatusOK)

	_, err := c.Steps(context.Background(), "p1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed response")
}

func TestFindPlaybook(t *testing.T) {
	playbooks := []core.Playbook{{ID: "a"}, {ID: "b"}}

	assert.Nil(t, FindPlaybook(playbooks, "c"))
	assert.Nil(t, FindPlaybook(nil, "a"))

	got := FindPlaybook(playbooks, "a")
	require.NotNil(t, got)
	got.Name = "mutated"
	assert.Empty(t, playbooks[0].Name, "lookup must not alias the collection")
}
