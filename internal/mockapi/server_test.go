package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/leapstack-labs/pbconsole/internal/backend"
	"github.com/leapstack-labs/pbconsole/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T) (*Store, *httptest.Server) {
	t.Helper()
	store := seededStore(t)
	srv := NewServer(Config{Store: store})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return store, ts
}

func TestServer_Routes(t *testing.T) {
	_, ts := setupTestServer(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantLen    int
	}{
		{name: "playbooks", path: "/playbooks", wantStatus: http.StatusOK, wantLen: 3},
		{name: "steps", path: "/playbooks/pb-002/steps", wantStatus: http.StatusOK, wantLen: 3},
		{name: "logs", path: "/playbooks/pb-003/logs", wantStatus: http.StatusOK, wantLen: 3},
		{name: "unknown steps", path: "/playbooks/nope/steps", wantStatus: http.StatusNotFound},
		{name: "unknown logs", path: "/playbooks/nope/logs", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(ts.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
			if tt.wantStatus != http.StatusOK {
				return
			}

			var body []any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Len(t, body, tt.wantLen)
		})
	}
}

func TestServer_ServesConsoleClient(t *testing.T) {
	_, ts := setupTestServer(t)
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

	client, err := backend.NewClient(ts.URL, backend.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	ctx := context.Background()

	pb, err := client.Playbook(ctx, "pb-002")
	require.NoError(t, err)
	require.NotNil(t, pb)
	assert.Equal(t, "Phishing triage", pb.Name)
	assert.Equal(t, core.PlaybookRunning, pb.State)

	logs, err := client.Logs(ctx, "pb-001")
	require.NoError(t, err)
	assert.Equal(t, []core.LogEntry{
		{Text: "Playbook started", Timestamp: "Tue, 05 Mar 2024 08:50:30 GMT"},
		{Text: "Encryption activity confirmed on host-17", Timestamp: "Tue, 05 Mar 2024 12:00:00 GMT"},
		{Text: "Isolating host-17", Timestamp: "Tue, 05 Mar 2024 12:00:00 GMT"},
	}, logs)

	_, err = client.Steps(ctx, "nope")
	var statusErr *backend.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestServer_Simulate(t *testing.T) {
	store := seededStore(t)
	srv := NewServer(Config{Store: store, SimulateInterval: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Simulate(ctx) }()

	assert.Eventually(t, func() bool {
		playbooks, err := store.Playbooks(context.Background())
		if err != nil {
			return false
		}
		for _, pb := range playbooks {
			if pb.State != core.PlaybookEnded {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
