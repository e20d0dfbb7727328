package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/pbconsole/internal/cli/config"
	"github.com/leapstack-labs/pbconsole/pkg/core"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const playbooksJSON = `[
	{"_id":"p1","name":"Containment","playbook_type":"mitigation","created_by":"soc","started":"2024-03-05T10:20:30Z","state":"RUNNING"},
	{"_id":"p2","name":"Rollout","playbook_type":"deployment","created_by":"ops","state":"END"}
]`

func backendServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/playbooks" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func execute(t *testing.T, cmd *cobra.Command, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(config.WithConfig(context.Background(), cfg))
	return out.String(), err
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{cmd: NewServeCommand(), use: "serve", flags: []string{"port", "systems", "poll-interval"}},
		{cmd: NewWatchCommand(), use: "watch <playbook-id>", flags: []string{"log-file", "log-lines"}},
		{cmd: NewPlaybooksCommand(), use: "playbooks", flags: []string{"output", "state"}},
		{cmd: NewMockBackendCommand(), use: "mock-backend", flags: []string{"port", "database", "simulate", "no-seed"}},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short)
			assert.NotEmpty(t, tt.cmd.Example)
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestFlagsBindToConfigKeys(t *testing.T) {
	tests := []struct {
		cmd  *cobra.Command
		flag string
		key  string
	}{
		{cmd: NewServeCommand(), flag: "port", key: "ui.port"},
		{cmd: NewServeCommand(), flag: "systems", key: "systems_file"},
		{cmd: NewMockBackendCommand(), flag: "port", key: "mock.port"},
		{cmd: NewMockBackendCommand(), flag: "simulate", key: "mock.simulate_interval"},
	}

	for _, tt := range tests {
		t.Run(tt.cmd.Name()+" "+tt.flag, func(t *testing.T) {
			f := tt.cmd.Flags().Lookup(tt.flag)
			require.NotNil(t, f)
			assert.Equal(t, []string{tt.key}, f.Annotations[config.KeyAnnotation])
		})
	}
}

func TestPlaybooksCommand_JSON(t *testing.T) {
	ts := backendServer(t, http.StatusOK, playbooksJSON)
	cfg := &config.Config{BackendURL: ts.URL, Output: "json"}

	out, err := execute(t, NewPlaybooksCommand(), cfg)
	require.NoError(t, err)

	var got []core.Playbook
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, core.PlaybookEnded, got[1].State)
}

func TestPlaybooksCommand_StateFilter(t *testing.T) {
	ts := backendServer(t, http.StatusOK, playbooksJSON)
	cfg := &config.Config{BackendURL: ts.URL, Output: "json"}

	out, err := execute(t, NewPlaybooksCommand(), cfg, "--state", "end")
	require.NoError(t, err)

	var got []core.Playbook
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "p2", got[0].ID)

	out, err = execute(t, NewPlaybooksCommand(), cfg, "--state", "PAUSED")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestPlaybooksCommand_Table(t *testing.T) {
	ts := backendServer(t, http.StatusOK, playbooksJSON)
	cfg := &config.Config{BackendURL: ts.URL, Output: "text"}

	out, err := execute(t, NewPlaybooksCommand(), cfg)
	require.NoError(t, err)

	for _, want := range []string{"CREATED BY", "Containment", "Mitigation", "Deployment", "RUNNING", "END", "05/03/2024 10:20", "2 playbook(s)"} {
		assert.Contains(t, out, want)
	}
}

func TestPlaybooksCommand_Empty(t *testing.T) {
	ts := backendServer(t, http.StatusOK, `[]`)
	cfg := &config.Config{BackendURL: ts.URL, Output: "text"}

	out, err := execute(t, NewPlaybooksCommand(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "No playbooks.\n", out)
}

func TestPlaybooksCommand_BackendError(t *testing.T) {
	ts := backendServer(t, http.StatusBadGateway, `oops`)
	cfg := &config.Config{BackendURL: ts.URL, Output: "json"}

	_, err := execute(t, NewPlaybooksCommand(), cfg)
	assert.ErrorContains(t, err, "failed to fetch playbooks")
}

func TestServeCommand_RequiresCredentials(t *testing.T) {
	cfg := &config.Config{BackendURL: "http://localhost:1", UI: config.UIConfig{Port: 8080}}

	_, err := execute(t, NewServeCommand(), cfg)
	assert.ErrorContains(t, err, "session_secret")
}

func TestWatchCommand_Args(t *testing.T) {
	cfg := &config.Config{BackendURL: "http://localhost:1"}

	_, err := execute(t, NewWatchCommand(), cfg)
	assert.Error(t, err)

	_, err = execute(t, NewWatchCommand(), cfg, "a", "b")
	assert.Error(t, err)
}

func TestOpenMockStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "backend.db")

	store, err := openMockStore(ctx, path, true, nil)
	require.NoError(t, err)
	playbooks, err := store.Playbooks(ctx)
	require.NoError(t, err)
	assert.Len(t, playbooks, 3)
	require.NoError(t, store.Close())

	// Reopening keeps the data and does not seed twice.
	store, err = openMockStore(ctx, path, true, nil)
	require.NoError(t, err)
	defer store.Close()
	playbooks, err = store.Playbooks(ctx)
	require.NoError(t, err)
	assert.Len(t, playbooks, 3)
}

func TestOpenMockStore_NoSeed(t *testing.T) {
	ctx := context.Background()

	store, err := openMockStore(ctx, ":memory:", false, nil)
	require.NoError(t, err)
	defer store.Close()

	playbooks, err := store.Playbooks(ctx)
	require.NoError(t, err)
	assert.Empty(t, playbooks)
}
