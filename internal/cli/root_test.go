package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leapstack-labs/pbconsole/internal/cli/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	for _, name := range []string{"serve", "watch", "playbooks", "mock-backend", "version", "completion"} {
		found, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, found.Name())
	}
	for _, flag := range []string{"config", "backend-url", "verbose", "log-format"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestRootCmd_Version(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "pbconsole v"+Version)
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	_, _, err := run(t, "--backend-url", "not a url", "playbooks")
	assert.ErrorContains(t, err, "backend_url")
}

func TestRootCmd_PlaybooksAgainstBackend(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"_id":"p1","name":"Containment","state":"RUNNING"}]`))
	}))
	defer ts.Close()

	out, stderr, err := run(t, "--backend-url", ts.URL, "--verbose", "--log-format", "json", "playbooks", "-o", "json")
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0]["_id"])
	assert.Contains(t, stderr, `"msg":"backend request"`, "debug logs go to stderr as JSON")
}

func TestRootCmd_LoadsConfigIntoContext(t *testing.T) {
	var seen *config.Config
	cmd := NewRootCmd()
	cmd.AddCommand(&cobra.Command{
		Use: "inspect",
		RunE: func(cmd *cobra.Command, _ []string) error {
			seen = config.FromContext(cmd.Context())
			return nil
		},
	})
	t.Chdir(t.TempDir())
	cmd.SetArgs([]string{"--backend-url", "http://example.test:9000", "inspect"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	require.NotNil(t, seen)
	assert.Equal(t, "http://example.test:9000", seen.BackendURL)
	assert.Equal(t, config.DefaultUIPort, seen.UI.Port)
}

func TestCompletionCommand(t *testing.T) {
	tests := []struct {
		shell string
		want  string
	}{
		{shell: "bash", want: "bash completion"},
		{shell: "zsh", want: "#compdef pbconsole"},
		{shell: "fish", want: "complete -c pbconsole"},
		{shell: "powershell", want: "Register-ArgumentCompleter"},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			out, _, err := run(t, "completion", tt.shell)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}

	_, _, err := run(t, "completion", "tcsh")
	assert.Error(t, err)
}
