package output

import (
	"bytes"
	"testing"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderer_Mode(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		want Mode
	}{
		{name: "auto on a pipe is json", mode: ModeAuto, want: ModeJSON},
		{name: "empty is auto", mode: "", want: ModeJSON},
		{name: "explicit text", mode: ModeText, want: ModeText},
		{name: "explicit json", mode: ModeJSON, want: ModeJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, tt.mode)
			assert.Equal(t, tt.want, r.Mode())
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}

func TestRenderer_JSON(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &bytes.Buffer{}, ModeJSON)

	require.NoError(t, r.JSON(map[string]string{"id": "p1"}))
	assert.Equal(t, "{\n  \"id\": \"p1\"\n}\n", out.String())
}

func TestRenderer_Table(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &bytes.Buffer{}, ModeText)

	r.Table(table.Row{"ID", "State"}, []table.Row{{"p1", "RUNNING"}})

	got := out.String()
	assert.Contains(t, got, "┌")
	assert.Contains(t, got, "STATE")
	assert.Contains(t, got, "p1")
	assert.Contains(t, got, "RUNNING")
}

func TestRenderer_Messages(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRenderer(&out, &errOut, ModeText)

	r.Success("done")
	r.Muted("quiet")
	r.Warning("careful")

	assert.Equal(t, "✓ done\nquiet\n", out.String(), "non-terminal output is not coloured")
	assert.Equal(t, "! careful\n", errOut.String())
}
