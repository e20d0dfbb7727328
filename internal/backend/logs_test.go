package backend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/pbconsole/pkg/core"
)

func TestNormalizeLog(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC)
	stamp := "Wed, 04 Mar 2026 10:30:00 GMT"

	tests := []struct {
		name string
		raw  any
		want core.LogEntry
	}{
		{
			name: "plain string",
			raw:  "hello",
			want: core.LogEntry{Text: "hello", Timestamp: stamp},
		},
		{
			name: "message object",
			raw:  map[string]any{"message": "x"},
			want: core.LogEntry{Text: "x", Timestamp: stamp},
		},
		{
			name: "message object with extra fields",
			raw:  map[string]any{"message": "deploy started", "level": "info"},
			want: core.LogEntry{Text: "deploy started", Timestamp: stamp},
		},
		{
			name: "text and timestamp pass through",
			raw:  map[string]any{"text": "y", "timestamp": "T"},
			want: core.LogEntry{Text: "y", Timestamp: "T"},
		},
		{
			name: "empty message falls back to json",
			raw:  map[string]any{"message": ""},
			want: core.LogEntry{Text: `{"message":""}`, Timestamp: stamp},
		},
		{
			name: "text without timestamp is shown as json",
			raw:  map[string]any{"text": "orphan"},
			want: core.LogEntry{Text: `{"text":"orphan"}`, Timestamp: stamp},
		},
		{
			name: "unknown object is shown as json",
			raw:  map[string]any{"code": float64(7)},
			want: core.LogEntry{Text: `{"code":7}`, Timestamp: stamp},
		},
		{
			name: "number is shown as json",
			raw:  float64(42),
			want: core.LogEntry{Text: "42", Timestamp: stamp},
		},
		{
			name: "null is shown as json",
			raw:  nil,
			want: core.LogEntry{Text: "null", Timestamp: stamp},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLog(tt.raw, now))
		})
	}
}

func TestNormalizeLogs_PreservesOrder(t *testing.T) {
	now := time.Now()
	got := NormalizeLogs([]any{"a", map[string]any{"message": "b"}, "c"}, now)

	texts := make([]string, len(got))
	for i, e := range got {
		texts[i] = e.Text
	}
	assert.Equal(t, []string{"a", "b", "c"}, texts)
}
