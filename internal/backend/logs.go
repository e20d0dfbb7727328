package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/leapstack-labs/pbconsole/pkg/core"
)

// ErrorLogText is the text of the synthetic entry shown when logs cannot be fetched.
const ErrorLogText = "Error fetching logs"

// logRecord is the union of the object shapes the backend emits for log lines.
type logRecord struct {
	Text      string `mapstructure:"text"`
	Timestamp string `mapstructure:"timestamp"`
	Message   string `mapstructure:"message"`
}

// FormatTimestamp renders t the way synthetic log timestamps are stamped.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}

// NormalizeLogs converts raw backend records into LogEntry values.
func NormalizeLogs(raw []any, now time.Time) []core.LogEntry {
	entries := make([]core.LogEntry, 0, len(raw))
	for _, r := range raw {
		entries = append(entries, NormalizeLog(r, now))
	}
	return entries
}

// NormalizeLog converts a single raw record into a LogEntry.
//
// Objects carrying both text and timestamp pass through. Objects with a message use it
// as the text. Strings become the text. Anything else is shown as its JSON encoding.
// Entries without their own timestamp are stamped with now.
func NormalizeLog(raw any, now time.Time) core.LogEntry {
	stamp := FormatTimestamp(now)

	switch v := raw.(type) {
	case string:
		return core.LogEntry{Text: v, Timestamp: stamp}
	case map[string]any:
		_, hasText := v["text"]
		_, hasTimestamp := v["timestamp"]
		_, hasMessage := v["message"]

		if !hasText && !hasMessage {
			break
		}

		rec, err := decodeRecord(v)
		if err != nil {
			break
		}
		if hasText && hasTimestamp {
			return core.LogEntry{Text: rec.Text, Timestamp: rec.Timestamp}
		}
		if hasMessage {
			if rec.Message == "" {
				return core.LogEntry{Text: encodeJSON(v), Timestamp: stamp}
			}
			return core.LogEntry{Text: rec.Message, Timestamp: stamp}
		}
	}

	return core.LogEntry{Text: encodeJSON(raw), Timestamp: stamp}
}

func decodeRecord(m map[string]any) (logRecord, error) {
	var rec logRecord
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &rec,
	})
	if err != nil {
		return rec, err
	}
	if err := dec.Decode(m); err != nil {
		return rec, fmt.Errorf("unexpected log record shape: %w", err)
	}
	return rec, nil
}

func encodeJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
