package feed

import (
	"context"
	"time"

	"github.com/leapstack-labs/pbconsole/internal/backend"
	"github.com/leapstack-labs/pbconsole/pkg/core"
)

// Backend is the part of the playbook backend a dashboard reads from.
type Backend interface {
	Playbooks(ctx context.Context) ([]core.Playbook, error)
	Steps(ctx context.Context, playbookID string) ([]core.Step, error)
	Logs(ctx context.Context, playbookID string) ([]core.LogEntry, error)
}

// Feed names, used in logs.
const (
	PlaybookFeed = "playbook"
	StepsFeed    = "steps"
	LogsFeed     = "logs"
)

// StepSet is the steps feed state: the latest collection and the one before it.
type StepSet struct {
	Previous []core.Step
	Current  []core.Step
}

// Changed returns the ids of steps that changed between Previous and Current.
func (s StepSet) Changed() map[string]bool {
	return Highlight(s.Previous, s.Current)
}

// PlaybookSource selects one playbook out of the full collection on every refresh.
// A failed fetch or a miss leaves no playbook.
func PlaybookSource(b Backend, playbookID string) Source[[]core.Playbook, *core.Playbook] {
	return Source[[]core.Playbook, *core.Playbook]{
		Name:  PlaybookFeed,
		Fetch: b.Playbooks,
		Apply: func(_ *core.Playbook, fetched []core.Playbook) *core.Playbook {
			return backend.FindPlaybook(fetched, playbookID)
		},
		Fail: func(_ *core.Playbook, _ error) *core.Playbook {
			return nil
		},
	}
}

// StepsSource keeps the previous collection for change highlighting.
// A failed fetch empties the current collection.
func StepsSource(b Backend, playbookID string) Source[[]core.Step, StepSet] {
	return Source[[]core.Step, StepSet]{
		Name: StepsFeed,
		Fetch: func(ctx context.Context) ([]core.Step, error) {
			return b.Steps(ctx, playbookID)
		},
		Apply: func(current StepSet, fetched []core.Step) StepSet {
			return StepSet{Previous: current.Current, Current: fetched}
		},
		Fail: func(current StepSet, _ error) StepSet {
			return StepSet{Previous: current.Previous, Current: []core.Step{}}
		},
	}
}

// LogsSource replaces the console content on every refresh.
// A failed fetch shows a single synthetic error entry.
func LogsSource(b Backend, playbookID string, now func() time.Time) Source[[]core.LogEntry, []core.LogEntry] {
	if now == nil {
		now = time.Now
	}
	return Source[[]core.LogEntry, []core.LogEntry]{
		Name: LogsFeed,
		Fetch: func(ctx context.Context) ([]core.LogEntry, error) {
			return b.Logs(ctx, playbookID)
		},
		Apply: func(_ []core.LogEntry, fetched []core.LogEntry) []core.LogEntry {
			return fetched
		},
		Fail: func(_ []core.LogEntry, _ error) []core.LogEntry {
			return []core.LogEntry{{Text: backend.ErrorLogText, Timestamp: backend.FormatTimestamp(now())}}
		},
	}
}
