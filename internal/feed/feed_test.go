package feed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/pbconsole/internal/backend"
	"github.com/leapstack-labs/pbconsole/internal/testutil"
	"github.com/leapstack-labs/pbconsole/pkg/core"
)

func TestFeed_DropsOverlappingRefresh(t *testing.T) {
	b := &fakeBackend{steps: []core.Step{{ID: "1"}}}
	release := b.hold()
	f := New(StepsSource(b, "p1"), testutil.NewTestLogger(t), nil, nil)

	done := make(chan bool)
	go func() { done <- f.Refresh(context.Background()) }()

	require.Eventually(t, func() bool { return b.stepCalls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, f.Refreshing())

	assert.False(t, f.Refresh(context.Background()), "refresh while in flight must be dropped")
	assert.Equal(t, int32(1), b.stepCalls.Load(), "no second backend call")

	close(release)
	assert.True(t, <-done)
	assert.False(t, f.Refreshing())

	assert.True(t, f.Refresh(context.Background()), "gate reopens after completion")
	assert.Equal(t, int32(2), b.stepCalls.Load())
}

func TestFeed_LoadingClearsAfterFirstFetch(t *testing.T) {
	b := &fakeBackend{failSteps: true}
	f := New(StepsSource(b, "p1"), testutil.NewTestLogger(t), nil, nil)

	assert.True(t, f.Loading())
	f.Refresh(context.Background())
	assert.False(t, f.Loading(), "a failed fetch also ends loading")
	assert.False(t, f.Refreshing())
	assert.Equal(t, uint64(1), f.Snapshot().Version)
}

func TestStepsFeed_SnapshotsPrevious(t *testing.T) {
	b := &fakeBackend{steps: []core.Step{{ID: "1", Active: true}}}
	f := New(StepsSource(b, "p1"), testutil.NewTestLogger(t), nil, nil)

	f.Refresh(context.Background())
	snap := f.Snapshot()
	assert.Empty(t, snap.Value.Previous)
	assert.Empty(t, snap.Value.Changed(), "first load never highlights")

	b.setSteps([]core.Step{{ID: "1", Check: true}, {ID: "2", Active: true}})
	f.Refresh(context.Background())
	snap = f.Snapshot()
	assert.Equal(t, []core.Step{{ID: "1", Active: true}}, snap.Value.Previous)
	assert.Equal(t, map[string]bool{"1": true, "2": true}, snap.Value.Changed())
}

func TestStepsFeed_UnchangedBackendIsIdempotent(t *testing.T) {
	b := &fakeBackend{steps: []core.Step{{ID: "1", Active: true}, {ID: "2"}}}
	f := New(StepsSource(b, "p1"), testutil.NewTestLogger(t), nil, nil)

	for i := 0; i < 3; i++ {
		f.Refresh(context.Background())
		assert.Empty(t, f.Snapshot().Value.Changed(), "refresh %d", i)
	}
}

func TestStepsFeed_FailureEmptiesCurrent(t *testing.T) {
	b := &fakeBackend{steps: []core.Step{{ID: "1"}}}
	f := New(StepsSource(b, "p1"), testutil.NewTestLogger(t), nil, nil)
	f.Refresh(context.Background())

	b.mu.Lock()
	b.failSteps = true
	b.mu.Unlock()
	f.Refresh(context.Background())

	snap := f.Snapshot()
	assert.NotNil(t, snap.Value.Current)
	assert.Empty(t, snap.Value.Current)
}

func TestLogsFeed_FailureShowsSyntheticEntry(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	b := &fakeBackend{failLogs: true}
	f := New(LogsSource(b, "p1", func() time.Time { return now }), testutil.NewTestLogger(t), nil, nil)

	f.Refresh(context.Background())

	assert.Equal(t, []core.LogEntry{{Text: backend.ErrorLogText, Timestamp: "Fri, 01 May 2026 08:00:00 GMT"}}, f.Snapshot().Value)
}

func TestPlaybookFeed_Lookup(t *testing.T) {
	b := &fakeBackend{playbooks: []core.Playbook{{ID: "a"}, {ID: "b"}}}

	miss := New(PlaybookSource(b, "c"), testutil.NewTestLogger(t), nil, nil)
	miss.Refresh(context.Background())
	assert.Nil(t, miss.Snapshot().Value)
	assert.False(t, miss.Loading())

	hit := New(PlaybookSource(b, "b"), testutil.NewTestLogger(t), nil, nil)
	hit.Refresh(context.Background())
	require.NotNil(t, hit.Snapshot().Value)
	assert.Equal(t, "b", hit.Snapshot().Value.ID)

	b.mu.Lock()
	b.failBooks = true
	b.mu.Unlock()
	hit.Refresh(context.Background())
	assert.Nil(t, hit.Snapshot().Value, "failure clears the playbook")
}

func TestFeed_DiscardsResultWhenNotAlive(t *testing.T) {
	b := &fakeBackend{steps: []core.Step{{ID: "1"}}}
	alive := true
	changes := 0
	f := New(StepsSource(b, "p1"), testutil.NewTestLogger(t), func() bool { return alive }, func() { changes++ })

	alive = false
	f.Refresh(context.Background())

	assert.Equal(t, 0, changes)
	assert.True(t, f.Loading())
	assert.Equal(t, uint64(0), f.Snapshot().Version)
}

func TestFeed_FailureIsLogged(t *testing.T) {
	logger, logs := testutil.NewCapturingLogger()
	b := &fakeBackend{failSteps: true}
	f := New(StepsSource(b, "p1"), logger, nil, nil)

	f.Refresh(context.Background())

	out := logs.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "feed=steps")
	assert.Contains(t, out, "backend down")
}
