package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Snapshot is an immutable copy of a feed's state.
type Snapshot[S any] struct {
	Value      S
	Loading    bool
	Refreshing bool
	Version    uint64
	UpdatedAt  time.Time
}

// Source describes how a feed fetches and applies results.
//
// R is what the backend returns, S is what the feed keeps.
type Source[R, S any] struct {
	Name string

	// Fetch loads the full collection for the feed.
	Fetch func(ctx context.Context) (R, error)

	// Apply computes the new state from the current state and a fetched result.
	Apply func(current S, fetched R) S

	// Fail computes the new state after a failed fetch.
	Fail func(current S, err error) S
}

// Feed is one independently polled view of backend state.
type Feed[R, S any] struct {
	src    Source[R, S]
	gate   Gate
	logger *slog.Logger

	// alive reports whether results may still be applied.
	alive func() bool
	// changed is called after every visible state change.
	changed func()

	mu         sync.RWMutex
	value      S
	loading    bool
	refreshing bool
	version    uint64
	updatedAt  time.Time
}

// New creates a feed. The feed starts in the loading state until its first fetch
// completes, successfully or not.
func New[R, S any](src Source[R, S], logger *slog.Logger, alive func() bool, changed func()) *Feed[R, S] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if alive == nil {
		alive = func() bool { return true }
	}
	if changed == nil {
		changed = func() {}
	}
	return &Feed[R, S]{
		src:     src,
		logger:  logger.With("feed", src.Name),
		alive:   alive,
		changed: changed,
		loading: true,
	}
}

// Name returns the feed name.
func (f *Feed[R, S]) Name() string {
	return f.src.Name
}

// Refresh fetches the collection and applies the result.
// It returns false without touching state when another refresh holds the gate.
// Results that arrive after the owning view is gone are discarded.
func (f *Feed[R, S]) Refresh(ctx context.Context) bool {
	return f.refresh(ctx, nil)
}

// refresh is Refresh with a hook that runs once the gate is held, before the fetch.
func (f *Feed[R, S]) refresh(ctx context.Context, acquired func()) bool {
	if !f.gate.Acquire() {
		return false
	}
	defer f.gate.Release()

	if !f.setRefreshing(true) {
		return true
	}
	if acquired != nil {
		acquired()
	}

	fetched, err := f.src.Fetch(ctx)

	f.mu.Lock()
	if !f.alive() {
		f.mu.Unlock()
		f.logger.Debug("discarding result for closed view")
		return true
	}
	if err != nil {
		f.logger.Warn("refresh failed", "error", err)
		f.value = f.src.Fail(f.value, err)
	} else {
		f.value = f.src.Apply(f.value, fetched)
	}
	f.loading = false
	f.refreshing = false
	f.version++
	f.updatedAt = time.Now()
	f.mu.Unlock()

	f.changed()
	return true
}

func (f *Feed[R, S]) setRefreshing(v bool) bool {
	f.mu.Lock()
	if !f.alive() {
		f.mu.Unlock()
		return false
	}
	f.refreshing = v
	f.mu.Unlock()
	f.changed()
	return true
}

// fence returns once no apply is in progress.
func (f *Feed[R, S]) fence() {
	f.mu.Lock()
	f.mu.Unlock() //nolint:staticcheck // SA2001: barrier
}

// Loading reports whether the first fetch is still outstanding.
func (f *Feed[R, S]) Loading() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.loading
}

// Refreshing reports whether a fetch is in flight.
func (f *Feed[R, S]) Refreshing() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.refreshing
}

// Snapshot returns a copy of the current state.
func (f *Feed[R, S]) Snapshot() Snapshot[S] {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return Snapshot[S]{
		Value:      f.value,
		Loading:    f.loading,
		Refreshing: f.refreshing,
		Version:    f.version,
		UpdatedAt:  f.updatedAt,
	}
}
