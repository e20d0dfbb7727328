package feed

import (
	"context"
	"time"
)

// Default timings for dashboard polling.
const (
	DefaultInterval    = 10 * time.Second
	DefaultSettleDelay = 3 * time.Second
)

// Scheduler runs a refresh cycle at a fixed interval.
type Scheduler struct {
	interval time.Duration
	ready    func() bool
	cycle    func(ctx context.Context)
}

// NewScheduler creates a scheduler that calls cycle every interval while ready
// reports true. Ticks that find the scheduler not ready are skipped.
func NewScheduler(interval time.Duration, ready func() bool, cycle func(ctx context.Context)) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{interval: interval, ready: ready, cycle: cycle}
}

// Run ticks until ctx is cancelled. Cycles run on their own goroutine so a slow
// backend does not hold up the ticker; a cycle still running at cancellation is
// abandoned, not awaited.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			if s.ready() {
				go s.cycle(ctx)
			}
		}
	}
}
