package feed

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leapstack-labs/pbconsole/pkg/core"
	"golang.org/x/sync/errgroup"
)

// Options configures a Session.
type Options struct {
	Interval    time.Duration
	SettleDelay time.Duration
	Logger      *slog.Logger
	Now         func() time.Time
}

// Spinners are the time-based activity indicators of a dashboard.
// They are shown when a refresh cycle starts and hidden after the settle delay,
// whether or not the fetches have completed by then.
type Spinners struct {
	Execution bool
	Flow      bool
}

// View is a consistent copy of everything a dashboard renders.
type View struct {
	PlaybookID string
	Playbook   Snapshot[*core.Playbook]
	Steps      Snapshot[StepSet]
	Logs       Snapshot[[]core.LogEntry]
	Changed    map[string]bool
	Spinners   Spinners
}

// Session is one mounted dashboard: three feeds, their scheduler and the spinner
// state. Closing the session unmounts it; results that arrive afterwards are dropped.
type Session struct {
	playbookID string
	opts       Options
	logger     *slog.Logger

	playbook *Feed[[]core.Playbook, *core.Playbook]
	steps    *Feed[[]core.Step, StepSet]
	logs     *Feed[[]core.LogEntry, []core.LogEntry]

	closed  atomic.Bool
	changes chan struct{}

	mu       sync.RWMutex
	spinners Spinners
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewSession creates an unstarted session for a playbook.
func NewSession(b Backend, playbookID string, opts Options) *Session {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Session{
		playbookID: playbookID,
		opts:       opts,
		logger:     opts.Logger.With("playbook_id", playbookID),
		changes:    make(chan struct{}, 1),
	}

	s.playbook = New(PlaybookSource(b, playbookID), s.logger, s.alive, s.notify)
	s.steps = New(StepsSource(b, playbookID), s.logger, s.alive, s.notify)
	s.logs = New(LogsSource(b, playbookID, opts.Now), s.logger, s.alive, s.notify)
	return s
}

// Start performs the initial load of all feeds and starts the poll scheduler.
// It returns immediately; the session runs until Close or until ctx is cancelled.
func (s *Session) Start(ctx context.Context) {
	if s.closed.Load() {
		return
	}
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.ctx = ctx
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.Close()
	}()

	go func() {
		var g errgroup.Group
		g.Go(func() error { s.playbook.Refresh(ctx); return nil })
		g.Go(func() error { s.steps.Refresh(ctx); return nil })
		g.Go(func() error { s.logs.Refresh(ctx); return nil })
		_ = g.Wait()
	}()

	scheduler := NewScheduler(s.opts.Interval, s.Ready, func(ctx context.Context) {
		s.RefreshAll(ctx)
	})
	go scheduler.Run(ctx)

	s.logger.Debug("dashboard session started", "interval", s.opts.Interval)
}

// Close unmounts the session. It does not wait for in-flight fetches.
func (s *Session) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	// Wait out any apply that passed its liveness check before the flag flipped.
	s.playbook.fence()
	s.steps.fence()
	s.logs.fence()

	s.logger.Debug("dashboard session closed")
}

// Closed reports whether the session has been unmounted.
func (s *Session) Closed() bool {
	return s.closed.Load()
}

// Changes delivers a signal after state changes. Signals coalesce: a reader that
// falls behind sees one pending signal and should re-read View.
func (s *Session) Changes() <-chan struct{} {
	return s.changes
}

// Ready reports whether a refresh cycle may start: the playbook feed must have
// finished its first load and must not be refreshing.
func (s *Session) Ready() bool {
	return !s.closed.Load() && !s.playbook.Loading() && !s.playbook.Refreshing()
}

// Refreshing reports whether the playbook feed has a fetch in flight.
func (s *Session) Refreshing() bool {
	return s.playbook.Refreshing()
}

// RefreshAll runs one refresh cycle: the playbook is refreshed first, then the
// steps and logs feeds are triggered. Spinners are shown once the cycle holds the
// playbook gate and hidden after the settle delay.
// It returns false when the playbook feed is already refreshing; a dropped cycle
// leaves the spinners of the running one alone.
func (s *Session) RefreshAll(ctx context.Context) bool {
	if s.closed.Load() || s.playbook.Refreshing() {
		return false
	}

	showSpinners := func() { s.setSpinners(Spinners{Execution: true, Flow: true}) }
	if !s.playbook.refresh(ctx, showSpinners) {
		return false
	}

	time.AfterFunc(s.opts.SettleDelay, func() {
		s.setSpinners(Spinners{})
	})

	var g errgroup.Group
	g.Go(func() error { s.steps.Refresh(ctx); return nil })
	g.Go(func() error { s.logs.Refresh(ctx); return nil })
	_ = g.Wait()
	return true
}

// Trigger starts a refresh cycle in the background on the session's own
// context, so that the cycle outlives the request that asked for it.
// It returns false when the session is not started, closed, or already refreshing.
func (s *Session) Trigger() bool {
	s.mu.RLock()
	ctx := s.ctx
	s.mu.RUnlock()
	if ctx == nil || s.closed.Load() || s.playbook.Refreshing() {
		return false
	}
	go s.RefreshAll(ctx)
	return true
}

// RefreshSteps refreshes only the steps feed.
func (s *Session) RefreshSteps(ctx context.Context) bool {
	return s.steps.Refresh(ctx)
}

// RefreshLogs refreshes only the logs feed.
func (s *Session) RefreshLogs(ctx context.Context) bool {
	return s.logs.Refresh(ctx)
}

// RefreshPlaybook refreshes only the playbook feed.
func (s *Session) RefreshPlaybook(ctx context.Context) bool {
	return s.playbook.Refresh(ctx)
}

// View returns a copy of the session state for rendering.
func (s *Session) View() View {
	steps := s.steps.Snapshot()

	s.mu.RLock()
	spinners := s.spinners
	s.mu.RUnlock()

	return View{
		PlaybookID: s.playbookID,
		Playbook:   s.playbook.Snapshot(),
		Steps:      steps,
		Logs:       s.logs.Snapshot(),
		Changed:    steps.Value.Changed(),
		Spinners:   spinners,
	}
}

func (s *Session) setSpinners(sp Spinners) {
	if s.closed.Load() {
		return
	}
	s.mu.Lock()
	if s.spinners == sp {
		s.mu.Unlock()
		return
	}
	s.spinners = sp
	s.mu.Unlock()
	s.notify()
}

func (s *Session) alive() bool {
	return !s.closed.Load()
}

func (s *Session) notify() {
	if s.closed.Load() {
		return
	}
	select {
	case s.changes <- struct{}{}:
	default:
	}
}
