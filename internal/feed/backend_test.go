package feed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/leapstack-labs/pbconsole/pkg/core"
)

var errBackendDown = errors.New("backend down")

// fakeBackend is an in-memory Backend with switchable failures and an optional
// gate that holds step fetches until released.
type fakeBackend struct {
	mu        sync.Mutex
	playbooks []core.Playbook
	steps     []core.Step
	logs      []core.LogEntry
	failSteps bool
	failLogs  bool
	failBooks bool
	holdSteps chan struct{}

	playbookCalls atomic.Int32
	stepCalls     atomic.Int32
	logCalls      atomic.Int32
}

func (f *fakeBackend) Playbooks(_ context.Context) ([]core.Playbook, error) {
	f.playbookCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failBooks {
		return nil, errBackendDown
	}
	return append([]core.Playbook(nil), f.playbooks...), nil
}

func (f *fakeBackend) Steps(ctx context.Context, _ string) ([]core.Step, error) {
	f.stepCalls.Add(1)
	f.mu.Lock()
	hold := f.holdSteps
	f.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSteps {
		return nil, errBackendDown
	}
	return append([]core.Step(nil), f.steps...), nil
}

func (f *fakeBackend) Logs(_ context.Context, _ string) ([]core.LogEntry, error) {
	f.logCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failLogs {
		return nil, errBackendDown
	}
	return append([]core.LogEntry(nil), f.logs...), nil
}

func (f *fakeBackend) setState(state core.PlaybookState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.playbooks {
		f.playbooks[i].State = state
	}
}

func (f *fakeBackend) setSteps(steps []core.Step) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.steps = steps
}

func (f *fakeBackend) hold() chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.holdSteps = make(chan struct{})
	return f.holdSteps
}
