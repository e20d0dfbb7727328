package dashboard

import (
	"time"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/pbconsole/internal/feed"
	"github.com/leapstack-labs/pbconsole/internal/ui/components"
	"github.com/leapstack-labs/pbconsole/pkg/core"
	"github.com/starfederation/datastar-go/datastar"
)

type fragmentState struct {
	version    uint64
	loading    bool
	refreshing bool
}

func stateOf[S any](s feed.Snapshot[S]) fragmentState {
	return fragmentState{version: s.Version, loading: s.Loading, refreshing: s.Refreshing}
}

// rendered is what the browser currently shows, as far as the patcher knows.
type rendered struct {
	playbook fragmentState
	steps    fragmentState
	logs     fragmentState
	toolbar  components.ToolbarData

	infoSpinner      components.SpinnerData
	executionSpinner components.SpinnerData
	flowSpinner      components.SpinnerData
	stepsSpinner     components.SpinnerData
}

// patcher sends only the fragments whose state moved since the last patch.
// Re-sending an unchanged steps list would restart its highlight animation.
type patcher struct {
	sse       *datastar.ServerSentEventGenerator
	viewID    string
	system    core.System
	highlight time.Duration
	last      rendered
}

func newPatcher(sse *datastar.ServerSentEventGenerator, viewID string, system core.System, highlight time.Duration, initial feed.View) *patcher {
	p := &patcher{sse: sse, viewID: viewID, system: system, highlight: highlight}
	p.last = p.capture(initial)
	return p
}

func (p *patcher) capture(v feed.View) rendered {
	info, execution, flow, steps := spinners(v)
	return rendered{
		playbook:         stateOf(v.Playbook),
		steps:            stateOf(v.Steps),
		logs:             stateOf(v.Logs),
		toolbar:          toolbarData(p.viewID, p.system.Name, v),
		infoSpinner:      info,
		executionSpinner: execution,
		flowSpinner:      flow,
		stepsSpinner:     steps,
	}
}

// patch brings the browser up to date with v.
func (p *patcher) patch(v feed.View) error {
	next := p.capture(v)
	prev := p.last

	var out []templ.Component
	if next.toolbar != prev.toolbar {
		out = append(out, components.Toolbar(next.toolbar))
	}
	if next.playbook.version != prev.playbook.version || next.playbook.loading != prev.playbook.loading {
		out = append(out, components.PlaybookInfo(infoData(p.system.ID, v)))
	}
	if next.logs != prev.logs {
		out = append(out, components.Console(consoleData(v)))
	}
	if next.steps.version != prev.steps.version || next.steps.loading != prev.steps.loading {
		out = append(out, components.Steps(stepsData(v, p.highlight)))
	}
	for _, sp := range [][2]components.SpinnerData{
		{prev.infoSpinner, next.infoSpinner},
		{prev.executionSpinner, next.executionSpinner},
		{prev.flowSpinner, next.flowSpinner},
		{prev.stepsSpinner, next.stepsSpinner},
	} {
		if sp[0] != sp[1] {
			out = append(out, components.Spinner(sp[1]))
		}
	}

	for _, c := range out {
		if err := p.sse.PatchElementTempl(c); err != nil {
			return err
		}
	}
	if next.logs.version != prev.logs.version {
		if err := p.sse.ExecuteScript(scrollConsoleScript); err != nil {
			return err
		}
	}

	p.last = next
	return nil
}
