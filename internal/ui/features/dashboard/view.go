package dashboard

import (
	"time"

	"github.com/leapstack-labs/pbconsole/internal/feed"
	"github.com/leapstack-labs/pbconsole/internal/ui/components"
	"github.com/leapstack-labs/pbconsole/internal/ui/features/common"
	"github.com/leapstack-labs/pbconsole/pkg/core"
)

// Fragment and spinner ids patched by the update stream.
const (
	infoSpinnerID      = "info-spinner"
	executionSpinnerID = "execution-spinner"
	flowSpinnerID      = "flow-spinner"
	stepsSpinnerID     = "steps-refreshing"
)

const scrollConsoleScript = `const el = document.getElementById('playbook-console'); if (el) { el.scrollTop = el.scrollHeight; }`

var stepPresentation = map[core.StepStatus]struct{ text, icon string }{
	core.StepCompleted:  {"Completed", "✅"},
	core.StepRunning:    {"Running", "▶"},
	core.StepNotStarted: {"Not started", "☐"},
}

func toolbarData(viewID, systemName string, v feed.View) components.ToolbarData {
	data := components.ToolbarData{
		ViewID:     viewID,
		SystemName: systemName,
		Refreshing: v.Playbook.Refreshing,
	}
	if v.Playbook.Value != nil {
		data.PlaybookName = v.Playbook.Value.Name
	}
	return data
}

func infoData(systemID string, v feed.View) components.InfoData {
	data := components.InfoData{Loading: v.Playbook.Loading}
	if v.Playbook.Value != nil {
		item := common.NewPlaybookItem(systemID, *v.Playbook.Value)
		data.Playbook = &item
	}
	return data
}

func consoleData(v feed.View) components.ConsoleData {
	data := components.ConsoleData{
		Loading:    v.Logs.Loading,
		Refreshing: v.Logs.Refreshing,
		Entries:    make([]components.LogItem, len(v.Logs.Value)),
	}
	for i, e := range v.Logs.Value {
		data.Entries[i] = components.LogItem{
			Text:      e.Text,
			Timestamp: common.FormatDateTime(e.Timestamp),
			Fresh:     v.Logs.Refreshing && i == len(v.Logs.Value)-1,
		}
	}
	return data
}

func stepsData(v feed.View, highlight time.Duration) components.StepsData {
	current := v.Steps.Value.Current
	data := components.StepsData{
		Loading:     v.Steps.Loading,
		Steps:       make([]components.StepItem, len(current)),
		HighlightMS: highlight.Milliseconds(),
	}
	for i, s := range current {
		status := s.Status()
		p := stepPresentation[status]
		data.Steps[i] = components.StepItem{
			Index:        i + 1,
			ID:           s.ID,
			Name:         s.Name,
			Description:  common.OrDash(s.Description),
			Type:         common.OrDash(s.Type),
			LastModified: common.FormatDate(s.LastModified),
			Status:       string(status),
			StatusText:   p.text,
			Icon:         p.icon,
			Active:       s.Active,
			Changed:      v.Changed[s.ID],
		}
	}
	return data
}

func spinners(v feed.View) (info, execution, flow, steps components.SpinnerData) {
	return components.SpinnerData{ID: infoSpinnerID, On: v.Playbook.Refreshing && !v.Playbook.Loading},
		components.SpinnerData{ID: executionSpinnerID, On: v.Spinners.Execution},
		components.SpinnerData{ID: flowSpinnerID, On: v.Spinners.Flow},
		components.SpinnerData{ID: stepsSpinnerID, On: v.Steps.Refreshing && !v.Steps.Loading}
}

func dashboardData(viewID string, system core.System, v feed.View, highlight time.Duration) components.DashboardData {
	info, execution, flow, steps := spinners(v)
	return components.DashboardData{
		SystemName:       system.Name,
		Toolbar:          toolbarData(viewID, system.Name, v),
		InfoSpinner:      info,
		ExecutionSpinner: execution,
		FlowSpinner:      flow,
		StepsSpinner:     steps,
		Info:             infoData(system.ID, v),
		Console:          consoleData(v),
		Steps:            stepsData(v, highlight),
	}
}
