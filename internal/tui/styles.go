package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/leapstack-labs/pbconsole/pkg/core"
)

// Styles holds the lipgloss styles of the watcher.
type Styles struct {
	Title     lipgloss.Style
	Label     lipgloss.Style
	Running   lipgloss.Style
	Ended     lipgloss.Style
	Muted     lipgloss.Style
	Section   lipgloss.Style
	Highlight lipgloss.Style
	StepDone  lipgloss.Style
	StepLive  lipgloss.Style
	Error     lipgloss.Style
	Help      lipgloss.Style
}

// NewStyles builds the watcher styles on a renderer. The renderer decides the
// colour profile, so an ASCII renderer yields plain text.
func NewStyles(r *lipgloss.Renderer) Styles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return Styles{
		Title:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Label:     r.NewStyle().Foreground(lipgloss.Color("8")),
		Running:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		Ended:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		Muted:     r.NewStyle().Foreground(lipgloss.Color("8")),
		Section:   r.NewStyle().Bold(true).Underline(true).MarginTop(1),
		Highlight: r.NewStyle().Background(lipgloss.Color("3")).Foreground(lipgloss.Color("0")),
		StepDone:  r.NewStyle().Foreground(lipgloss.Color("10")),
		StepLive:  r.NewStyle().Foreground(lipgloss.Color("11")),
		Error:     r.NewStyle().Foreground(lipgloss.Color("9")),
		Help:      r.NewStyle().Foreground(lipgloss.Color("8")).MarginTop(1),
	}
}

func (s Styles) state(state core.PlaybookState) lipgloss.Style {
	switch state {
	case core.PlaybookRunning:
		return s.Running
	case core.PlaybookEnded:
		return s.Ended
	default:
		return s.Muted
	}
}

func (s Styles) step(status core.StepStatus) lipgloss.Style {
	switch status {
	case core.StepCompleted:
		return s.StepDone
	case core.StepRunning:
		return s.StepLive
	default:
		return s.Muted
	}
}
