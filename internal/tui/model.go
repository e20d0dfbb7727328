// Package tui renders a playbook dashboard in the terminal.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/leapstack-labs/pbconsole/internal/backend"
	"github.com/leapstack-labs/pbconsole/internal/feed"
	"github.com/leapstack-labs/pbconsole/internal/ui/features/common"
	"github.com/leapstack-labs/pbconsole/pkg/core"
)

// DefaultLogLines is how many of the latest log entries are shown.
const DefaultLogLines = 10

// Session is the part of a dashboard session the watcher drives.
type Session interface {
	View() feed.View
	Changes() <-chan struct{}
	Trigger() bool
	Close()
}

// Options configures the watcher model.
type Options struct {
	Highlight time.Duration
	LogLines  int
	Styles    *Styles
}

type changedMsg struct{}

type highlightExpiredMsg struct{ gen int }

var stepIcons = map[core.StepStatus]string{
	core.StepCompleted:  "✔",
	core.StepRunning:    "▶",
	core.StepNotStarted: "○",
}

var stepLabels = map[core.StepStatus]string{
	core.StepCompleted:  "Completed",
	core.StepRunning:    "Running",
	core.StepNotStarted: "Not started",
}

// Model is the bubbletea model of the watcher.
type Model struct {
	session Session
	opts    Options
	spinner spinner.Model

	view         feed.View
	stepsVersion uint64
	highlighted  map[string]bool
	gen          int

	width    int
	quitting bool
}

// NewModel creates a watcher model over a started session.
func NewModel(s Session, opts Options) Model {
	if opts.Highlight <= 0 {
		opts.Highlight = 2 * time.Second
	}
	if opts.LogLines <= 0 {
		opts.LogLines = DefaultLogLines
	}
	if opts.Styles == nil {
		styles := NewStyles(nil)
		opts.Styles = &styles
	}
	v := s.View()
	return Model{
		session:      s,
		opts:         opts,
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		view:         v,
		stepsVersion: v.Steps.Version,
	}
}

// Init starts the spinner and waits for the first session change.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForChange(m.session.Changes()))
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return changedMsg{}
	}
}

// Update handles key presses, session changes and timers.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			m.session.Close()
			return m, tea.Quit
		case "r":
			m.session.Trigger()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case changedMsg:
		cmd := m.apply(m.session.View())
		return m, tea.Batch(cmd, waitForChange(m.session.Changes()))

	case highlightExpiredMsg:
		if msg.gen == m.gen {
			m.highlighted = nil
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// apply stores a new view and starts a highlight window when the steps moved.
func (m *Model) apply(v feed.View) tea.Cmd {
	m.view = v
	if v.Steps.Version == m.stepsVersion {
		return nil
	}
	m.stepsVersion = v.Steps.Version
	if len(v.Changed) == 0 {
		return nil
	}

	m.gen++
	m.highlighted = v.Changed
	gen := m.gen
	return tea.Tick(m.opts.Highlight, func(time.Time) tea.Msg {
		return highlightExpiredMsg{gen: gen}
	})
}

// View renders the info header, the steps and the tail of the console.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	m.renderInfo(&b)
	m.renderSteps(&b)
	m.renderLogs(&b)
	b.WriteString(m.opts.Styles.Help.Render("r refresh • q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) busy() bool {
	v := m.view
	return v.Spinners.Execution || v.Spinners.Flow || v.Playbook.Refreshing
}

func (m Model) renderInfo(b *strings.Builder) {
	st := m.opts.Styles
	v := m.view

	title := "Playbook " + v.PlaybookID
	if m.busy() {
		title += " " + m.spinner.View()
	}
	b.WriteString(st.Title.Render(title))
	b.WriteString("\n")

	switch {
	case v.Playbook.Loading:
		b.WriteString(st.Muted.Render("Loading playbook..."))
		b.WriteString("\n")
		return
	case v.Playbook.Value == nil:
		b.WriteString(st.Error.Render("Playbook not found."))
		b.WriteString("\n")
		return
	}

	pb := v.Playbook.Value
	field := func(label, value string) {
		fmt.Fprintf(b, "%s %s\n", st.Label.Render(label+":"), value)
	}
	field("Name", pb.Name)
	field("Type", common.OrDash(pb.Type))
	field("Created by", common.OrDash(pb.CreatedBy))
	field("Started", common.FormatDate(pb.Started))
	field("State", st.state(pb.State).Render(common.OrDash(string(pb.State))))
}

func (m Model) renderSteps(b *strings.Builder) {
	st := m.opts.Styles
	v := m.view

	b.WriteString(st.Section.Render("Execution flow"))
	b.WriteString("\n")

	steps := v.Steps.Value.Current
	switch {
	case v.Steps.Loading:
		b.WriteString(st.Muted.Render("Loading steps..."))
		b.WriteString("\n")
		return
	case len(steps) == 0:
		b.WriteString(st.Muted.Render("No steps."))
		b.WriteString("\n")
		return
	}

	for i, s := range steps {
		status := s.Status()
		line := fmt.Sprintf("%s %d. %s  %s", stepIcons[status], i+1, s.Name, stepLabels[status])
		if m.highlighted[s.ID] {
			b.WriteString(st.Highlight.Render("» " + line))
		} else {
			b.WriteString(st.step(status).Render("  " + line))
		}
		b.WriteString("\n")
	}
}

func (m Model) renderLogs(b *strings.Builder) {
	st := m.opts.Styles
	v := m.view

	b.WriteString(st.Section.Render("Console"))
	b.WriteString("\n")

	logs := v.Logs.Value
	switch {
	case v.Logs.Loading:
		b.WriteString(st.Muted.Render("Loading logs..."))
		b.WriteString("\n")
		return
	case len(logs) == 0:
		b.WriteString(st.Muted.Render("No logs."))
		b.WriteString("\n")
		return
	}

	if len(logs) > m.opts.LogLines {
		logs = logs[len(logs)-m.opts.LogLines:]
	}
	for _, e := range logs {
		text := e.Text
		if text == backend.ErrorLogText {
			text = st.Error.Render(text)
		}
		fmt.Fprintf(b, "%s %s\n", st.Muted.Render("["+common.FormatDateTime(e.Timestamp)+"]"), text)
	}
}
