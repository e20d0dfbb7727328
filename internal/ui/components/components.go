// Package components renders the console's pages and the fragments patched
// into them over SSE.
package components

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/pbconsole/internal/auth"
	"github.com/leapstack-labs/pbconsole/internal/ui/features/common"
	"github.com/leapstack-labs/pbconsole/internal/ui/resources"
)

var stylesheetURL = templ.URL(resources.StaticPath(resources.Stylesheet))

// updatesInit is the datastar expression that opens a page's update stream.
func updatesInit(updatesURL string) string {
	return "@get('" + updatesURL + "')"
}

func refreshAction(viewID string) string {
	return "@post('/dashboard/views/" + url.PathEscape(viewID) + "/refresh')"
}

func dashboardURL(pb common.PlaybookItem) templ.SafeURL {
	return templ.URL("/dashboard/" + url.PathEscape(pb.SystemID) + "/" + url.PathEscape(pb.ID))
}

func joinClasses(classes ...string) string {
	out := classes[:0:0]
	for _, c := range classes {
		if c != "" {
			out = append(out, c)
		}
	}
	return strings.Join(out, " ")
}

func stateClasses(stateClass string) string { return joinClasses("state", stateClass) }

func typeClasses(typeClass string) string { return joinClasses("pb-type", typeClass) }

// SpinnerData is a spinner slot that can be toggled by patching its id.
type SpinnerData struct {
	ID string
	On bool
}

// LoginData holds the login form state.
type LoginData struct {
	Layout   common.LayoutData
	Username string
	Errors   auth.FormErrors
}

// HomeData holds the systems list.
type HomeData struct {
	Layout  common.LayoutData
	Systems []common.SystemItem
}

// ToolbarData drives the dashboard title and refresh button.
type ToolbarData struct {
	ViewID       string
	SystemName   string
	PlaybookName string
	Refreshing   bool
}

func (d ToolbarData) title() string {
	if d.PlaybookName == "" {
		return d.SystemName
	}
	return d.SystemName + " / " + d.PlaybookName
}

// InfoData drives the playbook information panel.
type InfoData struct {
	Loading  bool
	Playbook *common.PlaybookItem
}

// LogItem is one console line.
type LogItem struct {
	Text      string
	Timestamp string
	// Fresh marks the newest line while a refresh is in flight.
	Fresh bool
}

func logEntryClasses(entry LogItem) string {
	if entry.Fresh {
		return "log-entry log-entry--fresh"
	}
	return "log-entry"
}

// ConsoleData drives the log console panel.
type ConsoleData struct {
	Loading    bool
	Refreshing bool
	Entries    []LogItem
}

// StepItem is one row of the execution flow.
type StepItem struct {
	Index        int
	ID           string
	Name         string
	Description  string
	Type         string
	LastModified string
	Status       string
	StatusText   string
	Icon         string
	Active       bool
	Changed      bool
}

func stepClasses(step StepItem) string {
	classes := []string{"step", "step--" + step.Status}
	if step.Active {
		classes = append(classes, "step--active")
	}
	if step.Changed {
		classes = append(classes, "step--changed")
	}
	return strings.Join(classes, " ")
}

// StepsData drives the execution flow panel.
type StepsData struct {
	Loading     bool
	Steps       []StepItem
	HighlightMS int64
}

// attributes carries the highlight duration to the stylesheet.
func (d StepsData) attributes() templ.Attributes {
	return templ.Attributes{"style": fmt.Sprintf("--highlight-duration: %dms", d.HighlightMS)}
}

// DashboardData holds the full dashboard page.
type DashboardData struct {
	Layout           common.LayoutData
	SystemName       string
	Toolbar          ToolbarData
	InfoSpinner      SpinnerData
	ExecutionSpinner SpinnerData
	FlowSpinner      SpinnerData
	StepsSpinner     SpinnerData
	Info             InfoData
	Console          ConsoleData
	Steps            StepsData
}

