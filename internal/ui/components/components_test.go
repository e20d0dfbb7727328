package components

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/pbconsole/internal/auth"
	"github.com/leapstack-labs/pbconsole/internal/ui/features/common"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestLoginPage_ShowsErrors(t *testing.T) {
	out := renderString(t, LoginPage(LoginData{
		Layout:   common.LayoutData{Title: "Login"},
		Username: "adm<in",
		Errors:   auth.FormErrors{Password: auth.MsgPasswordRequired, Form: auth.MsgInvalidCredentials},
	}))

	assert.Contains(t, out, "<title>Login - pbconsole</title>")
	assert.Contains(t, out, auth.MsgPasswordRequired)
	assert.Contains(t, out, auth.MsgInvalidCredentials)
	assert.Contains(t, out, `value="adm&lt;in"`, "user input must be escaped")
	assert.NotContains(t, out, "Log out", "no user, no logout button")
}

func TestHomePage(t *testing.T) {
	out := renderString(t, HomePage(HomeData{
		Layout: common.LayoutData{Title: "Home", User: "admin", UpdatesURL: "/updates"},
		Systems: []common.SystemItem{{
			ID:   "1",
			Name: "System 1",
			Playbooks: []common.PlaybookItem{{
				ID: "p1", SystemID: "1", Name: "Contain", State: "RUNNING", StateClass: "state--success",
			}},
		}},
	}))

	assert.Contains(t, out, `data-init="@get(&#39;/updates&#39;)"`)
	assert.Contains(t, out, `href="/dashboard/1/p1"`)
	assert.Contains(t, out, `class="state state--success">RUNNING<`)
	assert.Contains(t, out, "Log out")
}

func TestPlaybookInfo(t *testing.T) {
	loading := renderString(t, PlaybookInfo(InfoData{Loading: true}))
	assert.Contains(t, loading, `id="playbook-info"`)
	assert.Contains(t, loading, `class="spinner"`)

	missing := renderString(t, PlaybookInfo(InfoData{}))
	assert.Contains(t, missing, "Playbook not found.")

	ended := renderString(t, PlaybookInfo(InfoData{Playbook: &common.PlaybookItem{Name: "Contain", State: "END", StateClass: "state--error"}}))
	assert.Contains(t, ended, `<span id="playbook-state" class="state state--error">END</span>`)
}

func TestSteps(t *testing.T) {
	out := renderString(t, Steps(StepsData{
		HighlightMS: 2000,
		Steps: []StepItem{
			{Index: 1, ID: "s1", Name: "Isolate", Status: "completed", StatusText: "Completed", Changed: true},
			{Index: 2, ID: "s2", Name: "Scan", Status: "running", StatusText: "Running", Active: true},
		},
	}))

	assert.Contains(t, out, `id="step-s1" class="step step--completed step--changed"`)
	assert.Contains(t, out, `id="step-s2" class="step step--running step--active"`)
	assert.Contains(t, out, "1. Isolate")
	assert.Contains(t, out, "--highlight-duration: 2000ms")

	empty := renderString(t, Steps(StepsData{}))
	assert.Contains(t, empty, "No steps available for this playbook.")
}

func TestConsole(t *testing.T) {
	out := renderString(t, Console(ConsoleData{
		Refreshing: true,
		Entries:    []LogItem{{Text: "<b>hi</b>", Timestamp: "T"}, {Text: "last", Timestamp: "T", Fresh: true}},
	}))

	assert.Contains(t, out, "&lt;b&gt;hi&lt;/b&gt;")
	assert.Contains(t, out, `class="log-entry log-entry--fresh"`)
	assert.Contains(t, out, "console__refreshing")
}

func TestToolbar(t *testing.T) {
	idle := renderString(t, Toolbar(ToolbarData{ViewID: "v1", SystemName: "System 1", PlaybookName: "Contain"}))
	assert.Contains(t, idle, "Dashboard: System 1 / Contain")
	assert.Contains(t, idle, "/dashboard/views/v1/refresh")
	assert.NotContains(t, idle, "disabled")

	busy := renderString(t, Toolbar(ToolbarData{ViewID: "v1", Refreshing: true}))
	assert.Contains(t, busy, " disabled")
	assert.Contains(t, busy, "Refreshing...")
}

func TestSpinner(t *testing.T) {
	assert.Equal(t, `<span id="flow-spinner" class="spinner-slot"></span>`, renderString(t, Spinner(SpinnerData{ID: "flow-spinner"})))
	assert.Contains(t, renderString(t, Spinner(SpinnerData{ID: "flow-spinner", On: true})), "spinner--sm")
}

func TestLayout_Assets(t *testing.T) {
	out := renderString(t, LoginPage(LoginData{Layout: common.LayoutData{Title: "Login"}}))

	assert.True(t, strings.HasPrefix(out, "<!doctype html>"))
	assert.Contains(t, out, `<link rel="stylesheet" href="/static/app.css">`)
	assert.Contains(t, out, `bundles/datastar.js"></script>`)
	assert.Contains(t, out, `<main class="container">`, "no update stream without an updates url")
}

func TestHomeContent_Classes(t *testing.T) {
	out := renderString(t, HomeContent(HomeData{Systems: []common.SystemItem{{
		ID: "1",
		Playbooks: []common.PlaybookItem{
			{ID: "p 1", SystemID: "1", Type: "Mitigation", TypeClass: "pb-type--mitigation", State: "PAUSED"},
		},
	}}}))

	assert.Contains(t, out, `<span class="pb-type pb-type--mitigation">Mitigation</span>`)
	assert.Contains(t, out, `<span class="state">PAUSED</span>`, "unknown states carry no colour class")
	assert.Contains(t, out, `href="/dashboard/1/p%201"`)

	empty := renderString(t, HomeContent(HomeData{}))
	assert.Equal(t, `<div id="home-content" class="systems"><p class="placeholder">No systems configured.</p></div>`, empty)
}
