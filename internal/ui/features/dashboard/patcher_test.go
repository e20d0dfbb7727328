package dashboard

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starfederation/datastar-go/datastar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/pbconsole/internal/feed"
	"github.com/leapstack-labs/pbconsole/pkg/core"
)

func newTestPatcher(t *testing.T, initial feed.View) (*patcher, *httptest.ResponseRecorder) {
	t.Helper()
	rec := httptest.NewRecorder()
	sse := datastar.NewSSE(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return newPatcher(sse, "v1", core.System{ID: "1", Name: "System 1"}, time.Second, initial), rec
}

func loadedView() feed.View {
	pb := &core.Playbook{ID: "p1", Name: "Contain", State: core.PlaybookRunning}
	return feed.View{
		PlaybookID: "p1",
		Playbook:   feed.Snapshot[*core.Playbook]{Value: pb, Version: 1},
		Steps:      feed.Snapshot[feed.StepSet]{Value: feed.StepSet{Current: []core.Step{{ID: "s1"}}}, Version: 1},
		Logs:       feed.Snapshot[[]core.LogEntry]{Value: []core.LogEntry{{Text: "hi", Timestamp: "T"}}, Version: 1},
	}
}

func TestPatcher_FirstLoadPatchesEverything(t *testing.T) {
	p, rec := newTestPatcher(t, loadingView("p1"))

	require.NoError(t, p.patch(loadedView()))

	body := rec.Body.String()
	for _, id := range []string{"dashboard-toolbar", "playbook-info", "playbook-console", "playbook-steps"} {
		assert.Contains(t, body, `id="`+id+`"`)
	}
	assert.Contains(t, body, "scrollTop")
}

func TestPatcher_UnchangedViewSendsNothing(t *testing.T) {
	p, rec := newTestPatcher(t, loadedView())

	require.NoError(t, p.patch(loadedView()))

	assert.Empty(t, rec.Body.String())
}

func TestPatcher_OnlyMovedFragments(t *testing.T) {
	p, rec := newTestPatcher(t, loadedView())

	v := loadedView()
	v.Steps.Version = 2
	v.Spinners = feed.Spinners{Execution: true, Flow: true}
	require.NoError(t, p.patch(v))

	body := rec.Body.String()
	assert.Contains(t, body, `id="playbook-steps"`)
	assert.Contains(t, body, `id="execution-spinner"`)
	assert.Contains(t, body, `id="flow-spinner"`)
	assert.NotContains(t, body, `id="playbook-info"`)
	assert.NotContains(t, body, `id="playbook-console"`)
	assert.NotContains(t, body, `id="dashboard-toolbar"`)
	assert.NotContains(t, body, "scrollTop")
	assert.Equal(t, 3, strings.Count(body, "event:"))
}

func TestPatcher_RefreshingTogglesToolbar(t *testing.T) {
	p, rec := newTestPatcher(t, loadedView())

	v := loadedView()
	v.Playbook.Refreshing = true
	require.NoError(t, p.patch(v))

	body := rec.Body.String()
	assert.Contains(t, body, "Refreshing...")
	assert.Contains(t, body, `id="info-spinner"`)
	assert.NotContains(t, body, `id="playbook-info"`, "refreshing keeps the prior content")
}
