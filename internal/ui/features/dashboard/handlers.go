package dashboard

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/leapstack-labs/pbconsole/internal/auth"
	"github.com/leapstack-labs/pbconsole/internal/catalog"
	"github.com/leapstack-labs/pbconsole/internal/feed"
	"github.com/leapstack-labs/pbconsole/internal/ui/components"
	"github.com/leapstack-labs/pbconsole/internal/ui/features/common"
	"github.com/leapstack-labs/pbconsole/pkg/core"
	"github.com/starfederation/datastar-go/datastar"
)

// DefaultHighlight is how long a changed step stays emphasized.
const DefaultHighlight = 2 * time.Second

const loginPath = "/login"

// Handlers provides HTTP handlers for the dashboard feature.
type Handlers struct {
	backend   feed.Backend
	systems   *catalog.Catalog
	auth      *auth.Manager
	poll      feed.Options
	highlight time.Duration
	views     *Registry
	logger    *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(
	b feed.Backend,
	systems *catalog.Catalog,
	manager *auth.Manager,
	poll feed.Options,
	highlight time.Duration,
	logger *slog.Logger,
) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if highlight <= 0 {
		highlight = DefaultHighlight
	}
	return &Handlers{
		backend:   b,
		systems:   systems,
		auth:      manager,
		poll:      poll,
		highlight: highlight,
		views:     NewRegistry(),
		logger:    logger,
	}
}

// Views returns the registry of mounted dashboards.
func (h *Handlers) Views() *Registry {
	return h.views
}

// DashboardPage renders the dashboard shell in its loading state. The update
// stream it subscribes to fills it in.
func (h *Handlers) DashboardPage(w http.ResponseWriter, r *http.Request) {
	systemID := chi.URLParam(r, "systemID")
	playbookID := chi.URLParam(r, "playbookID")

	system := h.systems.System(systemID)
	if system == nil {
		http.Error(w, "system not found", http.StatusNotFound)
		return
	}

	viewID := uuid.NewString()
	data := dashboardData(viewID, *system, loadingView(playbookID), h.highlight)
	data.Layout = common.LayoutData{
		Title:       "Dashboard",
		User:        auth.FromContext(r.Context()).User,
		CurrentPath: r.URL.Path,
		UpdatesURL: fmt.Sprintf("/dashboard/%s/%s/updates?view=%s",
			url.PathEscape(systemID), url.PathEscape(playbookID), url.QueryEscape(viewID)),
	}

	if err := components.DashboardPage(data).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// DashboardUpdates is the long-lived SSE endpoint for one dashboard.
// It mounts a feed session for the lifetime of the stream and patches the
// page as the feeds change. The session is closed when the stream ends.
func (h *Handlers) DashboardUpdates(w http.ResponseWriter, r *http.Request) {
	systemID := chi.URLParam(r, "systemID")
	playbookID := chi.URLParam(r, "playbookID")

	system := h.systems.System(systemID)
	if system == nil {
		http.Error(w, "system not found", http.StatusNotFound)
		return
	}

	// View ids are minted by DashboardPage; a stream without one gets its own.
	viewID := r.URL.Query().Get("view")
	if viewID == "" {
		viewID = uuid.NewString()
	}
	st := auth.FromContext(r.Context())
	ctx := r.Context()

	opts := h.poll
	opts.Logger = h.logger.With("view_id", viewID)
	session := feed.NewSession(h.backend, playbookID, opts)

	if !h.views.Add(viewID, st.SID, session) {
		session.Close()
		h.logger.Warn("rejected update stream for a view already mounted", "view_id", viewID)
		http.Error(w, "view already mounted", http.StatusConflict)
		return
	}
	defer func() {
		h.views.Remove(viewID, session)
		session.Close()
	}()

	sse := datastar.NewSSE(w, r)

	events := h.auth.Subscribe()
	defer h.auth.Unsubscribe(events)

	p := newPatcher(sse, viewID, *system, h.highlight, session.View())
	session.Start(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-session.Changes():
			if err := p.patch(session.View()); err != nil {
				_ = sse.ConsoleError(err)
			}
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Kind == auth.LoggedOut && ev.SID == st.SID {
				_ = sse.ExecuteScript("window.location.href = '" + loginPath + "'")
				return
			}
		}
	}
}

// Refresh triggers a refresh cycle on a mounted dashboard. It is ignored while
// the playbook metadata is already being refreshed.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	viewID := chi.URLParam(r, "viewID")

	session, ok := h.views.Get(viewID, auth.FromContext(r.Context()).SID)
	if !ok {
		http.Error(w, "view not found", http.StatusNotFound)
		return
	}

	if !session.Trigger() {
		h.logger.Debug("manual refresh ignored", "view_id", viewID)
	}
	w.WriteHeader(http.StatusNoContent)
}

// loadingView is the state of a dashboard before any feed has answered.
func loadingView(playbookID string) feed.View {
	return feed.View{
		PlaybookID: playbookID,
		Playbook:   feed.Snapshot[*core.Playbook]{Loading: true},
		Steps:      feed.Snapshot[feed.StepSet]{Loading: true},
		Logs:       feed.Snapshot[[]core.LogEntry]{Loading: true},
	}
}
