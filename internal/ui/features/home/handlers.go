package home

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/leapstack-labs/pbconsole/internal/auth"
	"github.com/leapstack-labs/pbconsole/internal/catalog"
	"github.com/leapstack-labs/pbconsole/internal/ui/components"
	"github.com/leapstack-labs/pbconsole/internal/ui/features/common"
	"github.com/leapstack-labs/pbconsole/internal/ui/notifier"
	"github.com/leapstack-labs/pbconsole/pkg/core"
	"github.com/starfederation/datastar-go/datastar"
)

// PlaybookLister fetches the full playbook collection.
type PlaybookLister interface {
	Playbooks(ctx context.Context) ([]core.Playbook, error)
}

// Handlers provides HTTP handlers for the home feature.
type Handlers struct {
	playbooks PlaybookLister
	systems   *catalog.Catalog
	notifier  *notifier.Notifier[struct{}]
	logger    *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(playbooks PlaybookLister, systems *catalog.Catalog, notify *notifier.Notifier[struct{}], logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		playbooks: playbooks,
		systems:   systems,
		notifier:  notify,
		logger:    logger,
	}
}

// HomePage renders the systems list with their playbooks.
func (h *Handlers) HomePage(w http.ResponseWriter, r *http.Request) {
	data := components.HomeData{
		Layout: common.LayoutData{
			Title:       "Home",
			User:        auth.FromContext(r.Context()).User,
			CurrentPath: r.URL.Path,
			UpdatesURL:  "/updates",
		},
		Systems: h.buildSystems(r.Context()),
	}

	if err := components.HomePage(data).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HomePageUpdates is the long-lived SSE endpoint for the home page.
// It re-renders the systems list whenever the catalog changes.
func (h *Handlers) HomePageUpdates(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			content := components.HomeContent(components.HomeData{Systems: h.buildSystems(ctx)})
			if err := sse.PatchElementTempl(content); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// buildSystems attaches the playbook collection to the configured systems.
// When the backend is unavailable the systems are shown without playbooks.
func (h *Handlers) buildSystems(ctx context.Context) []common.SystemItem {
	playbooks, err := h.playbooks.Playbooks(ctx)
	if err != nil {
		h.logger.Warn("failed to load playbooks for home page", "error", err)
		playbooks = nil
	}
	return common.NewSystemItems(catalog.WithPlaybooks(h.systems.Systems(), playbooks))
}
