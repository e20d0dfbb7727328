package catalog

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce collapses bursts of editor writes into one reload.
const debounce = 100 * time.Millisecond

// Watch reloads the catalog when its file changes and calls onReload after each
// successful reload. It blocks until ctx is cancelled.
func (c *Catalog) Watch(ctx context.Context, logger *slog.Logger, onReload func()) error {
	if c.path == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory so atomic renames by editors are seen.
	dir := filepath.Dir(c.path)
	if err := watcher.Add(dir); err != nil {
		logger.Error("failed to watch systems file", "path", c.path, "error", err)
		<-ctx.Done()
		return nil
	}

	target := filepath.Clean(c.path)
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounce, func() {
				if err := c.Reload(); err != nil {
					logger.Error("systems reload failed", "path", c.path, "error", err)
					return
				}
				logger.Debug("systems file reloaded", "path", c.path)
				onReload()
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)
		}
	}
}
