package catalog

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads catalog snapshots when the backing config file changes.
type Watcher struct {
	path   string
	reload func() ([]JobSpec, []ItemSpec, error)
	cat    *Catalog
	log    *slog.Logger
}

// NewWatcher builds a watcher for path. reload re-reads the configuration and
// returns the fresh catalog specs.
func NewWatcher(path string, cat *Catalog, reload func() ([]JobSpec, []ItemSpec, error), log *slog.Logger) *Watcher {
	if log == nil {
		log = slog.Default()
	}

	return &Watcher{
		path:   path,
		reload: reload,
		cat:    cat,
		log:    log,
	}
}

// Run watches the config file until ctx is cancelled. Editors often replace
// the file instead of writing in place, so the parent directory is watched
// and events are filtered by name.
func (w *Watcher) Run(ctx context.Context) error {
	if w.path == "" || w.cat == nil || w.reload == nil {
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fw.Close(); cerr != nil {
			w.log.Error("failed to close catalog watcher", slog.Any("error", cerr))
		}
	}()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return err
	}

	w.log.Info("catalog watcher started", slog.String("path", w.path))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			w.apply()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}

			w.log.Error("catalog watcher error", slog.Any("error", err))
		}
	}
}

func (w *Watcher) apply() {
	jobs, items, err := w.reload()
	if err != nil {
		w.log.Error("catalog reload failed, keeping previous snapshot", slog.Any("error", err))
		return
	}

	w.cat.Replace(jobs, items)
	w.log.Info("catalog reloaded",
		slog.Int("jobs", len(jobs)),
		slog.Int("items", len(items)),
	)
}
