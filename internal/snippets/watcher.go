package snippets

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads the repository whenever something under its sources changes.
// Bursts of events are collapsed into a single reload. Blocks until ctx is
// done.
func (r *Repository) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	for _, src := range r.sources {
		if err := addWatch(w, src); err != nil {
			r.log.Warn("cannot watch snippet source", zap.String("path", src), zap.Error(err))
		}
	}

	timer := time.NewTimer(r.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && !skipDir(info.Name()) {
					if err := addWatch(w, ev.Name); err != nil {
						r.log.Warn("cannot watch new directory", zap.String("path", ev.Name), zap.Error(err))
					}
				}
			}
			r.log.Debug("snippet source changed", zap.String("path", ev.Name), zap.Stringer("op", ev.Op))
			timer.Reset(r.debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.log.Error("watcher error", zap.Error(err))

		case <-timer.C:
			if err := r.Reload(ctx); err != nil {
				r.log.Error("reload code challenges", zap.Error(err))
			}
		}
	}
}

// addWatch watches a file's directory, or a directory tree.
func addWatch(w *fsnotify.Watcher, src string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return w.Add(filepath.Dir(src))
	}
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != src && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
