package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jgrey4296/instal-stable-sub001/internal/config"
)

// defaultDebounce is how long the watcher waits for more changes before
// re-running.
const defaultDebounce = 200 * time.Millisecond

// specWatcher watches the directories holding the checked specs.
type specWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration
}

// newSpecWatcher watches every directory under the given paths. A file path
// watches its parent directory.
func newSpecWatcher(paths []string, logger *slog.Logger) (*specWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &specWatcher{watcher: fsw, logger: logger, debounce: defaultDebounce}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		if !info.IsDir() {
			if err := w.add(filepath.Dir(path)); err != nil {
				fsw.Close()
				return nil, err
			}
			continue
		}
		if err := w.addRecursive(path); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *specWatcher) Close() error {
	return w.watcher.Close()
}

func (w *specWatcher) add(dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	w.logger.Debug("Watching directory", "path", dir)
	return nil
}

// addRecursive adds watches to all directories, skipping hidden ones.
func (w *specWatcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.add(path)
	})
}

// Run calls onChange after relevant changes settle, until ctx is done.
func (w *specWatcher) Run(ctx context.Context, onChange func()) error {
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	pending := false
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						w.logger.Warn("Failed to watch new directory", "path", event.Name, "error", err)
					}
					continue
				}
			}
			if relevant(event) {
				w.logger.Debug("File change detected", "path", event.Name, "op", event.Op.String())
				pending = true
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			if pending {
				pending = false
				onChange()
			}
		}
	}
}

// relevant reports whether event touches a CUE file or a project config.
func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	return filepath.Ext(event.Name) == ".cue" || filepath.Base(event.Name) == config.ProjectConfigFile
}
