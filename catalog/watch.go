package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Debounce is how long Watch waits after the last change before calling
// back. Editors often write a file in several steps.
var Debounce = 150 * time.Millisecond

// Watch calls onChange whenever the catalog at path changes, until ctx is
// done. The parent directory is watched so that editors which replace the
// file by rename are still seen. For a Lua deck directory any .lua file
// counts. Setup errors are returned; the watch itself runs in the
// background.
func Watch(ctx context.Context, path string, log *zap.Logger, onChange func()) error {
	if log == nil {
		log = zap.NewNop()
	}

	path = filepath.Clean(path)
	dir, match := filepath.Dir(path), func(name string) bool { return filepath.Clean(name) == path }
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		dir = path
		match = func(name string) bool { return strings.HasSuffix(name, ".lua") }
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create catalog watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()

		timer := time.NewTimer(Debounce)
		timer.Stop()
		var fire <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if !match(ev.Name) {
					continue
				}
				timer.Reset(Debounce)
				fire = timer.C
			case <-fire:
				fire = nil
				log.Debug("catalog changed", zap.String("path", path))
				onChange()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("catalog watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
