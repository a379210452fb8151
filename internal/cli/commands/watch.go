package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// watchPaths calls onChange with the .sql files that changed under paths,
// batching events that arrive within watchDebounce of each other. It
// blocks until ctx is done.
func watchPaths(ctx context.Context, logger *slog.Logger, paths []string, onChange func(context.Context, []string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Single files are watched through their directory and filtered.
	files := map[string]bool{}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			abs, _ := filepath.Abs(p)
			files[abs] = true
			if err := watcher.Add(filepath.Dir(p)); err != nil {
				return fmt.Errorf("failed to watch %s: %w", p, err)
			}
			continue
		}
		if err := watchDir(watcher, p); err != nil {
			return err
		}
	}

	pending := map[string]bool{}
	timer := time.NewTimer(watchDebounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !isHidden(event.Name) {
					if err := watchDir(watcher, event.Name); err != nil {
						logger.Warn("failed to watch new directory", "dir", event.Name, "error", err)
					}
					continue
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !strings.EqualFold(filepath.Ext(event.Name), ".sql") {
				continue
			}
			if len(files) > 0 {
				abs, _ := filepath.Abs(event.Name)
				if !files[abs] && !underAnyDir(event.Name, paths) {
					continue
				}
			}
			logger.Debug("file changed", "file", event.Name)
			pending[event.Name] = true
			timer.Reset(watchDebounce)
		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			clear(pending)
			slices.Sort(changed)
			onChange(ctx, changed)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}

func watchDir(watcher *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != dir && isHidden(path) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func isHidden(path string) bool {
	base := filepath.Base(path)
	return len(base) > 1 && strings.HasPrefix(base, ".")
}

// underAnyDir reports whether path lies below one of the directory roots.
func underAnyDir(path string, roots []string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			continue
		}
		r, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		if rel, err := filepath.Rel(r, abs); err == nil && !strings.HasPrefix(rel, "..") {
			return true
		}
	}
	return false
}
