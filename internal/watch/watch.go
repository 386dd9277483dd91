// Package watch rescans the working copy when the filesystem changes,
// using a recursive fsnotify watcher with debounced triggering.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Logger is the minimal logging interface the watcher consumes.
type Logger interface {
	Debug(format string, args ...interface{})
	Warn(format string, args ...interface{})
}

// Run watches the tree under root recursively and invokes onChange once
// events have settled for the debounce interval. Directories for which
// skipDir returns true are not watched. Run blocks until ctx is done or
// the watcher fails.
func Run(ctx context.Context, root string, skipDir func(path string) bool, debounce time.Duration, log Logger, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addRecursive(watcher, root, skipDir); err != nil {
		return err
	}
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	pending := false

	resetDebounce := func() {
		if pending {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}
		timer.Reset(debounce)
		pending = true
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			path := filepath.Clean(event.Name)
			if skipDir != nil && skipDir(path) {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
					if err := addRecursive(watcher, path, skipDir); err != nil {
						log.Warn("watch: cannot watch new directory %q: %v", path, err)
					}
				}
			}
			log.Debug("watch: %s", event)
			resetDebounce()

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch: %v", werr)

		case <-timer.C:
			pending = false
			onChange()
		}
	}
}

// addRecursive registers root and every directory below it.
func addRecursive(watcher *fsnotify.Watcher, root string, skipDir func(path string) bool) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are simply not watched.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if skipDir != nil && skipDir(path) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
