// ABOUTME: Watch command: re-runs sort whenever the source tree changes
// ABOUTME: Watches every directory below the source and debounces bursts of events

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"
	"github.com/fsnotify/fsnotify"
)

// Events closer together than this trigger a single run
const watchDebounce = 500 * time.Millisecond

// newSourceWatcher watches root and every directory below it
func newSourceWatcher(root string, logger log.Interface) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := addRecursive(watcher, root, logger); err != nil {
		_ = watcher.Close()

		return nil, err
	}

	return watcher, nil
}

// addRecursive adds dir and its subdirectories to the watcher.
// Subdirectories that cannot be watched are logged and skipped.
func addRecursive(watcher *fsnotify.Watcher, dir string, logger log.Interface) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}

			logger.WithError(err).WithField("path", path).Warn("cannot watch directory")

			return fs.SkipDir
		}

		if !d.IsDir() {
			return nil
		}

		if err := watcher.Add(path); err != nil {
			if path == dir {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}

			logger.WithError(err).WithField("path", path).Warn("cannot watch directory")
		}

		return nil
	})
}

// runWatch sorts once, then again after every settled burst of source changes,
// until ctx is cancelled
func runWatch(ctx context.Context, e *env, opts SortOptions, out io.Writer) error {
	if err := opts.validate(); err != nil {
		return err
	}

	watcher, err := newSourceWatcher(opts.Source, e.logger)
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	sortOnce := func() error {
		_, err := runSort(e, opts, out)

		var failed FailedDestinationsError
		if errors.As(err, &failed) {
			// Already logged per destination; keep watching
			return nil
		}

		return err
	}

	if err := sortOnce(); err != nil {
		return err
	}

	e.logger.WithField("source", opts.Source).Info("watching for changes (Ctrl+C to stop)")

	var (
		timer   *time.Timer
		trigger <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}

			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addRecursive(watcher, event.Name, e.logger); err != nil {
						e.logger.WithError(err).WithField("path", event.Name).Warn("cannot watch new directory")
					}
				}
			}

			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}

			e.logger.WithFields(log.Fields{
				"path": event.Name,
				"op":   event.Op.String(),
			}).Debug("source changed")

			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}

			trigger = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			e.logger.WithError(err).Warn("watcher error")

		case <-trigger:
			trigger = nil

			if _, err := os.Stat(opts.Source); err != nil {
				return fmt.Errorf("source directory: %w", err)
			}

			if err := sortOnce(); err != nil {
				e.logger.WithError(err).Error("sort failed")
			}
		}
	}
}
