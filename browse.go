// ABOUTME: Browse command: interactive view of a dry-run sort
// ABOUTME: Builds the plan loader and optional source watcher for the TUI

package main

import (
	"fmt"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	"github.com/fsnotify/fsnotify"

	"crate-sorter/placement"
	"crate-sorter/tui"
)

// runBrowse opens the plan browser; with watch, the plan reloads on source changes
func runBrowse(e *env, opts SortOptions, watch bool) error {
	if err := opts.validate(); err != nil {
		return err
	}

	// Log lines would corrupt the alternate screen; failures show up in the plan
	quiet := &env{cfg: e.cfg, logger: &log.Logger{Handler: discard.New(), Level: log.ErrorLevel}}

	load := func() ([]placement.Report, error) {
		return planSort(quiet, opts)
	}

	var watcher *fsnotify.Watcher
	if watch {
		w, err := newSourceWatcher(opts.Source, e.logger)
		if err != nil {
			return err
		}
		defer func() { _ = w.Close() }()

		watcher = w
	}

	title := fmt.Sprintf("%s → %s", opts.Source, opts.Target)

	return tui.RunBrowser(title, opts.Target, load, watcher)
}
