// ABOUTME: Tree command: renders the configured category hierarchy
// ABOUTME: Optionally lists tracks under their labelled categories and creates the folders

package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/apex/log"

	"crate-sorter/classification"
	"crate-sorter/library"
	"crate-sorter/placement"
)

// runTree prints the hierarchy built from the configured floors.
// With source, every track is listed under the label path of each of its letters;
// with mkdir, every category path is created below that directory.
func runTree(e *env, source, mkdir string, out io.Writer) error {
	tree := classification.BuildTree(e.cfg.RootName, e.cfg.Floors)

	if source != "" {
		if err := insertTracks(e, tree, source); err != nil {
			return err
		}
	}

	if mkdir != "" {
		created, err := makeCategoryDirs(placement.OSFS{}, tree, mkdir)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Created %d category folders below %s\n\n", created, mkdir)
	}

	fmt.Fprintln(out, tree.Render())

	return nil
}

// insertTracks materializes the tracks of source under their label paths
func insertTracks(e *env, tree *classification.Tree, source string) error {
	tracks, err := library.Discover(source, e.logger)
	if err != nil {
		return fmt.Errorf("failed to scan source: %w", err)
	}

	for _, track := range tracks {
		for _, letter := range track.Classifiers() {
			path, ok := e.cfg.Labels[letter]
			if !ok {
				e.logger.WithFields(log.Fields{
					"letter": letter,
					"track":  track.Filename(),
				}).Debug("letter has no label, not shown")

				continue
			}

			if err := tree.Insert(path, track.Filename()); err != nil {
				return fmt.Errorf("label %q: %w", letter, err)
			}
		}
	}

	return nil
}

// makeCategoryDirs creates root/<category path> for every full category path
func makeCategoryDirs(fs placement.FS, tree *classification.Tree, root string) (int, error) {
	paths := tree.CategoryPaths()

	for _, path := range paths {
		dir := filepath.Join(append([]string{root}, path...)...)
		if err := fs.MkdirAll(dir); err != nil {
			return 0, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	return len(paths), nil
}
