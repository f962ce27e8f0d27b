// ABOUTME: Builds the in-memory track collection from a directory tree
// ABOUTME: Computes the asymmetric difference between two collections by track identity

package library

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/apex/log"
)

// Discover recursively walks root and returns every file that yields a Track.
// Files that fail to classify are logged and skipped; only an unreadable root
// is an error.
func Discover(root string, logger log.Interface) ([]*Track, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	return discoverEntries(root, entries, logger), nil
}

func discoverEntries(dir string, entries []os.DirEntry, logger log.Interface) []*Track {
	var tracks []*Track

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			sub, err := os.ReadDir(path)
			if err != nil {
				logger.WithError(err).WithField("path", path).Error("skipping unreadable directory")

				continue
			}

			tracks = append(tracks, discoverEntries(path, sub, logger)...)

			continue
		}

		track, err := ReadTrack(path)
		if err != nil {
			logger.WithError(err).WithField("path", path).Warn("track parsing failed")

			continue
		}

		logger.WithFields(log.Fields{
			"path":           path,
			"classification": track.Classification.String(),
		}).Debug("track discovered")

		tracks = append(tracks, track)
	}

	return tracks
}

// Index groups tracks by derived filename
func Index(tracks []*Track) map[string][]*Track {
	index := make(map[string][]*Track, len(tracks))
	for _, t := range tracks {
		name := t.Filename()
		index[name] = append(index[name], t)
	}

	return index
}

// Difference returns the tracks of left whose identity appears nowhere in right.
// The order of left is preserved.
func Difference(left, right []*Track) []*Track {
	present := Index(right)

	var diff []*Track

	for _, t := range left {
		if _, ok := present[t.Filename()]; !ok {
			diff = append(diff, t)
		}
	}

	return diff
}
