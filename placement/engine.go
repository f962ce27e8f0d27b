// ABOUTME: Copies classified tracks into one folder per category letter
// ABOUTME: Guards against overlong paths and existing files, and moves obsolete copies aside

// Package placement distributes tracks into category folders below a target
// root and keeps that tree in sync with a source collection.
package placement

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/apex/log"

	"crate-sorter/library"
	"crate-sorter/pool"
)

// DefaultMaxPathLength is the longest destination path, in characters, written as-is
const DefaultMaxPathLength = 255

var (
	// ErrPathTooLong is returned when a destination cannot be shortened below the limit
	ErrPathTooLong = errors.New("destination directory leaves no room for a file name")

	// ErrDestinationExists is returned when a relocation would overwrite a file
	ErrDestinationExists = errors.New("destination already exists")
)

// Outcome describes what CopyWithGuard did
type Outcome int

// Copy outcomes
const (
	Copied Outcome = iota
	SkippedExisting
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Copied:
		return "copied"
	case SkippedExisting:
		return "skipped"
	default:
		return "failed"
	}
}

// Result is the outcome of one destination copy
type Result struct {
	Destination string // final path, after truncation
	Outcome     Outcome
	Truncated   bool
	Err         error
}

// Report collects the results of placing one track
type Report struct {
	Track   *library.Track
	Results []Result
}

// Failures returns the number of destinations that could not be written
func (r Report) Failures() int {
	n := 0

	for _, res := range r.Results {
		if res.Outcome == Failed {
			n++
		}
	}

	return n
}

// Summary aggregates the reports of a batch
type Summary struct {
	Tracks    int
	Copied    int
	Skipped   int
	Truncated int
	Failed    int
}

func (s *Summary) add(r Report) {
	s.Tracks++

	for _, res := range r.Results {
		switch res.Outcome {
		case Copied:
			s.Copied++
		case SkippedExisting:
			s.Skipped++
		case Failed:
			s.Failed++
		}

		if res.Truncated {
			s.Truncated++
		}
	}
}

// Options tunes an Engine
type Options struct {
	Workers       int // tracks placed concurrently; 1 or less is sequential
	MaxPathLength int // 0 means DefaultMaxPathLength
}

// Engine places tracks below a target root through an FS
type Engine struct {
	fs      FS
	logger  log.Interface
	workers int
	maxPath int
}

// NewEngine creates an engine writing through fs
func NewEngine(fs FS, logger log.Interface, opts Options) *Engine {
	e := &Engine{
		fs:      fs,
		logger:  logger,
		workers: opts.Workers,
		maxPath: opts.MaxPathLength,
	}

	if e.workers < 1 {
		e.workers = 1
	}

	if e.maxPath <= 0 {
		e.maxPath = DefaultMaxPathLength
	}

	return e
}

// DestinationPaths returns targetRoot/<letter>/<filename> for every letter of
// the track's classification, in letter order
func DestinationPaths(track *library.Track, targetRoot string) []string {
	name := track.Filename()
	letters := track.Classifiers()

	paths := make([]string, 0, len(letters))
	for _, letter := range letters {
		paths = append(paths, filepath.Join(targetRoot, letter, name))
	}

	return paths
}

// CopyWithGuard copies src to dst unless dst already exists.
// Overlong destinations are shortened by truncating the file name while
// keeping its extension; truncated names may collide.
func (e *Engine) CopyWithGuard(src, dst string) (Result, error) {
	result := Result{Destination: dst, Outcome: Failed}

	if utf8.RuneCountInString(dst) > e.maxPath {
		shortened, err := truncatePath(dst, e.maxPath)
		if err != nil {
			result.Err = err

			return result, err
		}

		e.logger.WithFields(log.Fields{
			"path":      dst,
			"truncated": shortened,
		}).Warn("destination path too long, file name truncated")

		result.Destination = shortened
		result.Truncated = true
	}

	if err := e.fs.MkdirAll(filepath.Dir(result.Destination)); err != nil {
		result.Err = fmt.Errorf("failed to create destination directory: %w", err)

		return result, result.Err
	}

	if e.fs.Exists(result.Destination) {
		e.logger.WithField("path", result.Destination).Warn("file already exists in the destination")

		result.Outcome = SkippedExisting

		return result, nil
	}

	if err := e.fs.Copy(src, result.Destination); err != nil {
		// Another worker created it since the check
		if errors.Is(err, os.ErrExist) {
			e.logger.WithField("path", result.Destination).Warn("file already exists in the destination")

			result.Outcome = SkippedExisting

			return result, nil
		}

		result.Err = fmt.Errorf("failed to copy: %w", err)

		return result, result.Err
	}

	result.Outcome = Copied

	return result, nil
}

// truncatePath shortens the file name of path, keeping its extension, so the
// whole path fits in limit characters
func truncatePath(path string, limit int) (string, error) {
	dir, base := filepath.Split(path)
	ext := filepath.Ext(base)
	stem := []rune(base[:len(base)-len(ext)])

	room := limit - utf8.RuneCountInString(dir) - utf8.RuneCountInString(ext)
	if room < 1 {
		return "", fmt.Errorf("%w: %s", ErrPathTooLong, path)
	}

	if room < len(stem) {
		stem = stem[:room]
	}

	return dir + string(stem) + ext, nil
}

// Place copies the track into each of its category folders below targetRoot.
// Every destination is attempted; failures are logged and reported.
func (e *Engine) Place(track *library.Track, targetRoot string) Report {
	report := Report{Track: track}

	for _, dst := range DestinationPaths(track, targetRoot) {
		result, err := e.CopyWithGuard(track.SourcePath, dst)
		if err != nil {
			e.logger.WithError(err).WithFields(log.Fields{
				"source":      track.SourcePath,
				"destination": dst,
			}).Error("copy failed")
		} else if result.Outcome == Copied {
			e.logger.WithFields(log.Fields{
				"source":      track.SourcePath,
				"destination": result.Destination,
			}).Debug("copied")
		}

		report.Results = append(report.Results, result)
	}

	return report
}

// PlaceAll places every track below targetRoot. With more than one worker,
// tracks are placed concurrently; a track's own destinations stay sequential.
// done, when non-nil, is called once per track, never concurrently.
func (e *Engine) PlaceAll(tracks []*library.Track, targetRoot string, done func(Report)) Summary {
	reports := make([]Report, len(tracks))

	var mu sync.Mutex

	finish := func(i int, r Report) {
		mu.Lock()
		defer mu.Unlock()

		reports[i] = r
		if done != nil {
			done(r)
		}
	}

	if e.workers <= 1 || len(tracks) < 2 {
		for i, track := range tracks {
			finish(i, e.Place(track, targetRoot))
		}
	} else {
		p := pool.NewWorkerPool(min(e.workers, len(tracks)), e.workers)
		defer p.Close()

		e.logger.WithFields(log.Fields{
			"tracks":  len(tracks),
			"workers": p.Size(),
		}).Debug("placing tracks concurrently")

		p.Each(len(tracks), func(i int) {
			finish(i, e.Place(tracks[i], targetRoot))
		})
	}

	var summary Summary
	for _, r := range reports {
		summary.add(r)
	}

	return summary
}

// Relocate moves the track's source file into folder, keeping its file name.
// An existing file at the new location is never overwritten.
func (e *Engine) Relocate(track *library.Track, folder string) error {
	dst := filepath.Join(folder, filepath.Base(track.SourcePath))

	err := e.relocate(track.SourcePath, folder, dst)
	if err != nil {
		e.logger.WithError(err).WithFields(log.Fields{
			"source":      track.SourcePath,
			"destination": dst,
		}).Error("relocation failed")

		return err
	}

	e.logger.WithFields(log.Fields{
		"source":      track.SourcePath,
		"destination": dst,
	}).Info("relocated obsolete track")

	return nil
}

func (e *Engine) relocate(src, folder, dst string) error {
	if e.fs.Exists(folder) && !e.fs.IsDir(folder) {
		return fmt.Errorf("%s: %w", folder, os.ErrExist)
	}

	if err := e.fs.MkdirAll(folder); err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}

	if e.fs.Exists(dst) {
		return fmt.Errorf("%w: %s", ErrDestinationExists, dst)
	}

	if err := e.fs.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to move: %w", err)
	}

	return nil
}

// SyncReport summarizes a Sync
type SyncReport struct {
	Obsolete  int
	Relocated int
	Failed    int
}

// Sync moves target tracks that no longer exist in source out of the active
// tree. Each obsolete file lands in obsoleteRoot under the folder it occupied
// relative to targetRoot, so copies from several categories do not clash.
func (e *Engine) Sync(source, target []*library.Track, targetRoot, obsoleteRoot string) SyncReport {
	obsolete := library.Difference(target, source)
	report := SyncReport{Obsolete: len(obsolete)}

	for _, track := range obsolete {
		folder := obsoleteRoot

		rel, err := filepath.Rel(targetRoot, filepath.Dir(track.SourcePath))
		if err == nil && rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			folder = filepath.Join(obsoleteRoot, rel)
		}

		if err := e.Relocate(track, folder); err != nil {
			report.Failed++

			continue
		}

		report.Relocated++
	}

	return report
}
