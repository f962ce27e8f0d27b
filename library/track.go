// ABOUTME: Defines Track, the classified identity of one audio file
// ABOUTME: Builds tracks from file tags and derives their canonical output filename

// Package library discovers classified audio files and compares track collections.
// Tags are read directly from the files (ID3 for MP3 and AIFF, dhowden/tag for
// FLAC, MP4 and OGG); a track's identity is its derived output filename.
package library

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"crate-sorter/classification"
)

var (
	// ErrMissingTitle is returned when a file has no title tag
	ErrMissingTitle = errors.New("no title tag found")

	// ErrMissingArtist is returned when a file has no artist tag
	ErrMissingArtist = errors.New("no artist tag found")
)

// Characters replaced in derived filenames, illegal on at least one common filesystem
var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"<", "_",
	">", "_",
	":", "_",
	`\`, "_",
	"|", "_",
	"?", "_",
	"*", "_",
)

// Track represents one classified audio file. Tracks are immutable once built.
type Track struct {
	Title          string
	Artist         string
	Classification classification.Code
	Extension      string // lowercase, without dot
	SourcePath     string
}

// ReadTrack builds a Track from the tags of the file at path
func ReadTrack(path string) (*Track, error) {
	ext := Extension(path)

	reader, err := ReaderFor(ext)
	if err != nil {
		return nil, err
	}

	tags, err := reader.ReadTags(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}

	return NewTrack(path, ext, tags)
}

// NewTrack validates extracted tags and builds a Track.
// Title and artist are mandatory; the first comment following the
// classification grammar provides the code.
func NewTrack(path, ext string, tags Tags) (*Track, error) {
	title := strings.TrimSpace(tags.Title)
	if title == "" {
		return nil, ErrMissingTitle
	}

	artist := strings.TrimSpace(tags.Artist)
	if artist == "" {
		return nil, ErrMissingArtist
	}

	code, err := classification.FirstMatch(tags.Comments)
	if err != nil {
		return nil, err
	}

	return &Track{
		Title:          title,
		Artist:         artist,
		Classification: code,
		Extension:      ext,
		SourcePath:     path,
	}, nil
}

// Extension returns the lowercase extension of path without the dot
func Extension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Sanitize replaces characters that are illegal in filenames with underscores
func Sanitize(name string) string {
	return filenameReplacer.Replace(name)
}

// Filename returns the canonical output filename:
// "<classification> <title> - <artist>.<extension>", sanitized
func (t *Track) Filename() string {
	return Sanitize(fmt.Sprintf("%s %s - %s.%s", t.Classification, t.Title, t.Artist, t.Extension))
}

// Classifiers returns the track's category letters; each is a destination category
func (t *Track) Classifiers() []string {
	return t.Classification.Letters()
}

// Equal reports whether both tracks derive the same output filename.
// Source paths are not compared.
func (t *Track) Equal(other *Track) bool {
	if t == nil || other == nil {
		return t == other
	}

	return t.Filename() == other.Filename()
}

// String returns a formatted string representation of the track
func (t *Track) String() string {
	return fmt.Sprintf("%-6s %s - %s", t.Classification, t.Artist, t.Title)
}
