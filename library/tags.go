// ABOUTME: Tag readers for the supported audio containers
// ABOUTME: Selects a reader once per file from its extension and returns title, artist and all comments

package library

import (
	"errors"
	"fmt"
	"os"

	"github.com/bogem/id3v2"
	"github.com/dhowden/tag"
)

var (
	// ErrUnsupportedExtension is returned for files whose extension has no tag reader
	ErrUnsupportedExtension = errors.New("unsupported file extension")

	// ErrUnrecognizedContainer is returned when a file's container cannot be parsed
	ErrUnrecognizedContainer = errors.New("unrecognized or corrupted audio container")
)

// Tags holds the fields extracted from a file's metadata
type Tags struct {
	Title    string
	Artist   string
	Comments []string // every comment field, in file order
}

// TagReader extracts Tags from an audio file
type TagReader interface {
	ReadTags(path string) (Tags, error)
}

var readers = map[string]TagReader{
	"mp3":  id3Reader{},
	"aiff": aiffReader{},
	"aif":  aiffReader{},
	"flac": metadataReader{},
	"m4a":  metadataReader{},
	"ogg":  metadataReader{},
}

// ReaderFor returns the tag reader for a lowercase extension (without dot)
func ReaderFor(ext string) (TagReader, error) {
	r, ok := readers[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}

	return r, nil
}

// SupportedExtension reports whether files with ext can be classified
func SupportedExtension(ext string) bool {
	_, ok := readers[ext]

	return ok
}

// id3Reader reads ID3v2 tags at the start of an MP3 file
type id3Reader struct{}

func (id3Reader) ReadTags(path string) (Tags, error) {
	t, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return Tags{}, fmt.Errorf("%w: %w", ErrUnrecognizedContainer, err)
	}
	defer func() { _ = t.Close() }()

	return tagsFromID3(t), nil
}

func tagsFromID3(t *id3v2.Tag) Tags {
	tags := Tags{
		Title:  t.Title(),
		Artist: t.Artist(),
	}

	for _, f := range t.GetFrames(t.CommonID("Comments")) {
		if cf, ok := f.(id3v2.CommentFrame); ok {
			tags.Comments = append(tags.Comments, cf.Text)
		}
	}

	return tags
}

// metadataReader covers the containers handled by dhowden/tag (FLAC, MP4, OGG)
type metadataReader struct{}

func (metadataReader) ReadTags(path string) (Tags, error) {
	file, err := os.Open(path)
	if err != nil {
		return Tags{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	metadata, err := tag.ReadFrom(file)
	if err != nil {
		return Tags{}, fmt.Errorf("%w: %w", ErrUnrecognizedContainer, err)
	}

	tags := Tags{
		Title:  metadata.Title(),
		Artist: metadata.Artist(),
	}

	tags.Comments = commentFields(metadata)

	return tags, nil
}

// commentFields returns the comment-like fields kept by dhowden/tag.
// Vorbis keys are case-insensitive and a repeated key keeps only its last
// value, so at most COMMENT then DESCRIPTION survive for FLAC and OGG.
func commentFields(m tag.Metadata) []string {
	if m.Format() != tag.VORBIS {
		if comment := m.Comment(); comment != "" {
			return []string{comment}
		}

		return nil
	}

	raw := m.Raw()

	var out []string

	for _, key := range []string{"comment", "description"} {
		if v, ok := raw[key].(string); ok && v != "" {
			out = append(out, v)
		}
	}

	return out
}
