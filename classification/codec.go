// ABOUTME: Parses the classification code embedded in an audio file comment
// ABOUTME: Normalizes "<digit>,<letters>" into a sorted, deduplicated set of category letters

// Package classification decodes category codes from track comments and
// models the configured category hierarchy as a tree.
package classification

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var (
	// ErrNoMatchingComment is returned when no comment field matches the code grammar
	ErrNoMatchingComment = errors.New("no comment matches the classification grammar")

	// ErrEmptyClassification is returned when a comment matches but carries no letter
	ErrEmptyClassification = errors.New("classification code has no category letter")
)

// Compile regexes once at package initialization
var (
	// "2,a;b;c" - marker digit, comma, semicolon separated letters
	delimitedRegex = regexp.MustCompile(`^(\d),([a-z;]+)$`)
	// "2abc" - canonical form written back into tags by earlier tools
	compactRegex = regexp.MustCompile(`^(\d)([a-z]+)$`)
)

// Code is a parsed classification code. The zero value is not a valid code.
type Code struct {
	marker  byte
	letters string
}

// Parse decodes a raw comment into a Code.
// Letter order and repetition in the raw comment do not matter: "2,c;b;a"
// and "3,a;b;c;a" both yield the canonical letters "abc".
func Parse(raw string) (Code, error) {
	matches := delimitedRegex.FindStringSubmatch(raw)
	if matches == nil {
		matches = compactRegex.FindStringSubmatch(raw)
	}

	if matches == nil {
		return Code{}, fmt.Errorf("%w: %q", ErrNoMatchingComment, raw)
	}

	letters := []byte(strings.ReplaceAll(matches[2], ";", ""))
	if len(letters) == 0 {
		return Code{}, fmt.Errorf("%w: %q", ErrEmptyClassification, raw)
	}

	slices.Sort(letters)
	letters = slices.Compact(letters)

	return Code{marker: matches[1][0], letters: string(letters)}, nil
}

// FirstMatch parses the comment fields in order and returns the first valid code.
// Fields that do not follow the grammar are ignored; the first one that does
// is authoritative, even if it turns out to carry no letter.
func FirstMatch(comments []string) (Code, error) {
	for _, comment := range comments {
		code, err := Parse(comment)
		if err == nil || errors.Is(err, ErrEmptyClassification) {
			return code, err
		}
	}

	return Code{}, ErrNoMatchingComment
}

// String returns the canonical classification: sorted letters without the marker
func (c Code) String() string {
	return c.letters
}

// Marker returns the leading digit of the raw code (0 for the zero Code)
func (c Code) Marker() byte {
	return c.marker
}

// Letters returns one entry per category letter, in canonical order
func (c Code) Letters() []string {
	out := make([]string, 0, len(c.letters))
	for i := range len(c.letters) {
		out = append(out, c.letters[i:i+1])
	}

	return out
}

// IsZero reports whether c was never successfully parsed
func (c Code) IsZero() bool {
	return c.letters == ""
}

// Contains reports whether the code includes the given category letter
func (c Code) Contains(letter string) bool {
	return len(letter) == 1 && strings.Contains(c.letters, letter)
}
