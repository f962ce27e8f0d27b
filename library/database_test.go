// ABOUTME: Tests for collection discovery and difference
// ABOUTME: Verifies recursive walks skip bad files and identity-based matching

package library

import (
	"path/filepath"
	"testing"

	"github.com/apex/log"
	"github.com/apex/log/handlers/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crate-sorter/testaudio"
)

func newTestLogger() (*log.Logger, *memory.Handler) {
	handler := memory.New()

	return &log.Logger{Handler: handler, Level: log.DebugLevel}, handler
}

func countLevel(h *memory.Handler, level log.Level) int {
	n := 0

	for _, e := range h.Entries {
		if e.Level == level {
			n++
		}
	}

	return n
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()

	testaudio.MP3(t, root, "one.mp3", testaudio.Fields{Title: "One", Artist: "A", Comments: []string{"1,a"}})
	testaudio.MP3(t, root, "nested/deeper/two.mp3", testaudio.Fields{Title: "Two", Artist: "B", Comments: []string{"2,b;c"}})
	testaudio.AIFF(t, root, "nested/three.aiff", testaudio.Fields{Title: "Three", Artist: "C", Comments: []string{"1,d"}})
	testaudio.MP3(t, root, "nested/untagged.mp3", testaudio.Fields{Title: "No Code", Artist: "D"})
	testaudio.Raw(t, root, "cover.jpg", []byte{0xFF, 0xD8})

	logger, handler := newTestLogger()

	tracks, err := Discover(root, logger)
	require.NoError(t, err)

	names := make([]string, 0, len(tracks))
	for _, tr := range tracks {
		names = append(names, tr.Filename())
	}

	assert.ElementsMatch(t, []string{
		"a One - A.mp3",
		"bc Two - B.mp3",
		"d Three - C.aiff",
	}, names)

	assert.Equal(t, 2, countLevel(handler, log.WarnLevel), "untagged.mp3 and cover.jpg are skipped with a warning")
}

func TestDiscoverMissingRoot(t *testing.T) {
	logger, _ := newTestLogger()

	_, err := Discover(filepath.Join(t.TempDir(), "missing"), logger)
	require.Error(t, err)
}

func TestDiscoverEmpty(t *testing.T) {
	logger, _ := newTestLogger()

	tracks, err := Discover(t.TempDir(), logger)
	require.NoError(t, err)
	assert.Empty(t, tracks)
}

func TestDifference(t *testing.T) {
	a := &Track{Title: "t1", Artist: "x", Classification: mustCode(t, "1,a"), Extension: "mp3", SourcePath: "left/a"}
	b := &Track{Title: "t2", Artist: "x", Classification: mustCode(t, "1,a"), Extension: "mp3", SourcePath: "left/b"}
	bPrime := &Track{Title: "t2", Artist: "x", Classification: mustCode(t, "1,a"), Extension: "mp3", SourcePath: "right/b"}
	c := &Track{Title: "t3", Artist: "x", Classification: mustCode(t, "1,a"), Extension: "mp3", SourcePath: "right/c"}

	left := []*Track{a, b}
	right := []*Track{bPrime, c}

	diff := Difference(left, right)
	require.Len(t, diff, 1)
	assert.Same(t, a, diff[0])

	// asymmetric
	reverse := Difference(right, left)
	require.Len(t, reverse, 1)
	assert.Same(t, c, reverse[0])

	assert.Empty(t, Difference(nil, right))
	assert.Equal(t, left, Difference(left, nil))
}

func TestIndex(t *testing.T) {
	a := &Track{Title: "t1", Artist: "x", Classification: mustCode(t, "2,a;b"), Extension: "mp3", SourcePath: "T/a/f"}
	aCopy := &Track{Title: "t1", Artist: "x", Classification: mustCode(t, "2,a;b"), Extension: "mp3", SourcePath: "T/b/f"}

	index := Index([]*Track{a, aCopy})
	require.Len(t, index, 1)
	assert.Len(t, index[a.Filename()], 2)
}
