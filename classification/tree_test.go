// ABOUTME: Tests for the category hierarchy
// ABOUTME: Verifies floor ordering, path enumeration and insertion errors

package classification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labels(t *Tree, ids []NodeID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.Label(id))
	}

	return out
}

func TestBuildTreeSingleFloor(t *testing.T) {
	tree := BuildTree("ROOT", [][]string{{"X", "Y"}})

	assert.Equal(t, "ROOT", tree.Label(tree.Root()))
	assert.Equal(t, []string{"X", "Y"}, labels(tree, tree.Children(tree.Root())))
	assert.Equal(t, 1, tree.Depth())

	for _, child := range tree.Children(tree.Root()) {
		assert.Empty(t, tree.Children(child))
	}
}

func TestBuildTreeFloorOrder(t *testing.T) {
	floors := [][]string{
		{"ATTACK", "DECAY"},
		{"DARK", "NEUTRAL", "BRIGHT"},
		{"HOUSE", "TECHNO"},
	}
	tree := BuildTree("CRATES", floors)

	// depth d holds floor d, in configuration order
	level := []NodeID{tree.Root()}
	for depth, floor := range floors {
		var next []NodeID

		for _, id := range level {
			children := tree.Children(id)
			assert.Equal(t, floor, labels(tree, children), "depth %d", depth+1)
			next = append(next, children...)
		}

		level = next
	}

	assert.Len(t, level, 2*3*2)
}

func TestBuildTreeEmptyFloors(t *testing.T) {
	tree := BuildTree("ROOT", nil)

	assert.Empty(t, tree.Children(tree.Root()))
	assert.Equal(t, 0, tree.Depth())
}

func TestCategoryPaths(t *testing.T) {
	tree := BuildTree("ROOT", [][]string{{"A", "B"}, {"1", "2"}})

	assert.Equal(t, [][]string{
		{"A", "1"},
		{"A", "2"},
		{"B", "1"},
		{"B", "2"},
	}, tree.CategoryPaths())
}

func TestInsert(t *testing.T) {
	tree := BuildTree("ROOT", [][]string{{"A", "B"}, {"1", "2"}})

	require.NoError(t, tree.Insert([]string{"B", "2"}, "song.mp3"))
	require.NoError(t, tree.Insert([]string{"B", "2"}, "other.mp3"))
	require.NoError(t, tree.Insert([]string{"A"}, "shallow.mp3"))

	leaves, err := tree.Leaves([]string{"B", "2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"song.mp3", "other.mp3"}, leaves)

	leaves, err = tree.Leaves([]string{"A"})
	require.NoError(t, err)
	assert.Equal(t, []string{"shallow.mp3"}, leaves)

	// entries are not part of the category hierarchy
	assert.Len(t, tree.CategoryPaths(), 4)
}

func TestInsertCorruptedPath(t *testing.T) {
	tree := BuildTree("ROOT", [][]string{{"A", "B"}, {"1", "2"}})

	tests := []struct {
		name string
		path []string
	}{
		{name: "unknown first floor", path: []string{"C", "1"}},
		{name: "unknown second floor", path: []string{"A", "3"}},
		{name: "floors swapped", path: []string{"1", "A"}},
		{name: "too deep", path: []string{"A", "1", "X"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tree.Insert(tt.path, "song.mp3")
			require.ErrorIs(t, err, ErrCorruptedPath)
		})
	}
}

func TestInsertDoesNotWalkIntoEntries(t *testing.T) {
	tree := BuildTree("ROOT", [][]string{{"A"}})
	require.NoError(t, tree.Insert([]string{"A"}, "X"))

	err := tree.Insert([]string{"A", "X"}, "nested.mp3")
	require.ErrorIs(t, err, ErrCorruptedPath)
}

func TestRender(t *testing.T) {
	tree := BuildTree("ROOT", [][]string{{"A", "B"}})
	require.NoError(t, tree.Insert([]string{"B"}, "song.mp3"))

	out := tree.Render()

	for _, want := range []string{"ROOT", "A", "B", "song.mp3"} {
		assert.Contains(t, out, want)
	}
}
