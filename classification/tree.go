// ABOUTME: Category hierarchy built from the configured floors
// ABOUTME: Arena-backed tree supporting path insertion, enumeration and rendering

package classification

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtree "github.com/charmbracelet/lipgloss/tree"
)

// ErrCorruptedPath is returned when an insertion path does not exist in the hierarchy
var ErrCorruptedPath = errors.New("path does not exist in the classification tree")

// NodeID indexes a node inside a Tree
type NodeID int

type node struct {
	label    string
	parent   NodeID
	children []NodeID
	leaf     bool // attached entry, not a category
}

// Tree is a rooted, ordered, labeled category hierarchy.
// Node 0 is the root; depth d holds the categories of floor d.
type Tree struct {
	nodes  []node
	floors int
}

// Styles for Render
var (
	treeRootStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	treeCategoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	treeLeafStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	treeBranchStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// BuildTree creates the hierarchy for the given floors, outermost floor first.
// Every root-to-leaf path enumerates one category per floor, in floor order.
func BuildTree(rootName string, floors [][]string) *Tree {
	t := &Tree{
		nodes:  []node{{label: rootName, parent: -1}},
		floors: len(floors),
	}

	// Consumed from the end, so the first floor ends up closest to the root
	reversed := slices.Clone(floors)
	slices.Reverse(reversed)

	t.attachFloors(0, reversed)

	return t
}

// attachFloors hangs the last remaining floor under parent and recurses into
// each new child with the floors still left
func (t *Tree) attachFloors(parent NodeID, remaining [][]string) {
	if len(remaining) == 0 {
		return
	}

	floor := remaining[len(remaining)-1]
	rest := remaining[:len(remaining)-1]

	for _, name := range floor {
		child := t.addNode(parent, name, false)
		t.attachFloors(child, rest)
	}
}

func (t *Tree) addNode(parent NodeID, label string, leaf bool) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, node{label: label, parent: parent, leaf: leaf})
	t.nodes[parent].children = append(t.nodes[parent].children, id)

	return id
}

// Insert attaches a leaf named leafName below the category reached by path.
// The path is given top-down, root excluded.
func (t *Tree) Insert(path []string, leafName string) error {
	id, err := t.find(path)
	if err != nil {
		return err
	}

	t.addNode(id, leafName, true)

	return nil
}

// find walks category children from the root following path
func (t *Tree) find(path []string) (NodeID, error) {
	current := t.Root()

	for _, step := range path {
		next, ok := t.category(current, step)
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrCorruptedPath, strings.Join(path, "/"))
		}

		current = next
	}

	return current, nil
}

func (t *Tree) category(parent NodeID, label string) (NodeID, bool) {
	for _, child := range t.nodes[parent].children {
		if !t.nodes[child].leaf && t.nodes[child].label == label {
			return child, true
		}
	}

	return 0, false
}

// Root returns the root node
func (t *Tree) Root() NodeID {
	return 0
}

// Label returns the node's name
func (t *Tree) Label(id NodeID) string {
	return t.nodes[id].label
}

// IsLeaf reports whether the node is an inserted entry rather than a category
func (t *Tree) IsLeaf(id NodeID) bool {
	return t.nodes[id].leaf
}

// Children returns the node's children in insertion order
func (t *Tree) Children(id NodeID) []NodeID {
	return slices.Clone(t.nodes[id].children)
}

// Depth returns the number of category floors below the root
func (t *Tree) Depth() int {
	return t.floors
}

// Leaves returns the names of the entries inserted directly below path
func (t *Tree) Leaves(path []string) ([]string, error) {
	id, err := t.find(path)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, child := range t.nodes[id].children {
		if t.nodes[child].leaf {
			names = append(names, t.nodes[child].label)
		}
	}

	return names, nil
}

// CategoryPaths enumerates every full category path, one category per floor,
// in configuration order
func (t *Tree) CategoryPaths() [][]string {
	var paths [][]string

	var walk func(id NodeID, prefix []string)
	walk = func(id NodeID, prefix []string) {
		if len(prefix) == t.floors {
			paths = append(paths, slices.Clone(prefix))

			return
		}

		for _, child := range t.nodes[id].children {
			if !t.nodes[child].leaf {
				walk(child, append(prefix, t.nodes[child].label))
			}
		}
	}

	walk(t.Root(), nil)

	return paths
}

// Render draws the tree, inserted entries included
func (t *Tree) Render() string {
	return t.render(t.Root()).String()
}

func (t *Tree) render(id NodeID) *lgtree.Tree {
	out := lgtree.Root(t.nodes[id].label).
		Enumerator(lgtree.RoundedEnumerator).
		EnumeratorStyle(treeBranchStyle).
		RootStyle(treeRootStyle)

	for _, child := range t.nodes[id].children {
		n := t.nodes[child]

		switch {
		case t.IsLeaf(child):
			out.Child(treeLeafStyle.Render(n.label))
		case len(n.children) == 0:
			out.Child(treeCategoryStyle.Render(n.label))
		default:
			out.Child(t.render(child).RootStyle(treeCategoryStyle))
		}
	}

	return out
}

// String implements fmt.Stringer
func (t *Tree) String() string {
	return t.Render()
}
