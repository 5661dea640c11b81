package tree

import (
	"iter"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Tree is an ordered collection of dialogue nodes keyed by identifier, plus
// an optional root identifier naming the node a conversation starts at.
//
// A freshly constructed tree is empty with no root, which is an invalid but
// buildable state. Nodes, links, and the root may be added in any order;
// call Validate when the tree is expected to be sound.
//
// Tree is not safe for concurrent mutation. A tree that is no longer being
// mutated may be read from any number of goroutines (or walkers) at once.
type Tree struct {
	root  string
	nodes *orderedmap.OrderedMap[string, *Node]
}

// New creates an empty tree with no root set.
func New() *Tree {
	return &Tree{
		nodes: orderedmap.New[string, *Node](),
	}
}

// Root returns the root node identifier, or the empty string when no root
// has been set.
func (t *Tree) Root() string {
	return t.root
}

// SetRoot records id as the tree's root. The node does not need to exist
// yet; Validate reports a root that never materializes.
func (t *Tree) SetRoot(id string) {
	t.root = id
}

// ClearRoot unsets the root identifier.
func (t *Tree) ClearRoot() {
	t.root = ""
}

// AddNode inserts n under the given identifier. Adding an identifier that is
// already present overwrites the previous node (last write wins) without
// changing its position in the iteration order. The tree takes ownership of
// n; inserting the same *Node under two identifiers aliases it.
func (t *Tree) AddNode(id string, n *Node) {
	t.nodes.Set(id, n)
}

// RemoveNode removes the node with the given identifier. Removing an
// identifier that is not present is a no-op, not an error.
//
// Removal does not cascade: links elsewhere that target the removed node are
// left in place and become dangling.
func (t *Tree) RemoveNode(id string) {
	t.nodes.Delete(id)
}

// Node returns the node with the given identifier, or false when no such
// node exists. Lookup is constant time.
func (t *Tree) Node(id string) (*Node, bool) {
	return t.nodes.Get(id)
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return t.nodes.Len()
}

// Nodes iterates the tree's nodes as (id, node) pairs in insertion order.
// The sequence is finite and may be ranged over any number of times.
func (t *Tree) Nodes() iter.Seq2[string, *Node] {
	return func(yield func(string, *Node) bool) {
		for pair := t.nodes.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// Clear removes every node and unsets the root, returning the tree to its
// freshly constructed state.
func (t *Tree) Clear() {
	t.root = ""
	t.nodes = orderedmap.New[string, *Node]()
}
