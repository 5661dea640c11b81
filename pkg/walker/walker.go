package walker

import (
	"iter"

	"github.com/simbleau/convo/pkg/tree"
)

// Walker is a cursor over a dialogue tree. It holds a reference to the tree
// and the identifier of the current node; it never mutates the tree.
//
// The walker assumes the tree is not mutated while the walk is in progress.
// It is valid at construction against the tree it was given; a caller that
// edits the tree mid-walk must coordinate that itself.
type Walker struct {
	tree    *tree.Tree
	current string
}

// New creates a walker positioned at startID. Returns a
// *tree.NodeNotFoundError when the tree has no such node.
func New(t *tree.Tree, startID string) (*Walker, error) {
	if _, ok := t.Node(startID); !ok {
		return nil, &tree.NodeNotFoundError{ID: startID}
	}
	return &Walker{tree: t, current: startID}, nil
}

// FromRoot creates a walker positioned at the tree's root. Returns
// tree.ErrMissingRoot when no root is set, or a *tree.NodeNotFoundError when
// the root names a missing node.
func FromRoot(t *tree.Tree) (*Walker, error) {
	if t.Root() == "" {
		return nil, tree.ErrMissingRoot
	}
	return New(t, t.Root())
}

// Tree returns the tree this walker traverses.
func (w *Walker) Tree() *tree.Tree {
	return w.tree
}

// Current returns the identifier of the current node.
func (w *Walker) Current() string {
	return w.current
}

// Dialogue returns the dialogue of the current node.
func (w *Walker) Dialogue() string {
	n, ok := w.tree.Node(w.current)
	if !ok {
		return ""
	}
	return n.Dialogue()
}

// Links iterates the current node's choices as (name, link) pairs in
// insertion order. At a terminal node the sequence is empty.
func (w *Walker) Links() iter.Seq2[string, *tree.Link] {
	return func(yield func(string, *tree.Link) bool) {
		n, ok := w.tree.Node(w.current)
		if !ok {
			return
		}
		for name, l := range n.Links() {
			if !yield(name, l) {
				return
			}
		}
	}
}

// IsTerminal reports whether the current node offers no links, which ends
// the conversation.
func (w *Walker) IsTerminal() bool {
	n, ok := w.tree.Node(w.current)
	if !ok {
		return true
	}
	return n.IsTerminal()
}

// Advance follows the named link on the current node and returns the
// dialogue of the node it lands on. The move is atomic: on any failure the
// cursor stays where it was.
//
// Returns a *LinkNotFoundError when the current node offers no such link,
// or a *TargetNotFoundError when the link dangles.
func (w *Walker) Advance(name string) (string, error) {
	n, ok := w.tree.Node(w.current)
	if !ok {
		return "", &tree.NodeNotFoundError{ID: w.current}
	}

	l, ok := n.Link(name)
	if !ok {
		return "", &LinkNotFoundError{NodeID: w.current, Name: name}
	}

	target, ok := w.tree.Node(l.Target)
	if !ok {
		return "", &TargetNotFoundError{NodeID: w.current, Link: name, Target: l.Target}
	}

	w.current = l.Target
	return target.Dialogue(), nil
}

// Reset re-points the cursor at any node in the tree. Returns a
// *tree.NodeNotFoundError when the node does not exist; the cursor is
// unchanged on failure.
func (w *Walker) Reset(id string) error {
	if _, ok := w.tree.Node(id); !ok {
		return &tree.NodeNotFoundError{ID: id}
	}
	w.current = id
	return nil
}

// Rewind re-points the cursor at the tree's root. Returns
// tree.ErrMissingRoot when no root is set.
func (w *Walker) Rewind() error {
	if w.tree.Root() == "" {
		return tree.ErrMissingRoot
	}
	return w.Reset(w.tree.Root())
}
