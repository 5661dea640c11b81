package tree

import (
	"iter"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Node is a single point in a dialogue tree: a line of dialogue plus the
// ordered, named links a walker may follow from it. A node with no links is
// terminal; the conversation ends there.
type Node struct {
	dialogue string
	links    *orderedmap.OrderedMap[string, *Link]
}

// NewNode creates a node that speaks the given dialogue and has no links.
func NewNode(dialogue string) *Node {
	return &Node{
		dialogue: dialogue,
		links:    orderedmap.New[string, *Link](),
	}
}

// Dialogue returns the text spoken at this node.
func (n *Node) Dialogue() string {
	return n.dialogue
}

// SetDialogue replaces the text spoken at this node.
func (n *Node) SetDialogue(dialogue string) {
	n.dialogue = dialogue
}

// AddLink inserts l keyed by its name. Adding a link whose name is already
// present overwrites the previous link (last write wins) without changing
// its position in the iteration order. The link's Name field is the key, so
// mutating Name after insertion does not re-key it; remove and re-add instead.
func (n *Node) AddLink(l *Link) {
	n.links.Set(l.Name, l)
}

// RemoveLink removes the link with the given name. Removing a name that is
// not present is a no-op, not an error. A removed name re-added later moves
// to the back of the iteration order.
func (n *Node) RemoveLink(name string) {
	n.links.Delete(name)
}

// Link returns the link with the given name, or false when no such link
// exists. Lookup is constant time.
func (n *Node) Link(name string) (*Link, bool) {
	return n.links.Get(name)
}

// Links iterates the node's links as (name, link) pairs in insertion order.
// The sequence is finite and may be ranged over any number of times.
func (n *Node) Links() iter.Seq2[string, *Link] {
	return func(yield func(string, *Link) bool) {
		for pair := n.links.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// NumLinks returns the number of outgoing links.
func (n *Node) NumLinks() int {
	return n.links.Len()
}

// IsTerminal reports whether the node has no outgoing links.
func (n *Node) IsTerminal() bool {
	return n.links.Len() == 0
}
