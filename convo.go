package convo

import (
	"github.com/simbleau/convo/pkg/codec"
	"github.com/simbleau/convo/pkg/tree"
	"github.com/simbleau/convo/pkg/walker"
)

// Tree is a dialogue tree. See pkg/tree for the full API.
type Tree = tree.Tree

// Node is a single prompt in a dialogue tree.
type Node = tree.Node

// Link is a named choice from one node to another.
type Link = tree.Link

// Walker traverses a dialogue tree one choice at a time.
type Walker = walker.Walker

// New creates an empty dialogue tree.
func New() *Tree {
	return tree.New()
}

// NewNode creates a node with the given dialogue and no links.
func NewNode(dialogue string) *Node {
	return tree.NewNode(dialogue)
}

// NewLink creates a link with the given name, choice dialogue, and target
// node identifier.
func NewLink(name, dialogue, target string) *Link {
	return tree.NewLink(name, dialogue, target)
}

// Parse reads a dialogue tree from its textual form.
func Parse(src string) (*Tree, error) {
	return codec.Decode([]byte(src))
}

// ParseFile reads a dialogue tree from the file at path.
func ParseFile(path string) (*Tree, error) {
	return codec.DecodeFile(path)
}

// Export writes a dialogue tree in its canonical textual form.
func Export(t *Tree) (string, error) {
	data, err := codec.Encode(t)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ExportFile writes a dialogue tree to the file at path.
func ExportFile(t *Tree, path string) error {
	return codec.EncodeFile(t, path)
}

// Walk starts a traversal at the tree's root.
func Walk(t *Tree) (*Walker, error) {
	return walker.FromRoot(t)
}
