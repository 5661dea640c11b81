package dsl

import (
	"fmt"

	"github.com/simbleau/convo/pkg/tree"
)

// Builder manages the tree construction. Declaration order is preserved:
// the finished tree iterates its nodes in the order they were first named.
type Builder struct {
	root  string
	nodes map[string]*NodeBuilder
	order []string
}

// Build starts a new builder whose finished tree is rooted at rootID.
// The root node does not need to exist yet.
func Build(rootID string) *Builder {
	return &Builder{
		root:  rootID,
		nodes: make(map[string]*NodeBuilder),
	}
}

// Node returns the builder for the given node, creating it on first use.
// Calling Node with the same id again returns the existing builder, so a
// tree can be declared in any order.
func (b *Builder) Node(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		id:      id,
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Tree assembles the declared nodes into a tree and validates it with the
// default rules plus any options given.
func (b *Builder) Tree(opts ...tree.ValidateOption) (*tree.Tree, error) {
	t := tree.New()
	t.SetRoot(b.root)
	for _, id := range b.order {
		nb := b.nodes[id]
		n := tree.NewNode(nb.dialogue)
		for _, l := range nb.links {
			n.AddLink(l)
		}
		t.AddNode(id, n)
	}

	if err := t.Validate(opts...); err != nil {
		return nil, fmt.Errorf("built tree is invalid: %w", err)
	}
	return t, nil
}

// MustTree is like Tree but panics when the tree is invalid. Intended for
// static trees whose shape is known at compile time.
func (b *Builder) MustTree(opts ...tree.ValidateOption) *tree.Tree {
	t, err := b.Tree(opts...)
	if err != nil {
		panic(fmt.Sprintf("dsl: %v", err))
	}
	return t
}
