package dsl

import "github.com/simbleau/convo/pkg/tree"

// NodeBuilder provides a fluent API for configuring a single node.
type NodeBuilder struct {
	id       string
	dialogue string
	links    []*tree.Link
	builder  *Builder
}

// Say sets the dialogue spoken at this node.
func (n *NodeBuilder) Say(dialogue string) *NodeBuilder {
	n.dialogue = dialogue
	return n
}

// Choice adds a named link to the target node. Reusing a name overwrites the
// earlier choice, matching tree.Node.AddLink.
func (n *NodeBuilder) Choice(name, dialogue, target string) *NodeBuilder {
	n.links = append(n.links, tree.NewLink(name, dialogue, target))
	return n
}

// ChoiceTo adds a link named after the node it targets, the shape the
// textual format writes as "- target: dialogue".
func (n *NodeBuilder) ChoiceTo(target, dialogue string) *NodeBuilder {
	n.links = append(n.links, tree.LinkTo(target, dialogue))
	return n
}

// Done returns the parent builder for chaining into the next node.
func (n *NodeBuilder) Done() *Builder {
	return n.builder
}
