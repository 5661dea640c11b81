package memory

import (
	"context"

	"github.com/simbleau/convo/pkg/tree"
)

// Source implements ports.TreeSource over a tree already in memory. Useful
// for tests and for embedding a static tree in a binary.
type Source struct {
	tree *tree.Tree
}

// NewSource wraps t. The caller must not mutate t after this point; every
// Load hands out the same read-only tree.
func NewSource(t *tree.Tree) *Source {
	return &Source{tree: t}
}

// Load returns the wrapped tree.
func (s *Source) Load(ctx context.Context) (*tree.Tree, error) {
	return s.tree, nil
}
